// Package profile stores named lamp modes and applies them.
//
// A mode is persisted as a Record in the lamp's native vocabulary (power
// byte as hex, brightness as a decimal string, colour as r/g/b) and decoded
// into a Profile before use.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chaz8081/lampctl/internal/ble/protocol"
	"github.com/chaz8081/lampctl/internal/lamp"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidProfile   = errors.New("invalid profile")
	ErrStateUnavailable = errors.New("lamp state unavailable")
)

// Profile is a decoded mode ready to apply.
type Profile struct {
	Name       string       `json:"name"`
	LightOn    bool         `json:"light_on"`
	Brightness int          `json:"brightness"`
	Color      protocol.RGB `json:"color"`
}

// ColorRecord is the stored colour. Channels are pointers so a missing
// channel can be told apart from zero.
type ColorRecord struct {
	R *int `yaml:"r" json:"r"`
	G *int `yaml:"g" json:"g"`
	B *int `yaml:"b" json:"b"`
}

// Record is a mode as persisted.
type Record struct {
	LightState string       `yaml:"light_state" json:"light_state"` // one hex byte, "01" or "00"
	Brightness string       `yaml:"brightness" json:"brightness"`   // decimal percentage
	Color      *ColorRecord `yaml:"color,omitempty" json:"color,omitempty"`
}

// Lamp is the subset of the lamp controller profiles drive.
type Lamp interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	SetBrightness(ctx context.Context, pct int) error
	SetColor(ctx context.Context, r, g, b int) error
	GetState(ctx context.Context) lamp.State
}

// Snapshot captures a connected lamp state as a Record.
func Snapshot(st lamp.State) (Record, error) {
	if !st.Connected {
		return Record{}, ErrStateUnavailable
	}
	return Encode(Profile{LightOn: st.LightOn, Brightness: st.Brightness, Color: st.Color}), nil
}

// Encode converts a Profile to its stored form.
func Encode(p Profile) Record {
	r, g, b := int(p.Color.R), int(p.Color.G), int(p.Color.B)
	return Record{
		LightState: fmt.Sprintf("%02x", protocol.EncodePower(p.LightOn)[0]),
		Brightness: strconv.Itoa(p.Brightness),
		Color:      &ColorRecord{R: &r, G: &g, B: &b},
	}
}

// Decode validates a stored Record. Every field is required.
func Decode(name string, rec Record) (Profile, error) {
	p := Profile{Name: name}

	ls := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(rec.LightState)), "0x")
	if ls == "" {
		return Profile{}, fmt.Errorf("%w: %s: light_state missing", ErrInvalidProfile, name)
	}
	power, err := strconv.ParseUint(ls, 16, 8)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %s: light_state %q is not a hex byte", ErrInvalidProfile, name, rec.LightState)
	}
	p.LightOn, _ = protocol.DecodePower([]byte{byte(power)})

	bs := strings.TrimSpace(rec.Brightness)
	if bs == "" {
		return Profile{}, fmt.Errorf("%w: %s: brightness missing", ErrInvalidProfile, name)
	}
	p.Brightness, err = strconv.Atoi(bs)
	if err != nil || p.Brightness < 0 || p.Brightness > 100 {
		return Profile{}, fmt.Errorf("%w: %s: brightness %q is not 0-100", ErrInvalidProfile, name, rec.Brightness)
	}

	c := rec.Color
	if c == nil || c.R == nil || c.G == nil || c.B == nil {
		return Profile{}, fmt.Errorf("%w: %s: color needs r, g and b", ErrInvalidProfile, name)
	}
	for _, v := range []int{*c.R, *c.G, *c.B} {
		if v < 0 || v > 255 {
			return Profile{}, fmt.Errorf("%w: %s: color channel %d is not 0-255", ErrInvalidProfile, name, v)
		}
	}
	p.Color = protocol.RGB{R: uint8(*c.R), G: uint8(*c.G), B: uint8(*c.B)}
	return p, nil
}

// Apply drives the lamp to p: power, then brightness, then colour. It stops
// at the first failure; earlier steps are not rolled back.
func Apply(ctx context.Context, l Lamp, p Profile) error {
	power := l.TurnOff
	if p.LightOn {
		power = l.TurnOn
	}
	if err := power(ctx); err != nil {
		return fmt.Errorf("apply %s: power: %w", p.Name, err)
	}
	if err := l.SetBrightness(ctx, p.Brightness); err != nil {
		return fmt.Errorf("apply %s: brightness: %w", p.Name, err)
	}
	if err := l.SetColor(ctx, int(p.Color.R), int(p.Color.G), int(p.Color.B)); err != nil {
		return fmt.Errorf("apply %s: color: %w", p.Name, err)
	}
	return nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidProfile, name)
	}
	return nil
}

package profile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaz8081/lampctl/internal/ble/protocol"
	"github.com/chaz8081/lampctl/internal/lamp"
)

// fakeLamp records the commands it receives.
type fakeLamp struct {
	mu    sync.Mutex
	state lamp.State
	calls []string
	fail  map[string]error
}

func (f *fakeLamp) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail[call]
}

func (f *fakeLamp) TurnOn(context.Context) error  { return f.record("on") }
func (f *fakeLamp) TurnOff(context.Context) error { return f.record("off") }
func (f *fakeLamp) SetBrightness(_ context.Context, pct int) error {
	return f.record("brightness")
}
func (f *fakeLamp) SetColor(_ context.Context, r, g, b int) error {
	return f.record("color")
}
func (f *fakeLamp) GetState(context.Context) lamp.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeLamp) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func intp(v int) *int { return &v }

func TestSnapshot(t *testing.T) {
	rec, err := Snapshot(lamp.State{
		Connected:  true,
		LightOn:    true,
		Brightness: 40,
		Color:      protocol.RGB{R: 255, G: 120, B: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "01", rec.LightState)
	assert.Equal(t, "40", rec.Brightness)
	require.NotNil(t, rec.Color)
	assert.Equal(t, 255, *rec.Color.R)
	assert.Equal(t, 120, *rec.Color.G)
	assert.Equal(t, 0, *rec.Color.B)

	off, err := Snapshot(lamp.State{Connected: true})
	require.NoError(t, err)
	assert.Equal(t, "00", off.LightState)
}

func TestSnapshotRequiresConnectedState(t *testing.T) {
	_, err := Snapshot(lamp.State{})
	assert.ErrorIs(t, err, ErrStateUnavailable)
}

func TestDecode(t *testing.T) {
	p, err := Decode("night", Record{
		LightState: "0x01",
		Brightness: " 20 ",
		Color:      &ColorRecord{R: intp(255), G: intp(100), B: intp(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, Profile{
		Name:       "night",
		LightOn:    true,
		Brightness: 20,
		Color:      protocol.RGB{R: 255, G: 100, B: 0},
	}, p)
}

func TestDecodeInvalid(t *testing.T) {
	color := &ColorRecord{R: intp(1), G: intp(2), B: intp(3)}
	tests := []struct {
		name string
		rec  Record
	}{
		{"missing light_state", Record{Brightness: "10", Color: color}},
		{"bad light_state", Record{LightState: "zz", Brightness: "10", Color: color}},
		{"light_state too wide", Record{LightState: "100", Brightness: "10", Color: color}},
		{"missing brightness", Record{LightState: "01", Color: color}},
		{"brightness not a number", Record{LightState: "01", Brightness: "bright", Color: color}},
		{"brightness out of range", Record{LightState: "01", Brightness: "101", Color: color}},
		{"missing color", Record{LightState: "01", Brightness: "10"}},
		{"missing channel", Record{LightState: "01", Brightness: "10", Color: &ColorRecord{R: intp(1), G: intp(2)}}},
		{"channel out of range", Record{LightState: "01", Brightness: "10", Color: &ColorRecord{R: intp(1), G: intp(256), B: intp(0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("bad", tt.rec)
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Profile{Name: "reading", LightOn: false, Brightness: 75, Color: protocol.RGB{R: 10, G: 20, B: 30}}
	out, err := Decode("reading", Encode(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestApplyOrder(t *testing.T) {
	l := &fakeLamp{}
	err := Apply(context.Background(), l, Profile{Name: "n", LightOn: true, Brightness: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"on", "brightness", "color"}, l.Calls())

	l = &fakeLamp{}
	require.NoError(t, Apply(context.Background(), l, Profile{Name: "n"}))
	assert.Equal(t, []string{"off", "brightness", "color"}, l.Calls())
}

func TestApplyStopsOnFailure(t *testing.T) {
	l := &fakeLamp{fail: map[string]error{"brightness": &lamp.Error{Op: "set_brightness", Kind: lamp.ErrNotConnected}}}

	err := Apply(context.Background(), l, Profile{Name: "n", LightOn: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, lamp.ErrNotConnected)
	assert.Contains(t, err.Error(), "apply n: brightness")
	// The power change is not undone.
	assert.Equal(t, []string{"on", "brightness"}, l.Calls())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("redis", "x")
	assert.Error(t, err)
}

func TestValidName(t *testing.T) {
	assert.NoError(t, validName("night"))
	for _, bad := range []string{"", "  ", " night"} {
		assert.True(t, errors.Is(validName(bad), ErrInvalidProfile), "name %q", bad)
	}
}

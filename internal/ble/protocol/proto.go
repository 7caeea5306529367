// Package protocol implements the native byte encodings of the lamp's GATT
// characteristics: power, brightness and colour.
//
// The colour encoding is lossy. Channels are normalised so that they sum to
// roughly 255, which keeps the ratio between channels and discards absolute
// magnitude; brightness is carried by its own characteristic. Decoding a
// value therefore never recovers the original RGB triple, only its ratios.
package protocol

import (
	"errors"
	"fmt"
)

// ColorPrefix is the first byte of every colour command.
const ColorPrefix = 0x01

// ColorLen is the length of a native colour value.
const ColorLen = 4

// Power command bytes.
const (
	PowerOff byte = 0x00
	PowerOn  byte = 0x01
)

// ErrShortValue is returned when a characteristic value is too short to decode.
var ErrShortValue = errors.New("protocol: value too short")

// RGB is a colour in the human-facing model, one byte per channel.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// String renders the colour as "r,g,b", the form the HTTP layer accepts.
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// EncodePower returns the single-byte light command.
func EncodePower(on bool) []byte {
	if on {
		return []byte{PowerOn}
	}
	return []byte{PowerOff}
}

// DecodePower reports whether a light characteristic value means "on".
func DecodePower(value []byte) (bool, error) {
	if len(value) < 1 {
		return false, ErrShortValue
	}
	return value[0] == PowerOn, nil
}

// EncodeColor converts an RGB triple to the native 4-byte value
// [0x01, r, b, g]. Each channel is clamped to at least 1 so the total is
// never zero, then scaled to round(channel/total*255).
//
// The last two positions are swapped relative to input order.
func EncodeColor(c RGB) []byte {
	r, g, b := clampLow(c.R), clampLow(c.G), clampLow(c.B)
	total := r + g + b
	return []byte{
		ColorPrefix,
		scaleChannel(r, total),
		scaleChannel(b, total),
		scaleChannel(g, total),
	}
}

// DecodeColor reads a native colour value back as (bytes[1], bytes[3], bytes[2]).
func DecodeColor(value []byte) (RGB, error) {
	if len(value) < ColorLen {
		return RGB{}, fmt.Errorf("%w: colour needs %d bytes, got %d", ErrShortValue, ColorLen, len(value))
	}
	return RGB{R: value[1], G: value[3], B: value[2]}, nil
}

// PercentToByte maps a 0-100 percentage onto 0-255, rounding half up.
// Out-of-range input is clamped; callers validate before encoding.
func PercentToByte(pct int) byte {
	pct = min(max(pct, 0), 100)
	return byte((pct*255 + 50) / 100)
}

// ByteToPercent maps a 0-255 device value back onto 0-100, rounding half up.
// The mapping is monotonic but not an exact inverse of PercentToByte.
func ByteToPercent(v byte) int {
	return (int(v)*200 + 255) / 510
}

// EncodeBrightness returns the single-byte brightness command for pct.
func EncodeBrightness(pct int) []byte {
	return []byte{PercentToByte(pct)}
}

// DecodeBrightness reads a brightness characteristic value as a percentage.
func DecodeBrightness(value []byte) (int, error) {
	if len(value) < 1 {
		return 0, ErrShortValue
	}
	return ByteToPercent(value[0]), nil
}

func clampLow(v uint8) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// scaleChannel computes round(v/total*255) with half-up rounding in
// integer arithmetic.
func scaleChannel(v, total int) byte {
	return byte((v*255*2 + total) / (2 * total))
}

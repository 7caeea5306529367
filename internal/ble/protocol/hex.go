package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrBadHex is returned for hex colour strings that cannot be split into
// three equal-width segments.
var ErrBadHex = errors.New("protocol: malformed hex colour")

// HexToRGB parses a hex colour such as "#FF8000" into three integer
// channels. Any string whose length (after an optional leading '#') is a
// non-zero multiple of three is accepted; each third is parsed as one
// channel, so "#F80" yields (15, 8, 0) and wider segments may exceed 255.
func HexToRGB(s string) (r, g, b int, err error) {
	s = strings.TrimLeft(strings.TrimSpace(s), "#")
	if len(s) == 0 || len(s)%3 != 0 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	width := len(s) / 3
	var ch [3]int
	for i := range ch {
		v, err := strconv.ParseUint(s[i*width:(i+1)*width], 16, 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadHex, s)
		}
		ch[i] = int(v)
	}
	return ch[0], ch[1], ch[2], nil
}

// FormatHex renders the colour as "#rrggbb".
func FormatHex(c RGB) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

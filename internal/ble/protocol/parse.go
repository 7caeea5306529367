package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadRGB is returned for "r,g,b" strings that do not hold exactly three
// integers.
var ErrBadRGB = errors.New("protocol: malformed rgb triple")

// ParseRGB parses "r,g,b" into three integers. Range checking is left to
// the caller so out-of-range values can be reported as such.
func ParseRGB(s string) (r, g, b int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: want 3 values, got %d", ErrBadRGB, len(parts))
	}
	var ch [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadRGB, p)
		}
		ch[i] = v
	}
	return ch[0], ch[1], ch[2], nil
}

package protocol

import (
	"errors"
	"testing"
)

func TestParseRGB(t *testing.T) {
	r, g, b, err := ParseRGB("255, 128,0")
	if err != nil {
		t.Fatalf("ParseRGB() error: %v", err)
	}
	if r != 255 || g != 128 || b != 0 {
		t.Errorf("ParseRGB() = %d,%d,%d, want 255,128,0", r, g, b)
	}

	// Out-of-range values parse; the controller rejects them.
	if r, _, _, err := ParseRGB("300,0,0"); err != nil || r != 300 {
		t.Errorf("ParseRGB(300,0,0) = %d, %v", r, err)
	}
}

func TestParseRGBInvalid(t *testing.T) {
	for _, in := range []string{"", "1,2", "1,2,3,4", "a,b,c", "1,,3"} {
		if _, _, _, err := ParseRGB(in); !errors.Is(err, ErrBadRGB) {
			t.Errorf("ParseRGB(%q) error = %v, want ErrBadRGB", in, err)
		}
	}
}

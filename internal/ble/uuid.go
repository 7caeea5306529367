package ble

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeUUID returns the canonical lower-case dashed form of a 128-bit
// UUID. Transports disagree on rendering (go-ble packs the hex digits,
// tinygo dashes them), so every index keyed by UUID goes through here.
// Short 16/32-bit UUIDs are lower-cased and returned as-is.
func NormalizeUUID(s string) string {
	s = strings.TrimSpace(s)
	u, err := uuid.Parse(s)
	if err != nil {
		return strings.ToLower(s)
	}
	return u.String()
}

// SameUUID reports whether a and b name the same UUID.
func SameUUID(a, b string) bool {
	return NormalizeUUID(a) == NormalizeUUID(b)
}

package ble

import "fmt"

// Open builds the transport named by kind ("tinygo" or "goble") on the
// adapter adapterID ("" for the system default). The returned closer
// releases the transport.
func Open(kind, adapterID string) (Transport, func() error, error) {
	switch kind {
	case "", "tinygo":
		return NewTinyGoTransport(adapterID), func() error { return nil }, nil
	case "goble":
		t := NewGoBLETransport(adapterID)
		return t, t.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown ble transport %q", kind)
	}
}

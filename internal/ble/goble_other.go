//go:build !linux

package ble

import "fmt"

// GoBLETransport is only available on Linux, where go-ble talks to HCI
// sockets directly.
type GoBLETransport struct {
	id string
}

// NewGoBLETransport returns a transport whose Adapters always fails.
func NewGoBLETransport(id string) *GoBLETransport {
	return &GoBLETransport{id: id}
}

func (t *GoBLETransport) Adapters() ([]Adapter, error) {
	return nil, fmt.Errorf("%w: the goble transport requires linux", ErrNoAdapters)
}

// Close is a no-op.
func (t *GoBLETransport) Close() error { return nil }

var _ Transport = (*GoBLETransport)(nil)

// Package ble defines the narrow BLE capability the lamp controller relies on
// and implements it on top of tinygo-org/bluetooth and go-ble. Every call is
// blocking from the caller's point of view.
package ble

import (
	"context"
	"errors"
	"time"
)

// ErrNoAdapters is returned by a Transport that finds no usable adapter.
var ErrNoAdapters = errors.New("ble: no adapters found")

// ErrUnknownAttribute is returned when a write or read names a
// characteristic the connection never enumerated.
var ErrUnknownAttribute = errors.New("ble: unknown characteristic")

// Device represents a discovered BLE peripheral.
type Device struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	RSSI    int    `json:"rssi"`
}

// Attribute pairs a characteristic UUID with the UUID of its owning service.
type Attribute struct {
	Service        string `json:"service"`
	Characteristic string `json:"characteristic"`
}

// Connection represents an active BLE connection to a peripheral.
type Connection interface {
	// Attributes enumerates every (service, characteristic) pair.
	Attributes() ([]Attribute, error)
	// Write sends data to a characteristic and waits for the acknowledgement.
	Write(service, characteristic string, data []byte) error
	// Read returns the current value of a characteristic.
	Read(service, characteristic string) ([]byte, error)
	// Disconnect terminates the connection.
	Disconnect() error
}

// Adapter abstracts one BLE hardware adapter.
type Adapter interface {
	// ID identifies the adapter, e.g. "hci0" or "default".
	ID() string
	// Scan listens for advertisements for the given duration and returns
	// every distinct device seen.
	Scan(ctx context.Context, duration time.Duration) ([]Device, error)
	// Connect establishes a connection to a device returned by Scan.
	Connect(ctx context.Context, device Device) (Connection, error)
}

// Transport lists the adapters available on this host.
type Transport interface {
	Adapters() ([]Adapter, error)
}

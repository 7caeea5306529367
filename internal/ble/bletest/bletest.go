// Package bletest provides an in-memory ble.Transport for tests. A
// Peripheral keeps its characteristic values across reconnects, so writes
// made through one Connection are visible to reads made through the next.
package bletest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chaz8081/lampctl/internal/ble"
)

// ErrInjected is a convenient error for tests to queue.
var ErrInjected = errors.New("bletest: injected failure")

// Write records one characteristic write.
type Write struct {
	Service        string
	Characteristic string
	Data           []byte
}

// Peripheral simulates a BLE device with a fixed set of attributes.
type Peripheral struct {
	Device ble.Device

	mu            sync.Mutex
	attrs         []ble.Attribute
	values        map[string][]byte // keyed by normalised characteristic UUID
	writes        []Write
	writeErrs     []error
	readErrs      map[string]error
	attrsErr      error
	disconnectErr error
}

// NewPeripheral creates a peripheral advertising as dev and exposing attrs.
func NewPeripheral(dev ble.Device, attrs ...ble.Attribute) *Peripheral {
	return &Peripheral{
		Device:   dev,
		attrs:    attrs,
		values:   make(map[string][]byte),
		readErrs: make(map[string]error),
	}
}

// Attributes builds the attribute list for characteristics under one service.
func Attributes(service string, chars ...string) []ble.Attribute {
	attrs := make([]ble.Attribute, len(chars))
	for i, ch := range chars {
		attrs[i] = ble.Attribute{Service: service, Characteristic: ch}
	}
	return attrs
}

// FailWrites queues results for the next writes; a nil entry succeeds.
func (p *Peripheral) FailWrites(errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErrs = append(p.writeErrs, errs...)
}

// FailRead makes every read of characteristic fail with err (nil clears it).
func (p *Peripheral) FailRead(characteristic string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErrs[ble.NormalizeUUID(characteristic)] = err
}

// FailAttributes makes service enumeration fail.
func (p *Peripheral) FailAttributes(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attrsErr = err
}

// FailDisconnect makes Disconnect return err.
func (p *Peripheral) FailDisconnect(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnectErr = err
}

// SetValue sets the current value of a characteristic.
func (p *Peripheral) SetValue(characteristic string, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[ble.NormalizeUUID(characteristic)] = append([]byte(nil), value...)
}

// Value returns the current value of a characteristic.
func (p *Peripheral) Value(characteristic string) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.values[ble.NormalizeUUID(characteristic)]...)
}

// Writes returns every successful write in order.
func (p *Peripheral) Writes() []Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Write(nil), p.writes...)
}

func (p *Peripheral) hasAttribute(service, characteristic string) bool {
	for _, a := range p.attrs {
		if ble.SameUUID(a.Service, service) && ble.SameUUID(a.Characteristic, characteristic) {
			return true
		}
	}
	return false
}

func (p *Peripheral) write(service, characteristic string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.writeErrs) > 0 {
		err := p.writeErrs[0]
		p.writeErrs = p.writeErrs[1:]
		if err != nil {
			return err
		}
	}
	if !p.hasAttribute(service, characteristic) {
		return fmt.Errorf("%w: %s/%s", ble.ErrUnknownAttribute, service, characteristic)
	}
	cp := append([]byte(nil), data...)
	p.writes = append(p.writes, Write{Service: service, Characteristic: characteristic, Data: cp})
	p.values[ble.NormalizeUUID(characteristic)] = cp
	return nil
}

func (p *Peripheral) read(service, characteristic string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := ble.NormalizeUUID(characteristic)
	if err := p.readErrs[key]; err != nil {
		return nil, err
	}
	if !p.hasAttribute(service, characteristic) {
		return nil, fmt.Errorf("%w: %s/%s", ble.ErrUnknownAttribute, service, characteristic)
	}
	return append([]byte(nil), p.values[key]...), nil
}

// Connection is a live link to a Peripheral.
type Connection struct {
	p *Peripheral

	mu           sync.Mutex
	disconnected bool
}

func (c *Connection) Attributes() ([]ble.Attribute, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if c.p.attrsErr != nil {
		return nil, c.p.attrsErr
	}
	return append([]ble.Attribute(nil), c.p.attrs...), nil
}

func (c *Connection) Write(service, characteristic string, data []byte) error {
	if c.Disconnected() {
		return errors.New("bletest: write on closed connection")
	}
	return c.p.write(service, characteristic, data)
}

func (c *Connection) Read(service, characteristic string) ([]byte, error) {
	if c.Disconnected() {
		return nil, errors.New("bletest: read on closed connection")
	}
	return c.p.read(service, characteristic)
}

func (c *Connection) Disconnect() error {
	c.mu.Lock()
	c.disconnected = true
	c.mu.Unlock()

	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	return c.p.disconnectErr
}

// Disconnected reports whether Disconnect was called.
func (c *Connection) Disconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// Adapter simulates one BLE adapter that can see a set of peripherals.
type Adapter struct {
	id string

	mu          sync.Mutex
	peripherals []*Peripheral
	scanErr     error
	connectErrs []error
	scans       int
	connects    int
	conns       []*Connection
}

// NewAdapter creates an adapter that discovers the given peripherals.
func NewAdapter(peripherals ...*Peripheral) *Adapter {
	return &Adapter{id: "fake0", peripherals: peripherals}
}

func (a *Adapter) ID() string { return a.id }

// FailScan makes every scan fail with err (nil clears it).
func (a *Adapter) FailScan(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scanErr = err
}

// FailConnects queues results for the next connect attempts; a nil entry succeeds.
func (a *Adapter) FailConnects(errs ...error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connectErrs = append(a.connectErrs, errs...)
}

// Scans returns the number of Scan calls.
func (a *Adapter) Scans() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scans
}

// Connects returns the number of Connect calls, successful or not.
func (a *Adapter) Connects() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connects
}

// Connections returns every connection handed out, oldest first.
func (a *Adapter) Connections() []*Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Connection(nil), a.conns...)
}

// LatestConnection returns the most recently created connection, or nil.
func (a *Adapter) LatestConnection() *Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.conns) == 0 {
		return nil
	}
	return a.conns[len(a.conns)-1]
}

func (a *Adapter) Scan(_ context.Context, _ time.Duration) ([]ble.Device, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scans++
	if a.scanErr != nil {
		return nil, a.scanErr
	}
	devices := make([]ble.Device, len(a.peripherals))
	for i, p := range a.peripherals {
		devices[i] = p.Device
	}
	return devices, nil
}

func (a *Adapter) Connect(_ context.Context, device ble.Device) (ble.Connection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connects++
	if len(a.connectErrs) > 0 {
		err := a.connectErrs[0]
		a.connectErrs = a.connectErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	for _, p := range a.peripherals {
		if p.Device.Address == device.Address {
			conn := &Connection{p: p}
			a.conns = append(a.conns, conn)
			return conn, nil
		}
	}
	return nil, fmt.Errorf("bletest: no peripheral at %s", device.Address)
}

// Transport hands out a fixed list of adapters.
type Transport struct {
	mu       sync.Mutex
	adapters []ble.Adapter
	err      error
	calls    int
}

// NewTransport creates a transport exposing adapters. With no adapters it
// behaves like a host without Bluetooth hardware.
func NewTransport(adapters ...ble.Adapter) *Transport {
	return &Transport{adapters: adapters}
}

// Fail makes Adapters return err.
func (t *Transport) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Calls returns the number of Adapters calls.
func (t *Transport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

func (t *Transport) Adapters() ([]ble.Adapter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.err != nil {
		return nil, t.err
	}
	return append([]ble.Adapter(nil), t.adapters...), nil
}

// Compile-time interface checks.
var (
	_ ble.Transport  = (*Transport)(nil)
	_ ble.Adapter    = (*Adapter)(nil)
	_ ble.Connection = (*Connection)(nil)
)

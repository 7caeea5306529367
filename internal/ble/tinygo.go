package ble

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// maxReadLen bounds a single characteristic read.
const maxReadLen = 512

// stopScanRetry is how often a pending StopScan is retried while the scan
// has not registered yet.
const stopScanRetry = 50 * time.Millisecond

// TinyGoTransport wraps tinygo-org/bluetooth (BlueZ over D-Bus on Linux,
// CoreBluetooth on macOS). On macOS device addresses are CoreBluetooth
// UUIDs rather than MAC addresses; they are passed through unchanged.
type TinyGoTransport struct {
	id string

	mu      sync.Mutex
	adapter *tinyGoAdapter
}

// NewTinyGoTransport creates a transport for the adapter with the given ID.
// An empty ID selects the system default adapter.
func NewTinyGoTransport(id string) *TinyGoTransport {
	return &TinyGoTransport{id: id}
}

// Adapters enables the configured adapter on first use and returns it.
func (t *TinyGoTransport) Adapters() ([]Adapter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.adapter != nil {
		return []Adapter{t.adapter}, nil
	}

	dev := newBluetoothAdapter(t.id)
	if dev == nil {
		return nil, ErrNoAdapters
	}
	if err := dev.Enable(); err != nil {
		return nil, fmt.Errorf("%w: enable adapter: %v", ErrNoAdapters, err)
	}

	id := t.id
	if id == "" {
		id = "default"
	}
	t.adapter = &tinyGoAdapter{
		id:      id,
		adapter: dev,
		seen:    make(map[string]bluetooth.Address),
	}
	return []Adapter{t.adapter}, nil
}

// Compile-time check that TinyGoTransport implements Transport.
var _ Transport = (*TinyGoTransport)(nil)

type tinyGoAdapter struct {
	id      string
	adapter *bluetooth.Adapter

	// mu protects seen, the addresses from the most recent scan, which
	// Connect needs because tinygo cannot dial a bare address string on
	// every platform.
	mu   sync.Mutex
	seen map[string]bluetooth.Address
}

func (a *tinyGoAdapter) ID() string { return a.id }

func (a *tinyGoAdapter) Scan(ctx context.Context, duration time.Duration) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}
	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	var mu sync.Mutex
	var devices []Device
	seen := make(map[string]bluetooth.Address)

	done := make(chan struct{})
	go a.stopScanWhenDone(scanCtx, done)

	slog.Info("[BLE] scanning", "adapter", a.id, "duration", duration)
	err := a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		addr := result.Address.String()
		mu.Lock()
		defer mu.Unlock()
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = result.Address
		devices = append(devices, Device{
			Name:    result.LocalName(),
			Address: addr,
			RSSI:    int(result.RSSI),
		})
	})
	close(done)

	if err != nil && scanCtx.Err() == nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}

	a.mu.Lock()
	a.seen = seen
	a.mu.Unlock()

	slog.Info("[BLE] scan complete", "adapter", a.id, "devices", len(devices))
	return devices, nil
}

// stopScanWhenDone stops the running scan once ctx expires. StopScan fails
// until Scan has registered, so it is retried until the scan returns.
func (a *tinyGoAdapter) stopScanWhenDone(ctx context.Context, done <-chan struct{}) {
	select {
	case <-ctx.Done():
	case <-done:
		return
	}
	ticker := time.NewTicker(stopScanRetry)
	defer ticker.Stop()
	for {
		err := a.adapter.StopScan()
		if err == nil {
			return
		}
		slog.Debug("[BLE] stop scan", "error", err)
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (a *tinyGoAdapter) Connect(ctx context.Context, device Device) (Connection, error) {
	a.mu.Lock()
	addr, ok := a.seen[device.Address]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("ble: connect to %s: device not in scan results", device.Address)
	}

	params := bluetooth.ConnectionParams{}
	if deadline, ok := ctx.Deadline(); ok {
		params.ConnectionTimeout = connectionTimeout(time.Until(deadline))
	}

	// tinygo/bluetooth's Connect blocks internally with its own timeout.
	// We wrap it to also respect ctx cancellation.
	type connectResult struct {
		device bluetooth.Device
		err    error
	}
	ch := make(chan connectResult, 1)
	go func() {
		dev, err := a.adapter.Connect(addr, params)
		ch <- connectResult{dev, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("ble: connect to %s: %w", device.Address, ctx.Err())
	case result := <-ch:
		if result.err != nil {
			return nil, fmt.Errorf("ble: connect to %s: %w", device.Address, result.err)
		}
		return &tinyGoConnection{
			device: &result.device,
			chars:  make(map[Attribute]bluetooth.DeviceCharacteristic),
		}, nil
	}
}

// Compile-time check that tinyGoAdapter implements Adapter.
var _ Adapter = (*tinyGoAdapter)(nil)

type tinyGoConnection struct {
	device *bluetooth.Device

	mu    sync.Mutex
	chars map[Attribute]bluetooth.DeviceCharacteristic // keyed by normalised UUIDs
}

func (c *tinyGoConnection) Attributes() ([]Attribute, error) {
	svcs, err := c.device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("ble: discover services: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var attrs []Attribute
	for _, svc := range svcs {
		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("ble: discover characteristics of %s: %w", svc.UUID().String(), err)
		}
		for _, ch := range chars {
			attr := Attribute{
				Service:        NormalizeUUID(svc.UUID().String()),
				Characteristic: NormalizeUUID(ch.UUID().String()),
			}
			c.chars[attr] = ch
			attrs = append(attrs, attr)
		}
	}
	return attrs, nil
}

func (c *tinyGoConnection) lookup(service, characteristic string) (bluetooth.DeviceCharacteristic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.chars[Attribute{Service: NormalizeUUID(service), Characteristic: NormalizeUUID(characteristic)}]
	if !ok {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("%w: %s/%s", ErrUnknownAttribute, service, characteristic)
	}
	return ch, nil
}

func (c *tinyGoConnection) Write(service, characteristic string, data []byte) error {
	ch, err := c.lookup(service, characteristic)
	if err != nil {
		return err
	}
	if err := writeCharacteristic(ch, data); err != nil {
		return fmt.Errorf("ble: write %s: %w", characteristic, err)
	}
	return nil
}

func (c *tinyGoConnection) Read(service, characteristic string) ([]byte, error) {
	ch, err := c.lookup(service, characteristic)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, maxReadLen)
	n, err := ch.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("ble: read %s: %w", characteristic, err)
	}
	return buf[:n], nil
}

func (c *tinyGoConnection) Disconnect() error {
	return c.device.Disconnect()
}

// connectionTimeout converts d to tinygo's 625µs units, saturating at the
// largest value the uint16 field holds (about 41s).
func connectionTimeout(d time.Duration) bluetooth.Duration {
	const unit = 625 * time.Microsecond
	if d <= 0 {
		return 0
	}
	if d/unit >= math.MaxUint16 {
		return bluetooth.Duration(math.MaxUint16)
	}
	return bluetooth.NewDuration(d)
}

package ble

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	goble "github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

const gobleDialTimeout = 20 * time.Second

// GoBLETransport drives the controller directly over HCI sockets with
// go-ble, bypassing BlueZ. It needs CAP_NET_ADMIN and an adapter that
// bluetoothd is not holding.
type GoBLETransport struct {
	id string

	mu      sync.Mutex
	adapter *gobleAdapter
}

// NewGoBLETransport creates a transport for the HCI adapter named id
// ("hci0", "hci1", ...). An empty id selects hci0.
func NewGoBLETransport(id string) *GoBLETransport {
	return &GoBLETransport{id: id}
}

func (t *GoBLETransport) Adapters() ([]Adapter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.adapter != nil {
		return []Adapter{t.adapter}, nil
	}

	opts := []goble.Option{goble.OptDialerTimeout(gobleDialTimeout)}
	id := t.id
	if id == "" {
		id = "hci0"
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, "hci"))
	if err != nil {
		return nil, fmt.Errorf("ble: invalid HCI adapter id %q", id)
	}
	opts = append(opts, goble.OptDeviceID(n))

	dev, err := linux.NewDevice(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrNoAdapters, id, err)
	}
	t.adapter = &gobleAdapter{id: id, device: dev}
	return []Adapter{t.adapter}, nil
}

// Close releases the HCI device.
func (t *GoBLETransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.adapter == nil {
		return nil
	}
	dev := t.adapter.device
	t.adapter = nil
	return dev.Stop()
}

var _ Transport = (*GoBLETransport)(nil)

type gobleAdapter struct {
	id     string
	device goble.Device
}

func (a *gobleAdapter) ID() string { return a.id }

func (a *gobleAdapter) Scan(ctx context.Context, duration time.Duration) ([]Device, error) {
	scanCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	var mu sync.Mutex
	var devices []Device
	seen := make(map[string]bool)

	slog.Info("[BLE] scanning", "adapter", a.id, "duration", duration)
	err := a.device.Scan(scanCtx, false, func(adv goble.Advertisement) {
		addr := strings.ToUpper(adv.Addr().String())
		mu.Lock()
		defer mu.Unlock()
		if seen[addr] {
			return
		}
		seen[addr] = true
		devices = append(devices, Device{
			Name:    adv.LocalName(),
			Address: addr,
			RSSI:    adv.RSSI(),
		})
	})
	if err != nil && scanCtx.Err() == nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}

	slog.Info("[BLE] scan complete", "adapter", a.id, "devices", len(devices))
	return devices, nil
}

func (a *gobleAdapter) Connect(ctx context.Context, device Device) (Connection, error) {
	client, err := a.device.Dial(ctx, goble.NewAddr(device.Address))
	if err != nil {
		return nil, fmt.Errorf("ble: connect to %s: %w", device.Address, err)
	}
	return &gobleConnection{
		client: client,
		chars:  make(map[Attribute]*goble.Characteristic),
	}, nil
}

var _ Adapter = (*gobleAdapter)(nil)

type gobleConnection struct {
	client goble.Client

	mu    sync.Mutex
	chars map[Attribute]*goble.Characteristic
}

func (c *gobleConnection) Attributes() ([]Attribute, error) {
	profile, err := c.client.DiscoverProfile(true)
	if err != nil {
		return nil, fmt.Errorf("ble: discover profile: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var attrs []Attribute
	for _, svc := range profile.Services {
		for _, ch := range svc.Characteristics {
			attr := Attribute{
				Service:        NormalizeUUID(svc.UUID.String()),
				Characteristic: NormalizeUUID(ch.UUID.String()),
			}
			c.chars[attr] = ch
			attrs = append(attrs, attr)
		}
	}
	return attrs, nil
}

func (c *gobleConnection) lookup(service, characteristic string) (*goble.Characteristic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.chars[Attribute{Service: NormalizeUUID(service), Characteristic: NormalizeUUID(characteristic)}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownAttribute, service, characteristic)
	}
	return ch, nil
}

func (c *gobleConnection) Write(service, characteristic string, data []byte) error {
	ch, err := c.lookup(service, characteristic)
	if err != nil {
		return err
	}
	if err := c.client.WriteCharacteristic(ch, data, false); err != nil {
		return fmt.Errorf("ble: write %s: %w", characteristic, err)
	}
	return nil
}

func (c *gobleConnection) Read(service, characteristic string) ([]byte, error) {
	ch, err := c.lookup(service, characteristic)
	if err != nil {
		return nil, err
	}
	value, err := c.client.ReadCharacteristic(ch)
	if err != nil {
		return nil, fmt.Errorf("ble: read %s: %w", characteristic, err)
	}
	return value, nil
}

func (c *gobleConnection) Disconnect() error {
	return c.client.CancelConnection()
}

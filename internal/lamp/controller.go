// Package lamp drives a single BLE smart lamp: it owns the connection
// (scan, select, connect, resolve characteristics), issues power,
// brightness and colour commands, and reads the lamp's state back.
//
// All operations on one Controller are serialised; the BLE link cannot
// carry concurrent GATT operations and the state machine has no
// representation for overlapping transitions.
package lamp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/lampctl/internal/ble"
	"github.com/chaz8081/lampctl/internal/ble/protocol"
)

// DefaultScanDuration is how long a scan listens for advertisements.
const DefaultScanDuration = 5 * time.Second

// Lamp GATT characteristic UUIDs.
const (
	DefaultLightUUID       = "932c32bd-0002-47a2-835a-a8d455b859dd"
	DefaultBrightnessUUID  = "932c32bd-0003-47a2-835a-a8d455b859dd"
	DefaultTemperatureUUID = "932c32bd-0004-47a2-835a-a8d455b859dd"
	DefaultColorUUID       = "932c32bd-0005-47a2-835a-a8d455b859dd"
)

// Characteristics names the lamp's GATT characteristics. Temperature is
// optional; the others must be present for a connection to count.
type Characteristics struct {
	Light       string `yaml:"light"`
	Brightness  string `yaml:"brightness"`
	Temperature string `yaml:"temperature"`
	Color       string `yaml:"color"`
}

// DefaultCharacteristics returns the UUIDs used by the stock lamp firmware.
func DefaultCharacteristics() Characteristics {
	return Characteristics{
		Light:       DefaultLightUUID,
		Brightness:  DefaultBrightnessUUID,
		Temperature: DefaultTemperatureUUID,
		Color:       DefaultColorUUID,
	}
}

func (c Characteristics) required() []string {
	return []string{c.Light, c.Brightness, c.Color}
}

// Options configures a Controller.
type Options struct {
	Address         string // device address to connect to when none is given
	Characteristics Characteristics
	ScanDuration    time.Duration
	Logger          *slog.Logger
}

// Controller owns the connection to one lamp.
type Controller struct {
	transport    ble.Transport
	chars        Characteristics
	scanDuration time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	state   ConnState
	target  string
	adapter ble.Adapter
	scanned []ble.Device // nil until the first scan
	device  ble.Device
	conn    ble.Connection
	index   map[string]string // normalised characteristic UUID -> service UUID
}

// NewController creates a disconnected controller. No BLE traffic happens
// until Scan or Connect is called.
func NewController(transport ble.Transport, opts Options) *Controller {
	if opts.ScanDuration <= 0 {
		opts.ScanDuration = DefaultScanDuration
	}
	defaults := DefaultCharacteristics()
	if opts.Characteristics.Light == "" {
		opts.Characteristics.Light = defaults.Light
	}
	if opts.Characteristics.Brightness == "" {
		opts.Characteristics.Brightness = defaults.Brightness
	}
	if opts.Characteristics.Color == "" {
		opts.Characteristics.Color = defaults.Color
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		transport:    transport,
		chars:        opts.Characteristics,
		scanDuration: opts.ScanDuration,
		logger:       opts.Logger,
		target:       opts.Address,
	}
}

// Status reports the connection state without touching the device.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{State: c.state, Address: c.target}
	if c.adapter != nil {
		st.Adapter = c.adapter.ID()
	}
	if c.state == Connected {
		st.Address = c.device.Address
		st.Name = c.device.Name
	}
	return st
}

// Scan performs a fresh scan and caches the result for later connects.
func (c *Controller) Scan(ctx context.Context) ([]ble.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.acquireAdapterLocked("scan"); err != nil {
		return nil, err
	}
	devices, err := c.scanLocked(ctx)
	if err != nil {
		return nil, newError("scan", ErrScanFailed, err)
	}
	return append([]ble.Device(nil), devices...), nil
}

// Connect connects to the device at address, or to the configured address
// when address is empty. It either fully succeeds (device selected,
// connected, characteristics resolved) or fails leaving the previous
// connection, if any, in place.
func (c *Controller) Connect(ctx context.Context, address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if address == "" {
		address = c.target
	}
	if address == "" {
		return newError("connect", ErrDeviceNotFound, errors.New("no device address configured"))
	}
	return c.connectLocked(ctx, "connect", address)
}

// EnsureConnected connects to the last used or configured address unless
// already connected.
func (c *Controller) EnsureConnected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Connected {
		return nil
	}
	if c.target == "" {
		return newError("connect", ErrDeviceNotFound, errors.New("no device address configured"))
	}
	return c.connectLocked(ctx, "connect", c.target)
}

// Disconnect drops the connection. A transport failure is logged and the
// controller still considers itself disconnected.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		return
	}
	c.releaseLocked()
	c.logger.Info("[LAMP] disconnected", "address", c.target)
}

// Close disconnects the lamp.
func (c *Controller) Close() error {
	c.Disconnect()
	return nil
}

// TurnOn switches the light on.
func (c *Controller) TurnOn(ctx context.Context) error {
	return c.command(ctx, "turn_on", c.chars.Light, protocol.EncodePower(true))
}

// TurnOff switches the light off.
func (c *Controller) TurnOff(ctx context.Context) error {
	return c.command(ctx, "turn_off", c.chars.Light, protocol.EncodePower(false))
}

// SetColor sets the colour from 0-255 channels. Only the ratio between
// channels reaches the lamp; see protocol.EncodeColor.
func (c *Controller) SetColor(ctx context.Context, r, g, b int) error {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			c.logger.Warn("[LAMP] invalid color", "r", r, "g", g, "b", b)
			return newError("set_color", ErrInvalidColor, fmt.Errorf("channel %d is outside 0-255", v))
		}
	}
	rgb := protocol.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
	return c.command(ctx, "set_color", c.chars.Color, protocol.EncodeColor(rgb))
}

// SetBrightness sets the brightness as a 0-100 percentage.
func (c *Controller) SetBrightness(ctx context.Context, pct int) error {
	if pct < 0 || pct > 100 {
		c.logger.Warn("[LAMP] invalid brightness", "brightness", pct)
		return newError("set_brightness", ErrInvalidBrightness, fmt.Errorf("%d is outside 0-100", pct))
	}
	return c.command(ctx, "set_brightness", c.chars.Brightness, protocol.EncodeBrightness(pct))
}

// ReadState reads and decodes the lamp's characteristics.
func (c *Controller) ReadState(_ context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		return State{}, newError("read_state", ErrNotConnected, nil)
	}

	st := State{Connected: true, Address: c.device.Address, Name: c.device.Name}

	light, err := c.readLocked(c.chars.Light)
	if err == nil {
		st.LightOn, err = protocol.DecodePower(light)
	}
	if err != nil {
		return State{}, newError("read_state", ErrReadFailed, fmt.Errorf("light: %w", err))
	}

	brightness, err := c.readLocked(c.chars.Brightness)
	if err == nil {
		st.Brightness, err = protocol.DecodeBrightness(brightness)
	}
	if err != nil {
		return State{}, newError("read_state", ErrReadFailed, fmt.Errorf("brightness: %w", err))
	}

	color, err := c.readLocked(c.chars.Color)
	if err == nil {
		st.Color, err = protocol.DecodeColor(color)
	}
	if err != nil {
		return State{}, newError("read_state", ErrReadFailed, fmt.Errorf("color: %w", err))
	}

	if c.hasCharacteristic(c.chars.Temperature) {
		temp, err := c.readLocked(c.chars.Temperature)
		if err != nil {
			return State{}, newError("read_state", ErrReadFailed, fmt.Errorf("temperature: %w", err))
		}
		if len(temp) > 0 {
			v := int(temp[0])
			st.Temperature = &v
		}
	}

	return st, nil
}

// GetState returns the decoded lamp state. It never fails: when the lamp
// is not connected, or any read fails, it returns State{Connected: false}.
func (c *Controller) GetState(ctx context.Context) State {
	st, err := c.ReadState(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotConnected) {
			c.logger.Warn("[LAMP] state read failed", "error", err)
		}
		return State{}
	}
	return st
}

// command writes one characteristic. A transport failure drops the
// connection and triggers exactly one reconnect; the write is not replayed
// and the failure is still reported.
func (c *Controller) command(ctx context.Context, op, characteristic string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		return newError(op, ErrNotConnected, nil)
	}

	service := c.index[ble.NormalizeUUID(characteristic)]
	c.logger.Info("[LAMP] write", "op", op, "data", fmt.Sprintf("% x", data))
	err := c.conn.Write(service, characteristic, data)
	if err == nil {
		return nil
	}

	c.logger.Error("[LAMP] write failed, reconnecting", "op", op, "error", err)
	c.releaseLocked()
	if rerr := c.connectLocked(ctx, "reconnect", c.target); rerr != nil {
		c.logger.Error("[LAMP] reconnect failed", "error", rerr)
	}
	return newError(op, ErrWriteFailed, err)
}

func (c *Controller) readLocked(characteristic string) ([]byte, error) {
	service := c.index[ble.NormalizeUUID(characteristic)]
	return c.conn.Read(service, characteristic)
}

func (c *Controller) hasCharacteristic(characteristic string) bool {
	if characteristic == "" {
		return false
	}
	_, ok := c.index[ble.NormalizeUUID(characteristic)]
	return ok
}

func (c *Controller) acquireAdapterLocked(op string) error {
	if c.adapter != nil {
		return nil
	}
	adapters, err := c.transport.Adapters()
	if err != nil {
		c.logger.Error("[LAMP] no adapter", "error", err)
		return newError(op, ErrNoAdapterFound, err)
	}
	if len(adapters) == 0 {
		c.logger.Error("[LAMP] no adapter")
		return newError(op, ErrNoAdapterFound, nil)
	}
	c.adapter = adapters[0]
	c.logger.Info("[LAMP] using adapter", "adapter", c.adapter.ID())
	return nil
}

func (c *Controller) scanLocked(ctx context.Context) ([]ble.Device, error) {
	// A caller that gave up while queued on the lock gets no radio time.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	devices, err := c.adapter.Scan(ctx, c.scanDuration)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []ble.Device{}
	}
	c.scanned = devices
	return devices, nil
}

func (c *Controller) connectLocked(ctx context.Context, op, address string) error {
	if err := c.acquireAdapterLocked(op); err != nil {
		return err
	}

	devices := c.scanned
	if devices == nil {
		var err error
		if devices, err = c.scanLocked(ctx); err != nil {
			return newError(op, ErrScanFailed, err)
		}
	}

	dev, ok := selectDevice(devices, address)
	if !ok {
		// Forget the scan so the caller's next attempt rescans.
		c.scanned = nil
		c.logger.Warn("[LAMP] device not found", "address", address, "scanned", len(devices))
		return newError(op, ErrDeviceNotFound, fmt.Errorf("%s not among %d scanned devices", address, len(devices)))
	}

	prev := c.state
	c.state = Connecting
	defer func() {
		if c.state == Connecting {
			c.state = prev
		}
	}()

	if err := ctx.Err(); err != nil {
		return newError(op, ErrConnectFailed, err)
	}
	conn, err := c.adapter.Connect(ctx, dev)
	if err != nil {
		c.logger.Error("[LAMP] connect failed", "address", address, "error", err)
		return newError(op, ErrConnectFailed, err)
	}

	index, err := c.buildIndex(conn)
	if err != nil {
		c.logger.Error("[LAMP] characteristic discovery failed", "address", address, "error", err)
		if derr := conn.Disconnect(); derr != nil {
			c.logger.Warn("[LAMP] disconnect after failed discovery", "error", derr)
		}
		return newError(op, ErrConnectFailed, err)
	}

	if c.conn != nil {
		c.releaseLocked()
	}
	c.conn = conn
	c.device = dev
	c.index = index
	c.target = address
	c.state = Connected
	c.logger.Info("[LAMP] connected", "address", address, "name", dev.Name, "characteristics", len(index))
	return nil
}

// buildIndex maps every characteristic to its service and checks that the
// lamp's required characteristics are all present.
func (c *Controller) buildIndex(conn ble.Connection) (map[string]string, error) {
	attrs, err := conn.Attributes()
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(attrs))
	for _, a := range attrs {
		index[ble.NormalizeUUID(a.Characteristic)] = ble.NormalizeUUID(a.Service)
	}
	for _, ch := range c.chars.required() {
		if _, ok := index[ble.NormalizeUUID(ch)]; !ok {
			return nil, fmt.Errorf("characteristic %s not found", ch)
		}
	}
	return index, nil
}

// releaseLocked drops the current connection. Disconnect errors are logged
// only.
func (c *Controller) releaseLocked() {
	if c.conn != nil {
		if err := c.conn.Disconnect(); err != nil {
			c.logger.Warn("[LAMP] disconnect failed", "error", err)
		}
	}
	c.conn = nil
	c.device = ble.Device{}
	c.index = nil
	c.state = Disconnected
}

func selectDevice(devices []ble.Device, address string) (ble.Device, bool) {
	for _, d := range devices {
		if d.Address == address {
			return d, true
		}
	}
	return ble.Device{}, false
}

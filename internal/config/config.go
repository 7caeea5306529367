package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/chaz8081/lampctl/internal/ble"
	"github.com/chaz8081/lampctl/internal/httpapi"
	"github.com/chaz8081/lampctl/internal/lamp"
	"github.com/chaz8081/lampctl/internal/logging"
	"github.com/chaz8081/lampctl/internal/schedule"
)

// Environment variables that override device.address. LAMPCTL_ADDRESS wins
// when both are set.
const (
	EnvAddress       = "LAMPCTL_ADDRESS"
	EnvLegacyAddress = "BLUETOOTH_ADDRESS"
)

// Config holds all application configuration.
type Config struct {
	Device    DeviceConfig     `yaml:"device"`
	BLE       BLEConfig        `yaml:"ble"`
	Store     StoreConfig      `yaml:"store"`
	HTTP      HTTPConfig       `yaml:"http"`
	MDNS      MDNSConfig       `yaml:"mdns"`
	Schedules []schedule.Entry `yaml:"schedules"`
	Log       logging.Config   `yaml:"log"`
}

// DeviceConfig identifies the lamp.
type DeviceConfig struct {
	Address         string               `yaml:"address"` // MAC on Linux, peripheral UUID on macOS
	ConnectOnStart  bool                 `yaml:"connect_on_start"`
	Characteristics lamp.Characteristics `yaml:"characteristics"`
}

// BLEConfig selects and tunes the Bluetooth transport.
type BLEConfig struct {
	Transport      string            `yaml:"transport"` // "tinygo" or "goble"
	AdapterID      string            `yaml:"adapter_id"`
	ScanDuration   time.Duration     `yaml:"scan_duration"`
	ConnectBreaker ble.BreakerConfig `yaml:"connect_breaker"`
}

// StoreConfig locates the mode store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "file" or "sqlite"
	Path   string `yaml:"path"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Listen    string                  `yaml:"listen"`
	RateLimit httpapi.RateLimitConfig `yaml:"rate_limit"`
}

// MDNSConfig holds zeroconf advertisement settings.
type MDNSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lampctl")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Characteristics: lamp.DefaultCharacteristics(),
		},
		BLE: BLEConfig{
			Transport:    "tinygo",
			ScanDuration: lamp.DefaultScanDuration,
			ConnectBreaker: ble.BreakerConfig{
				MaxFailures: 5,
				Timeout:     30 * time.Second,
			},
		},
		Store: StoreConfig{
			Driver: "file",
			Path:   filepath.Join(DefaultConfigDir(), "modes.yaml"),
		},
		HTTP: HTTPConfig{
			Listen: ":8080",
			RateLimit: httpapi.RateLimitConfig{
				RequestsPerMin: 120,
				Burst:          10,
			},
		},
		MDNS: MDNSConfig{
			Instance: "lampctl",
		},
		Log: logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in store.path and log.output is expanded to the
// user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Store.Path = expandTilde(cfg.Store.Path)
	cfg.Log.Output = expandTilde(cfg.Log.Output)

	return cfg, nil
}

// ApplyEnv overrides values from the environment and reports whether the
// device address came from it.
func (c *Config) ApplyEnv() bool {
	for _, key := range []string{EnvAddress, EnvLegacyAddress} {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			c.Device.Address = strings.TrimSpace(v)
			return true
		}
	}
	return false
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Device.Address != "" && !validAddress(c.Device.Address) {
		return fmt.Errorf("device.address must be a MAC address or peripheral UUID, got %q", c.Device.Address)
	}

	chars := map[string]string{
		"light":      c.Device.Characteristics.Light,
		"brightness": c.Device.Characteristics.Brightness,
		"color":      c.Device.Characteristics.Color,
	}
	for name, v := range chars {
		if v == "" {
			return fmt.Errorf("device.characteristics.%s must not be empty", name)
		}
	}
	chars["temperature"] = c.Device.Characteristics.Temperature
	for name, v := range chars {
		if v != "" && !validUUID(v) {
			return fmt.Errorf("device.characteristics.%s is not a UUID: %q", name, v)
		}
	}

	switch c.BLE.Transport {
	case "tinygo", "goble":
	default:
		return fmt.Errorf("ble.transport must be \"tinygo\" or \"goble\", got %q", c.BLE.Transport)
	}

	if c.BLE.ScanDuration <= 0 {
		return fmt.Errorf("ble.scan_duration must be > 0")
	}

	if c.BLE.ConnectBreaker.Timeout < 0 {
		return fmt.Errorf("ble.connect_breaker.timeout must not be negative")
	}

	switch c.Store.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store.driver must be \"file\" or \"sqlite\", got %q", c.Store.Driver)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	if c.HTTP.Listen == "" {
		return fmt.Errorf("http.listen must not be empty")
	}

	if c.HTTP.RateLimit.RequestsPerMin < 0 || c.HTTP.RateLimit.Burst < 0 {
		return fmt.Errorf("http.rate_limit values must not be negative")
	}

	if c.MDNS.Enabled && c.MDNS.Instance == "" {
		return fmt.Errorf("mdns.instance must not be empty when mdns is enabled")
	}

	if err := schedule.Validate(c.Schedules); err != nil {
		return err
	}

	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	return nil
}

const defaultHeader = `# lampctl configuration
# device.address may also be set with LAMPCTL_ADDRESS (or BLUETOOTH_ADDRESS).
# Run lamp-scan to find your lamp's address.

`

// WriteDefault writes the default config to DefaultConfigPath. If a file
// already exists it is left alone and WriteDefault returns ("", nil).
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking config file: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

func validAddress(s string) bool {
	if _, err := net.ParseMAC(s); err == nil {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// validUUID accepts 128-bit UUIDs and 16/32-bit short forms.
func validUUID(s string) bool {
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	if len(s) != 4 && len(s) != 8 {
		return false
	}
	for _, r := range strings.ToLower(s) {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

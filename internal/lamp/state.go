package lamp

import "github.com/chaz8081/lampctl/internal/ble/protocol"

// ConnState is the controller's view of its link to the lamp.
type ConnState int

const (
	Disconnected ConnState = iota
	// Connecting is held only while Connect runs under the controller
	// lock, so callers never observe it.
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

func (s ConnState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is a decoded snapshot of the lamp. When Connected is false every
// other field is zero.
type State struct {
	Connected  bool         `json:"connected"`
	Address    string       `json:"address,omitempty"`
	Name       string       `json:"name,omitempty"`
	LightOn    bool         `json:"light_on"`
	Brightness int          `json:"brightness"`
	Color      protocol.RGB `json:"color"`
	// Temperature is the raw first byte of the temperature characteristic,
	// present only when the lamp exposes one.
	Temperature *int `json:"temperature,omitempty"`
}

// Status summarises the connection without touching the device.
type Status struct {
	State   ConnState `json:"state"`
	Adapter string    `json:"adapter,omitempty"`
	Address string    `json:"address,omitempty"`
	Name    string    `json:"name,omitempty"`
}

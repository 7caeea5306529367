package lamp

import (
	"errors"
	"fmt"
)

// Error kinds returned by the Controller. Match them with errors.Is.
var (
	ErrNoAdapterFound    = errors.New("no bluetooth adapter found")
	ErrDeviceNotFound    = errors.New("device not found")
	ErrScanFailed        = errors.New("scan failed")
	ErrConnectFailed     = errors.New("connect failed")
	ErrNotConnected      = errors.New("lamp not connected")
	ErrWriteFailed       = errors.New("write failed")
	ErrReadFailed        = errors.New("read failed")
	ErrInvalidBrightness = errors.New("invalid brightness")
	ErrInvalidColor      = errors.New("invalid color")
)

var kindNames = map[error]string{
	ErrNoAdapterFound:    "NoAdapterFound",
	ErrDeviceNotFound:    "DeviceNotFound",
	ErrScanFailed:        "ScanFailed",
	ErrConnectFailed:     "ConnectFailed",
	ErrNotConnected:      "NotConnected",
	ErrWriteFailed:       "WriteFailed",
	ErrReadFailed:        "ReadFailed",
	ErrInvalidBrightness: "InvalidBrightness",
	ErrInvalidColor:      "InvalidColor",
}

// Error is the only error type that leaves the Controller. The transport
// error that caused it is kept for the message but is not unwrappable, so
// callers branch on Kind alone.
type Error struct {
	Op     string // controller operation, e.g. "set_color"
	Kind   error  // one of the Err* kinds above
	Detail string // cause, already rendered
}

func newError(op string, kind error, cause error) *Error {
	e := &Error{Op: op, Kind: kind}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("lamp: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("lamp: %s: %v: %s", e.Op, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Kind }

// KindOf returns the name of the error kind in err's chain ("NotConnected",
// "WriteFailed", ...), or "" if err carries none.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for kind, name := range kindNames {
		if errors.Is(err, kind) {
			return name
		}
	}
	return ""
}

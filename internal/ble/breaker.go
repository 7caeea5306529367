package ble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default connect breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
)

// ErrBreakerOpen is returned by Connect while the breaker is open.
var ErrBreakerOpen = errors.New("ble: connect circuit open")

// BreakerConfig configures the connect circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive connect failures before the
	// circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a probe is allowed.
	Timeout time.Duration `yaml:"timeout"`
}

// WithConnectBreaker wraps every adapter of inner so that repeated connect
// failures (lamp out of range or unpowered) fail fast instead of tying up
// the adapter for a full connect timeout each time. Scan is not guarded.
func WithConnectBreaker(inner Transport, cfg BreakerConfig, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}

	cb := gobreaker.NewCircuitBreaker[Connection](gobreaker.Settings{
		Name:        "ble-connect",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[BLE] circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return &breakerTransport{inner: inner, cb: cb}
}

type breakerTransport struct {
	inner Transport
	cb    *gobreaker.CircuitBreaker[Connection]
}

func (t *breakerTransport) Adapters() ([]Adapter, error) {
	adapters, err := t.inner.Adapters()
	if err != nil {
		return nil, err
	}
	wrapped := make([]Adapter, len(adapters))
	for i, a := range adapters {
		wrapped[i] = &breakerAdapter{Adapter: a, cb: t.cb}
	}
	return wrapped, nil
}

type breakerAdapter struct {
	Adapter
	cb *gobreaker.CircuitBreaker[Connection]
}

func (a *breakerAdapter) Connect(ctx context.Context, device Device) (Connection, error) {
	conn, err := a.cb.Execute(func() (Connection, error) {
		return a.Adapter.Connect(ctx, device)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrBreakerOpen, device.Address, err)
	}
	return conn, err
}

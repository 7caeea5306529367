package profile

import (
	"context"
	"fmt"
)

// UnsetAddress is the placeholder written into fresh mode files. It is
// reported as no address.
const UnsetAddress = "00:00:00:00:00:00"

// Store persists mode records and the remembered device address.
// Implementations are safe for concurrent use.
type Store interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (Record, error)
	Put(ctx context.Context, name string, rec Record) error
	Address(ctx context.Context) (string, error)
	SetAddress(ctx context.Context, address string) error
	Close() error
}

// Open opens the store for driver ("file" or "sqlite") at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func normalizeAddress(addr string) string {
	if addr == UnsetAddress {
		return ""
	}
	return addr
}

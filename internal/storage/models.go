package storage

import (
	"errors"
	"fmt"

	"dishuflix/internal/config"
)

// ErrClosed is returned by operations on a closed storage.
var ErrClosed = errors.New("storage closed")

// Storage is the durable key-value slot store behind the persisted user state.
// Values are opaque serialized blobs. Reads and writes complete before
// returning.
type Storage interface {
	// Get returns the value of key; ok is false when the slot was never written.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open returns the storage selected by cfg.Driver.
func Open(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteStorage(cfg.Path)
	case "badger":
		return NewBadgerStorage(cfg.Path)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

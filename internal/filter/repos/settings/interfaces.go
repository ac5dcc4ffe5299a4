package settings

import (
	"context"
	"encoding/json"
)

// Record is a partial settings record: storage key to JSON value.
type Record map[string]json.RawMessage

// StoreMeta is bookkeeping kept next to the settings.
type StoreMeta struct {
	Version     uint64 // incremented by every Set
	UpdatedUnix int64  // seconds since epoch of the last Set
}

// Store is the key-value settings capability.
// Get omits absent keys. Set writes every key of rec atomically.
type Store interface {
	Get(ctx context.Context, keys ...string) (Record, error)
	Set(ctx context.Context, rec Record) error
	Meta() StoreMeta
	Close() error
}

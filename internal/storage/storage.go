package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

var (
	// ErrInvalidConfig indicates required storage options are missing or
	// malformed. It is raised at construction, before any scraping work.
	ErrInvalidConfig = errors.New("invalid storage configuration")

	// ErrWrite indicates a connectivity, permission or write failure against
	// the backing store.
	ErrWrite = errors.New("storage write failed")
)

// Storage persists scraped records to one destination. Backends may buffer;
// Close flushes any buffered batch and releases the held connection, and
// must be called on every exit path.
type Storage interface {
	Write(ctx context.Context, rec *model.ScrapedRecord) error
	Close() error
}

// Constructor builds a Storage for one target. It validates the target's
// required options and fails fast with ErrInvalidConfig before the browser
// is ever launched.
type Constructor func(target model.StorageTarget, logger logging.Logger) (Storage, error)

var (
	mu       sync.RWMutex
	registry = map[model.StorageType]Constructor{}
)

// RegisterBackend registers a constructor for a storage type. Adding a
// backend is one implementation plus one Register call.
func RegisterBackend(t model.StorageType, ctor Constructor) {
	if t == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[t] = ctor
}

// New constructs the backend for a target. Unknown storage types fail with
// model.ErrUnknownStorageType.
func New(target model.StorageTarget, logger logging.Logger) (Storage, error) {
	mu.RLock()
	ctor, ok := registry[target.Type]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("%w: %q has no registered backend", model.ErrUnknownStorageType, target.Type)
	}
	st, err := ctor(target, logger)
	if err != nil {
		return nil, fmt.Errorf("construct %s backend: %w", target.Type, err)
	}
	return st, nil
}

// SupportedTypes returns the storage types with a registered backend.
func SupportedTypes() []model.StorageType {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]model.StorageType, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RegisterDefaultBackends registers the built-in backends. Call this from
// main() or test setup before using New.
func RegisterDefaultBackends() {
	RegisterBackend(model.StorageS3, newS3Storage)
	RegisterBackend(model.StorageFS, newFSStorage)
	RegisterBackend(model.StoragePostgres, newPostgresStorage)
	RegisterBackend(model.StorageSQLite, newSQLiteStorage)
}

// requireOptions returns ErrInvalidConfig naming every missing key.
func requireOptions(opts map[string]string, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(opts[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required option(s): %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}

// optionOr reads an option with a default.
func optionOr(opts map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(opts[key]); v != "" {
		return v
	}
	return fallback
}

package browser

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mkadhem/pricescout/internal/logging"
)

// BackendConstructor constructs a Session given the config and logger.
type BackendConstructor func(cfg Config, logger logging.Logger) (Session, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Name is lower-cased
// internally. Registering an existing name overwrites the previous
// constructor.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// NewSession constructs the configured browser backend. It returns an error
// if the named backend has not been registered.
func NewSession(cfg Config, logger logging.Logger) (Session, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "chromedp"
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("browser backend %q not registered: available backends=%v", backend, ListBackends())
	}

	sess, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct browser backend %q: %w", backend, err)
	}
	if sess == nil {
		return nil, errors.New("browser constructor returned nil")
	}
	return sess, nil
}

// ListBackends returns the list of registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

// RegisterDefaultBackends registers the chromedp backend. Call this early in
// main() to make it available to NewSession.
func RegisterDefaultBackends() {
	RegisterBackend("chromedp", func(cfg Config, logger logging.Logger) (Session, error) {
		return newChromedpSession(cfg, logger)
	})
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
)

// OpenFunc builds a state store from configuration.
type OpenFunc func(ctx context.Context, cfg config.StoreConfig) (datastore.StateStore, error)

var (
	backendMu       sync.RWMutex
	backendRegistry = make(map[string]OpenFunc)
)

// RegisterBackend registers an open function under a backend name.
// If a backend is already registered under the name, it panics to prevent accidental overrides.
func RegisterBackend(name string, fn OpenFunc) {
	backendMu.Lock()
	defer backendMu.Unlock()
	if _, exists := backendRegistry[name]; exists {
		panic(fmt.Sprintf("backend registry: backend %q already registered", name))
	}
	backendRegistry[name] = fn
}

// GetBackend returns the open function registered under name.
func GetBackend(name string) (OpenFunc, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	fn, ok := backendRegistry[name]
	if !ok {
		return nil, fmt.Errorf("backend registry: %w: %q", errors.ErrUnknownBackend, name)
	}
	return fn, nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open resolves cfg.Backend and opens it.
func Open(ctx context.Context, cfg config.StoreConfig) (datastore.StateStore, error) {
	fn, err := GetBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	store, err := fn(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	return store, nil
}

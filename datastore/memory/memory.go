/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process StateStore for tests and ephemeral deployments
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/registry"
)

// BackendName is the name this store registers under.
const BackendName = "memory"

func init() {
	registry.RegisterBackend(BackendName, func(ctx context.Context, cfg config.StoreConfig) (datastore.StateStore, error) {
		return New(), nil
	})
}

var _ datastore.StateStore = (*Store)(nil)

// Store keeps every space in one map guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	data       map[datastore.Key][]byte
	getError   error
	applyError error
	applyFunc  func(writes []datastore.Write) error
	applies    int
}

// New creates an empty Store
func New() *Store {
	return &Store{
		data: make(map[datastore.Key][]byte),
	}
}

// WithGetError makes Get operations return an error
func (m *Store) WithGetError(err error) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
	return m
}

// WithApplyError makes Apply operations return an error without writing anything
func (m *Store) WithApplyError(err error) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyError = err
	return m
}

// WithApplyFunc installs a hook that sees every batch before it is applied.
// A non-nil return aborts the batch.
func (m *Store) WithApplyFunc(f func(writes []datastore.Write) error) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyFunc = f
	return m
}

// Get returns a copy of the stored value
func (m *Store) Get(ctx context.Context, key datastore.Key) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getError != nil {
		return nil, false, m.getError
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Apply checks every condition, then writes every value. Nothing is written if any check fails.
func (m *Store) Apply(ctx context.Context, writes []datastore.Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.applyError != nil {
		return m.applyError
	}
	if m.applyFunc != nil {
		if err := m.applyFunc(writes); err != nil {
			return err
		}
	}

	for _, w := range writes {
		current, exists := m.data[w.Key]
		switch w.Condition {
		case datastore.MustNotExist:
			if exists {
				return errors.NewConditionFailedError("apply", w.Key.String()+" must not exist")
			}
		case datastore.MustEqual:
			if !exists || !bytes.Equal(current, w.Previous) {
				return errors.NewConditionFailedError("apply", w.Key.String()+" changed since read")
			}
		}
	}

	for _, w := range writes {
		m.data[w.Key] = bytes.Clone(w.Value)
	}
	m.applies++
	return nil
}

// Close is a no-op
func (m *Store) Close() error {
	return nil
}

// Helper methods for testing

// SetData directly sets the internal data map (for testing)
func (m *Store) SetData(data map[datastore.Key][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}

// Snapshot returns a deep copy of the internal data map (for testing)
func (m *Store) Snapshot() map[datastore.Key][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[datastore.Key][]byte, len(m.data))
	for k, v := range m.data {
		result[k] = bytes.Clone(v)
	}
	return result
}

// Count returns the number of stored keys
func (m *Store) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Applies returns the number of successfully applied batches
func (m *Store) Applies() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.applies
}

// Clear removes all data
func (m *Store) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[datastore.Key][]byte)
}

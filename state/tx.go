/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package state

import (
	"bytes"
	"context"
	"fmt"

	"github.com/suparena/entityregistry/datastore"
)

type observed struct {
	value []byte
	found bool
}

// Tx stages writes in memory on top of a StateStore. Reads observe staged writes
// first. Nothing reaches the store until Commit, which hands every staged write to
// a single Apply call.
//
// Every write to a key that was read from the store is guarded with the value that
// was observed, so a concurrent writer in another process fails the commit.
type Tx struct {
	store  datastore.StateStore
	reads  map[datastore.Key]observed
	staged map[datastore.Key][]byte
	fresh  map[datastore.Key]struct{}
	order  []datastore.Key
}

// Begin starts a transaction over store.
func Begin(store datastore.StateStore) *Tx {
	return &Tx{
		store:  store,
		reads:  make(map[datastore.Key]observed),
		staged: make(map[datastore.Key][]byte),
		fresh:  make(map[datastore.Key]struct{}),
	}
}

// Get returns the value for key as seen by this transaction.
func (tx *Tx) Get(ctx context.Context, key datastore.Key) ([]byte, bool, error) {
	if v, ok := tx.staged[key]; ok {
		return bytes.Clone(v), true, nil
	}
	if o, ok := tx.reads[key]; ok {
		return bytes.Clone(o.value), o.found, nil
	}
	v, found, err := tx.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	tx.reads[key] = observed{value: bytes.Clone(v), found: found}
	return v, found, nil
}

// Put stages an overwrite of key.
func (tx *Tx) Put(key datastore.Key, value []byte) {
	if _, ok := tx.staged[key]; !ok {
		tx.order = append(tx.order, key)
	}
	tx.staged[key] = bytes.Clone(value)
}

// PutNew stages a write to a key that must not exist yet.
func (tx *Tx) PutNew(key datastore.Key, value []byte) {
	tx.Put(key, value)
	tx.fresh[key] = struct{}{}
}

// Pending reports the number of staged writes.
func (tx *Tx) Pending() int {
	return len(tx.order)
}

// Writes returns the staged writes in staging order, with their guards.
func (tx *Tx) Writes() []datastore.Write {
	writes := make([]datastore.Write, 0, len(tx.order))
	for _, key := range tx.order {
		w := datastore.Write{Key: key, Value: bytes.Clone(tx.staged[key])}
		if o, ok := tx.reads[key]; ok {
			if o.found {
				w.Condition = datastore.MustEqual
				w.Previous = bytes.Clone(o.value)
			} else {
				w.Condition = datastore.MustNotExist
			}
		} else if _, ok := tx.fresh[key]; ok {
			w.Condition = datastore.MustNotExist
		}
		writes = append(writes, w)
	}
	return writes
}

// Commit applies every staged write atomically. An empty transaction is a no-op.
func (tx *Tx) Commit(ctx context.Context) error {
	if len(tx.order) == 0 {
		return nil
	}
	if err := tx.store.Apply(ctx, tx.Writes()); err != nil {
		return fmt.Errorf("failed to apply %d writes: %w", len(tx.order), err)
	}
	return nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package state

import (
	"context"
	"fmt"

	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/storagemodels"
)

// State groups the registry's stores over one transaction. Whoever holds a State
// holds exclusive write access to the stores for the lifetime of its Tx.
type State struct {
	Tx          *Tx
	Entities    RegistryStore
	Owners      OwnershipIndex
	Enumeration EnumerationIndex
	Sequencer   Sequencer
}

// New returns the stores bound to tx.
func New(tx *Tx) *State {
	return &State{
		Tx:          tx,
		Entities:    RegistryStore{tx: tx},
		Owners:      OwnershipIndex{tx: tx},
		Enumeration: EnumerationIndex{tx: tx},
		Sequencer:   Sequencer{tx: tx},
	}
}

// Open begins a transaction over store and returns its stores.
func Open(store datastore.StateStore) *State {
	return New(Begin(store))
}

// Sequencer owns the nonce used as entropy for identifier derivation.
type Sequencer struct {
	tx *Tx
}

// Current returns the nonce without changing it. An unset nonce is zero.
func (s Sequencer) Current(ctx context.Context) (uint64, error) {
	return readCounter(ctx, s.tx, NonceKey())
}

// CanAdvance reports whether Advance would succeed.
func (s Sequencer) CanAdvance(ctx context.Context) (bool, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	_, ok := checkedIncrement(cur)
	return ok, nil
}

// Advance increments the nonce by one. It never wraps.
func (s Sequencer) Advance(ctx context.Context) error {
	cur, err := s.Current(ctx)
	if err != nil {
		return err
	}
	next, ok := checkedIncrement(cur)
	if !ok {
		return errors.NewCounterOverflowError("nonce", cur)
	}
	s.tx.Put(NonceKey(), EncodeUint64(next))
	return nil
}

// RegistryStore maps identifiers to entity records.
type RegistryStore struct {
	tx *Tx
}

// Contains reports whether id is registered.
func (r RegistryStore) Contains(ctx context.Context, id storagemodels.Hash) (bool, error) {
	_, found, err := r.tx.Get(ctx, EntityKey(id))
	return found, err
}

// Insert stages the record for id. It refuses to overwrite an existing record.
func (r RegistryStore) Insert(ctx context.Context, id storagemodels.Hash, e storagemodels.Entity) error {
	exists, err := r.Contains(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return errors.NewDuplicateIdentifierError(id.String())
	}
	r.tx.Put(EntityKey(id), EncodeEntity(e))
	return nil
}

// Get returns the record for id.
func (r RegistryStore) Get(ctx context.Context, id storagemodels.Hash) (storagemodels.Entity, bool, error) {
	raw, found, err := r.tx.Get(ctx, EntityKey(id))
	if err != nil || !found {
		return storagemodels.Entity{}, false, err
	}
	e, err := DecodeEntity(raw)
	if err != nil {
		return storagemodels.Entity{}, false, fmt.Errorf("corrupt record for %s: %w", id, err)
	}
	return e, true, nil
}

// OwnershipIndex maps identifiers to owners and owners to their latest identifier.
type OwnershipIndex struct {
	tx *Tx
}

// SetOwner writes both directions. The owner's previous pointer, if any, is replaced.
func (o OwnershipIndex) SetOwner(id storagemodels.Hash, owner storagemodels.Identity) {
	o.tx.Put(OwnerKey(id), owner.Bytes())
	o.tx.Put(OwnedEntityKey(owner), id.Bytes())
}

// OwnerOf returns the owner of id.
func (o OwnershipIndex) OwnerOf(ctx context.Context, id storagemodels.Hash) (storagemodels.Identity, bool, error) {
	raw, found, err := o.tx.Get(ctx, OwnerKey(id))
	if err != nil || !found {
		return "", false, err
	}
	return storagemodels.Identity(raw), true, nil
}

// EntityOf returns the identifier most recently created by owner.
func (o OwnershipIndex) EntityOf(ctx context.Context, owner storagemodels.Identity) (storagemodels.Hash, bool, error) {
	raw, found, err := o.tx.Get(ctx, OwnedEntityKey(owner))
	if err != nil || !found {
		return storagemodels.Hash{}, false, err
	}
	id, err := storagemodels.HashFromBytes(raw)
	if err != nil {
		return storagemodels.Hash{}, false, fmt.Errorf("corrupt owned entity for %q: %w", owner, err)
	}
	return id, true, nil
}

// EnumerationIndex is a densely packed array of identifiers with a reverse lookup.
type EnumerationIndex struct {
	tx *Tx
}

// Count returns the number of populated positions.
func (e EnumerationIndex) Count(ctx context.Context) (uint64, error) {
	return readCounter(ctx, e.tx, CountKey())
}

// CanAppend reports whether one more identifier fits.
func (e EnumerationIndex) CanAppend(ctx context.Context) (bool, error) {
	count, err := e.Count(ctx)
	if err != nil {
		return false, err
	}
	_, ok := checkedIncrement(count)
	return ok, nil
}

// Append places id at position count. On overflow nothing is staged.
func (e EnumerationIndex) Append(ctx context.Context, id storagemodels.Hash) error {
	count, err := e.Count(ctx)
	if err != nil {
		return err
	}
	next, ok := checkedIncrement(count)
	if !ok {
		return errors.NewCounterOverflowError("count", count)
	}
	e.tx.PutNew(ArrayKey(count), id.Bytes())
	e.tx.PutNew(IndexKey(id), EncodeUint64(count))
	e.tx.Put(CountKey(), EncodeUint64(next))
	return nil
}

// At returns the identifier at position pos.
func (e EnumerationIndex) At(ctx context.Context, pos uint64) (storagemodels.Hash, bool, error) {
	raw, found, err := e.tx.Get(ctx, ArrayKey(pos))
	if err != nil || !found {
		return storagemodels.Hash{}, false, err
	}
	id, err := storagemodels.HashFromBytes(raw)
	if err != nil {
		return storagemodels.Hash{}, false, fmt.Errorf("corrupt array slot %d: %w", pos, err)
	}
	return id, true, nil
}

// IndexOf returns the position of id.
func (e EnumerationIndex) IndexOf(ctx context.Context, id storagemodels.Hash) (uint64, bool, error) {
	raw, found, err := e.tx.Get(ctx, IndexKey(id))
	if err != nil || !found {
		return 0, false, err
	}
	pos, err := DecodeUint64(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt index for %s: %w", id, err)
	}
	return pos, true, nil
}

func readCounter(ctx context.Context, tx *Tx, key datastore.Key) (uint64, error) {
	raw, found, err := tx.Get(ctx, key)
	if err != nil || !found {
		return 0, err
	}
	v, err := DecodeUint64(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s: %w", key, err)
	}
	return v, nil
}

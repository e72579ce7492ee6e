/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityregistry

import (
	"context"
	"strconv"
	"sync"

	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/identifier"
	"github.com/suparena/entityregistry/state"
	"github.com/suparena/entityregistry/storagemodels"
)

// Registry creates entities and answers point lookups over a StateStore.
// Create is the only mutating operation; calls are applied one at a time.
type Registry struct {
	mu        sync.Mutex
	store     datastore.StateStore
	generator identifier.Generator
}

// Option configures a Registry.
type Option func(*Registry)

// WithGenerator replaces the default blake2b-256 identifier generator.
func WithGenerator(g identifier.Generator) Option {
	return func(r *Registry) {
		if g != nil {
			r.generator = g
		}
	}
}

// New returns a Registry over store.
func New(store datastore.StateStore, opts ...Option) *Registry {
	r := &Registry{
		store:     store,
		generator: identifier.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Registration describes a committed creation.
type Registration struct {
	ID    storagemodels.Hash
	Owner storagemodels.Identity
	// Index is the enumeration position assigned to ID.
	Index uint64
	// Count is the enumeration count after the creation.
	Count uint64
}

// Create registers a new entity owned by caller and returns its identifier.
func (r *Registry) Create(ctx context.Context, caller storagemodels.Identity, seed []byte) (storagemodels.Hash, error) {
	reg, err := r.Register(ctx, caller, seed)
	if err != nil {
		return storagemodels.Hash{}, err
	}
	return reg.ID, nil
}

// Register is Create returning everything the commit established.
//
// Every check runs before any write is staged; the staged writes are then committed
// with one Apply. A returned error therefore means no state changed.
func (r *Registry) Register(ctx context.Context, caller storagemodels.Identity, seed []byte) (Registration, error) {
	if caller == "" {
		return Registration{}, errors.NewValidationError("caller", "must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := state.Open(r.store)

	count, err := s.Enumeration.Count(ctx)
	if err != nil {
		return Registration{}, err
	}
	if ok, err := s.Enumeration.CanAppend(ctx); err != nil {
		return Registration{}, err
	} else if !ok {
		return Registration{}, errors.NewCounterOverflowError("count", count)
	}

	nonce, err := s.Sequencer.Current(ctx)
	if err != nil {
		return Registration{}, err
	}
	if ok, err := s.Sequencer.CanAdvance(ctx); err != nil {
		return Registration{}, err
	} else if !ok {
		return Registration{}, errors.NewCounterOverflowError("nonce", nonce)
	}

	id := r.generator.Generate(seed, caller, nonce)

	exists, err := s.Entities.Contains(ctx, id)
	if err != nil {
		return Registration{}, err
	}
	if exists {
		return Registration{}, errors.NewDuplicateIdentifierError(id.String())
	}

	// Verified; stage the writes.
	if err := s.Entities.Insert(ctx, id, storagemodels.NewEntity(id)); err != nil {
		return Registration{}, err
	}
	s.Owners.SetOwner(id, caller)
	if err := s.Enumeration.Append(ctx, id); err != nil {
		return Registration{}, err
	}
	if err := s.Sequencer.Advance(ctx); err != nil {
		return Registration{}, err
	}

	if err := s.Tx.Commit(ctx); err != nil {
		return Registration{}, err
	}
	return Registration{ID: id, Owner: caller, Index: count, Count: count + 1}, nil
}

// Entity returns the record registered under id.
func (r *Registry) Entity(ctx context.Context, id storagemodels.Hash) (storagemodels.Entity, error) {
	e, found, err := state.Open(r.store).Entities.Get(ctx, id)
	if err != nil {
		return storagemodels.Entity{}, err
	}
	if !found {
		return storagemodels.Entity{}, errors.NewNotFoundError(string(datastore.SpaceEntities), id.String())
	}
	return e, nil
}

// OwnerOf returns the owner of id.
func (r *Registry) OwnerOf(ctx context.Context, id storagemodels.Hash) (storagemodels.Identity, error) {
	owner, found, err := state.Open(r.store).Owners.OwnerOf(ctx, id)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.NewNotFoundError(string(datastore.SpaceEntityOwner), id.String())
	}
	return owner, nil
}

// EntityOf returns the identifier most recently created by owner.
func (r *Registry) EntityOf(ctx context.Context, owner storagemodels.Identity) (storagemodels.Hash, error) {
	id, found, err := state.Open(r.store).Owners.EntityOf(ctx, owner)
	if err != nil {
		return storagemodels.Hash{}, err
	}
	if !found {
		return storagemodels.Hash{}, errors.NewNotFoundError(string(datastore.SpaceOwnedEntity), string(owner))
	}
	return id, nil
}

// EntityByIndex returns the identifier at enumeration position pos.
func (r *Registry) EntityByIndex(ctx context.Context, pos uint64) (storagemodels.Hash, error) {
	id, found, err := state.Open(r.store).Enumeration.At(ctx, pos)
	if err != nil {
		return storagemodels.Hash{}, err
	}
	if !found {
		return storagemodels.Hash{}, errors.NewNotFoundError(string(datastore.SpaceEntitiesArray), strconv.FormatUint(pos, 10))
	}
	return id, nil
}

// IndexOf returns the enumeration position of id.
func (r *Registry) IndexOf(ctx context.Context, id storagemodels.Hash) (uint64, error) {
	pos, found, err := state.Open(r.store).Enumeration.IndexOf(ctx, id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.NewNotFoundError(string(datastore.SpaceEntitiesIndex), id.String())
	}
	return pos, nil
}

// Count returns the number of registered entities.
func (r *Registry) Count(ctx context.Context) (uint64, error) {
	return state.Open(r.store).Enumeration.Count(ctx)
}

// Nonce returns the current sequencer value.
func (r *Registry) Nonce(ctx context.Context) (uint64, error) {
	return state.Open(r.store).Sequencer.Current(ctx)
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package state_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/datastore/memory"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/state"
	"github.com/suparena/entityregistry/storagemodels"
)

func TestCodec(t *testing.T) {
	t.Run("Uint64", func(t *testing.T) {
		raw := state.EncodeUint64(0x0102030405060708)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, raw)
		v, err := state.DecodeUint64(raw)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x0102030405060708), v)

		_, err = state.DecodeUint64([]byte{1})
		assert.Error(t, err)
	})

	t.Run("Entity", func(t *testing.T) {
		e := storagemodels.Entity{ID: storagemodels.Hash{1}, DNA: storagemodels.Hash{2}, Price: 3, Generation: 4}
		raw := state.EncodeEntity(e)
		assert.Len(t, raw, 80)
		got, err := state.DecodeEntity(raw)
		require.NoError(t, err)
		assert.Equal(t, e, got)

		_, err = state.DecodeEntity(raw[:79])
		assert.Error(t, err)
	})

	t.Run("ArrayKeysAreDistinctPerPosition", func(t *testing.T) {
		assert.NotEqual(t, state.ArrayKey(1), state.ArrayKey(256))
		assert.Equal(t, datastore.SpaceEntitiesArray, state.ArrayKey(0).Space)
	})
}

func TestTxStagesUntilCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tx := state.Begin(store)

	tx.Put(state.CountKey(), state.EncodeUint64(5))
	got, found, err := tx.Get(ctx, state.CountKey())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, state.EncodeUint64(5), got)

	assert.Zero(t, store.Count(), "nothing may reach the store before commit")
	assert.Equal(t, 1, tx.Pending())

	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 1, store.Count())
}

func TestTxEmptyCommitIsNoop(t *testing.T) {
	store := memory.New()
	require.NoError(t, state.Begin(store).Commit(context.Background()))
	assert.Zero(t, store.Applies())
}

func TestTxGuardsDeriveFromReads(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Apply(ctx, []datastore.Write{{Key: state.NonceKey(), Value: state.EncodeUint64(1)}}))

	tx := state.Begin(store)
	_, _, err := tx.Get(ctx, state.NonceKey())
	require.NoError(t, err)
	_, _, err = tx.Get(ctx, state.CountKey())
	require.NoError(t, err)

	tx.Put(state.NonceKey(), state.EncodeUint64(2))
	tx.Put(state.CountKey(), state.EncodeUint64(1))
	tx.PutNew(state.ArrayKey(0), []byte("x"))
	tx.Put(state.OwnedEntityKey("alice"), []byte("y"))

	writes := tx.Writes()
	require.Len(t, writes, 4)
	assert.Equal(t, datastore.MustEqual, writes[0].Condition)
	assert.Equal(t, state.EncodeUint64(1), writes[0].Previous)
	assert.Equal(t, datastore.MustNotExist, writes[1].Condition)
	assert.Equal(t, datastore.MustNotExist, writes[2].Condition)
	assert.Equal(t, datastore.Unconditional, writes[3].Condition)
}

func TestTxConflictWithConcurrentWriter(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	s := state.Open(store)
	require.NoError(t, s.Sequencer.Advance(ctx))

	// Another writer advances the nonce first.
	other := state.Open(store)
	require.NoError(t, other.Sequencer.Advance(ctx))
	require.NoError(t, other.Tx.Commit(ctx))

	err := s.Tx.Commit(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsConditionFailed(err))

	nonce, err := state.Open(store).Sequencer.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestSequencer(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := state.Open(store)

	cur, err := s.Sequencer.Current(ctx)
	require.NoError(t, err)
	assert.Zero(t, cur)

	require.NoError(t, s.Sequencer.Advance(ctx))
	require.NoError(t, s.Sequencer.Advance(ctx))
	cur, err = s.Sequencer.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cur)

	require.NoError(t, store.Apply(ctx, []datastore.Write{{Key: state.NonceKey(), Value: state.EncodeUint64(math.MaxUint64)}}))
	full := state.Open(store)
	ok, err := full.Sequencer.CanAdvance(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	err = full.Sequencer.Advance(ctx)
	assert.True(t, errors.IsCounterOverflow(err))
	assert.Zero(t, full.Tx.Pending())
}

func TestRegistryStore(t *testing.T) {
	ctx := context.Background()
	s := state.Open(memory.New())
	id := storagemodels.Hash{7}

	found, err := s.Entities.Contains(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Entities.Insert(ctx, id, storagemodels.NewEntity(id)))
	e, found, err := s.Entities.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, e.DNA)

	err = s.Entities.Insert(ctx, id, storagemodels.NewEntity(id))
	assert.True(t, errors.IsDuplicateIdentifier(err))
}

func TestOwnershipIndexSingleSlot(t *testing.T) {
	ctx := context.Background()
	s := state.Open(memory.New())
	first, second := storagemodels.Hash{1}, storagemodels.Hash{2}

	s.Owners.SetOwner(first, "alice")
	s.Owners.SetOwner(second, "alice")

	latest, found, err := s.Owners.EntityOf(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, second, latest)

	owner, found, err := s.Owners.OwnerOf(ctx, first)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, storagemodels.Identity("alice"), owner)

	_, found, err = s.Owners.EntityOf(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEnumerationIndex(t *testing.T) {
	ctx := context.Background()
	s := state.Open(memory.New())
	ids := []storagemodels.Hash{{1}, {2}, {3}}

	for _, id := range ids {
		require.NoError(t, s.Enumeration.Append(ctx, id))
	}
	count, err := s.Enumeration.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	for i, id := range ids {
		at, found, err := s.Enumeration.At(ctx, uint64(i))
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, id, at)

		pos, found, err := s.Enumeration.IndexOf(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, uint64(i), pos)
	}

	_, found, err := s.Enumeration.At(ctx, 3)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEnumerationAppendOverflowWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Apply(ctx, []datastore.Write{{Key: state.CountKey(), Value: state.EncodeUint64(math.MaxUint64)}}))

	s := state.Open(store)
	ok, err := s.Enumeration.CanAppend(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.Enumeration.Append(ctx, storagemodels.Hash{1})
	var overflow *errors.CounterOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, "count", overflow.Counter)
	assert.Equal(t, uint64(math.MaxUint64), overflow.Value)
	assert.Zero(t, s.Tx.Pending())
}

func TestCorruptValuesSurfaceErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Apply(ctx, []datastore.Write{{Key: state.CountKey(), Value: []byte{1, 2}}}))

	_, err := state.Open(store).Enumeration.Count(ctx)
	assert.Error(t, err)
}

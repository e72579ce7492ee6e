/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package storetest holds the behavior every datastore.StateStore backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
)

// Factory returns an empty store. The suite closes it after each test.
type Factory func(t *testing.T) datastore.StateStore

// Suite exercises Get/Apply semantics against a fresh store per test.
type Suite struct {
	suite.Suite
	New   Factory
	store datastore.StateStore
	ctx   context.Context
}

// Run executes the conformance suite.
func Run(t *testing.T, factory Factory) {
	suite.Run(t, &Suite{New: factory})
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.New(s.T())
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.NoError(s.store.Close())
	}
}

var (
	entityKey = datastore.Key{Space: datastore.SpaceEntities, ID: "\x00\xff\x10"}
	countKey  = datastore.ScalarKey(datastore.SpaceEntitiesCount)
	ownerKey  = datastore.Key{Space: datastore.SpaceOwnedEntity, ID: "alice"}
)

func (s *Suite) TestMissingKey() {
	_, found, err := s.store.Get(s.ctx, entityKey)
	s.Require().NoError(err)
	s.False(found)
}

func (s *Suite) TestEmptyBatch() {
	s.NoError(s.store.Apply(s.ctx, nil))
}

func (s *Suite) TestApplyThenGet() {
	s.Require().NoError(s.store.Apply(s.ctx, []datastore.Write{
		{Key: entityKey, Value: []byte("entity"), Condition: datastore.MustNotExist},
		{Key: countKey, Value: []byte{0, 0, 0, 0, 0, 0, 0, 1}},
		{Key: ownerKey, Value: []byte{0xaa}},
	}))

	for key, want := range map[datastore.Key][]byte{
		entityKey: []byte("entity"),
		countKey:  {0, 0, 0, 0, 0, 0, 0, 1},
		ownerKey:  {0xaa},
	} {
		got, found, err := s.store.Get(s.ctx, key)
		s.Require().NoError(err)
		s.Require().True(found, key.String())
		s.Equal(want, got, key.String())
	}
}

func (s *Suite) TestSpacesAreDisjoint() {
	other := datastore.Key{Space: datastore.SpaceEntityOwner, ID: entityKey.ID}
	s.Require().NoError(s.store.Apply(s.ctx, []datastore.Write{{Key: entityKey, Value: []byte("a")}}))

	_, found, err := s.store.Get(s.ctx, other)
	s.Require().NoError(err)
	s.False(found)
}

func (s *Suite) TestUnconditionalOverwrites() {
	s.Require().NoError(s.store.Apply(s.ctx, []datastore.Write{{Key: ownerKey, Value: []byte{1}}}))
	s.Require().NoError(s.store.Apply(s.ctx, []datastore.Write{{Key: ownerKey, Value: []byte{2}}}))

	got, _, err := s.store.Get(s.ctx, ownerKey)
	s.Require().NoError(err)
	s.Equal([]byte{2}, got)
}

func (s *Suite) TestMustNotExistFailsWholeBatch() {
	s.Require().NoError(s.store.Apply(s.ctx, []datastore.Write{{Key: entityKey, Value: []byte("first")}}))

	err := s.store.Apply(s.ctx, []datastore.Write{
		{Key: countKey, Value: []byte{1}},
		{Key: entityKey, Value: []byte("second"), Condition: datastore.MustNotExist},
	})
	s.Require().Error(err)
	s.True(errors.IsConditionFailed(err), "got %v", err)

	_, found, err := s.store.Get(s.ctx, countKey)
	s.Require().NoError(err)
	s.False(found, "no write of a failed batch may become visible")

	got, _, err := s.store.Get(s.ctx, entityKey)
	s.Require().NoError(err)
	s.Equal([]byte("first"), got)
}

func (s *Suite) TestMustEqual() {
	s.Require().NoError(s.store.Apply(s.ctx, []datastore.Write{{Key: countKey, Value: []byte{1}}}))

	err := s.store.Apply(s.ctx, []datastore.Write{{Key: countKey, Value: []byte{2}, Condition: datastore.MustEqual, Previous: []byte{5}}})
	s.True(errors.IsConditionFailed(err), "got %v", err)

	s.Require().NoError(s.store.Apply(s.ctx, []datastore.Write{{Key: countKey, Value: []byte{2}, Condition: datastore.MustEqual, Previous: []byte{1}}}))
	got, _, err := s.store.Get(s.ctx, countKey)
	s.Require().NoError(err)
	s.Equal([]byte{2}, got)
}

func (s *Suite) TestMustEqualOnMissingKeyFails() {
	err := s.store.Apply(s.ctx, []datastore.Write{{Key: countKey, Value: []byte{2}, Condition: datastore.MustEqual, Previous: []byte{1}}})
	s.True(errors.IsConditionFailed(err), "got %v", err)
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"encoding/hex"
)

// Space names one logical map inside the state store.
type Space string

const (
	// SpaceEntities maps identifier -> entity record.
	SpaceEntities Space = "Entities"
	// SpaceEntityOwner maps identifier -> owner.
	SpaceEntityOwner Space = "EntityOwner"
	// SpaceOwnedEntity maps owner -> identifier (single slot).
	SpaceOwnedEntity Space = "OwnedEntity"
	// SpaceEntitiesArray maps enumeration position -> identifier.
	SpaceEntitiesArray Space = "AllEntitiesArray"
	// SpaceEntitiesIndex maps identifier -> enumeration position.
	SpaceEntitiesIndex Space = "AllEntitiesIndex"
	// SpaceEntitiesCount holds the enumeration count.
	SpaceEntitiesCount Space = "AllEntitiesCount"
	// SpaceNonce holds the sequencer value.
	SpaceNonce Space = "Nonce"
)

// Spaces lists every space in a stable order.
var Spaces = []Space{
	SpaceEntities,
	SpaceEntityOwner,
	SpaceOwnedEntity,
	SpaceEntitiesArray,
	SpaceEntitiesIndex,
	SpaceEntitiesCount,
	SpaceNonce,
}

// Key addresses a single value. ID holds raw bytes; it is empty for scalar spaces.
type Key struct {
	Space Space
	ID    string
}

// ScalarKey returns the key of a single-valued space.
func ScalarKey(space Space) Key {
	return Key{Space: space}
}

// HexID returns ID hex-encoded, for backends that need printable keys.
func (k Key) HexID() string {
	return hex.EncodeToString([]byte(k.ID))
}

func (k Key) String() string {
	if k.ID == "" {
		return string(k.Space)
	}
	return string(k.Space) + "/" + k.HexID()
}

// Condition guards a write against concurrent writers.
type Condition int

const (
	// Unconditional overwrites whatever is stored.
	Unconditional Condition = iota
	// MustNotExist fails the batch if the key is already present.
	MustNotExist
	// MustEqual fails the batch unless the stored value equals Write.Previous.
	MustEqual
)

func (c Condition) String() string {
	switch c {
	case MustNotExist:
		return "must-not-exist"
	case MustEqual:
		return "must-equal"
	default:
		return "unconditional"
	}
}

// Write is one staged mutation.
type Write struct {
	Key       Key
	Value     []byte
	Condition Condition
	Previous  []byte
}

// StateStore is the transactional key/value store backing the registry.
//
// Apply must be all-or-nothing: either every write becomes visible or none does.
// A write whose Condition does not hold fails the whole batch with an error matching
// errors.ErrConditionFailed.
type StateStore interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)

	Apply(ctx context.Context, writes []Write) error

	Close() error
}

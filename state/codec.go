/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package state

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/storagemodels"
)

// entitySize is id(32) + dna(32) + price(8) + generation(8).
const entitySize = storagemodels.HashSize*2 + 16

// EncodeUint64 returns the big-endian form of v.
func EncodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// DecodeUint64 parses an 8-byte big-endian value.
func DecodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("uint64 value must be 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// EncodeEntity returns the fixed-width record layout.
func EncodeEntity(e storagemodels.Entity) []byte {
	b := make([]byte, entitySize)
	copy(b[0:32], e.ID[:])
	copy(b[32:64], e.DNA[:])
	binary.BigEndian.PutUint64(b[64:72], uint64(e.Price))
	binary.BigEndian.PutUint64(b[72:80], e.Generation)
	return b
}

// DecodeEntity parses a record written by EncodeEntity.
func DecodeEntity(b []byte) (storagemodels.Entity, error) {
	var e storagemodels.Entity
	if len(b) != entitySize {
		return e, fmt.Errorf("entity record must be %d bytes, got %d", entitySize, len(b))
	}
	copy(e.ID[:], b[0:32])
	copy(e.DNA[:], b[32:64])
	e.Price = storagemodels.Balance(binary.BigEndian.Uint64(b[64:72]))
	e.Generation = binary.BigEndian.Uint64(b[72:80])
	return e, nil
}

// EntityKey addresses the record of id.
func EntityKey(id storagemodels.Hash) datastore.Key {
	return datastore.Key{Space: datastore.SpaceEntities, ID: string(id[:])}
}

// OwnerKey addresses the owner of id.
func OwnerKey(id storagemodels.Hash) datastore.Key {
	return datastore.Key{Space: datastore.SpaceEntityOwner, ID: string(id[:])}
}

// OwnedEntityKey addresses the single entity slot of owner.
func OwnedEntityKey(owner storagemodels.Identity) datastore.Key {
	return datastore.Key{Space: datastore.SpaceOwnedEntity, ID: string(owner)}
}

// ArrayKey addresses enumeration position pos.
func ArrayKey(pos uint64) datastore.Key {
	return datastore.Key{Space: datastore.SpaceEntitiesArray, ID: string(EncodeUint64(pos))}
}

// IndexKey addresses the enumeration position of id.
func IndexKey(id storagemodels.Hash) datastore.Key {
	return datastore.Key{Space: datastore.SpaceEntitiesIndex, ID: string(id[:])}
}

// CountKey addresses the enumeration count.
func CountKey() datastore.Key {
	return datastore.ScalarKey(datastore.SpaceEntitiesCount)
}

// NonceKey addresses the sequencer value.
func NonceKey() datastore.Key {
	return datastore.ScalarKey(datastore.SpaceNonce)
}

func checkedIncrement(v uint64) (uint64, bool) {
	sum, carry := bits.Add64(v, 1, 0)
	return sum, carry == 0
}

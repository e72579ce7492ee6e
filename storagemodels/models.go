/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HashSize is the width in bytes of every identifier.
const HashSize = 32

// Hash is a fixed-width digest naming an entity.
type Hash [HashSize]byte

// String returns the 0x-prefixed lowercase hex form.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Bytes returns a copy of the digest.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash parses a hex digest, with or without the 0x prefix.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(raw) != HashSize*2 {
		return h, fmt.Errorf("hash must be %d hex characters, got %d", HashSize*2, len(raw))
	}
	if _, err := hex.Decode(h[:], []byte(raw)); err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return h, nil
}

// HashFromBytes copies b into a Hash. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Identity is an authenticated caller, e.g. an account id.
type Identity string

// Bytes returns the raw identity bytes used for hashing and storage.
func (i Identity) Bytes() []byte {
	return []byte(i)
}

// Balance is the price unit carried by an entity.
type Balance uint64

// Entity is an immutable registered record.
type Entity struct {
	// ID is the primary key.
	ID Hash `json:"id"`
	// DNA equals ID at creation time.
	DNA Hash `json:"dna"`
	// Price is zero at creation; no operation changes it.
	Price Balance `json:"price"`
	// Generation is zero for every entity created by the registry.
	Generation uint64 `json:"generation"`
}

// NewEntity returns the record written for a freshly derived identifier.
func NewEntity(id Hash) Entity {
	return Entity{
		ID:  id,
		DNA: id,
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identifier

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/storagemodels"
)

// Supported hash algorithms.
const (
	Blake2b256 = "blake2b-256"
	SHA3256    = "sha3-256"
	Keccak256  = "keccak-256"
	SHA256     = "sha256"
)

// Generator derives a candidate identifier. It must be pure: equal inputs yield equal output.
// Uniqueness is not its concern; the registry checks for collisions.
type Generator interface {
	Generate(seed []byte, caller storagemodels.Identity, nonce uint64) storagemodels.Hash
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(seed []byte, caller storagemodels.Identity, nonce uint64) storagemodels.Hash

// Generate calls f.
func (f GeneratorFunc) Generate(seed []byte, caller storagemodels.Identity, nonce uint64) storagemodels.Hash {
	return f(seed, caller, nonce)
}

// Hasher is a fixed-width cryptographic hash.
type Hasher func(data []byte) storagemodels.Hash

var hashers = map[string]Hasher{
	Blake2b256: func(data []byte) storagemodels.Hash {
		return blake2b.Sum256(data)
	},
	SHA3256: func(data []byte) storagemodels.Hash {
		return sha3.Sum256(data)
	},
	Keccak256: func(data []byte) storagemodels.Hash {
		var h storagemodels.Hash
		d := sha3.NewLegacyKeccak256()
		d.Write(data)
		copy(h[:], d.Sum(nil))
		return h
	},
	SHA256: func(data []byte) storagemodels.Hash {
		return sha256.Sum256(data)
	},
}

// Algorithms lists the supported algorithm names.
func Algorithms() []string {
	names := make([]string, 0, len(hashers))
	for name := range hashers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HashGenerator hashes the encoded (seed, caller, nonce) triple.
type HashGenerator struct {
	algorithm string
	hash      Hasher
}

// New returns a generator over the named algorithm.
func New(algorithm string) (*HashGenerator, error) {
	h, ok := hashers[algorithm]
	if !ok {
		return nil, errors.NewValidationError("algorithm", fmt.Sprintf("unsupported hash algorithm %q", algorithm))
	}
	return &HashGenerator{algorithm: algorithm, hash: h}, nil
}

// Default returns the blake2b-256 generator.
func Default() *HashGenerator {
	return &HashGenerator{algorithm: Blake2b256, hash: hashers[Blake2b256]}
}

// Algorithm returns the configured algorithm name.
func (g *HashGenerator) Algorithm() string {
	return g.algorithm
}

// Generate implements Generator.
func (g *HashGenerator) Generate(seed []byte, caller storagemodels.Identity, nonce uint64) storagemodels.Hash {
	return g.hash(Encode(seed, caller, nonce))
}

// Encode serializes the inputs unambiguously: each variable-length part is preceded
// by its uvarint length and the nonce is a little-endian u64.
func Encode(seed []byte, caller storagemodels.Identity, nonce uint64) []byte {
	buf := make([]byte, 0, 2*binary.MaxVarintLen64+len(seed)+len(caller)+8)
	buf = binary.AppendUvarint(buf, uint64(len(seed)))
	buf = append(buf, seed...)
	buf = binary.AppendUvarint(buf, uint64(len(caller)))
	buf = append(buf, caller...)
	buf = binary.LittleEndian.AppendUint64(buf, nonce)
	return buf
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package host

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
)

// SeedSize is the number of random bytes drawn per creation.
const SeedSize = 32

// SeedSource supplies the per-transaction seed mixed into identifier derivation.
type SeedSource interface {
	Seed(ctx context.Context) ([]byte, error)
}

// RandomSeed draws SeedSize bytes from crypto/rand.
type RandomSeed struct{}

func (RandomSeed) Seed(context.Context) ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return seed, nil
}

// StaticSeed returns the same bytes every time.
type StaticSeed []byte

func (s StaticSeed) Seed(context.Context) ([]byte, error) {
	return bytes.Clone(s), nil
}

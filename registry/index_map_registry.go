/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sync"

	"github.com/suparena/entityregistry/datastore"
)

// DefaultIndexMap lays every space out as one item per key in a single table.
// {Space} and {ID} are expanded by the backend; ID is hex encoded.
var DefaultIndexMap = map[string]string{
	"PK": "{Space}#{ID}",
	"SK": "{Space}",
}

// IndexMapRegistry associates state spaces with their key templates.

var (
	indexMapRegistry = make(map[datastore.Space]map[string]string)
	mu               sync.RWMutex
)

func init() {
	for _, space := range datastore.Spaces {
		RegisterIndexMap(space, DefaultIndexMap)
	}
}

// RegisterIndexMap associates a space with a key template map (PK, SK, etc.).
func RegisterIndexMap(space datastore.Space, idxMap map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[space] = idxMap
}

// GetIndexMap retrieves the index map for a space, if any.
func GetIndexMap(space datastore.Space) (map[string]string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[space]
	return m, ok
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlite registers the embedded SQLite state backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/datastore/sqlstore"
	"github.com/suparena/entityregistry/registry"
)

// BackendName is the name this store registers under.
const BackendName = "sqlite"

func init() {
	registry.RegisterBackend(BackendName, func(ctx context.Context, cfg config.StoreConfig) (datastore.StateStore, error) {
		return Open(ctx, cfg.SQLite)
	})
}

// Open opens (creating if needed) the database file and its state table.
func Open(ctx context.Context, cfg config.SQLiteConfig) (*sqlstore.Store, error) {
	path := cfg.Path
	if path == "" {
		path = "entityregistry.db"
	}
	table := cfg.Table
	if table == "" {
		table = "entity_state"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between our own transactions.
	db.SetMaxOpenConns(1)

	store, err := sqlstore.New(db, sqlstore.SQLite, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

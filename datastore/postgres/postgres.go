/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package postgres registers the PostgreSQL state backend. Connections are
// pooled by pgxpool and exposed to the shared SQL store through pgx's
// database/sql adapter.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/datastore/sqlstore"
	"github.com/suparena/entityregistry/registry"
)

// BackendName is the name this store registers under.
const BackendName = "postgres"

const defaultDSN = "postgres://localhost/entityregistry?sslmode=disable"

func init() {
	registry.RegisterBackend(BackendName, func(ctx context.Context, cfg config.StoreConfig) (datastore.StateStore, error) {
		return Open(ctx, cfg.Postgres)
	})
}

// Open connects, pings and ensures the state table exists.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sqlstore.Store, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = defaultDSN
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = "entity_state"
	}
	db := stdlib.OpenDBFromPool(pool)
	store, err := sqlstore.New(db, sqlstore.Postgres, table)
	if err != nil {
		_ = db.Close()
		pool.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		pool.Close()
		return nil, err
	}
	// Closing the sql.DB does not close the pool it wraps.
	store.OnClose(pool.Close)
	return store, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/suparena/entityregistry/errors"
)

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	assert.Equal(t, "a = $1 AND b = $2 AND c = $3", pg.rebind("a = ? AND b = ? AND c = ?"))

	lite := &Store{dialect: SQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestNewPreparesStatements(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := New(db, Postgres, "entity_state")
	require.NoError(t, err)
	assert.Equal(t, "UPDATE entity_state SET value = $1 WHERE space = $2 AND key = $3 AND value = $4", s.updateSQL)
	assert.Contains(t, s.insertSQL, "ON CONFLICT (space, key) DO NOTHING")

	for _, bad := range []string{"", "1table", "a-b", "t; drop"} {
		_, err := New(db, SQLite, bad)
		assert.True(t, errors.IsValidationError(err), bad)
	}
}

func TestCloseRunsHooks(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	s, err := New(db, SQLite, "entity_state")
	require.NoError(t, err)
	var closed int
	s.OnClose(func() { closed++ })

	require.NoError(t, s.Close())
	assert.Equal(t, 1, closed)
}

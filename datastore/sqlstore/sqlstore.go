/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
)

// Dialect captures the differences between SQL engines that matter to the store.
type Dialect struct {
	Name string
	// Numbered switches "?" placeholders to "$1", "$2", ...
	Numbered bool
	// BlobType is the column type for keys and values.
	BlobType string
}

var (
	// Postgres is the dialect for PostgreSQL.
	Postgres = Dialect{Name: "postgres", Numbered: true, BlobType: "BYTEA"}
	// SQLite is the dialect for SQLite.
	SQLite = Dialect{Name: "sqlite", BlobType: "BLOB"}
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store keeps every state space in one table keyed by (space, key).
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string

	getSQL    string
	insertSQL string
	updateSQL string
	upsertSQL string

	onClose []func()
}

var _ datastore.StateStore = (*Store)(nil)

// New wraps db. The table name must be a plain SQL identifier.
func New(db *sql.DB, dialect Dialect, table string) (*Store, error) {
	if !tableName.MatchString(table) {
		return nil, errors.NewValidationError("table", fmt.Sprintf("invalid table name %q", table))
	}
	s := &Store{db: db, dialect: dialect, table: table}
	s.getSQL = s.rebind(`SELECT value FROM ` + table + ` WHERE space = ? AND key = ?`)
	s.insertSQL = s.rebind(`INSERT INTO ` + table + ` (space, key, value) VALUES (?, ?, ?) ON CONFLICT (space, key) DO NOTHING`)
	s.updateSQL = s.rebind(`UPDATE ` + table + ` SET value = ? WHERE space = ? AND key = ? AND value = ?`)
	s.upsertSQL = s.rebind(`INSERT INTO ` + table + ` (space, key, value) VALUES (?, ?, ?) ON CONFLICT (space, key) DO UPDATE SET value = excluded.value`)
	return s, nil
}

func (s *Store) rebind(query string) string {
	if !s.dialect.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EnsureSchema creates the state table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		space TEXT NOT NULL,
		key %s NOT NULL,
		value %s NOT NULL,
		PRIMARY KEY (space, key)
	)`, s.table, s.dialect.BlobType, s.dialect.BlobType)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s table: %w", s.table, err)
	}
	return nil
}

// Get reads one value.
func (s *Store) Get(ctx context.Context, key datastore.Key) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.getSQL, string(key.Space), []byte(key.ID)).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

// Apply runs the batch in one database transaction. Guarded writes that affect
// no row roll the transaction back with a condition failure.
func (s *Store) Apply(ctx context.Context, writes []datastore.Write) (retErr error) {
	if len(writes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, w := range writes {
		if err := s.applyOne(ctx, tx, w); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) applyOne(ctx context.Context, tx *sql.Tx, w datastore.Write) error {
	space, id := string(w.Key.Space), []byte(w.Key.ID)

	var (
		res sql.Result
		err error
	)
	switch w.Condition {
	case datastore.MustNotExist:
		res, err = tx.ExecContext(ctx, s.insertSQL, space, id, w.Value)
	case datastore.MustEqual:
		res, err = tx.ExecContext(ctx, s.updateSQL, w.Value, space, id, w.Previous)
	default:
		_, err = tx.ExecContext(ctx, s.upsertSQL, space, id, w.Value)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", w.Key, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", w.Key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s: %w", w.Key, err)
	}
	if n == 0 {
		return errors.NewConditionFailedError("apply", w.Key.String()+" "+w.Condition.String())
	}
	return nil
}

// OnClose registers fn to run after the database handle is closed.
func (s *Store) OnClose(fn func()) {
	s.onClose = append(s.onClose, fn)
}

// Close closes the database handle.
func (s *Store) Close() error {
	err := s.db.Close()
	for _, fn := range s.onClose {
		fn()
	}
	return err
}

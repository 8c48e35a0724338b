// Package sqlite implements the repository interfaces on an embedded SQLite
// file through modernc.org/sqlite, a pure Go driver, with sqlx for struct
// scanning and IN (?) expansion.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// driverName is the name modernc.org/sqlite registers with database/sql.
const driverName = "sqlite"

func init() {
	// sqlx only knows "sqlite3" as a ?-placeholder driver out of the box.
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// DB wraps a sqlx connection pool and provides every repository method.
// It implements all the interfaces in internal/repository.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Option customises a DB at construction time.
type Option func(*DB)

// WithClock replaces the wall clock used for created_at/updated_at.
// Tests use it to get strictly increasing, reproducible timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/sqlmanager.db"  file-based, persistent
//   - ":memory:"            in-memory, lost on close (tests)
//
// SINGLE CONNECTION:
// SQLite serialises writers anyway, and every ":memory:" connection is a
// separate, empty database. Capping the pool at one connection makes both
// cases behave the same: all statements and transactions share one handle.
func New(dbPath string, opts ...Option) (*DB, error) {
	conn, err := sqlx.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := newDB(conn, opts...)

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// newDB wraps an already-open connection without touching its schema.
func newDB(conn *sqlx.DB, opts ...Option) *DB {
	db := &DB{
		conn: conn,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// withTx runs fn inside a transaction. The transaction commits only if fn
// returns nil; any error (or panic) rolls back every statement fn issued, so
// a half-applied cascade is never visible to other requests.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
			panic(rec)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("sqlite: rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			display_name  TEXT NOT NULL,
			avatar_url    TEXT,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// category is a free-text name on purpose: categories can be deleted
	// without orphaning snippets, which then fall back to the sentinel.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT 'uncategorized',
			notes      TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_by TEXT NOT NULL REFERENCES users(id),
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_updated_at ON snippets(updated_at);
		CREATE INDEX IF NOT EXISTS idx_snippets_category ON snippets(category);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippet_tags (
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			tag        TEXT NOT NULL,
			PRIMARY KEY (snippet_id, tag)
		);
		CREATE INDEX IF NOT EXISTS idx_snippet_tags_tag ON snippet_tags(tag);
	`)
	if err != nil {
		return fmt.Errorf("creating snippet_tags table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS tags (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating catalog tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			snippet_id TEXT NOT NULL REFERENCES snippets(id),
			text       TEXT NOT NULL,
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_snippet_id ON comments(snippet_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

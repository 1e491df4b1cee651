// Package db is the key-value persistence backend. Values live in a single
// sqlite table addressed by key; the task store keeps its whole collection
// under one key.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdxmph/parastrom/internal/logging"
)

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	path   string
	logger *logging.Logger
}

// Option configures Open
type Option func(*DB)

// WithLogger sets the logger used for migration messages
func WithLogger(l *logging.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// Open connects to an existing database and runs pending migrations
func Open(dbPath string, opts ...Option) (*DB, error) {
	// Check if DB exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'parastrom init' to create it", dbPath)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn, path: dbPath, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(db)
	}

	// Run any pending migrations
	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// OpenOrCreate initializes the database on first use, then opens it
func OpenOrCreate(dbPath string, opts ...Option) (*DB, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		if err := Initialize(dbPath); err != nil {
			return nil, err
		}
	}
	return Open(dbPath, opts...)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file location
func (db *DB) Path() string {
	return db.path
}

// Get returns the value stored under key. A missing key is not an error;
// ok is false instead.
func (db *DB) Get(key string) (value []byte, ok bool, err error) {
	var s string
	err = db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading key %s: %w", key, err)
	}
	return []byte(s), true, nil
}

// Set replaces the value under key in a single statement, so readers see
// either the old value or the new one.
func (db *DB) Set(key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := db.conn.Exec(query, key, string(value)); err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Entry returns the stored row for key, or nil when absent
func (db *DB) Entry(key string) (*Entry, error) {
	var e Entry
	var updated sql.NullTime
	err := db.conn.QueryRow(`SELECT key, value, updated_at FROM kv WHERE key = ?`, key).
		Scan(&e.Key, &e.Value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", key, err)
	}
	e.UpdatedAt = updated
	return &e, nil
}

// Keys lists the stored keys in order
func (db *DB) Keys() ([]string, error) {
	rows, err := db.conn.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Package store implements the collaborator side of the CRUD
// contract: SQLite-backed resources scoped to the authenticated user,
// plus in-memory counterparts for tests and demos. Queries are built
// with ent's sql builders; the schema is bootstrapped with plain DDL
// at startup.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Store wraps the database handle shared by all resource stores.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens a SQLite database and prepares it for use. SQLite wants a
// single writer; the connection pool is capped accordingly.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the raw handle for callers that need it (tests, seeds).
func (s *Store) DB() *sql.DB { return s.db }

// Bootstrap creates the schema. Safe to run on every startup.
func (s *Store) Bootstrap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			admin      BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS todo_items (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			completed  BOOLEAN NOT NULL DEFAULT 0,
			user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_todo_items_user ON todo_items (user_id);

		CREATE TABLE IF NOT EXISTS contact_messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			message    TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`)
	return err
}

// builder returns a fresh SQLite statement builder.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

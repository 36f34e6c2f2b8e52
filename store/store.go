// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quickly-rank/db"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyVoted = errors.New("already voted")
	ErrConflict     = errors.New("concurrent update conflict")
)

// Store is the poll repository.
type Store struct {
	db *sqlx.DB
}

// Open connects to dsn with driver ("postgres" or "sqlite") and verifies
// the connection.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database type %q", driver)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(conn), nil
}

// New wraps an open connection.
func New(conn *sqlx.DB) *Store {
	return &Store{db: conn}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// CreateSchema creates missing tables.
func (s *Store) CreateSchema() error {
	return db.CreateSchema(s.db.DB)
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// withTx runs fn in a transaction and commits when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

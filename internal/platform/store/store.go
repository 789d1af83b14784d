// Package store provides one SQL seam over the configured backend (sqlite or postgres)
package store

import (
	"context"
	"errors"
	"fmt"

	"glolotto/internal/platform/logger"
)

// Dialect names the SQL backend behind a Store
type Dialect string

// Supported dialects
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store is the facade repos are built from
// zero value is safe but has no backend
type Store struct {
	// Log is the logger used by subclients
	Log logger.Logger

	// DB is the sql seam, nil until Open succeeds
	DB TxRunner

	// Dialect tells repos which DDL and SQL variants to run
	Dialect Dialect
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql.
// Placeholders are written Postgres style ($1, $2); the sqlite adapter rewrites them
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store for cfg.Driver
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	var (
		db  TxRunner
		err error
	)
	switch cfg.Driver {
	case DialectSQLite, "":
		db, err = openSQLite(ctx, cfg, s)
		s.Dialect = DialectSQLite
	case DialectPostgres:
		db, err = openPG(ctx, cfg, s)
		s.Dialect = DialectPostgres
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	s.DB = db
	return s, nil
}

// Guard verifies the backend answers a ping
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	if s.DB == nil {
		return errors.New("store: no backend")
	}
	if p, ok := s.DB.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.Dialect, err)
		}
	}
	return nil
}

// Close closes the backend; a nil backend is ignored
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.DB.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

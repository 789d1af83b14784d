// Package sqlite opens a single-connection modernc.org/sqlite database with optional query tracing
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"glolotto/internal/platform/store/sqltrace"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Memory is the path of a private in-memory database
const Memory = ":memory:"

// Config configures the sqlite file
type Config struct {
	Path        string
	BusyTimeout time.Duration
	SlowMs      int
}

// SQLite wraps the database handle and optional tracer
type SQLite struct {
	DB     *sql.DB
	Tracer sqltrace.QueryTracer
	SlowMs int
}

var openDB = sql.Open

// DSN builds the driver source name for cfg: foreign keys on, busy timeout,
// and WAL for file databases
func DSN(cfg Config) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	if cfg.Path != Memory {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return cfg.Path + "?" + q.Encode()
}

// Open creates the parent directory if needed, opens the database and pings it.
// The pool is capped at one connection so every statement sees the same session
func Open(ctx context.Context, cfg Config, tracer sqltrace.QueryTracer) (*SQLite, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	cfg.Path = path
	if path != Memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: create dir %s: %w", dir, err)
			}
		}
	}

	db, err := openDB("sqlite", DSN(cfg))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	return &SQLite{DB: db, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close closes the database handle
func (s *SQLite) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

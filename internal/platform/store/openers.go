package store

import (
	"context"
	"fmt"
	"time"

	"glolotto/internal/platform/store/pg"
	"glolotto/internal/platform/store/sqlite"
	"glolotto/internal/platform/store/sqltrace"
)

var sleep = time.Sleep

func tracerFor(cfg Config, s *Store) sqltrace.QueryTracer {
	if !cfg.LogSQL {
		return nil
	}
	return sqltrace.Tracer(s.Log)
}

// openSQLite opens the sqlite file and wraps it with the sqlite adapter
func openSQLite(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	db, err := sqlite.Open(ctx, sqlite.Config{
		Path:        cfg.SQLite.Path,
		BusyTimeout: cfg.SQLite.BusyTimeout,
		SlowMs:      cfg.SlowQueryMs,
	}, tracerFor(cfg, s))
	if err != nil {
		return nil, err
	}
	return newSQLiteAdapter(db), nil
}

// openPG opens the pool, waits until it answers, then wraps it with the pg adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.SlowQueryMs,
	}, tracerFor(cfg, s), nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 6
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx) // pool directly so boot pings stay out of the trace
		cancel()
		if lastErr == nil {
			return newPGAdapter(p), nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Msg("postgres not ready; retrying")
		sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

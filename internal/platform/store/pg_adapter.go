package store

import (
	"context"
	"errors"
	"time"

	"glolotto/internal/platform/store/pg"
	"glolotto/internal/platform/store/sqltrace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const backendPG = "postgres"

// pgAdapter wraps pg.PG and implements RowQuerier + TxRunner
// it emits query trace events when a tracer is configured on pg.PG
type pgAdapter struct {
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter { return &pgAdapter{p: p} }

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil {
		return errors.New("pg: nil adapter")
	}
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := a.p.Pool.Exec(ctx, sql, args...)
	a.emit(ctx, sql, args, start, err)
	return pgTag{ct}, err
}

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := a.p.Pool.Query(ctx, sql, args...)
	a.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{r: rs}, nil
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := a.p.Pool.QueryRow(ctx, sql, args...)
	return pgRow{r: r, after: func(scanErr error) { a.emit(ctx, sql, args, start, scanErr) }}
}

func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(pgTxQuerier{tx: tx, tracer: a.p.Tracer, slowMs: a.p.SlowMs}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (a *pgAdapter) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if a == nil || a.p == nil {
		return
	}
	sqltrace.Emit(ctx, a.p.Tracer, backendPG, a.p.SlowMs, sql, args, start, err)
}

type pgRow struct {
	r     pgx.Row
	after func(error)
}

func (x pgRow) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type pgRows struct{ r pgx.Rows }

func (x pgRows) Next() bool            { return x.r.Next() }
func (x pgRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x pgRows) Err() error            { return x.r.Err() }
func (x pgRows) Close()                { x.r.Close() }
func (x pgRows) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Name
	}
	return out
}

type pgTag struct{ t pgconn.CommandTag }

func (t pgTag) String() string      { return t.t.String() }
func (t pgTag) RowsAffected() int64 { return t.t.RowsAffected() }

// pgTxQuerier satisfies RowQuerier inside a Tx and traces like pgAdapter
type pgTxQuerier struct {
	tx     pgx.Tx
	tracer sqltrace.QueryTracer
	slowMs int
}

func (t pgTxQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.tx.Exec(ctx, sql, args...)
	sqltrace.Emit(ctx, t.tracer, backendPG, t.slowMs, sql, args, start, err)
	return pgTag{ct}, err
}

func (t pgTxQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.tx.Query(ctx, sql, args...)
	sqltrace.Emit(ctx, t.tracer, backendPG, t.slowMs, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{r: rs}, nil
}

func (t pgTxQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.tx.QueryRow(ctx, sql, args...)
	return pgRow{r: r, after: func(scanErr error) {
		sqltrace.Emit(ctx, t.tracer, backendPG, t.slowMs, sql, args, start, scanErr)
	}}
}

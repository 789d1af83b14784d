package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"glolotto/internal/platform/store/sqlite"
	"glolotto/internal/platform/store/sqltrace"
)

const backendSQLite = "sqlite"

// sqliteAdapter wraps sqlite.SQLite and implements RowQuerier + TxRunner
type sqliteAdapter struct {
	s *sqlite.SQLite
}

func newSQLiteAdapter(s *sqlite.SQLite) *sqliteAdapter { return &sqliteAdapter{s: s} }

// rebind turns $N placeholders into sqlite's ?N form. Quoted text is left alone
func rebind(q string) string {
	if !strings.Contains(q, "$") {
		return q
	}
	var b strings.Builder
	b.Grow(len(q))
	var quote byte
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '$' && i+1 < len(q) && q[i+1] >= '0' && q[i+1] <= '9':
			c = '?'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// sqlExecer is the common surface of *sql.DB and *sql.Tx
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (a *sqliteAdapter) Ping(ctx context.Context) error {
	if a == nil || a.s == nil || a.s.DB == nil {
		return errors.New("sqlite: nil adapter")
	}
	return a.s.DB.PingContext(ctx)
}

func (a *sqliteAdapter) Close() error { return a.s.Close() }

func (a *sqliteAdapter) q() sqliteQuerier {
	return sqliteQuerier{db: a.s.DB, tracer: a.s.Tracer, slowMs: a.s.SlowMs}
}

func (a *sqliteAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return a.q().Exec(ctx, sql, args...)
}

func (a *sqliteAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return a.q().Query(ctx, sql, args...)
}

func (a *sqliteAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return a.q().QueryRow(ctx, sql, args...)
}

func (a *sqliteAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqliteQuerier{db: tx, tracer: a.s.Tracer, slowMs: a.s.SlowMs}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// sqliteQuerier runs statements on a *sql.DB or *sql.Tx
type sqliteQuerier struct {
	db     sqlExecer
	tracer sqltrace.QueryTracer
	slowMs int
}

func (x sqliteQuerier) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	start := time.Now()
	res, err := x.db.ExecContext(ctx, rebind(query), args...)
	sqltrace.Emit(ctx, x.tracer, backendSQLite, x.slowMs, query, args, start, err)
	if err != nil {
		return sqliteTag{}, err
	}
	n, _ := res.RowsAffected()
	return sqliteTag{verb: verbOf(query), n: n}, nil
}

func (x sqliteQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := x.db.QueryContext(ctx, rebind(query), args...)
	sqltrace.Emit(ctx, x.tracer, backendSQLite, x.slowMs, query, args, start, err)
	if err != nil {
		return nil, err
	}
	return sqliteRows{r: rs}, nil
}

func (x sqliteQuerier) QueryRow(ctx context.Context, query string, args ...any) Row {
	start := time.Now()
	r := x.db.QueryRowContext(ctx, rebind(query), args...)
	return sqliteRow{r: r, after: func(scanErr error) {
		sqltrace.Emit(ctx, x.tracer, backendSQLite, x.slowMs, query, args, start, scanErr)
	}}
}

type sqliteRow struct {
	r     *sql.Row
	after func(error)
}

func (x sqliteRow) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type sqliteRows struct{ r *sql.Rows }

func (x sqliteRows) Next() bool            { return x.r.Next() }
func (x sqliteRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x sqliteRows) Err() error            { return x.r.Err() }
func (x sqliteRows) Close()                { _ = x.r.Close() }
func (x sqliteRows) Columns() []string {
	cols, _ := x.r.Columns()
	return cols
}

// sqliteTag mimics the pg command tag text ("INSERT 1", "UPDATE 0")
type sqliteTag struct {
	verb string
	n    int64
}

func (t sqliteTag) String() string      { return fmt.Sprintf("%s %d", t.verb, t.n) }
func (t sqliteTag) RowsAffected() int64 { return t.n }

func verbOf(query string) string {
	f := strings.Fields(query)
	if len(f) == 0 {
		return ""
	}
	return strings.ToUpper(f[0])
}

package store

import (
	"context"
	"errors"
	"testing"

	"glolotto/internal/platform/store/sqltrace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxFakeRow implements pgx.Row
type pgxFakeRow struct{ scan func(dest ...any) error }

func (r pgxFakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// pgxFakeRows implements pgx.Rows over a slice of single-column string rows
type pgxFakeRows struct {
	cols   []string
	data   []string
	idx    int
	err    error
	closed bool
}

func (r *pgxFakeRows) Close()                        { r.closed = true }
func (r *pgxFakeRows) Err() error                    { return r.err }
func (r *pgxFakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *pgxFakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}
func (r *pgxFakeRows) Next() bool {
	if r.err != nil {
		return false
	}
	r.idx++
	return r.idx <= len(r.data)
}
func (r *pgxFakeRows) Scan(dest ...any) error {
	if len(dest) != 1 {
		return errors.New("dest len mismatch")
	}
	*(dest[0].(*string)) = r.data[r.idx-1]
	return nil
}
func (r *pgxFakeRows) Values() ([]any, error) { return []any{r.data[r.idx-1]}, nil }
func (r *pgxFakeRows) RawValues() [][]byte    { return nil }
func (r *pgxFakeRows) Conn() *pgx.Conn        { return nil }

// pgxFakeTx implements pgx.Tx; only the query methods do anything
type pgxFakeTx struct {
	pgx.Tx
	execErr error
	rows    *pgxFakeRows
	scanVal int64
}

func (f *pgxFakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	if f.execErr != nil {
		return pgconn.NewCommandTag(""), f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}
func (f *pgxFakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.rows == nil {
		return nil, errors.New("query failed")
	}
	return f.rows, nil
}
func (f *pgxFakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	return pgxFakeRow{scan: func(dest ...any) error {
		*(dest[0].(*int64)) = f.scanVal
		return nil
	}}
}

func TestPGTag(t *testing.T) {
	t.Parallel()

	tg := pgTag{t: pgconn.NewCommandTag("INSERT 0 1")}
	if tg.String() != "INSERT 0 1" || tg.RowsAffected() != 1 {
		t.Fatalf("pgTag mismatch: %q %d", tg.String(), tg.RowsAffected())
	}
}

func TestPGRows_ColumnsAndClose(t *testing.T) {
	t.Parallel()

	fr := &pgxFakeRows{cols: []string{"draw_date"}, data: []string{"2024-01-16", "2024-01-01"}}
	rs := pgRows{r: fr}
	if cols := rs.Columns(); len(cols) != 1 || cols[0] != "draw_date" {
		t.Fatalf("Columns mismatch: %v", cols)
	}
	var got []string
	for rs.Next() {
		var d string
		if err := rs.Scan(&d); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		got = append(got, d)
	}
	rs.Close()
	if len(got) != 2 || got[0] != "2024-01-16" || !fr.closed {
		t.Fatalf("rows mismatch %v closed=%v", got, fr.closed)
	}

	bad := pgRows{r: &pgxFakeRows{err: errors.New("boom")}}
	if bad.Next() || bad.Err() == nil {
		t.Fatalf("rows error should stop iteration")
	}
}

func TestPGTxQuerier_TracesEveryStatement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tr := &captureTracer{}
	fx := &pgxFakeTx{rows: &pgxFakeRows{cols: []string{"v"}, data: []string{"x"}}, scanVal: 42}
	q := pgTxQuerier{tx: fx, tracer: tr, slowMs: -1}

	ct, err := q.Exec(ctx, "INSERT INTO prize_numbers VALUES ($1)", 1)
	if err != nil || ct.RowsAffected() != 1 {
		t.Fatalf("Exec: %v %v", ct, err)
	}
	rs, err := q.Query(ctx, "SELECT v")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	rs.Close()
	var id int64
	if err := q.QueryRow(ctx, "SELECT id").Scan(&id); err != nil || id != 42 {
		t.Fatalf("QueryRow: %d %v", id, err)
	}

	if len(tr.evs) != 3 {
		t.Fatalf("want 3 events, got %d", len(tr.evs))
	}
	for _, ev := range tr.evs {
		if ev.Backend != "postgres" || ev.Slow {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestPGTxQuerier_PropagatesErrors(t *testing.T) {
	t.Parallel()

	q := pgTxQuerier{tx: &pgxFakeTx{execErr: errors.New("exec failed")}}
	if _, err := q.Exec(context.Background(), "x"); err == nil {
		t.Fatalf("expected Exec error")
	}
	if _, err := q.Query(context.Background(), "x"); err == nil {
		t.Fatalf("expected Query error")
	}
}

var _ sqltrace.QueryTracer = (*captureTracer)(nil)

// Package repo persists draws and their prize numbers in sqlite or postgres
package repo

import (
	"context"
	_ "embed"
	"strings"

	"glolotto/internal/core/drawdate"
	"glolotto/internal/modkit/repokit"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	"glolotto/internal/platform/store"
	"glolotto/internal/services/results/domain"
)

var (
	//go:embed schema_sqlite.sql
	schemaSQLite string

	//go:embed schema_postgres.sql
	schemaPostgres string
)

// Repo is the full storage surface of the results service
type Repo = domain.Storage

type (
	sqlRepo struct {
		q       repokit.Queryer
		dialect store.Dialect
	}
	binder struct{ dialect store.Dialect }
)

// New returns a binder producing repos for dialect
func New(dialect store.Dialect) repokit.Binder[Repo] { return binder{dialect: dialect} }

// Bind implements repokit.Binder
func (b binder) Bind(q repokit.Queryer) Repo { return &sqlRepo{q: q, dialect: b.dialect} }

// Schema returns the DDL statements for dialect in execution order
func Schema(dialect store.Dialect) []string {
	src := schemaSQLite
	if dialect == store.DialectPostgres {
		src = schemaPostgres
	}
	var out []string
	for _, stmt := range strings.Split(src, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnsureSchema implements domain.ResultStore
func (r *sqlRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema(r.dialect) {
		if _, err := r.q.Exec(ctx, stmt); err != nil {
			return storageErr(err, "ensure schema")
		}
	}
	return nil
}

// Exists implements domain.ResultStore
func (r *sqlRepo) Exists(ctx context.Context, drawDate string) (bool, error) {
	n, err := store.Scalar[int64](ctx, r.q, `SELECT COUNT(*) FROM lottery_results WHERE draw_date = $1`, drawDate)
	if err != nil {
		return false, perr.FromSQLf(err, "exists %s", drawDate)
	}
	return n > 0, nil
}

const (
	upsertDraw = `INSERT INTO lottery_results (draw_date, period) VALUES ($1, $2)
		ON CONFLICT (draw_date) DO UPDATE SET draw_date = excluded.draw_date
		RETURNING id`

	insertPrize = `INSERT INTO prize_numbers (lottery_id, category, prize_amount, number_value, round_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lottery_id, category, number_value, round_number) DO NOTHING`
)

// storageErr keeps every write failure in the storage class whatever the backend reported
func storageErr(err error, msg string) error {
	return perr.AttachFieldFromPg(perr.Wrap(err, perr.ErrorCodeStorage, msg))
}

// Save implements domain.ResultStore. The draw row is upserted and its id returned in one
// statement; prize numbers are then inserted one statement at a time with no enclosing
// transaction, so a failure part way leaves the earlier categories in place
func (r *sqlRepo) Save(ctx context.Context, res domain.NormalizedResult) (domain.SaveStats, error) {
	var stats domain.SaveStats

	date := res.Date
	if key, err := drawdate.Canonical(date); err == nil {
		date = key
	} else {
		logger.C(ctx).Warn().Err(err).Str("draw_date", date).Msg("saving draw under a non canonical date")
	}

	id, err := store.Scalar[int64](ctx, r.q, upsertDraw, date, res.PeriodString())
	if err != nil {
		return stats, storageErr(err, "save draw "+date)
	}
	stats.DrawID = id

	for _, cat := range domain.Categories {
		prize, ok := res.Prizes[cat]
		if !ok {
			continue
		}
		price := prize.Price
		if price == "" {
			price = domain.DefaultPrice
		}
		for _, n := range prize.Numbers {
			tag, err := r.q.Exec(ctx, insertPrize, id, string(cat), price, n.Value, n.Round)
			if err != nil {
				return stats, storageErr(err, "save "+string(cat)+" numbers for "+date)
			}
			if tag.RowsAffected() > 0 {
				stats.Inserted++
			} else {
				stats.Deduped++
			}
		}
	}

	logger.C(ctx).Debug().
		Str("draw_date", date).
		Int64("draw_id", id).
		Int("inserted", stats.Inserted).
		Int("deduped", stats.Deduped).
		Msg("draw saved")
	return stats, nil
}

// SaveMany implements domain.ResultStore; the first failure stops the sequence
func (r *sqlRepo) SaveMany(ctx context.Context, rs []domain.NormalizedResult) error {
	for _, res := range rs {
		if _, err := r.Save(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// PartitionByExistence implements domain.ResultStore
func (r *sqlRepo) PartitionByExistence(ctx context.Context, reqs []drawdate.Request) (domain.Partition, error) {
	p := domain.Partition{ToFetch: []drawdate.Request{}, AlreadyStored: []string{}}
	for _, req := range reqs {
		key := req.Key()
		ok, err := r.Exists(ctx, key)
		if err != nil {
			return domain.Partition{}, err
		}
		if ok {
			p.AlreadyStored = append(p.AlreadyStored, key)
		} else {
			p.ToFetch = append(p.ToFetch, req)
		}
	}
	return p, nil
}

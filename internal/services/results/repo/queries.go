package repo

import (
	"context"
	"errors"

	"glolotto/internal/core/drawdate"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/store"
	"glolotto/internal/services/results/domain"
)

const (
	drawCols  = `lr.id, lr.draw_date, lr.period, lr.created_at`
	prizeCols = `pn.id, pn.lottery_id, pn.category, pn.prize_amount, pn.number_value, pn.round_number`
)

func scanDraw(row store.Row) (domain.DrawRecord, error) {
	var (
		d  domain.DrawRecord
		ts store.Time
	)
	if err := row.Scan(&d.ID, &d.DrawDate, &d.Period, &ts); err != nil {
		return d, err
	}
	d.CreatedAt = ts.Time
	return d, nil
}

func scanPrize(row store.Row) (domain.PrizeNumber, error) {
	var (
		p   domain.PrizeNumber
		cat string
	)
	if err := row.Scan(&p.ID, &p.DrawID, &cat, &p.PrizeAmount, &p.NumberValue, &p.RoundNumber); err != nil {
		return p, err
	}
	p.Category = domain.Category(cat)
	return p, nil
}

func scanHit(row store.Row) (domain.SearchHit, error) {
	var (
		h   domain.SearchHit
		ts  store.Time
		cat string
	)
	err := row.Scan(
		&h.Draw.ID, &h.Draw.DrawDate, &h.Draw.Period, &ts,
		&h.Prize.ID, &h.Prize.DrawID, &cat, &h.Prize.PrizeAmount, &h.Prize.NumberValue, &h.Prize.RoundNumber,
	)
	h.Draw.CreatedAt = ts.Time
	h.Prize.Category = domain.Category(cat)
	return h, err
}

func (r *sqlRepo) draws(ctx context.Context, op, sql string, args ...any) ([]domain.DrawRecord, error) {
	out, err := store.Many(ctx, r.q, scanDraw, sql, args...)
	if err != nil {
		return nil, perr.FromSQL(err, op)
	}
	return out, nil
}

// All implements domain.QueryPort
func (r *sqlRepo) All(ctx context.Context) ([]domain.DrawRecord, error) {
	return r.draws(ctx, "all draws",
		`SELECT `+drawCols+` FROM lottery_results lr ORDER BY lr.draw_date DESC`)
}

// ByDate implements domain.QueryPort
func (r *sqlRepo) ByDate(ctx context.Context, date string) (domain.DrawRecord, bool, error) {
	d, err := store.One(ctx, r.q, scanDraw,
		`SELECT `+drawCols+` FROM lottery_results lr WHERE lr.draw_date = $1`, date)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.DrawRecord{}, false, nil
	}
	if err != nil {
		return domain.DrawRecord{}, false, perr.FromSQLf(err, "draw %s", date)
	}
	return d, true, nil
}

// ByDateRange implements domain.QueryPort; both bounds are inclusive
func (r *sqlRepo) ByDateRange(ctx context.Context, start, end string) ([]domain.DrawRecord, error) {
	return r.draws(ctx, "draws by range",
		`SELECT `+drawCols+` FROM lottery_results lr
		WHERE lr.draw_date >= $1 AND lr.draw_date <= $2
		ORDER BY lr.draw_date DESC`, start, end)
}

// ByYear implements domain.QueryPort
func (r *sqlRepo) ByYear(ctx context.Context, year int) ([]domain.DrawRecord, error) {
	start, end := drawdate.YearBounds(year)
	return r.ByDateRange(ctx, start, end)
}

// ByMonth implements domain.QueryPort
func (r *sqlRepo) ByMonth(ctx context.Context, year, month int) ([]domain.DrawRecord, error) {
	start, end := drawdate.MonthBounds(year, month)
	return r.ByDateRange(ctx, start, end)
}

// Latest implements domain.QueryPort
func (r *sqlRepo) Latest(ctx context.Context, n int) ([]domain.DrawRecord, error) {
	return r.draws(ctx, "latest draws",
		`SELECT `+drawCols+` FROM lottery_results lr ORDER BY lr.draw_date DESC LIMIT $1`, n)
}

// AfterDate implements domain.QueryPort: draws on or after date, oldest first.
// limit <= 0 returns every match
func (r *sqlRepo) AfterDate(ctx context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	sql := `SELECT ` + drawCols + ` FROM lottery_results lr WHERE lr.draw_date >= $1 ORDER BY lr.draw_date ASC`
	if limit > 0 {
		return r.draws(ctx, "draws after", sql+` LIMIT $2`, date, limit)
	}
	return r.draws(ctx, "draws after", sql, date)
}

// BeforeDate implements domain.QueryPort: draws on or before date, newest first
func (r *sqlRepo) BeforeDate(ctx context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	sql := `SELECT ` + drawCols + ` FROM lottery_results lr WHERE lr.draw_date <= $1 ORDER BY lr.draw_date DESC`
	if limit > 0 {
		return r.draws(ctx, "draws before", sql+` LIMIT $2`, date, limit)
	}
	return r.draws(ctx, "draws before", sql, date)
}

// PrizesByDraw implements domain.QueryPort
func (r *sqlRepo) PrizesByDraw(ctx context.Context, drawID int64) ([]domain.PrizeNumber, error) {
	out, err := store.Many(ctx, r.q, scanPrize,
		`SELECT `+prizeCols+` FROM prize_numbers pn
		WHERE pn.lottery_id = $1
		ORDER BY pn.category, pn.round_number`, drawID)
	if err != nil {
		return nil, perr.FromSQLf(err, "prizes of draw %d", drawID)
	}
	return out, nil
}

// PrizesByCategory implements domain.QueryPort
func (r *sqlRepo) PrizesByCategory(ctx context.Context, c domain.Category) ([]domain.PrizeNumber, error) {
	out, err := store.Many(ctx, r.q, scanPrize,
		`SELECT `+prizeCols+` FROM prize_numbers pn
		JOIN lottery_results lr ON pn.lottery_id = lr.id
		WHERE pn.category = $1
		ORDER BY lr.draw_date DESC, pn.round_number`, string(c))
	if err != nil {
		return nil, perr.FromSQLf(err, "prizes in %s", c)
	}
	return out, nil
}

// SearchNumber implements domain.QueryPort: substring match on the number, newest draw first
func (r *sqlRepo) SearchNumber(ctx context.Context, number string) ([]domain.SearchHit, error) {
	out, err := store.Many(ctx, r.q, scanHit,
		`SELECT `+drawCols+`, `+prizeCols+`
		FROM lottery_results lr
		JOIN prize_numbers pn ON lr.id = pn.lottery_id
		WHERE pn.number_value LIKE $1
		ORDER BY lr.draw_date DESC, pn.category, pn.round_number`, "%"+number+"%")
	if err != nil {
		return nil, perr.FromSQLf(err, "search %s", number)
	}
	return out, nil
}

// Complete implements domain.QueryPort
func (r *sqlRepo) Complete(ctx context.Context, date string) (domain.DrawWithPrizes, bool, error) {
	d, ok, err := r.ByDate(ctx, date)
	if err != nil || !ok {
		return domain.DrawWithPrizes{}, ok, err
	}
	prizes, err := r.PrizesByDraw(ctx, d.ID)
	if err != nil {
		return domain.DrawWithPrizes{}, false, err
	}
	return domain.DrawWithPrizes{Draw: d, Prizes: prizes}, true, nil
}

package service

import (
	"context"

	"glolotto/internal/core/drawdate"
	"glolotto/internal/core/numnorm"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/services/results/domain"
)

// DefaultLatest is how many draws Latest returns when asked for none
const DefaultLatest = 10

// Latest returns the n most recent draws; n <= 0 means DefaultLatest
func (s *Service) Latest(ctx context.Context, n int) ([]domain.DrawRecord, error) {
	if n <= 0 {
		n = DefaultLatest
	}
	return s.Store.Latest(ctx, n)
}

// ByDate looks up one draw
func (s *Service) ByDate(ctx context.Context, date string) (domain.DrawRecord, bool, error) {
	key, err := dateArg("date", date)
	if err != nil {
		return domain.DrawRecord{}, false, err
	}
	return s.Store.ByDate(ctx, key)
}

// Complete looks up one draw with all of its prize numbers
func (s *Service) Complete(ctx context.Context, date string) (domain.DrawWithPrizes, bool, error) {
	key, err := dateArg("date", date)
	if err != nil {
		return domain.DrawWithPrizes{}, false, err
	}
	return s.Store.Complete(ctx, key)
}

// ByDateRange returns the draws between start and end inclusive, newest first
func (s *Service) ByDateRange(ctx context.Context, start, end string) ([]domain.DrawRecord, error) {
	from, err := dateArg("start_date", start)
	if err != nil {
		return nil, err
	}
	to, err := dateArg("end_date", end)
	if err != nil {
		return nil, err
	}
	if from > to {
		return nil, perr.WithField(perr.InvalidArgf("start_date %s is after end_date %s", from, to), "start_date")
	}
	return s.Store.ByDateRange(ctx, from, to)
}

// ByYear returns the draws of year, newest first
func (s *Service) ByYear(ctx context.Context, year int) ([]domain.DrawRecord, error) {
	if year < 1 || year > 9999 {
		return nil, perr.WithField(perr.InvalidArgf("year %d out of range", year), "year")
	}
	return s.Store.ByYear(ctx, year)
}

// ByMonth returns the draws of one month, newest first
func (s *Service) ByMonth(ctx context.Context, year, month int) ([]domain.DrawRecord, error) {
	if year < 1 || year > 9999 {
		return nil, perr.WithField(perr.InvalidArgf("year %d out of range", year), "year")
	}
	if month < 1 || month > 12 {
		return nil, perr.WithField(perr.InvalidArgf("month %d out of range", month), "month")
	}
	return s.Store.ByMonth(ctx, year, month)
}

// AfterDate returns draws on or after date, oldest first; limit <= 0 means all
func (s *Service) AfterDate(ctx context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	key, err := dateArg("date", date)
	if err != nil {
		return nil, err
	}
	return s.Store.AfterDate(ctx, key, max(limit, 0))
}

// BeforeDate returns draws on or before date, newest first; limit <= 0 means all
func (s *Service) BeforeDate(ctx context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	key, err := dateArg("date", date)
	if err != nil {
		return nil, err
	}
	return s.Store.BeforeDate(ctx, key, max(limit, 0))
}

// Search finds stored numbers containing number. Fullwidth and Thai digits are
// folded to ASCII first
func (s *Service) Search(ctx context.Context, number string) ([]domain.SearchHit, error) {
	n, err := numnorm.Digits(number)
	if err != nil {
		return nil, err
	}
	return s.Store.SearchNumber(ctx, n)
}

// ByCategory returns every stored number of one prize tier
func (s *Service) ByCategory(ctx context.Context, category string) ([]domain.PrizeNumber, error) {
	c, ok := domain.ParseCategory(category)
	if !ok {
		return nil, perr.WithField(perr.InvalidArgf("unknown category %q", category), "category")
	}
	return s.Store.PrizesByCategory(ctx, c)
}

func dateArg(field, s string) (string, error) {
	key, err := drawdate.Canonical(s)
	if err != nil {
		return "", perr.WithField(err, field)
	}
	return key, nil
}

// Package service runs result ingestion and serves validated reads over the results store
package service

import (
	"context"
	"time"

	"glolotto/internal/core/drawdate"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	"glolotto/internal/services/results/domain"
	"glolotto/internal/services/results/ingest"

	"github.com/google/uuid"
)

// DefaultPacing is the wait between two fetches of one run
const DefaultPacing = time.Second

// Config holds configuration options for the results service
type Config struct {
	// Pacing is the wait between consecutive fetch attempts; <0 -> none, 0 -> DefaultPacing
	Pacing time.Duration
}

// Service implements domain.IngestPort and domain.ReadPort
type Service struct {
	Store domain.Storage
	Fetch domain.Fetcher
	Cfg   Config

	sleep func(context.Context, time.Duration) error
	newID func() string
}

var (
	_ domain.IngestPort = (*Service)(nil)
	_ domain.ReadPort   = (*Service)(nil)
)

// New constructs the results service
func New(store domain.Storage, fetch domain.Fetcher, cfg Config) *Service {
	if store == nil {
		panic("results.Service requires a non nil Storage")
	}
	if fetch == nil {
		panic("results.Service requires a non nil Fetcher")
	}
	if cfg.Pacing == 0 {
		cfg.Pacing = DefaultPacing
	}
	return &Service{Store: store, Fetch: fetch, Cfg: cfg, sleep: sleepCtx, newID: uuid.NewString}
}

// EnsureSchema creates the tables when missing
func (s *Service) EnsureSchema(ctx context.Context) error { return s.Store.EnsureSchema(ctx) }

// Run fetches the requested draws that are not stored yet, one at a time in input
// order with a pacing wait between attempts, and persists what it got in one
// trailing SaveMany. Fetch failures and empty replies are recorded in the report
// and skipped. A persistence failure is returned with the report, which still
// carries every fetched result
func (s *Service) Run(ctx context.Context, reqs []drawdate.Request) (domain.RunReport, error) {
	rep := domain.RunReport{
		RunID:         s.newID(),
		Requested:     len(reqs),
		AlreadyStored: []string{},
		Results:       []domain.NormalizedResult{},
		NoResult:      []string{},
		Failed:        []domain.FetchFailure{},
	}
	ctx = logger.WithRun(ctx, rep.RunID)
	log := logger.C(ctx)

	part, err := s.Store.PartitionByExistence(ctx, reqs)
	if err != nil {
		return rep, err
	}
	rep.AlreadyStored = part.AlreadyStored
	for _, key := range part.AlreadyStored {
		log.Debug().Str("date", key).Msg("already stored")
	}
	if len(part.ToFetch) == 0 {
		log.Info().Int("requested", rep.Requested).Msg("all requested draws already stored")
		return rep, nil
	}
	log.Info().
		Int("requested", rep.Requested).
		Int("stored", len(part.AlreadyStored)).
		Int("to_fetch", len(part.ToFetch)).
		Msg("run started")

	for i, req := range part.ToFetch {
		if i > 0 {
			if err := s.sleep(ctx, s.Cfg.Pacing); err != nil {
				return rep, perr.Wrapf(err, perr.ErrorCodeUnavailable, "run %s interrupted before %s", rep.RunID, req)
			}
		}

		res, found, err := s.Fetch.Fetch(ctx, req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return rep, perr.Wrapf(ctx.Err(), perr.ErrorCodeUnavailable, "run %s interrupted at %s", rep.RunID, req)
			}
			retry := perr.Retryable(err)
			rep.Failed = append(rep.Failed, domain.FetchFailure{
				Date:      req.Key(),
				Kind:      perr.CodeOf(err).String(),
				Error:     err.Error(),
				Retryable: retry,
			})
			log.Warn().Err(err).Str("date", req.String()).Bool("retryable", retry).Msg("fetch failed; skipping")
		case !found:
			rep.NoResult = append(rep.NoResult, req.Key())
			log.Info().Str("date", req.String()).Msg("no result; skipping")
		default:
			rep.Results = append(rep.Results, res)
			log.Info().Str("date", req.String()).Str("draw_date", res.Date).Int("numbers", res.NumberCount()).Msg("fetched")
		}
	}

	if len(rep.Results) == 0 {
		log.Info().Int("no_result", len(rep.NoResult)).Int("failed", len(rep.Failed)).Msg("run done; nothing to save")
		return rep, nil
	}
	if err := s.Store.SaveMany(ctx, rep.Results); err != nil {
		log.Error().Err(err).Int("results", len(rep.Results)).Msg("persist failed")
		return rep, perr.Wrapf(err, perr.ErrorCodeStorage, "persist %d results", len(rep.Results))
	}
	rep.Persisted = true
	log.Info().
		Int("saved", len(rep.Results)).
		Int("no_result", len(rep.NoResult)).
		Int("failed", len(rep.Failed)).
		Msg("run done")
	return rep, nil
}

// RunYear runs every draw day of year
func (s *Service) RunYear(ctx context.Context, year int) (domain.RunReport, error) {
	if year < 1 || year > 9999 {
		return domain.RunReport{}, perr.WithField(perr.InvalidArgf("year %d out of range", year), "year")
	}
	return s.Run(ctx, drawdate.DrawDates(year))
}

// IngestRaw persists an already fetched reply document and returns its draw id.
// The document must parse, carry a true status and have response.result with
// date, period and data; individual prize fields fall back to defaults
func (s *Service) IngestRaw(ctx context.Context, raw string) (int64, error) {
	doc, err := ingest.Parse([]byte(raw))
	if err != nil {
		return 0, err
	}
	if !doc.OK {
		return 0, perr.Rejectedf("document status is not true")
	}
	res, err := doc.Normalize(ctx)
	if err != nil {
		return 0, err
	}

	stats, err := s.Store.Save(ctx, res)
	if err != nil {
		return 0, err
	}
	logger.C(ctx).Info().
		Str("draw_date", res.Date).
		Str("variant", string(doc.Variant)).
		Int64("draw_id", stats.DrawID).
		Int("inserted", stats.Inserted).
		Int("deduped", stats.Deduped).
		Msg("raw document ingested")
	return stats.DrawID, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

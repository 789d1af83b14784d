package service

import (
	"context"
	"errors"
	"time"

	"glolotto/internal/core/drawdate"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/services/results/domain"
)

// fakeStore keeps draws in memory; unset methods panic through the nil embed
type fakeStore struct {
	domain.Storage

	stored   map[string]bool
	saves    [][]domain.NormalizedResult
	saved    []domain.NormalizedResult
	saveErr  error
	partErr  error
	lastArgs []any
}

func newFakeStore(stored ...string) *fakeStore {
	f := &fakeStore{stored: map[string]bool{}}
	for _, k := range stored {
		f.stored[k] = true
	}
	return f
}

func (f *fakeStore) PartitionByExistence(_ context.Context, reqs []drawdate.Request) (domain.Partition, error) {
	if f.partErr != nil {
		return domain.Partition{}, f.partErr
	}
	p := domain.Partition{ToFetch: []drawdate.Request{}, AlreadyStored: []string{}}
	for _, r := range reqs {
		if f.stored[r.Key()] {
			p.AlreadyStored = append(p.AlreadyStored, r.Key())
		} else {
			p.ToFetch = append(p.ToFetch, r)
		}
	}
	return p, nil
}

func (f *fakeStore) SaveMany(_ context.Context, rs []domain.NormalizedResult) error {
	f.saves = append(f.saves, rs)
	return f.saveErr
}

func (f *fakeStore) Save(_ context.Context, r domain.NormalizedResult) (domain.SaveStats, error) {
	if f.saveErr != nil {
		return domain.SaveStats{}, f.saveErr
	}
	f.saved = append(f.saved, r)
	return domain.SaveStats{DrawID: int64(len(f.saved)), Inserted: r.NumberCount()}, nil
}

func (f *fakeStore) Latest(_ context.Context, n int) ([]domain.DrawRecord, error) {
	f.lastArgs = []any{n}
	return []domain.DrawRecord{}, nil
}

func (f *fakeStore) ByDate(_ context.Context, date string) (domain.DrawRecord, bool, error) {
	f.lastArgs = []any{date}
	return domain.DrawRecord{DrawDate: date}, f.stored[date], nil
}

func (f *fakeStore) ByDateRange(_ context.Context, start, end string) ([]domain.DrawRecord, error) {
	f.lastArgs = []any{start, end}
	return []domain.DrawRecord{}, nil
}

func (f *fakeStore) ByMonth(_ context.Context, year, month int) ([]domain.DrawRecord, error) {
	f.lastArgs = []any{year, month}
	return []domain.DrawRecord{}, nil
}

func (f *fakeStore) AfterDate(_ context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	f.lastArgs = []any{date, limit}
	return []domain.DrawRecord{}, nil
}

func (f *fakeStore) SearchNumber(_ context.Context, n string) ([]domain.SearchHit, error) {
	f.lastArgs = []any{n}
	return []domain.SearchHit{}, nil
}

func (f *fakeStore) PrizesByCategory(_ context.Context, c domain.Category) ([]domain.PrizeNumber, error) {
	f.lastArgs = []any{c}
	return []domain.PrizeNumber{}, nil
}

// scripted answers Fetch per date key: a result, nil for no result, or an error
type scripted struct {
	replies map[string]any
	calls   []string
	cancel  context.CancelFunc
}

func (s *scripted) Fetch(_ context.Context, req drawdate.Request) (domain.NormalizedResult, bool, error) {
	s.calls = append(s.calls, req.Key())
	if s.cancel != nil && len(s.calls) == 1 {
		s.cancel()
	}
	switch v := s.replies[req.Key()].(type) {
	case error:
		return domain.NormalizedResult{}, false, v
	case domain.NormalizedResult:
		return v, true, nil
	default:
		return domain.NormalizedResult{}, false, nil
	}
}

func result(date string) domain.NormalizedResult {
	return domain.NormalizedResult{
		Date:   date,
		Period: []int{1},
		Prizes: map[domain.Category]domain.Prize{
			domain.First: {Price: "6000000.00", Numbers: []domain.Number{{Round: 1, Value: "123456"}}},
		},
	}
}

var (
	errTransport = perr.Transportf("dial tcp: connection refused")
	errDecode    = perr.Decodef("decode: unexpected end of JSON input")
	errDisk      = perr.Storagef("disk I/O error")
	errBoom      = errors.New("boom")
)

// sleeps records pacing waits instead of sleeping
type sleeps struct{ waits []time.Duration }

func (s *sleeps) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func newTestService(st *fakeStore, f domain.Fetcher) (*Service, *sleeps) {
	svc := New(st, f, Config{})
	sl := &sleeps{}
	svc.sleep = sl.sleep
	svc.newID = func() string { return "run-1" }
	return svc, sl
}

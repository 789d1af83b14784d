package domain

import (
	"context"

	"glolotto/internal/core/drawdate"
)

// ResultStore owns the schema and the write paths
type ResultStore interface {
	EnsureSchema(ctx context.Context) error
	Exists(ctx context.Context, drawDate string) (bool, error)
	Save(ctx context.Context, r NormalizedResult) (SaveStats, error)
	SaveMany(ctx context.Context, rs []NormalizedResult) error
	PartitionByExistence(ctx context.Context, reqs []drawdate.Request) (Partition, error)
}

// QueryPort is the read surface. Lists are empty rather than nil when nothing matches;
// single lookups report absence through found
type QueryPort interface {
	All(ctx context.Context) ([]DrawRecord, error)
	ByDate(ctx context.Context, date string) (rec DrawRecord, found bool, err error)
	ByDateRange(ctx context.Context, start, end string) ([]DrawRecord, error)
	ByYear(ctx context.Context, year int) ([]DrawRecord, error)
	ByMonth(ctx context.Context, year, month int) ([]DrawRecord, error)
	Latest(ctx context.Context, n int) ([]DrawRecord, error)
	AfterDate(ctx context.Context, date string, limit int) ([]DrawRecord, error)
	BeforeDate(ctx context.Context, date string, limit int) ([]DrawRecord, error)
	PrizesByDraw(ctx context.Context, drawID int64) ([]PrizeNumber, error)
	PrizesByCategory(ctx context.Context, c Category) ([]PrizeNumber, error)
	SearchNumber(ctx context.Context, number string) ([]SearchHit, error)
	Complete(ctx context.Context, date string) (d DrawWithPrizes, found bool, err error)
}

// Fetcher asks the remote source for one draw. found is false when the source has no result
type Fetcher interface {
	Fetch(ctx context.Context, req drawdate.Request) (r NormalizedResult, found bool, err error)
}

// IngestPort is the write side offered to the CLI and the tool server
type IngestPort interface {
	Run(ctx context.Context, reqs []drawdate.Request) (RunReport, error)
	RunYear(ctx context.Context, year int) (RunReport, error)
	IngestRaw(ctx context.Context, raw string) (int64, error)
}

// Storage is the persistence surface the service is built on
type Storage interface {
	ResultStore
	QueryPort
}

// ReadPort is the validated read side used by the HTTP API, the tool server and reports.
// Dates are canonicalized before they reach storage; bad input is ErrorCodeInvalidArgument
type ReadPort interface {
	Latest(ctx context.Context, n int) ([]DrawRecord, error)
	ByDate(ctx context.Context, date string) (rec DrawRecord, found bool, err error)
	Complete(ctx context.Context, date string) (d DrawWithPrizes, found bool, err error)
	ByDateRange(ctx context.Context, start, end string) ([]DrawRecord, error)
	ByYear(ctx context.Context, year int) ([]DrawRecord, error)
	ByMonth(ctx context.Context, year, month int) ([]DrawRecord, error)
	AfterDate(ctx context.Context, date string, limit int) ([]DrawRecord, error)
	BeforeDate(ctx context.Context, date string, limit int) ([]DrawRecord, error)
	Search(ctx context.Context, number string) ([]SearchHit, error)
	ByCategory(ctx context.Context, category string) ([]PrizeNumber, error)
}

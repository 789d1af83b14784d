package ingest

import (
	"context"
	"time"

	"glolotto/internal/core/drawdate"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	"glolotto/internal/services/results/domain"

	"github.com/go-resty/resty/v2"
)

// DefaultURL is the GLO result checking endpoint
const DefaultURL = "https://www.glo.or.th/api/checking/getLotteryResult"

// DefaultUserAgent is sent when Config.UserAgent is empty
const DefaultUserAgent = "glolotto/1.0"

// Config configures a Fetcher
type Config struct {
	URL       string
	UserAgent string
	// Timeout bounds one request; zero leaves the transport default (none)
	Timeout time.Duration
}

// Fetcher posts one date to the results endpoint and decodes the reply
type Fetcher struct {
	url    string
	client *resty.Client
}

var _ domain.Fetcher = (*Fetcher)(nil)

// NewFetcher builds a Fetcher with a resty client logging through zerolog
func NewFetcher(cfg Config) *Fetcher {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	instrument(client)

	return &Fetcher{url: cfg.URL, client: client}
}

// Fetch implements domain.Fetcher. Connection failures and timeouts are
// ErrorCodeTransport; a reply that cannot be read as a result document is
// ErrorCodeDecode; a readable reply without a draw returns found == false
func (f *Fetcher) Fetch(ctx context.Context, req drawdate.Request) (domain.NormalizedResult, bool, error) {
	var none domain.NormalizedResult

	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(f.url)
	if err != nil {
		return none, false, perr.Wrapf(err, perr.ErrorCodeTransport, "fetch %s", req)
	}

	doc, err := Parse(res.Body())
	if err != nil {
		return none, false, perr.Wrapf(err, perr.ErrorCodeDecode, "decode %s (http %d)", req, res.StatusCode())
	}
	if !doc.Found() {
		logger.C(ctx).Debug().
			Str("date", req.String()).
			Bool("status", doc.OK).
			Int("status_code", doc.Code).
			Str("message", doc.Message).
			Msg("no result")
		return none, false, nil
	}

	out, err := doc.Normalize(ctx)
	if err != nil {
		return none, false, perr.Wrapf(err, perr.ErrorCodeDecode, "decode %s (%s)", req, doc.Variant)
	}
	if _, err := drawdate.Canonical(out.Date); err != nil {
		// stored under the requested key so the next run sees it as present
		logger.C(ctx).Warn().
			Err(err).
			Str("payload_date", out.Date).
			Str("date", req.Key()).
			Msg("payload date unreadable, using requested date")
		out.Date = req.Key()
	}
	return out, true, nil
}

type startKey struct{}

// instrument logs each request and its outcome at debug level
func instrument(client *resty.Client) {
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), startKey{}, time.Now()))
		logger.C(r.Context()).Debug().Str("method", r.Method).Str("url", r.URL).Msg("resty request")
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.C(res.Request.Context()).Debug().
			Str("method", res.Request.Method).
			Str("url", res.Request.URL).
			Int("status", res.StatusCode()).
			Dur("elapsed", since(res.Request.Context())).
			Int64("bytes", res.Size()).
			Msg("resty response")
		return nil
	})
	client.OnError(func(r *resty.Request, err error) {
		logger.C(r.Context()).Warn().
			Err(err).
			Str("method", r.Method).
			Str("url", r.URL).
			Dur("elapsed", since(r.Context())).
			Msg("resty request failed")
	})
}

func since(ctx context.Context) time.Duration {
	if t, ok := ctx.Value(startKey{}).(time.Time); ok {
		return time.Since(t)
	}
	return 0
}

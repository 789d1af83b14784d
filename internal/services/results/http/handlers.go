// Package http provides the read-only http transport for lottery results
package http

import (
	"context"
	stdhttp "net/http"
	"strconv"
	"strings"

	"glolotto/internal/modkit/httpkit"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/net/http/bind"
	"glolotto/internal/services/results/domain"
)

// MaxLimit caps ?limit= on list endpoints
const MaxLimit = 1000

// Reporter renders the html report of one draw
type Reporter interface {
	Generate(ctx context.Context, date string) (string, error)
}

// Register mounts results endpoints on the given router
func Register(r httpkit.Router, reads domain.ReadPort, rep Reporter) {
	h := &handlers{reads: reads, rep: rep}

	httpkit.Get(r, "/latest", h.latest)
	httpkit.Get(r, "/date/{date}", h.byDate)
	httpkit.Get(r, "/date/{date}/complete", h.complete)
	httpkit.Get(r, "/range", h.byRange)
	httpkit.Get(r, "/year/{year}", h.byYear)
	httpkit.Get(r, "/month/{year}/{month}", h.byMonth)
	httpkit.Get(r, "/after/{date}", h.after)
	httpkit.Get(r, "/before/{date}", h.before)
	httpkit.Get(r, "/search/{number}", h.search)
	httpkit.Get(r, "/category/{category}", h.byCategory)
	if rep != nil {
		httpkit.GetPage(r, "/report/{date}", h.report)
	}
}

type handlers struct {
	reads domain.ReadPort
	rep   Reporter
}

func (h *handlers) latest(r *stdhttp.Request) (any, error) {
	n, err := limitParam(r)
	if err != nil {
		return nil, err
	}
	return list(h.reads.Latest(r.Context(), n))
}

func (h *handlers) byDate(r *stdhttp.Request) (any, error) {
	date := httpkit.Param(r, "date")
	rec, found, err := h.reads.ByDate(r.Context(), date)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, perr.NotFoundf("no draw on %s", date)
	}
	return rec, nil
}

func (h *handlers) complete(r *stdhttp.Request) (any, error) {
	date := httpkit.Param(r, "date")
	d, found, err := h.reads.Complete(r.Context(), date)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, perr.NotFoundf("no draw on %s", date)
	}
	return d, nil
}

func (h *handlers) byRange(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	return list(h.reads.ByDateRange(r.Context(), q.Get("start"), q.Get("end")))
}

func (h *handlers) byYear(r *stdhttp.Request) (any, error) {
	year, err := intParam(r, "year")
	if err != nil {
		return nil, err
	}
	return list(h.reads.ByYear(r.Context(), year))
}

func (h *handlers) byMonth(r *stdhttp.Request) (any, error) {
	year, err := intParam(r, "year")
	if err != nil {
		return nil, err
	}
	month, err := intParam(r, "month")
	if err != nil {
		return nil, err
	}
	return list(h.reads.ByMonth(r.Context(), year, month))
}

func (h *handlers) after(r *stdhttp.Request) (any, error) {
	n, err := limitParam(r)
	if err != nil {
		return nil, err
	}
	return list(h.reads.AfterDate(r.Context(), httpkit.Param(r, "date"), n))
}

func (h *handlers) before(r *stdhttp.Request) (any, error) {
	n, err := limitParam(r)
	if err != nil {
		return nil, err
	}
	return list(h.reads.BeforeDate(r.Context(), httpkit.Param(r, "date"), n))
}

func (h *handlers) search(r *stdhttp.Request) (any, error) {
	return list(h.reads.Search(r.Context(), httpkit.Param(r, "number")))
}

func (h *handlers) byCategory(r *stdhttp.Request) (any, error) {
	return list(h.reads.ByCategory(r.Context(), httpkit.Param(r, "category")))
}

func (h *handlers) report(r *stdhttp.Request) (string, error) {
	return h.rep.Generate(r.Context(), httpkit.Param(r, "date"))
}

// list wraps a slice result so the envelope carries its count
func list[T any](items []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return httpkit.List(items), nil
}

// limitParam reads ?limit=; absent means 0 which the service treats as its default
func limitParam(r *stdhttp.Request) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get("limit"))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("limit %q is not a number", s), "limit")
	}
	if err := bind.Var("limit", n, "min=1,max="+strconv.Itoa(MaxLimit)); err != nil {
		return 0, err
	}
	return n, nil
}

func intParam(r *stdhttp.Request, key string) (int, error) {
	s := httpkit.Param(r, key)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("%s %q is not a number", key, s), key)
	}
	return n, nil
}

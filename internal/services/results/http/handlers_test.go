package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"glolotto/internal/modkit/httpkit"
	perr "glolotto/internal/platform/errors"
	phttp "glolotto/internal/platform/net/http"
	"glolotto/internal/services/results/domain"
)

// fakeReads records the last call and serves one stored draw on 2024-03-01
type fakeReads struct {
	domain.ReadPort
	last string
}

var stored = domain.DrawRecord{ID: 1, DrawDate: "2024-03-01", Period: "1"}

func (f *fakeReads) rec(call string) []domain.DrawRecord {
	f.last = call
	return []domain.DrawRecord{stored}
}

func (f *fakeReads) Latest(_ context.Context, n int) ([]domain.DrawRecord, error) {
	return f.rec("latest " + itoa(n)), nil
}

func (f *fakeReads) ByDate(_ context.Context, date string) (domain.DrawRecord, bool, error) {
	f.last = "date " + date
	return stored, date == stored.DrawDate, nil
}

func (f *fakeReads) Complete(_ context.Context, date string) (domain.DrawWithPrizes, bool, error) {
	f.last = "complete " + date
	return domain.DrawWithPrizes{Draw: stored, Prizes: []domain.PrizeNumber{}}, date == stored.DrawDate, nil
}

func (f *fakeReads) ByDateRange(_ context.Context, start, end string) ([]domain.DrawRecord, error) {
	if start > end {
		return nil, perr.WithField(perr.InvalidArgf("start after end"), "start_date")
	}
	return f.rec("range " + start + " " + end), nil
}

func (f *fakeReads) ByYear(_ context.Context, year int) ([]domain.DrawRecord, error) {
	return f.rec("year " + itoa(year)), nil
}

func (f *fakeReads) ByMonth(_ context.Context, year, month int) ([]domain.DrawRecord, error) {
	return f.rec("month " + itoa(year) + " " + itoa(month)), nil
}

func (f *fakeReads) AfterDate(_ context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	return f.rec("after " + date + " " + itoa(limit)), nil
}

func (f *fakeReads) BeforeDate(_ context.Context, date string, limit int) ([]domain.DrawRecord, error) {
	return f.rec("before " + date + " " + itoa(limit)), nil
}

func (f *fakeReads) Search(_ context.Context, number string) ([]domain.SearchHit, error) {
	f.last = "search " + number
	return nil, nil
}

func (f *fakeReads) ByCategory(_ context.Context, c string) ([]domain.PrizeNumber, error) {
	f.last = "category " + c
	return []domain.PrizeNumber{}, nil
}

type fakeReporter struct{}

func (fakeReporter) Generate(_ context.Context, date string) (string, error) {
	if date != stored.DrawDate {
		return "", perr.NotFoundf("no draw on %s", date)
	}
	return "<html>report " + date + "</html>", nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func setup(t *testing.T) (httpkit.Router, *fakeReads) {
	t.Helper()
	r := phttp.NewServer("").Router()
	reads := &fakeReads{}
	httpkit.MountAPIV1(r, nil, func(api httpkit.Router) {
		httpkit.MountUnder(api, "/results", nil, func(rr httpkit.Router) {
			Register(rr, reads, fakeReporter{})
		})
	})
	return r, reads
}

func get(r httpkit.Router, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/api/v1/results"+path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestRoutes_Forward(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/latest":                                "latest 0",
		"/latest?limit=5":                        "latest 5",
		"/date/2024-03-01":                       "date 2024-03-01",
		"/date/2024-03-01/complete":              "complete 2024-03-01",
		"/range?start=2024-01-01&end=2024-12-31": "range 2024-01-01 2024-12-31",
		"/year/2024":                             "year 2024",
		"/month/2024/3":                          "month 2024 3",
		"/after/2024-01-01?limit=2":              "after 2024-01-01 2",
		"/before/2024-01-01":                     "before 2024-01-01 0",
		"/search/820866":                         "search 820866",
		"/category/near1":                        "category near1",
	}
	for path, want := range cases {
		r, reads := setup(t)
		rec := get(r, path)
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("GET %s = %d %s", path, rec.Code, rec.Body.String())
		}
		if reads.last != want {
			t.Fatalf("GET %s called %q, want %q", path, reads.last, want)
		}
	}
}

func TestRoutes_ListEnvelope(t *testing.T) {
	t.Parallel()

	r, _ := setup(t)
	env := decode(t, get(r, "/latest"))
	if env.Count == nil || *env.Count != 1 {
		t.Fatalf("count = %v", env.Count)
	}

	env = decode(t, get(r, "/search/1"))
	if env.Count == nil || *env.Count != 0 {
		t.Fatalf("empty search count = %v", env.Count)
	}
	if data, ok := env.Data.([]any); !ok || len(data) != 0 {
		t.Fatalf("empty search data = %#v, want []", env.Data)
	}
}

func TestRoutes_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path   string
		status int
		field  string
	}{
		{"/date/2030-01-01", stdhttp.StatusNotFound, ""},
		{"/date/2030-01-01/complete", stdhttp.StatusNotFound, ""},
		{"/latest?limit=abc", stdhttp.StatusUnprocessableEntity, "limit"},
		{"/latest?limit=0", stdhttp.StatusBadRequest, "limit"},
		{"/latest?limit=5000", stdhttp.StatusBadRequest, "limit"},
		{"/year/twenty", stdhttp.StatusUnprocessableEntity, "year"},
		{"/month/2024/march", stdhttp.StatusUnprocessableEntity, "month"},
		{"/range?start=2024-12-01&end=2024-01-01", stdhttp.StatusUnprocessableEntity, "start_date"},
		{"/report/2030-01-01", stdhttp.StatusNotFound, ""},
	}
	for _, tc := range cases {
		r, _ := setup(t)
		rec := get(r, tc.path)
		if rec.Code != tc.status {
			t.Fatalf("GET %s = %d, want %d (%s)", tc.path, rec.Code, tc.status, rec.Body.String())
		}
		if env := decode(t, rec); env.Field != tc.field {
			t.Fatalf("GET %s field = %q, want %q", tc.path, env.Field, tc.field)
		}
	}
}

func TestRoutes_Report(t *testing.T) {
	t.Parallel()

	r, _ := setup(t)
	rec := get(r, "/report/2024-03-01")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "report 2024-03-01") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRegister_WithoutReporter(t *testing.T) {
	t.Parallel()

	r := phttp.NewServer("").Router()
	Register(r, &fakeReads{}, nil)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/report/2024-03-01", nil))
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

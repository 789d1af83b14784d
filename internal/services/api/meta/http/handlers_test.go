package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "glolotto/internal/platform/net/http"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, out any) int {
	t.Helper()
	r := phttp.NewServer("").Router()
	Register(r, d)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("GET %s: %v (%s)", path, err, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("GET %s data: %v", path, err)
	}
	return rec.Code
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		db   any
		want string
		st   string
	}{
		{"ok", pinger{}, "ok", "ok"},
		{"fail", pinger{err: errors.New("closed")}, "fail", "fail"},
		{"no db", nil, "degraded", "skipped"},
		{"no ping", struct{}{}, "degraded", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got ReadyResponse
			code := get(t, Deps{ServiceName: "glolotto-api", DB: tc.db}, "/ready", &got)
			if code != stdhttp.StatusOK {
				t.Fatalf("code = %d", code)
			}
			if got.Status != tc.want || len(got.Checks) != 1 || got.Checks[0].Status != tc.st {
				t.Fatalf("ready = %+v", got)
			}
		})
	}
}

func TestServiceAndHealth(t *testing.T) {
	started := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	d := Deps{
		ServiceName: "glolotto-api",
		StartedAt:   started,
		Now:         func() time.Time { return started.Add(90 * time.Second) },
	}

	var svc ServiceResponse
	get(t, d, "/service", &svc)
	if svc.Name != "glolotto-api" || svc.Uptime != 90 || svc.Started != "2024-03-01T08:00:00Z" {
		t.Fatalf("service = %+v", svc)
	}

	var h HealthResponse
	get(t, d, "/health", &h)
	if !h.OK || h.Now != "2024-03-01T08:01:30Z" {
		t.Fatalf("health = %+v", h)
	}

	var v struct {
		Service string `json:"service"`
		Version string `json:"version"`
	}
	get(t, d, "/version", &v)
	if v.Service != "glolotto-api" || v.Version == "" {
		t.Fatalf("version = %+v", v)
	}
}

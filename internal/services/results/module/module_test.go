package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"glolotto/internal/core/drawdate"
	"glolotto/internal/modkit"
	"glolotto/internal/modkit/module"
	"glolotto/internal/platform/config"
	phttp "glolotto/internal/platform/net/http"
	"glolotto/internal/platform/store"
	"glolotto/internal/platform/store/sqlite"
	kit "glolotto/internal/platform/testkit"
	"glolotto/internal/services/results/domain"
	"glolotto/internal/services/results/ingest"

	"github.com/stretchr/testify/require"
)

type oneDraw struct{}

func (oneDraw) Fetch(_ context.Context, req drawdate.Request) (domain.NormalizedResult, bool, error) {
	if req.Key() != "2024-03-01" {
		return domain.NormalizedResult{}, false, nil
	}
	return domain.NormalizedResult{
		Date:   "2024-03-01",
		Period: []int{1},
		Prizes: map[domain.Category]domain.Prize{
			domain.First: {Price: "6000000.00", Numbers: []domain.Number{{Round: 1, Value: "820866"}}},
		},
	}, true, nil
}

func TestFromConfig(t *testing.T) {
	t.Setenv("LOTTO_DB_DRIVER", "Postgres")
	t.Setenv("LOTTO_PG_URL", "postgres://lotto@localhost/lotto")
	t.Setenv("LOTTO_PACING", "250ms")
	t.Setenv("LOTTO_FETCH_TIMEOUT", "15")
	t.Setenv("LOTTO_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOTTO_PG_MAX_CONNS", "4")
	t.Setenv("LOTTO_SLOW_SQL_MS", "-1")

	o := FromConfig(config.New())
	require.Equal(t, int32(4), o.StoreConfig().PG.MaxConns)
	require.Equal(t, -1, o.StoreConfig().SlowQueryMs)
	require.Equal(t, store.DialectPostgres, o.DBDriver)
	require.Equal(t, "postgres://lotto@localhost/lotto", o.StoreConfig().PG.URL)
	require.Equal(t, 250*time.Millisecond, o.Pacing)
	require.Equal(t, 15*time.Second, o.FetchTimeout)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, o.Origins)

	require.Equal(t, ingest.DefaultURL, o.APIURL)
	require.Equal(t, "data/lottery.db", o.DBPath)
	require.Equal(t, "reports", o.ReportDir)
	require.Equal(t, ":4000", o.APIAddr)

	t.Setenv("LOTTO_DB_DRIVER", "mysql")
	kit.MustPanic(t, func() { FromConfig(config.New()) })
}

func TestModule_EndToEnd(t *testing.T) {
	ctx := context.Background()
	t.Setenv("LOTTO_REPORT_DIR", t.TempDir())
	t.Setenv("LOTTO_PACING", "-1")

	st, err := store.Open(ctx, store.Config{Driver: store.DialectSQLite, SQLite: store.SQLiteConfig{Path: sqlite.Memory}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(ctx) })

	m := New(modkit.FromStore(config.New(), st), modkit.WithPorts[domain.Fetcher](oneDraw{}))
	require.Equal(t, "results", m.Name())
	require.Equal(t, "/results", m.Prefix())

	ports := module.MustPortsOf[Ports](m)
	require.NoError(t, ports.Store.EnsureSchema(ctx))

	rep, err := ports.Ingest.Run(ctx, []drawdate.Request{drawdate.NewRequest(1, 3, 2024), drawdate.NewRequest(16, 3, 2024)})
	require.NoError(t, err)
	require.True(t, rep.Persisted)
	require.Equal(t, []string{"2024-03-16"}, rep.NoResult)

	hits, err := ports.Reads.Search(ctx, "๘๖๖")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	path, err := ports.Report.Save(ctx, "2024-03-01")
	require.NoError(t, err)
	require.FileExists(t, path)

	r := phttp.NewServer("").Router()
	m.MountRoutes(r)
	for path, want := range map[string]int{
		"/results/latest":                   http.StatusOK,
		"/results/date/2024-03-01/complete": http.StatusOK,
		"/results/date/2024-03-16":          http.StatusNotFound,
		"/results/report/2024-03-01":        http.StatusOK,
		"/results/category/jackpot":         http.StatusUnprocessableEntity,
	} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, want, rec.Code, "GET %s: %s", path, rec.Body.String())
	}
}

func TestNew_RequiresDB(t *testing.T) {
	kit.MustPanic(t, func() { New(modkit.Deps{Cfg: config.New()}) })
}

func TestOpen_FromEnv(t *testing.T) {
	ctx := context.Background()
	t.Setenv("LOTTO_DB_DRIVER", "sqlite")
	t.Setenv("LOTTO_DB_PATH", sqlite.Memory)

	op, err := Open(ctx, config.New(), modkit.WithPorts[domain.Fetcher](oneDraw{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = op.Close(ctx) })

	ok, err := op.Ports.Store.Exists(ctx, "2024-03-01")
	require.NoError(t, err)
	require.False(t, ok)

	rep, err := op.Ports.Ingest.Run(ctx, []drawdate.Request{drawdate.NewRequest(1, 3, 2024)})
	require.NoError(t, err)
	require.True(t, rep.Persisted)
	require.NoError(t, op.Store.Guard(ctx))
}

package module

import (
	"time"

	"glolotto/internal/platform/config"
	"glolotto/internal/platform/store"
	"glolotto/internal/services/report"
	"glolotto/internal/services/results/ingest"
	"glolotto/internal/services/results/service"
)

// Options holds configuration settings for the results module
type Options struct {
	DBDriver store.Dialect
	DBPath   string
	PGURL    string
	PGConns  int
	LogSQL   bool
	// SlowSQLMs flags traced statements slower than this; negative disables the flag
	SlowSQLMs int

	APIURL       string
	UserAgent    string
	FetchTimeout time.Duration
	Pacing       time.Duration

	ReportDir string
	APIAddr   string
	Origins   []string
}

// FromConfig reads the results options from config with LOTTO_ prefix
func FromConfig(cfg config.Conf) Options {
	lc := cfg.Prefix("LOTTO_")
	return Options{
		DBDriver: store.Dialect(lc.MayEnum("DB_DRIVER", string(store.DialectSQLite),
			string(store.DialectSQLite), string(store.DialectPostgres))),
		DBPath:    lc.MayString("DB_PATH", "data/lottery.db"),
		PGURL:     lc.MayString("PG_URL", ""),
		PGConns:   lc.MayInt("PG_MAX_CONNS", 0),
		LogSQL:    lc.MayBool("LOG_SQL", false),
		SlowSQLMs: lc.MayInt("SLOW_SQL_MS", 200),

		APIURL:       lc.MayString("API_URL", ingest.DefaultURL),
		UserAgent:    lc.MayString("USER_AGENT", ingest.DefaultUserAgent),
		FetchTimeout: lc.MayDuration("FETCH_TIMEOUT", 0),
		Pacing:       lc.MayDuration("PACING", service.DefaultPacing),

		ReportDir: lc.MayString("REPORT_DIR", report.DefaultDir),
		APIAddr:   lc.MayString("API_ADDR", ":4000"),
		Origins:   lc.MayCSV("CORS_ORIGINS", []string{"*"}),
	}
}

// StoreConfig is the store.Config these options select
func (o Options) StoreConfig() store.Config {
	return store.Config{
		Driver:      o.DBDriver,
		LogSQL:      o.LogSQL,
		SlowQueryMs: o.SlowSQLMs,
		SQLite:      store.SQLiteConfig{Path: o.DBPath},
		PG:          store.PGConfig{URL: o.PGURL, MaxConns: int32(o.PGConns)},
	}
}

package store

import "time"

// Config selects and configures the backend
type Config struct {
	Driver Dialect

	// LogSQL turns on the zerolog query tracer for either backend
	LogSQL      bool
	SlowQueryMs int

	SQLite SQLiteConfig
	PG     PGConfig
}

// SQLiteConfig configures the sqlite file
type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// PGConfig configures postgres connectivity
type PGConfig struct {
	URL      string
	MaxConns int32

	// boot knobs; zero means the defaults in openPG
	ConnectRetries int
	PingTimeout    time.Duration
}

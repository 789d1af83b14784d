// Package modkit provides module wiring and core deps
package modkit

import (
	"glolotto/internal/modkit/repokit"
	"glolotto/internal/platform/config"
	"glolotto/internal/platform/logger"
	"glolotto/internal/platform/store"
)

// Deps holds core dependencies passed to modules
type Deps struct {
	Log     *logger.Logger
	Cfg     config.Conf
	DB      repokit.TxRunner
	Dialect store.Dialect
}

// FromStore fills DB and Dialect from an opened store
func FromStore(cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: logger.Get(), Cfg: cfg}
	if st != nil {
		d.DB = st.DB
		d.Dialect = st.Dialect
	}
	return d
}

// Logger returns Log or the root logger when unset
func (d Deps) Logger() *logger.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logger.Get()
}

package module

import (
	"context"

	"glolotto/internal/modkit"
	"glolotto/internal/modkit/module"
	"glolotto/internal/platform/config"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	"glolotto/internal/platform/store"
)

// Opened is a results module bound to an open store
type Opened struct {
	Module *Module
	Ports  Ports
	Store  *store.Store
}

// Close releases the store
func (o *Opened) Close(ctx context.Context) error { return o.Store.Close(ctx) }

// Open opens the store selected by the LOTTO_ options, builds the module on it
// and makes sure the schema exists. Binaries share this bootstrap
func Open(ctx context.Context, cfg config.Conf, opts ...modkit.Option) (*Opened, error) {
	o := FromConfig(cfg)
	st, err := store.Open(ctx, o.StoreConfig(), store.WithLogger(*logger.Get()))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStorage, "open %s store", o.DBDriver)
	}

	m := New(modkit.FromStore(cfg, st), opts...)
	ports := module.MustPortsOf[Ports](m)
	if err := ports.Store.EnsureSchema(ctx); err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	logger.C(ctx).Debug().Str("driver", string(o.DBDriver)).Msg("results store ready")
	return &Opened{Module: m, Ports: ports, Store: st}, nil
}

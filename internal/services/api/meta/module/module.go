// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	modkit "glolotto/internal/modkit"
	"glolotto/internal/modkit/httpkit"
	str "glolotto/internal/platform/strings"

	metahttp "glolotto/internal/services/api/meta/http"
)

// ServiceName is reported by /meta endpoints unless LOTTO_SERVICE_NAME is set
const ServiceName = "glolotto-api"

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	register func(httpkit.Router)

	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}

	service := deps.Cfg.Prefix("LOTTO_").MayString("SERVICE_NAME", ServiceName)

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: service,
			StartedAt:   m.startedAt,
			DB:          deps.DB,
		})
		external(r)
	}

	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, m.register)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }

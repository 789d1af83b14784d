// Package module wires the results service, its store and its routes using modkit
package module

import (
	"net/http"

	"glolotto/internal/modkit"
	"glolotto/internal/modkit/httpkit"
	"glolotto/internal/modkit/repokit"
	str "glolotto/internal/platform/strings"
	"glolotto/internal/services/report"
	"glolotto/internal/services/results/domain"
	resultshttp "glolotto/internal/services/results/http"
	"glolotto/internal/services/results/ingest"
	"glolotto/internal/services/results/repo"
	"glolotto/internal/services/results/service"
)

// Ports exposed by the results module
type Ports struct {
	Ingest domain.IngestPort
	Reads  domain.ReadPort
	Report *report.Service
	Store  domain.ResultStore
}

// Module implements the results module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	ports    Ports
	register func(httpkit.Router)
}

// New constructs the results module from deps; the fetcher and pacing come from
// the LOTTO_ options unless a domain.Fetcher is injected with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("results"), modkit.WithPrefix("/results")}, opts...)...)
	o := FromConfig(deps.Cfg)

	if deps.DB == nil {
		panic("results module requires a non nil DB")
	}
	store := repokit.MustBind(repo.New(deps.Dialect), deps.DB)

	var fetch domain.Fetcher
	if f, ok := b.Ports.(domain.Fetcher); ok {
		fetch = f
	} else {
		fetch = ingest.NewFetcher(ingest.Config{URL: o.APIURL, UserAgent: o.UserAgent, Timeout: o.FetchTimeout})
	}

	svc := service.New(store, fetch, service.Config{Pacing: o.Pacing})
	rep := report.New(svc, report.Config{Dir: o.ReportDir})

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports: Ports{
			Ingest: svc,
			Reads:  svc,
			Report: rep,
			Store:  store,
		},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		resultshttp.Register(r, svc, rep)
		external(r)
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, m.register)
}

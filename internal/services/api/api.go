// Package api mounts the read-only HTTP API
package api

import (
	"time"

	"glolotto/internal/platform/config"
	phttp "glolotto/internal/platform/net/http"

	"glolotto/internal/modkit"
	"glolotto/internal/modkit/httpkit"
	"glolotto/internal/modkit/module"
	"glolotto/internal/modkit/swaggerkit"

	metamod "glolotto/internal/services/api/meta/module"
	resultsmod "glolotto/internal/services/results/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Results        *resultsmod.Opened
	Origins        []string
	Timeout        time.Duration
	SlowRequest    time.Duration
	EnableProfiler bool
	EnableDocs     bool
}

// Mount mounts the meta and results modules under /api/v1 and returns them
func Mount(r phttp.Router, opt Options) []module.Module {
	deps := modkit.FromStore(opt.Config, opt.Results.Store)

	mods := []module.Module{
		metamod.New(deps),
		opt.Results.Module,
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		Origins:     opt.Origins,
		Timeout:     opt.Timeout,
		SlowRequest: opt.SlowRequest,
	})
	// docs + profiler
	swaggerkit.Mount(r, opt.EnableDocs)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	log := deps.Logger()
	for _, m := range mods {
		log.Info().Str("module", m.Name()).Str("prefix", "/api/v1"+m.Prefix()).Msg("module mounted")
	}
	log.Debug().Strs("registered", module.Names()).Msg("port registry ready")
	return mods
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"glolotto/internal/modkit/repokit"
	"glolotto/internal/platform/config"
	"glolotto/internal/platform/logger"
	phttp "glolotto/internal/platform/net/http"
	"glolotto/internal/services/api"
	resultsmod "glolotto/internal/services/results/module"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("LOTTO_API_")
	opts := resultsmod.FromConfig(root)

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := resultsmod.Open(ctx, root)
	if err != nil {
		l.Panic().Err(err).Msg("open results store")
	}
	defer func() {
		if err := res.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(ctx, res.Store)

	srv := phttp.NewServer(opts.APIAddr)
	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Results:        res,
		Origins:        opts.Origins,
		Timeout:        apiCfg.MayDuration("TIMEOUT", 0),
		SlowRequest:    apiCfg.MayDuration("SLOW", 0),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		EnableDocs:     apiCfg.MayBool("DOCS", false),
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"glolotto/internal/core/version"
	"glolotto/internal/platform/config"
	"glolotto/internal/platform/logger"
	"glolotto/internal/services/results/module"
	"glolotto/internal/services/rpc"
)

func main() {
	// stdout is the protocol channel
	opt := logger.FromEnv()
	opt.Output = "stderr"
	opt.Service = "glolotto-rpc"
	logger.Init(opt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	res, err := module.Open(ctx, root)
	if err != nil {
		l.Fatal().Err(err).Msg("open results store")
	}
	defer func() {
		if err := res.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	srv := rpc.New(rpc.Deps{
		Ingest:  res.Ports.Ingest,
		Reads:   res.Ports.Reads,
		Reports: res.Ports.Report,
		Schema:  res.Ports.Store,
	}, rpc.Config{
		Version: version.Version(),
		MaxLine: root.Prefix("LOTTO_RPC_").MayInt("MAX_LINE", 0),
	})

	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		l.Error().Err(err).Msg("tool server stopped")
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"glolotto/internal/cli"
	"glolotto/internal/platform/logger"
)

func main() {
	// stdout carries tables and messages
	opt := logger.FromEnv()
	opt.Output = "stderr"
	opt.Service = "glolotto"
	logger.Init(opt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRoot(cli.OpenFromEnv).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

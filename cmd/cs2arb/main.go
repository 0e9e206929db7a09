package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cs2arb/internal/application"
	"cs2arb/internal/config"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load", logx.Error(err))
		os.Exit(1)
	}

	log := application.NewLogger(cfg.App)
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	if err := application.Run(ctx, cfg); err != nil {
		log.Error("application failed", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}

	log.Info("application stopped")
}

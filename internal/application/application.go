// Package application собирает сервис: хранилище, фиды, движок сигналов,
// планировщик, HTTP API, бот и служебные серверы.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cs2arb/internal/config"
	"cs2arb/internal/infrastructure/notifier"
	"cs2arb/internal/server"
	"cs2arb/internal/transport/bot"
	"cs2arb/internal/transport/bot/handler"
	"cs2arb/internal/worker"
	"cs2arb/pkg/application/modules"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

const readHeaderTimeout = 10 * time.Second

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// NewLogger — корневой логгер сервиса с именем и версией приложения.
func NewLogger(cfg config.App) *slog.Logger {
	return logx.NewLogger(os.Stdout, cfg.LogLevel).With(
		slog.String(logx.FieldAppName, cfg.Name),
		slog.String(logx.FieldAppVersion, cfg.Version),
	)
}

// Run блокирует до отмены ctx или падения одного из модулей.
func Run(ctx context.Context, cfg config.Config) error {
	log := logger(ctx)

	c, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(ctx)

	scheduler := worker.NewScheduler(worker.Tasks(
		c.ingest,
		c.engine,
		c.lifecycle,
		c.watchlist,
		worker.Intervals{
			Buff:       cfg.Scheduler.BuffInterval,
			CSFloat:    cfg.Scheduler.CSFloatInterval,
			DirectionB: cfg.Scheduler.DirectionBInterval,
			Cleanup:    cfg.Scheduler.CleanupInterval,
		},
		worker.MaxAges{
			Signal:  cfg.Arbitrage.SignalMaxAge,
			Listing: cfg.Arbitrage.ListingMaxAge,
		},
	)...).
		WithTick(cfg.Scheduler.Tick).
		WithErrorBackoff(cfg.Scheduler.ErrorBackoff).
		WithInitialRun(worker.TaskBuffScan, worker.TaskCSFloatScan)

	g, ctx := errgroup.WithContext(ctx)

	srv := server.NewServer(
		server.NewSignalServer(c.lifecycle, scheduler, c.watchlist, cfg.Arbitrage.FXCNYToUSD),
		server.NewTradeServer(c.ledger),
		server.NewWatchlistServer(c.watchlist),
	)

	modules.HTTPServer{ShutdownTimeout: cfg.Server.ShutdownTimeout}.Run(ctx, g, &http.Server{
		Addr:              cfg.Server.HTTPAddress,
		Handler:           server.NewRouter(srv, log, cfg.Server.LogFieldMaxLen),
		ReadHeaderTimeout: readHeaderTimeout,
	})

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Server.ProbeAddress,
	}.Run(ctx, g)

	modules.MetricServer{ListenAddress: cfg.Server.MetricsAddress}.Run(ctx, g)

	if c.asynq != nil {
		modules.AsynqServer{
			RedisUsername: cfg.Redis.Username,
			RedisPassword: cfg.Redis.Password,
			RedisAddress:  cfg.Redis.Address,
			RedisDB:       cfg.Redis.DatabaseNumber,
		}.Run(ctx, g,
			modules.AsynqQueues{notifier.QueueAlerts: 1},
			modules.AsynqHandler{Pattern: notifier.TaskSignalAlert, Handle: notifier.Handler(c.delivery)},
		)
	}

	switch {
	case c.telegram == nil:
		log.Info("BOT_TOKEN is not set: operator bot disabled")
	case cfg.Bot.AdminID == 0:
		log.Warn("BOT_ADMIN_ID is not set: operator bot disabled")
	default:
		h := handler.New(c.lifecycle, c.ledger, scheduler, c.watchlist, cfg.Arbitrage.FXCNYToUSD)
		operator := bot.New(c.telegram, h, cfg.Bot.AdminID)

		g.Go(func() error {
			return operator.Run(ctx)
		})
	}

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}

	log.Info("application started",
		slog.String("store", cfg.App.StoreDriver),
		slog.Bool("redis", cfg.Redis.Enabled()),
		slog.Int("watchlist", c.watchlist.Len()),
	)

	err = g.Wait()

	scheduler.Stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("application: %w", err)
	}

	log.Info("application stopping...")

	return nil
}

// Package bot — операторский Telegram-бот: ранжирование, сводки, журнал сделок
// и управление сканером.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"cs2arb/internal/transport/bot/handler"
	"cs2arb/internal/transport/bot/middleware"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

const longPollingTimeout = 60

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Bot struct {
	api     *telego.Bot
	handler *handler.Handler
	adminID int64
}

func New(api *telego.Bot, h *handler.Handler, adminID int64) *Bot {
	return &Bot{
		api:     api,
		handler: h,
		adminID: adminID,
	}
}

// Run принимает обновления long polling до отмены ctx.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: longPollingTimeout,
	})
	if err != nil {
		return fmt.Errorf("updates via long polling: %w", err)
	}

	bh, err := th.NewBotHandler(b.api, updates)
	if err != nil {
		return fmt.Errorf("create bot handler: %w", err)
	}

	bh.Use(middleware.Logger(logger(ctx)))
	b.handler.RegisterRoutes(bh, b.adminID)

	go func() {
		if err := bh.Start(); err != nil {
			logger(ctx).Error("bot handler stopped", logx.Error(err))
		}
	}()

	logger(ctx).Info("operator bot started", slog.Int64("admin-id", b.adminID))

	<-ctx.Done()

	if err := bh.Stop(); err != nil {
		logger(ctx).Error("stop bot handler", logx.Error(err))
	}

	logger(ctx).Info("operator bot stopped")

	return nil
}

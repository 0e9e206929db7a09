package middleware

import (
	"log/slog"
	"strconv"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"github.com/rs/xid"

	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

// Logger кладёт в контекст логгер обновления с trace id и id пользователя.
func Logger(base *slog.Logger) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		traceID := xid.New().String()

		l := base.With(
			slog.String(logx.FieldTraceID, traceID),
			slog.Int("update-id", update.UpdateID),
		)

		next := contextx.WithTraceID(ctx, contextx.TraceID(traceID))

		var userID int64
		switch {
		case update.Message != nil && update.Message.From != nil:
			userID = update.Message.From.ID
		case update.CallbackQuery != nil:
			userID = update.CallbackQuery.From.ID
		}
		if userID != 0 {
			id := strconv.FormatInt(userID, 10)
			l = l.With(slog.String(logx.FieldUserID, id))
			next = contextx.WithUserID(next, contextx.UserID(id))
		}

		next = contextx.WithLogger(next, l)

		return ctx.WithContext(next).Next(update)
	}
}

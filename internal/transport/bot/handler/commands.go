package handler

import (
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"cs2arb/internal/domain"
	"cs2arb/internal/transport/bot/view"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/logx"
)

const tradesLimit = 15

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	stats, err := h.signals.Stats(ctx)
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.FormatStatus(view.Status{
		Running:       h.scanner.IsRunning(),
		Stats:         stats,
		WatchlistSize: h.watchlist.Len(),
	}))
}

// OnOpps показывает первую страницу ранжирования: /opps [a|b] [minRoi].
func (h *Handler) OnOpps(ctx *th.Context, msg telego.Message) error {
	filter, err := ParseOppsArgs(strings.Fields(commandArgument(msg.Text)))
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.OppsInvalidArgs)
	}

	text, keyboard, err := h.oppsPage(ctx, filter, 1)
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, err)
	}

	params := &telego.SendMessageParams{
		ChatID:    tu.ID(msg.Chat.ID),
		Text:      text,
		ParseMode: telego.ModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err = ctx.Bot().SendMessage(ctx, params)
	return err
}

func (h *Handler) OnItem(ctx *th.Context, msg telego.Message) error {
	name := commandArgument(msg.Text)
	if name == "" {
		return h.sendHTML(ctx, msg.Chat.ID, view.ItemMissingArg)
	}

	overview, err := h.signals.ItemOverview(ctx, name)
	switch {
	case domain.HasCode(err, errcodes.ItemNotFound):
		return h.sendHTML(ctx, msg.Chat.ID, view.ItemNotFound)
	case err != nil:
		return h.fail(ctx, msg.Chat.ID, err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.FormatOverview(overview, h.fx))
}

// OnTrades: /trades [open].
func (h *Handler) OnTrades(ctx *th.Context, msg telego.Message) error {
	openOnly := strings.EqualFold(commandArgument(msg.Text), "open")

	trades, err := h.trades.List(ctx, openOnly, tradesLimit)
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.FormatTrades(trades))
}

func (h *Handler) OnProfit(ctx *th.Context, msg telego.Message) error {
	profit, err := h.trades.RealizedProfit(ctx)
	if err != nil {
		return h.fail(ctx, msg.Chat.ID, err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.FormatProfit(profit))
}

func (h *Handler) OnStartScan(ctx *th.Context, msg telego.Message) error {
	if h.scanner.IsRunning() {
		return h.sendHTML(ctx, msg.Chat.ID, view.ScannerAlreadyOn)
	}

	if err := h.scanner.Start(ctx); err != nil {
		return h.fail(ctx, msg.Chat.ID, err)
	}

	logger(ctx).Info("scanner started from bot", "user", msg.From.ID)

	return h.sendHTML(ctx, msg.Chat.ID, view.ScannerStarted)
}

func (h *Handler) OnStopScan(ctx *th.Context, msg telego.Message) error {
	if !h.scanner.IsRunning() {
		return h.sendHTML(ctx, msg.Chat.ID, view.ScannerAlreadyOff)
	}

	h.scanner.Stop()

	logger(ctx).Info("scanner stopped from bot", "user", msg.From.ID)

	return h.sendHTML(ctx, msg.Chat.ID, view.ScannerStopped)
}

func (h *Handler) OnWatch(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.FormatWatchlist(h.watchlist.List()))
}

func (h *Handler) OnWatchAdd(ctx *th.Context, msg telego.Message) error {
	name := commandArgument(msg.Text)
	if name == "" {
		return h.sendHTML(ctx, msg.Chat.ID, view.WatchMissingArg)
	}

	if !h.watchlist.Add(name) {
		return h.sendHTML(ctx, msg.Chat.ID, view.WatchExists(name))
	}

	if err := h.watchlist.Save(ctx); err != nil {
		return h.fail(ctx, msg.Chat.ID, err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.WatchAdded(name))
}

func (h *Handler) OnWatchRemove(ctx *th.Context, msg telego.Message) error {
	name := commandArgument(msg.Text)
	if name == "" {
		return h.sendHTML(ctx, msg.Chat.ID, view.WatchMissingArg)
	}

	if !h.watchlist.Remove(name) {
		return h.sendHTML(ctx, msg.Chat.ID, view.WatchMissing(name))
	}

	if err := h.watchlist.Save(ctx); err != nil {
		return h.fail(ctx, msg.Chat.ID, err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.WatchRemoved(name))
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    tu.ID(chatID),
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	return err
}

// fail логирует ошибку и отвечает оператору общим сообщением.
func (h *Handler) fail(ctx *th.Context, chatID int64, err error) error {
	logger(ctx).Error("bot command failed", logx.Error(err))
	return h.sendHTML(ctx, chatID, view.InternalError)
}

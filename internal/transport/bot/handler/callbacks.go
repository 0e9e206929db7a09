package handler

import (
	"context"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"cs2arb/internal/transport/bot/view"
	"cs2arb/pkg/logx"
)

const callbackNoop = "noop"

// OnOppsCallback листает ранжирование, открытое через /opps.
func (h *Handler) OnOppsCallback(ctx *th.Context, query telego.CallbackQuery) error {
	filter, page, err := ParseOppsCallback(query.Data)
	if err != nil {
		return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
	}

	text, keyboard, err := h.oppsPage(ctx, filter, page)
	if err != nil {
		logger(ctx).Error("opps page", logx.Error(err))
		return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText(view.InternalError).WithShowAlert())
	}

	if query.Message != nil {
		_, err = ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(query.Message.GetChat().ID),
			MessageID:   query.Message.GetMessageID(),
			Text:        text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: keyboard,
		})
		// Telegram отвечает ошибкой, если текст не изменился.
		if err != nil {
			logger(ctx).Debug("edit opps message", logx.Error(err))
		}
	}

	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
}

func (h *Handler) OnNoopCallback(ctx *th.Context, query telego.CallbackQuery) error {
	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
}

func (h *Handler) oppsPage(ctx context.Context, filter OppsFilter, page int) (string, *telego.InlineKeyboardMarkup, error) {
	signals, err := h.signals.Top(ctx, filter.Query())
	if err != nil {
		return "", nil, err
	}

	page, pages, start, end := pageBounds(len(signals), page)

	text := view.FormatOpps(signals[start:end], page, pages)
	if pages == 1 {
		return text, nil, nil
	}

	return text, paginationKeyboard(filter, page, pages), nil
}

func paginationKeyboard(filter OppsFilter, page, pages int) *telego.InlineKeyboardMarkup {
	var buttons []telego.InlineKeyboardButton

	if page > 1 {
		buttons = append(buttons, tu.InlineKeyboardButton("⬅️").WithCallbackData(filter.CallbackData(page-1)))
	}

	buttons = append(buttons, tu.InlineKeyboardButton(view.PageLabel(page, pages)).WithCallbackData(callbackNoop))

	if page < pages {
		buttons = append(buttons, tu.InlineKeyboardButton("➡️").WithCallbackData(filter.CallbackData(page+1)))
	}

	return tu.InlineKeyboard(tu.InlineKeyboardRow(buttons...))
}

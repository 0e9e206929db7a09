// Package notifier доставляет алерты о новых сигналах.
package notifier

import (
	"context"
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
)

// TelegramBot шлёт алерты в один чат.
type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(bot *telego.Bot, chatID int64) *TelegramBot {
	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}
}

func (b *TelegramBot) SendSignal(ctx context.Context, sig entity.Signal) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		FormatSignal(sig),
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// FormatSignal — HTML-текст алерта.
func FormatSignal(sig entity.Signal) string {
	route := "CSFloat ➜ Buff"
	if sig.Direction == value.DirectionBuffToCSFloat {
		route = "Buff ➜ CSFloat"
	}

	return fmt.Sprintf(
		"🔥 <b>New signal (%s)</b>\n\n"+
			"🎯 <b>Item:</b> %s\n"+
			"🔁 <b>Route:</b> %s\n"+
			"🛒 <b>Buy:</b> $%.2f\n"+
			"💰 <b>Sell:</b> $%.2f\n"+
			"📈 <b>ROI:</b> %.1f%%\n"+
			"🆔 <code>%d</code>",
		sig.Direction.Short(),
		html.EscapeString(sig.MarketHashName),
		route,
		sig.BuyPriceUSD(),
		sig.SellPriceUSD(),
		sig.ROI*100, //nolint:mnd
		sig.ID,
	)
}

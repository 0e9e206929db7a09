// Package view форматирует ответы операторского бота (HTML parse mode).
package view

import (
	"fmt"
	"html"
	"strings"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/ledger"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/value"
)

const StartMessage = `🤖 <b>CS2 арбитраж Buff163 ⇄ CSFloat</b>

/status — состояние сканера и счётчики
/opps [a|b] [minRoi] — лучшие сигналы
/item <i>название</i> — сводка по предмету
/trades [open] — журнал сделок
/profit — реализованная прибыль
/startscan, /stopscan — управление сканером
/watch — список наблюдения
/watchadd <i>название</i>, /watchremove <i>название</i>`

const (
	OppsEmpty          = "📭 Активных сигналов нет"
	OppsInvalidArgs    = "❌ Использование: /opps [a|b] [minRoi], например /opps a 0.15"
	ItemMissingArg     = "❌ Использование: /item <i>название</i>"
	ItemNotFound       = "🔍 Предмет не найден"
	TradesEmpty        = "📭 Сделок нет"
	WatchEmpty         = "📋 Список наблюдения пуст\n\nДобавить: /watchadd <i>название</i>"
	WatchMissingArg    = "❌ Укажите название предмета"
	ScannerStarted     = "▶️ Сканер запущен"
	ScannerStopped     = "⏹ Сканер остановлен"
	ScannerAlreadyOn   = "Сканер уже запущен"
	ScannerAlreadyOff  = "Сканер не запущен"
	InternalError      = "⚠️ Внутренняя ошибка, подробности в логах"
	OppsPageSize       = 5
	CallbackOppsPrefix = "opps"
)

// Status — данные для /status.
type Status struct {
	Running       bool
	Stats         lifecycle.Stats
	WatchlistSize int
}

func FormatStatus(s Status) string {
	scanner := "🔴 остановлен"
	if s.Running {
		scanner = "🟢 работает"
	}

	return fmt.Sprintf(`📊 <b>Статус</b>

🔍 <b>Сканер:</b> %s
📦 <b>Предметов:</b> %d
🏷 <b>Активных листингов:</b> %d
📈 <b>Сигналов A:</b> %d
📉 <b>Сигналов B:</b> %d
👀 <b>В наблюдении:</b> %d`,
		scanner,
		s.Stats.Items,
		s.Stats.ActiveListings,
		s.Stats.ActiveSignals[value.DirectionCSFloatToBuff],
		s.Stats.ActiveSignals[value.DirectionBuffToCSFloat],
		s.WatchlistSize,
	)
}

// FormatOpps выводит одну страницу ранжирования. page начинается с 1.
func FormatOpps(signals []entity.Signal, page, pages int) string {
	if len(signals) == 0 {
		return OppsEmpty
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💹 <b>Сигналы</b> (стр. %d/%d)\n\n", page, pages)

	for _, s := range signals {
		fmt.Fprintf(&sb, "<b>%s</b> %s\n  %s $%.2f → $%.2f · ROI %.1f%% · #%d\n",
			s.Direction.Short(),
			html.EscapeString(s.MarketHashName),
			route(s.Direction),
			s.BuyPriceUSD(),
			s.SellPriceUSD(),
			s.ROI*100,
			s.ID,
		)
	}

	return sb.String()
}

func FormatOverview(o lifecycle.Overview, fx float64) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🎯 <b>%s</b>\n", html.EscapeString(o.Item.MarketHashName))
	fmt.Fprintf(&sb, "goods_id: <code>%d</code>\n", o.Item.GoodsID)

	if o.Snapshot != nil {
		fmt.Fprintf(&sb, "\nBuff флор: ¥%.2f ($%.2f)\nСрез: %s\n",
			o.Snapshot.OverallMinCNY,
			o.Snapshot.FloorUSD(fx),
			o.Snapshot.Timestamp.UTC().Format("2006-01-02 15:04"),
		)
	} else {
		sb.WriteString("\nСрезов цен Buff нет\n")
	}

	if len(o.Listings) > 0 {
		sb.WriteString("\n<b>Листинги CSFloat:</b>\n")
		for _, l := range o.Listings {
			fmt.Fprintf(&sb, "  $%.2f", l.PriceUSD())
			if l.FloatValue != nil {
				fmt.Fprintf(&sb, " · float %.4f", *l.FloatValue)
			}
			sb.WriteString("\n")
		}
	}

	if len(o.Signals) > 0 {
		sb.WriteString("\n<b>Сигналы:</b>\n")
		for _, s := range o.Signals {
			state := "активен"
			if !s.IsActive {
				state = "неактивен"
			}
			fmt.Fprintf(&sb, "  %s ROI %.1f%% · %s\n", s.Direction.Short(), s.ROI*100, state)
		}
	}

	return sb.String()
}

func FormatTrades(trades []entity.Trade) string {
	if len(trades) == 0 {
		return TradesEmpty
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📒 <b>Сделки (%d)</b>\n\n", len(trades))

	for _, t := range trades {
		fmt.Fprintf(&sb, "#%d %s <b>%s</b>\n  купил $%s",
			t.ID, t.Direction.Short(), html.EscapeString(t.MarketHashName), t.BuyPriceUSD.StringFixed(2))

		if profit, ok := t.Profit(); ok {
			fmt.Fprintf(&sb, " · продал $%s · P/L $%s", t.SellPriceUSD.Decimal.StringFixed(2), profit.StringFixed(2))
		} else {
			sb.WriteString(" · открыта")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func FormatProfit(p ledger.Profit) string {
	return fmt.Sprintf("💰 <b>Реализованная прибыль:</b> $%s\nЗакрытых сделок: %d", p.Total.StringFixed(2), p.Closed)
}

func FormatWatchlist(items []string) string {
	if len(items) == 0 {
		return WatchEmpty
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👀 <b>Список наблюдения (%d):</b>\n\n", len(items))
	for i, name := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, html.EscapeString(name))
	}
	return sb.String()
}

func WatchAdded(name string) string {
	return fmt.Sprintf("✅ <b>%s</b> добавлен", html.EscapeString(name))
}

func WatchExists(name string) string {
	return fmt.Sprintf("⚠️ <b>%s</b> уже в списке", html.EscapeString(name))
}

func WatchRemoved(name string) string {
	return fmt.Sprintf("✅ <b>%s</b> удалён", html.EscapeString(name))
}

func WatchMissing(name string) string {
	return fmt.Sprintf("⚠️ <b>%s</b> нет в списке", html.EscapeString(name))
}

func route(d value.Direction) string {
	if d == value.DirectionBuffToCSFloat {
		return "Buff→CF"
	}
	return "CF→Buff"
}

func PageLabel(page, pages int) string {
	return fmt.Sprintf("%d / %d", page, pages)
}

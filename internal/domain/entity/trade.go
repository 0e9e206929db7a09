package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"cs2arb/internal/domain/value"
)

const hoursPerDay = 24

// Trade — ручная запись о совершённой сделке. Доходность, прибыль и срок
// удержания не хранятся: они вычисляются из полей при чтении.
type Trade struct {
	ID             int64
	SignalID       *int64
	MarketHashName string
	Direction      value.Direction
	BuyMarket      value.Market
	SellMarket     *value.Market
	BuyPriceUSD    decimal.Decimal
	SellPriceUSD   decimal.NullDecimal
	BuyTime        time.Time
	SellTime       *time.Time
	Note           string
}

// IsOpen — сделка ещё не закрыта продажей.
func (t Trade) IsOpen() bool {
	return !t.SellPriceUSD.Valid
}

// Profit — sell − buy; не определена без цены продажи.
func (t Trade) Profit() (decimal.Decimal, bool) {
	if !t.SellPriceUSD.Valid {
		return decimal.Decimal{}, false
	}
	return t.SellPriceUSD.Decimal.Sub(t.BuyPriceUSD), true
}

// ROI — (sell − buy) / buy; не определена без цены продажи.
func (t Trade) ROI() (decimal.Decimal, bool) {
	profit, ok := t.Profit()
	if !ok || t.BuyPriceUSD.IsZero() {
		return decimal.Decimal{}, false
	}
	return profit.Div(t.BuyPriceUSD), true
}

// HoldDays — полные сутки между покупкой и продажей.
func (t Trade) HoldDays() (int, bool) {
	if t.SellTime == nil {
		return 0, false
	}
	return int(t.SellTime.Sub(t.BuyTime).Hours() / hoursPerDay), true
}

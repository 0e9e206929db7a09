// Package ledger — ручной журнал совершённых сделок.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/errcodes"
)

const DefaultListLimit = 50

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TradeRepository interface {
	Create(ctx context.Context, trade *entity.Trade) error
	GetByID(ctx context.Context, id int64) (*entity.Trade, error)
	UpdateSell(ctx context.Context, trade *entity.Trade) error
	List(ctx context.Context, openOnly bool, limit int) ([]entity.Trade, error)
}

type SignalRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Signal, error)
	SetActedOn(ctx context.Context, id int64) error
}

type NewTrade struct {
	SignalID       *int64
	MarketHashName string
	Direction      value.Direction
	BuyMarket      value.Market
	SellMarket     *value.Market
	BuyPriceUSD    decimal.Decimal
	SellPriceUSD   decimal.NullDecimal
	Note           string
}

type SellUpdate struct {
	SellPriceUSD decimal.Decimal
	SellMarket   *value.Market
	Note         *string
}

// Profit — реализованная прибыль по закрытым сделкам.
type Profit struct {
	Total  decimal.Decimal
	Closed int
}

type Ledger struct {
	tx      Transactor
	trades  TradeRepository
	signals SignalRepository
	now     func() time.Time
}

func NewLedger(tx Transactor, trades TradeRepository, signals SignalRepository) *Ledger {
	return &Ledger{
		tx:      tx,
		trades:  trades,
		signals: signals,
		now:     time.Now,
	}
}

func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Record сохраняет сделку. Ссылка на сигнал подставляет название предмета
// и в той же транзакции помечает сигнал как исполненный.
func (l *Ledger) Record(ctx context.Context, in NewTrade) (*entity.Trade, error) {
	if !in.Direction.Valid() {
		return nil, domain.NewError(errcodes.InvalidDirection, "unknown direction")
	}

	buyMarket, err := value.ParseMarket(in.BuyMarket.String())
	if err != nil {
		return nil, domain.WrapError(err, errcodes.ValidationError, "unknown buy market")
	}

	if !in.BuyPriceUSD.IsPositive() {
		return nil, domain.NewError(errcodes.InvalidPrice, "buy price must be positive")
	}

	if in.SellPriceUSD.Valid && !in.SellPriceUSD.Decimal.IsPositive() {
		return nil, domain.NewError(errcodes.InvalidPrice, "sell price must be positive")
	}

	now := l.now()
	trade := &entity.Trade{
		SignalID:       in.SignalID,
		MarketHashName: strings.TrimSpace(in.MarketHashName),
		Direction:      in.Direction,
		BuyMarket:      buyMarket,
		SellMarket:     in.SellMarket,
		BuyPriceUSD:    in.BuyPriceUSD,
		SellPriceUSD:   in.SellPriceUSD,
		BuyTime:        now,
		Note:           in.Note,
	}

	if in.SellPriceUSD.Valid {
		trade.SellTime = &now
	}

	err = l.tx.InTx(ctx, func(ctx context.Context) error {
		if in.SignalID != nil {
			sig, err := l.signals.GetByID(ctx, *in.SignalID)
			switch {
			case domain.HasCode(err, errcodes.SignalNotFound):
				// Несуществующий сигнал не блокирует сделку с явным названием.
				logger(ctx).Warn("trade signal not found, link dropped", "signal_id", *in.SignalID)
				trade.SignalID = nil
			case err != nil:
				return fmt.Errorf("get signal: %w", err)
			default:
				trade.MarketHashName = sig.MarketHashName

				if err := l.signals.SetActedOn(ctx, sig.ID); err != nil {
					return fmt.Errorf("mark signal: %w", err)
				}
			}
		}

		if trade.MarketHashName == "" {
			return domain.NewError(errcodes.TradeItemUnresolved, "item name or valid signal id is required")
		}

		if err := l.trades.Create(ctx, trade); err != nil {
			return fmt.Errorf("create trade: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger(ctx).Info("trade recorded",
		"id", trade.ID,
		"name", trade.MarketHashName,
		"direction", trade.Direction.Short(),
		"buy_usd", trade.BuyPriceUSD.StringFixed(2),
	)

	return trade, nil
}

// UpdateSell закрывает сделку: цена продажи, время продажи = сейчас.
func (l *Ledger) UpdateSell(ctx context.Context, id int64, upd SellUpdate) (*entity.Trade, error) {
	if !upd.SellPriceUSD.IsPositive() {
		return nil, domain.NewError(errcodes.InvalidPrice, "sell price must be positive")
	}

	var trade *entity.Trade

	err := l.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if trade, err = l.trades.GetByID(ctx, id); err != nil {
			return fmt.Errorf("get trade: %w", err)
		}

		now := l.now()
		trade.SellPriceUSD = decimal.NewNullDecimal(upd.SellPriceUSD)
		trade.SellTime = &now

		if upd.SellMarket != nil {
			trade.SellMarket = upd.SellMarket
		}
		if upd.Note != nil {
			trade.Note = *upd.Note
		}

		if err := l.trades.UpdateSell(ctx, trade); err != nil {
			return fmt.Errorf("update trade: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	profit, _ := trade.Profit()
	logger(ctx).Info("trade closed", "id", trade.ID, "profit_usd", profit.StringFixed(2))

	return trade, nil
}

func (l *Ledger) Get(ctx context.Context, id int64) (*entity.Trade, error) {
	trade, err := l.trades.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get trade: %w", err)
	}
	return trade, nil
}

// List — сделки, новые первыми; limit ≤ 0 означает DefaultListLimit.
func (l *Ledger) List(ctx context.Context, openOnly bool, limit int) ([]entity.Trade, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	trades, err := l.trades.List(ctx, openOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return trades, nil
}

// RealizedProfit суммирует прибыль по всем закрытым сделкам.
func (l *Ledger) RealizedProfit(ctx context.Context) (Profit, error) {
	trades, err := l.trades.List(ctx, false, 0)
	if err != nil {
		return Profit{}, fmt.Errorf("list trades: %w", err)
	}

	result := Profit{Total: decimal.Zero}
	for _, t := range trades {
		if p, ok := t.Profit(); ok {
			result.Total = result.Total.Add(p)
			result.Closed++
		}
	}

	return result, nil
}

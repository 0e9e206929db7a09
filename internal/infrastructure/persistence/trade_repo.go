package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/errcodes"
)

const tradeColumns = `id, signal_id, market_hash_name, direction, buy_market, sell_market,
	buy_price_usd, sell_price_usd, buy_time, sell_time, note`

type TradeRepository struct {
	db *sqlx.DB
}

func NewTradeRepository(db *sqlx.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) Create(ctx context.Context, trade *entity.Trade) error {
	if trade.BuyTime.IsZero() {
		trade.BuyTime = time.Now()
	}

	query := `
		INSERT INTO trades (
			signal_id, market_hash_name, direction, buy_market, sell_market,
			buy_price_usd, sell_price_usd, buy_time, sell_time, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	if err := conn(ctx, r.db).GetContext(ctx, &trade.ID, query,
		trade.SignalID,
		trade.MarketHashName,
		trade.Direction.String(),
		trade.BuyMarket.String(),
		marketPtr(trade),
		trade.BuyPriceUSD,
		trade.SellPriceUSD,
		trade.BuyTime,
		trade.SellTime,
		trade.Note,
	); err != nil {
		return wrapError(err, "failed to insert trade")
	}

	return nil
}

func (r *TradeRepository) GetByID(ctx context.Context, id int64) (*entity.Trade, error) {
	var schema tradeSchema
	if err := conn(ctx, r.db).GetContext(ctx, &schema,
		`SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id,
	); err != nil {
		return nil, notFound(err, errcodes.TradeNotFound, "trade not found")
	}

	trade := schema.toDomain()
	return &trade, nil
}

// UpdateSell сохраняет сторону продажи и заметку.
func (r *TradeRepository) UpdateSell(ctx context.Context, trade *entity.Trade) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE trades
		SET sell_price_usd = $1, sell_time = $2, sell_market = $3, note = $4
		WHERE id = $5`,
		trade.SellPriceUSD,
		trade.SellTime,
		marketPtr(trade),
		trade.Note,
		trade.ID,
	)
	if err != nil {
		return wrapError(err, "failed to update trade")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return wrapError(err, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.TradeNotFound, "trade not found")
	}
	return nil
}

// List — сделки, новые первыми.
func (r *TradeRepository) List(ctx context.Context, openOnly bool, limit int) ([]entity.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades`
	if openOnly {
		query += ` WHERE sell_price_usd IS NULL`
	}
	query += ` ORDER BY buy_time DESC, id DESC`

	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var schemas []tradeSchema
	if err := conn(ctx, r.db).SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, wrapError(err, "failed to list trades")
	}

	result := make([]entity.Trade, 0, len(schemas))
	for _, s := range schemas {
		result = append(result, s.toDomain())
	}
	return result, nil
}

func marketPtr(trade *entity.Trade) *string {
	if trade.SellMarket == nil {
		return nil
	}
	s := trade.SellMarket.String()
	return &s
}

package memory

import (
	"context"
	"sort"
	"time"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/errcodes"
)

type TradeRepository struct {
	s *Store
}

func (r *TradeRepository) Create(ctx context.Context, trade *entity.Trade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if trade.BuyTime.IsZero() {
		trade.BuyTime = time.Now()
	}

	r.s.tradeID++
	trade.ID = r.s.tradeID
	r.s.trades[trade.ID] = cloneTrade(trade)

	id := trade.ID
	r.s.track(ctx, func() { delete(r.s.trades, id) })
	return nil
}

func (r *TradeRepository) GetByID(_ context.Context, id int64) (*entity.Trade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trade, ok := r.s.trades[id]
	if !ok {
		return nil, domain.NewError(errcodes.TradeNotFound, "trade not found")
	}
	return cloneTrade(trade), nil
}

// UpdateSell сохраняет сторону продажи и заметку.
func (r *TradeRepository) UpdateSell(ctx context.Context, trade *entity.Trade) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.trades[trade.ID]
	if !ok {
		return domain.NewError(errcodes.TradeNotFound, "trade not found")
	}

	prev := cloneTrade(existing)

	existing.SellPriceUSD = trade.SellPriceUSD
	existing.SellTime = trade.SellTime
	existing.SellMarket = trade.SellMarket
	existing.Note = trade.Note

	r.s.track(ctx, func() { r.s.trades[prev.ID] = prev })
	return nil
}

// List — сделки, новые первыми.
func (r *TradeRepository) List(_ context.Context, openOnly bool, limit int) ([]entity.Trade, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]entity.Trade, 0, len(r.s.trades))
	for _, t := range r.s.trades {
		if openOnly && !t.IsOpen() {
			continue
		}
		result = append(result, *cloneTrade(t))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].BuyTime.Equal(result[j].BuyTime) {
			return result[i].BuyTime.After(result[j].BuyTime)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

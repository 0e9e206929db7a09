package handler

import (
	"context"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/ledger"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/pkg/contextx"
)

// Больше сигналов бот не листает.
const oppsFetchLimit = 50

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type SignalService interface {
	Top(ctx context.Context, q lifecycle.TopQuery) ([]entity.Signal, error)
	ItemOverview(ctx context.Context, name string) (lifecycle.Overview, error)
	Stats(ctx context.Context) (lifecycle.Stats, error)
}

type TradeService interface {
	List(ctx context.Context, openOnly bool, limit int) ([]entity.Trade, error)
	RealizedProfit(ctx context.Context) (ledger.Profit, error)
}

type Scanner interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

type Watchlist interface {
	Add(name string) bool
	Remove(name string) bool
	List() []string
	Len() int
	Save(ctx context.Context) error
}

type Handler struct {
	signals   SignalService
	trades    TradeService
	scanner   Scanner
	watchlist Watchlist
	fx        float64
}

func New(signals SignalService, trades TradeService, scanner Scanner, watchlist Watchlist, fx float64) *Handler {
	return &Handler{
		signals:   signals,
		trades:    trades,
		scanner:   scanner,
		watchlist: watchlist,
		fx:        fx,
	}
}

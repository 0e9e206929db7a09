package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/ledger"
	"cs2arb/internal/domain/value"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/httpx/reply"
	"cs2arb/pkg/httpx/req"
	"cs2arb/pkg/rest"
)

const maxTradeLimit = 1000

type tradeService interface {
	Record(ctx context.Context, in ledger.NewTrade) (*entity.Trade, error)
	UpdateSell(ctx context.Context, id int64, upd ledger.SellUpdate) (*entity.Trade, error)
	Get(ctx context.Context, id int64) (*entity.Trade, error)
	List(ctx context.Context, openOnly bool, limit int) ([]entity.Trade, error)
	RealizedProfit(ctx context.Context) (ledger.Profit, error)
}

type TradeServer struct {
	trades tradeService
}

func NewTradeServer(trades tradeService) TradeServer {
	return TradeServer{trades: trades}
}

func (s TradeServer) getV1Trades(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var openOnly bool
	if raw := r.URL.Query().Get("open"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.WrapError(err, errcodes.ValidationError, "invalid open")
		}
		openOnly = v
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxTradeLimit {
			return domain.NewError(errcodes.InvalidPaging, "limit must be between 1 and 1000")
		}
		limit = v
	}

	trades, err := s.trades.List(ctx, openOnly, limit)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, rest.TradeList{
		Items: lo.Map(trades, func(t entity.Trade, _ int) rest.Trade { return newRESTTrade(t) }),
	})

	return nil
}

func (s TradeServer) postV1Trades(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var body rest.CreateTradeRequest
	if err := req.Read(r, &body); err != nil {
		return err
	}

	direction, err := value.ParseDirection(body.Direction)
	if err != nil {
		return domain.WrapError(err, errcodes.InvalidDirection, "invalid direction")
	}

	buyMarket, err := value.ParseMarket(body.BuyMarket)
	if err != nil {
		return domain.WrapError(err, errcodes.ValidationError, "invalid buyMarket")
	}

	sellMarket, err := parseOptionalMarket(body.SellMarket, "invalid sellMarket")
	if err != nil {
		return err
	}

	trade, err := s.trades.Record(ctx, ledger.NewTrade{
		SignalID:       body.SignalID,
		MarketHashName: body.MarketHashName,
		Direction:      direction,
		BuyMarket:      buyMarket,
		SellMarket:     sellMarket,
		BuyPriceUSD:    body.BuyPriceUSD,
		SellPriceUSD:   body.SellPriceUSD,
		Note:           body.Note,
	})
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTTrade(*trade))

	return nil
}

func (s TradeServer) getV1Trade(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"), errcodes.InvalidTradeID)
	if err != nil {
		return err
	}

	trade, err := s.trades.Get(ctx, id)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTTrade(*trade))

	return nil
}

func (s TradeServer) patchV1TradeSell(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"), errcodes.InvalidTradeID)
	if err != nil {
		return err
	}

	var body rest.SellTradeRequest
	if err := req.Read(r, &body); err != nil {
		return err
	}

	sellMarket, err := parseOptionalMarket(body.SellMarket, "invalid sellMarket")
	if err != nil {
		return err
	}

	trade, err := s.trades.UpdateSell(ctx, id, ledger.SellUpdate{
		SellPriceUSD: body.SellPriceUSD,
		SellMarket:   sellMarket,
		Note:         body.Note,
	})
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTTrade(*trade))

	return nil
}

func (s TradeServer) getV1TradesProfit(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	profit, err := s.trades.RealizedProfit(ctx)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Profit{
		TotalUSD:     profit.Total,
		ClosedTrades: profit.Closed,
	})

	return nil
}

func parseOptionalMarket(raw *string, msg string) (*value.Market, error) {
	if raw == nil || *raw == "" {
		return nil, nil //nolint:nilnil
	}

	m, err := value.ParseMarket(*raw)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.ValidationError, msg)
	}
	return &m, nil
}

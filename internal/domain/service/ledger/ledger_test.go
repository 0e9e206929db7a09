package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/ledger"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/infrastructure/memory"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/tests"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func newLedger(store *memory.Store) *ledger.Ledger {
	return ledger.NewLedger(store, store.Trades(), store.Signals()).
		WithClock(func() time.Time { return now })
}

func TestRecordValidation(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	valid := ledger.NewTrade{
		MarketHashName: "AK-47 | Redline (Field-Tested)",
		Direction:      value.DirectionCSFloatToBuff,
		BuyMarket:      value.MarketCSFloat,
		BuyPriceUSD:    decimal.NewFromInt(100),
	}

	testCases := []struct {
		name     string
		mutate   func(in *ledger.NewTrade)
		wantCode string
	}{
		{name: "Unknown direction", mutate: func(in *ledger.NewTrade) { in.Direction = "SIDEWAYS" }, wantCode: string(errcodes.InvalidDirection)},
		{name: "Unknown market", mutate: func(in *ledger.NewTrade) { in.BuyMarket = "steam" }, wantCode: string(errcodes.ValidationError)},
		{name: "Zero buy price", mutate: func(in *ledger.NewTrade) { in.BuyPriceUSD = decimal.Zero }, wantCode: string(errcodes.InvalidPrice)},
		{
			name: "Negative sell price",
			mutate: func(in *ledger.NewTrade) {
				in.SellPriceUSD = decimal.NewNullDecimal(decimal.NewFromInt(-1))
			},
			wantCode: string(errcodes.InvalidPrice),
		},
		{name: "No item and no signal", mutate: func(in *ledger.NewTrade) { in.MarketHashName = "  " }, wantCode: string(errcodes.TradeItemUnresolved)},
		{
			name: "Dangling signal without item",
			mutate: func(in *ledger.NewTrade) {
				in.SignalID = lo.ToPtr(int64(77))
				in.MarketHashName = ""
			},
			wantCode: string(errcodes.TradeItemUnresolved),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			store := memory.NewStore()
			in := valid
			tc.mutate(&in)

			_, err := newLedger(store).Record(ctx, in)
			rq.Error(err)

			code, ok := domain.GetCode(err)
			rq.True(ok)
			rq.Equal(tc.wantCode, string(code))

			trades, err := store.Trades().List(ctx, false, 0)
			rq.NoError(err)
			rq.Empty(trades)
		})
	}
}

func TestRecordInheritsSignal(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	sig := &entity.Signal{
		Direction:      value.DirectionBuffToCSFloat,
		MarketHashName: "AWP | Asiimov (Field-Tested)",
		IsActive:       true,
	}
	rq.NoError(store.Signals().Create(ctx, sig))

	trade, err := newLedger(store).Record(ctx, ledger.NewTrade{
		SignalID:    &sig.ID,
		Direction:   value.DirectionBuffToCSFloat,
		BuyMarket:   "BUFF",
		BuyPriceUSD: decimal.NewFromInt(100),
	})
	rq.NoError(err)
	rq.Equal(sig.MarketHashName, trade.MarketHashName)
	rq.Equal(value.MarketBuff, trade.BuyMarket)
	rq.True(trade.IsOpen())
	rq.Nil(trade.SellTime)

	got, err := store.Signals().GetByID(ctx, sig.ID)
	rq.NoError(err)
	rq.True(got.ActedOn)
}

func TestRecordDanglingSignalFallsBackToItem(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()

	trade, err := newLedger(store).Record(ctx, ledger.NewTrade{
		SignalID:       lo.ToPtr(int64(999)),
		MarketHashName: "AK-47 | Redline (Field-Tested)",
		Direction:      value.DirectionCSFloatToBuff,
		BuyMarket:      value.MarketCSFloat,
		BuyPriceUSD:    decimal.NewFromInt(100),
	})
	rq.NoError(err)
	rq.Equal("AK-47 | Redline (Field-Tested)", trade.MarketHashName)
	rq.Nil(trade.SignalID)

	stored, err := store.Trades().GetByID(ctx, trade.ID)
	rq.NoError(err)
	rq.Nil(stored.SignalID)
	rq.Equal(trade.MarketHashName, stored.MarketHashName)
}

func TestRecordWithSellPriceAndUpdate(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	l := newLedger(store)

	closed, err := l.Record(ctx, ledger.NewTrade{
		MarketHashName: "AK-47 | Redline (Field-Tested)",
		Direction:      value.DirectionCSFloatToBuff,
		BuyMarket:      value.MarketCSFloat,
		BuyPriceUSD:    decimal.NewFromInt(100),
		SellPriceUSD:   decimal.NewNullDecimal(decimal.NewFromInt(120)),
	})
	rq.NoError(err)
	rq.NotNil(closed.SellTime)
	rq.Equal(now, *closed.SellTime)

	profit, ok := closed.Profit()
	rq.True(ok)
	rq.Equal("20", profit.String())
	roi, ok := closed.ROI()
	rq.True(ok)
	rq.Equal("0.2", roi.String())

	open, err := l.Record(ctx, ledger.NewTrade{
		MarketHashName: "M4A1-S | Printstream (Minimal Wear)",
		Direction:      value.DirectionBuffToCSFloat,
		BuyMarket:      value.MarketBuff,
		BuyPriceUSD:    decimal.RequireFromString("250.50"),
	})
	rq.NoError(err)

	openTrades, err := l.List(ctx, true, 0)
	rq.NoError(err)
	rq.Len(openTrades, 1)
	rq.Equal(open.ID, openTrades[0].ID)

	_, err = l.UpdateSell(ctx, open.ID, ledger.SellUpdate{SellPriceUSD: decimal.Zero})
	rq.True(domain.HasCode(err, errcodes.InvalidPrice))

	_, err = l.UpdateSell(ctx, 999, ledger.SellUpdate{SellPriceUSD: decimal.NewFromInt(1)})
	rq.True(domain.HasCode(err, errcodes.TradeNotFound))

	market := value.MarketCSFloat
	note := "sold after trade hold"
	updated, err := l.UpdateSell(ctx, open.ID, ledger.SellUpdate{
		SellPriceUSD: decimal.RequireFromString("240.25"),
		SellMarket:   &market,
		Note:         &note,
	})
	rq.NoError(err)
	rq.False(updated.IsOpen())
	rq.Equal(value.MarketCSFloat, *updated.SellMarket)
	rq.Equal(note, updated.Note)

	openTrades, err = l.List(ctx, true, 0)
	rq.NoError(err)
	rq.Empty(openTrades)

	total, err := l.RealizedProfit(ctx)
	rq.NoError(err)
	rq.Equal(2, total.Closed)
	rq.Equal("9.75", total.Total.String())
}

func TestRealizedProfitSumsClosedTradesOnly(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	l := newLedger(store)
	random := tests.NewRandomizer()

	price := func() decimal.Decimal {
		return decimal.NewFromFloat(random.Float64()*1000 + 1).Round(2)
	}

	want := decimal.Zero
	closed := 0

	for range 20 {
		in := ledger.NewTrade{
			MarketHashName: "AWP | Asiimov (Field-Tested)",
			Direction:      value.DirectionBuffToCSFloat,
			BuyMarket:      value.MarketBuff,
			BuyPriceUSD:    price(),
		}

		if random.Bool() {
			in.SellPriceUSD = decimal.NewNullDecimal(price())
			want = want.Add(in.SellPriceUSD.Decimal.Sub(in.BuyPriceUSD))
			closed++
		}

		_, err := l.Record(ctx, in)
		rq.NoError(err)
	}

	got, err := l.RealizedProfit(ctx)
	rq.NoError(err)
	rq.Equal(closed, got.Closed)
	rq.True(want.Equal(got.Total), "want %s, got %s", want, got.Total)

	open, err := l.List(ctx, true, 100)
	rq.NoError(err)
	rq.Len(open, 20-closed)
}

package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/ledger"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/infrastructure/memory"
	"cs2arb/internal/infrastructure/watchlist"
	"cs2arb/internal/server"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/rest"
	"cs2arb/pkg/tests"
)

type scannerStub bool

func (s scannerStub) IsRunning() bool { return bool(s) }

type fixture struct {
	api      tests.APIClient
	store    *memory.Store
	listPath string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	listPath := filepath.Join(t.TempDir(), "watchlist.json")
	list := watchlist.New(listPath, "AWP | Asiimov (Field-Tested)")

	manager := lifecycle.NewManager(store.Signals(), store.Items(), store.Snapshots(), store.Listings())
	book := ledger.NewLedger(store, store.Trades(), store.Signals())

	srv := server.NewServer(
		server.NewSignalServer(manager, scannerStub(true), list, 0.14),
		server.NewTradeServer(book),
		server.NewWatchlistServer(list),
	)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.NewRouter(srv, log, 1000))
	t.Cleanup(ts.Close)

	return fixture{
		api:      tests.NewAPIClient(ts.URL, ts.Client()),
		store:    store,
		listPath: listPath,
	}
}

func (f fixture) seedSignal(t *testing.T, sig entity.Signal) entity.Signal {
	t.Helper()

	sig.IsActive = true
	require.NoError(t, f.store.Signals().Create(context.Background(), &sig))
	return sig
}

func TestSignalsEndpoints(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	a := f.seedSignal(t, entity.Signal{
		Direction:       value.DirectionCSFloatToBuff,
		MarketHashName:  "AK-47 | Redline (Field-Tested)",
		ListingID:       lo.ToPtr(int64(11)),
		BuffFloorCNY:    1000,
		BuffFloorUSD:    140,
		CSFloatPriceUSD: 100,
		ROI:             0.3,
	})
	f.seedSignal(t, entity.Signal{
		Direction:       value.DirectionBuffToCSFloat,
		MarketHashName:  "AWP | Asiimov (Field-Tested)",
		BuffFloorCNY:    500,
		BuffFloorUSD:    70,
		CSFloatPriceUSD: 90,
		ROI:             0.1,
	})

	testCases := []struct {
		name       string
		endpoint   string
		wantStatus int
		wantIDs    int
		wantCode   string
	}{
		{name: "All active", endpoint: "/v1/signals", wantStatus: http.StatusOK, wantIDs: 2},
		{name: "Direction A", endpoint: "/v1/signals?direction=a", wantStatus: http.StatusOK, wantIDs: 1},
		{name: "Min ROI", endpoint: "/v1/signals?minRoi=0.2", wantStatus: http.StatusOK, wantIDs: 1},
		{
			name:       "Unknown direction",
			endpoint:   "/v1/signals?direction=c",
			wantStatus: http.StatusBadRequest,
			wantCode:   errcodes.InvalidDirection.String(),
		},
		{
			name:       "Bad limit",
			endpoint:   "/v1/signals?limit=0",
			wantStatus: http.StatusBadRequest,
			wantCode:   errcodes.InvalidPaging.String(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var (
				list   rest.SignalList
				errOut rest.Error
			)

			resp, err := f.api.Get(ctx, tc.endpoint, nil, &list, &errOut)
			rq.NoError(err)
			rq.Equal(tc.wantStatus, resp.StatusCode)

			if tc.wantCode != "" {
				rq.Equal(tc.wantCode, string(errOut.Code))
				return
			}
			rq.Len(list.Items, tc.wantIDs)
		})
	}

	var top rest.SignalList
	_, err := f.api.Get(ctx, "/v1/signals", nil, &top, nil)
	rq.NoError(err)
	rq.Equal(a.ID, top.Items[0].ID)
	rq.Equal("A", top.Items[0].DirectionShort)
	rq.InDelta(100.0, top.Items[0].BuyPriceUSD, 1e-9)
	rq.InDelta(140.0, top.Items[0].SellPriceUSD, 1e-9)

	var acted rest.Signal
	resp, err := f.api.Post(ctx, "/v1/signals/"+strconv.FormatInt(a.ID, 10)+"/acted-on", nil, nil, &acted, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(acted.ActedOn)

	var errOut rest.Error
	resp, err = f.api.Get(ctx, "/v1/signals/999", nil, nil, &errOut)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(errcodes.SignalNotFound.String(), string(errOut.Code))

	resp, err = f.api.Get(ctx, "/v1/signals/abc", nil, nil, &errOut)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)

	var stats rest.Stats
	_, err = f.api.Get(ctx, "/v1/stats", nil, &stats, nil)
	rq.NoError(err)
	rq.True(stats.ScannerRunning)
	rq.Equal(1, stats.WatchlistSize)
	rq.Equal(int64(1), stats.ActiveSignals[value.DirectionCSFloatToBuff.String()])
	rq.Equal(int64(1), stats.ActiveSignals[value.DirectionBuffToCSFloat.String()])

	resp, err = f.api.Post(ctx, "/v1/signals/deactivate-stale", nil,
		rest.DeactivateStaleRequest{MaxAgeHours: lo.ToPtr(-1.0)}, nil, &errOut)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(errcodes.ValidationError.String(), string(errOut.Code))

	var deactivated rest.DeactivateStaleResponse
	_, err = f.api.Post(ctx, "/v1/signals/deactivate-stale", nil, rest.DeactivateStaleRequest{}, &deactivated, nil)
	rq.NoError(err)
	rq.Zero(deactivated.Deactivated)
}

func TestItemOverview(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	name := "AK-47 | Redline (Field-Tested)"
	_, err := f.store.Items().Upsert(ctx, &entity.Item{
		GoodsID:        7,
		MarketHashName: name,
		Name:           value.ParseItemName(name),
	})
	rq.NoError(err)
	rq.NoError(f.store.Snapshots().Create(ctx, &entity.PriceSnapshot{GoodsID: 7, OverallMinCNY: 1000}))

	var overview rest.ItemOverview
	resp, err := f.api.Get(ctx, "/v1/items/"+url.PathEscape(name), nil, &overview, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("AK-47", overview.Item.Weapon)
	rq.Equal("Field-Tested", overview.Item.Wear)
	rq.NotNil(overview.Snapshot)
	rq.InDelta(140.0, overview.Snapshot.OverallMinUSD, 1e-9)

	var errOut rest.Error
	resp, err = f.api.Get(ctx, "/v1/items/"+url.PathEscape("Unknown | Item"), nil, nil, &errOut)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(errcodes.ItemNotFound.String(), string(errOut.Code))
}

func TestTradeEndpoints(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	sig := f.seedSignal(t, entity.Signal{
		Direction:      value.DirectionCSFloatToBuff,
		MarketHashName: "M4A4 | Howl (Minimal Wear)",
		ListingID:      lo.ToPtr(int64(5)),
		ROI:            0.2,
	})

	var created rest.Trade
	resp, err := f.api.Post(ctx, "/v1/trades", nil, rest.CreateTradeRequest{
		SignalID:    &sig.ID,
		Direction:   "a",
		BuyMarket:   "csfloat",
		BuyPriceUSD: decimal.NewFromInt(100),
	}, &created, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)
	rq.Equal(sig.MarketHashName, created.MarketHashName)
	rq.True(created.Open)

	testCases := []struct {
		name       string
		request    rest.CreateTradeRequest
		wantStatus int
		wantCode   string
	}{
		{
			name:       "No name and no signal",
			request:    rest.CreateTradeRequest{Direction: "b", BuyMarket: "buff", BuyPriceUSD: decimal.NewFromInt(10)},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errcodes.TradeItemUnresolved.String(),
		},
		{
			name: "Non-positive price",
			request: rest.CreateTradeRequest{
				MarketHashName: "x", Direction: "b", BuyMarket: "buff", BuyPriceUSD: decimal.Zero,
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   errcodes.InvalidPrice.String(),
		},
		{
			name: "Unknown market",
			request: rest.CreateTradeRequest{
				MarketHashName: "x", Direction: "b", BuyMarket: "steam", BuyPriceUSD: decimal.NewFromInt(1),
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   errcodes.ValidationError.String(),
		},
		{
			name: "Dangling signal without item",
			request: rest.CreateTradeRequest{
				SignalID: lo.ToPtr(int64(404)), Direction: "a", BuyMarket: "csfloat", BuyPriceUSD: decimal.NewFromInt(1),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errcodes.TradeItemUnresolved.String(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var errOut rest.Error

			resp, err := f.api.Post(ctx, "/v1/trades", nil, tc.request, nil, &errOut)
			rq.NoError(err)
			rq.Equal(tc.wantStatus, resp.StatusCode)
			rq.Equal(tc.wantCode, string(errOut.Code))
		})
	}

	var sold rest.Trade
	resp, err = f.api.Patch(ctx, "/v1/trades/"+strconv.FormatInt(created.ID, 10)+"/sell", nil, rest.SellTradeRequest{
		SellPriceUSD: decimal.NewFromInt(125),
		SellMarket:   lo.ToPtr("buff"),
	}, &sold, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.False(sold.Open)
	rq.Equal("25", sold.ProfitUSD.Decimal.String())
	rq.Equal("0.25", sold.ROI.Decimal.String())

	var open rest.TradeList
	_, err = f.api.Get(ctx, "/v1/trades?open=true", nil, &open, nil)
	rq.NoError(err)
	rq.Empty(open.Items)

	var profit rest.Profit
	_, err = f.api.Get(ctx, "/v1/trades/profit", nil, &profit, nil)
	rq.NoError(err)
	rq.Equal(1, profit.ClosedTrades)
	rq.Equal("25", profit.TotalUSD.String())

	var errOut rest.Error
	resp, err = f.api.Get(ctx, "/v1/trades/77", nil, nil, &errOut)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(errcodes.TradeNotFound.String(), string(errOut.Code))
}

func TestWatchlistEndpoints(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	var list rest.Watchlist
	resp, err := f.api.Post(ctx, "/v1/watchlist", nil, rest.WatchlistAddRequest{Name: "Glock-18 | Fade (Factory New)"}, &list, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)
	rq.Len(list.Items, 2)

	resp, err = f.api.Post(ctx, "/v1/watchlist", nil, rest.WatchlistAddRequest{Name: "Glock-18 | Fade (Factory New)"}, &list, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(list.Items, 2)

	reloaded, err := watchlist.Load(ctx, f.listPath)
	rq.NoError(err)
	rq.Equal(2, reloaded.Len())

	resp, err = f.api.Delete(ctx, "/v1/watchlist/"+url.PathEscape("AWP | Asiimov (Field-Tested)"), nil, &list, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal([]string{"Glock-18 | Fade (Factory New)"}, list.Items)

	var errOut rest.Error
	resp, err = f.api.Delete(ctx, "/v1/watchlist/"+url.PathEscape("AWP | Asiimov (Field-Tested)"), nil, nil, &errOut)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)

	resp, err = f.api.Post(ctx, "/v1/watchlist", nil, rest.WatchlistAddRequest{}, nil, &errOut)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.Equal(errcodes.ValidationError.String(), string(errOut.Code))
}

package persistence_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/infrastructure/persistence"
	"cs2arb/pkg/dbtest"
	"cs2arb/pkg/errcodes"
)

// Тесты требуют живой PostgreSQL: PG_DSN=postgres://... go test ./...
func openDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN is not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`DROP TABLE IF EXISTS trades, signals, listings, price_snapshots, items, schema_migrations CASCADE`)
	require.NoError(t, err)
	require.NoError(t, dbtest.MigrateFromFile(db, "migrations/0001_init.sql"))

	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	rq := require.New(t)
	db := openDB(t)
	ctx := context.Background()

	rq.NoError(persistence.Migrate(ctx, db))
	rq.NoError(persistence.Migrate(ctx, db))
}

func TestItemAndSnapshot(t *testing.T) {
	rq := require.New(t)
	db := openDB(t)
	ctx := context.Background()

	items := persistence.NewItemRepository(db)
	snapshots := persistence.NewSnapshotRepository(db)

	item := &entity.Item{GoodsID: 42, MarketHashName: "AK-47 | Redline (Field-Tested)"}
	created, err := items.Upsert(ctx, item)
	rq.NoError(err)
	rq.True(created)

	created, err = items.Upsert(ctx, item)
	rq.NoError(err)
	rq.False(created)

	now := time.Now().UTC().Truncate(time.Second)
	rq.NoError(snapshots.Create(ctx, &entity.PriceSnapshot{GoodsID: 42, Timestamp: now.Add(-time.Hour), OverallMinCNY: 100}))
	rq.NoError(snapshots.Create(ctx, &entity.PriceSnapshot{
		GoodsID:       42,
		Timestamp:     now,
		OverallMinCNY: 90,
		TagFloors:     map[string]float64{"Phase 2": 95},
	}))

	latest, err := snapshots.Latest(ctx, 42)
	rq.NoError(err)
	rq.InDelta(90, latest.OverallMinCNY, 1e-9)
	rq.Equal(map[string]float64{"Phase 2": 95}, latest.TagFloors)

	_, err = snapshots.Latest(ctx, 7)
	rq.True(domain.HasCode(err, errcodes.SnapshotNotFound))

	_, err = items.GetByName(ctx, "missing")
	rq.True(domain.HasCode(err, errcodes.ItemNotFound))
}

func TestSignalIdentityIndex(t *testing.T) {
	rq := require.New(t)
	db := openDB(t)
	ctx := context.Background()

	listings := persistence.NewListingRepository(db)
	signals := persistence.NewSignalRepository(db)

	listing := &entity.Listing{ExternalID: "x1", MarketHashName: "AWP | Asiimov (Field-Tested)", PriceCents: 10000, Type: "buy_now", IsActive: true}
	_, err := listings.Upsert(ctx, listing)
	rq.NoError(err)

	first := &entity.Signal{
		Direction:      value.DirectionCSFloatToBuff,
		MarketHashName: listing.MarketHashName,
		ListingID:      lo.ToPtr(listing.ID),
		ROI:            0.1,
		IsActive:       true,
	}
	rq.NoError(signals.Create(ctx, first))

	duplicate := *first
	duplicate.ID = 0
	err = signals.Create(ctx, &duplicate)
	rq.True(domain.HasCode(err, errcodes.Conflict))

	found, err := signals.FindActiveByListing(ctx, value.DirectionCSFloatToBuff, listing.ID)
	rq.NoError(err)
	rq.Equal(first.ID, found.ID)

	n, err := signals.DeactivateCreatedBefore(ctx, time.Now().Add(time.Minute))
	rq.NoError(err)
	rq.Equal(int64(1), n)

	rq.NoError(signals.Create(ctx, &duplicate))

	counts, err := signals.CountActiveByDirection(ctx)
	rq.NoError(err)
	rq.Equal(int64(1), counts[value.DirectionCSFloatToBuff])
	rq.Equal(int64(0), counts[value.DirectionBuffToCSFloat])
}

func TestSavepointKeepsOuterTransaction(t *testing.T) {
	rq := require.New(t)
	db := openDB(t)
	ctx := context.Background()

	tx := persistence.NewTransactor(db)
	listings := persistence.NewListingRepository(db)

	err := tx.InTx(ctx, func(ctx context.Context) error {
		for i, id := range []string{"a", "b", "c"} {
			_ = tx.InTx(ctx, func(ctx context.Context) error {
				_, err := listings.Upsert(ctx, &entity.Listing{ExternalID: id, MarketHashName: id, PriceCents: 100, Type: "buy_now", IsActive: true})
				rq.NoError(err)
				if i == 1 {
					return errors.New("rollback b")
				}
				return nil
			})
		}
		return nil
	})
	rq.NoError(err)

	count, err := listings.CountActive(ctx)
	rq.NoError(err)
	rq.Equal(int64(2), count)

	active, err := listings.ListActive(ctx)
	rq.NoError(err)
	rq.ElementsMatch([]string{"a", "c"}, lo.Map(active, func(l entity.Listing, _ int) string { return l.ExternalID }))

	_, err = listings.GetByID(ctx, 999)
	rq.True(domain.HasCode(err, errcodes.ListingNotFound))
}

func TestTradeLifecycle(t *testing.T) {
	rq := require.New(t)
	db := openDB(t)
	ctx := context.Background()

	trades := persistence.NewTradeRepository(db)

	trade := &entity.Trade{
		MarketHashName: "M4A4 | Howl (Minimal Wear)",
		Direction:      value.DirectionBuffToCSFloat,
		BuyMarket:      value.MarketBuff,
		BuyPriceUSD:    decimal.RequireFromString("100.50"),
	}
	rq.NoError(trades.Create(ctx, trade))
	rq.NotZero(trade.ID)

	open, err := trades.List(ctx, true, 0)
	rq.NoError(err)
	rq.Len(open, 1)

	trade.SellPriceUSD = decimal.NewNullDecimal(decimal.RequireFromString("120.25"))
	trade.SellTime = lo.ToPtr(time.Now())
	trade.SellMarket = lo.ToPtr(value.MarketCSFloat)
	rq.NoError(trades.UpdateSell(ctx, trade))

	stored, err := trades.GetByID(ctx, trade.ID)
	rq.NoError(err)
	rq.True(stored.SellPriceUSD.Decimal.Equal(decimal.RequireFromString("120.25")))
	rq.Equal(value.MarketCSFloat, *stored.SellMarket)

	open, err = trades.List(ctx, true, 0)
	rq.NoError(err)
	rq.Empty(open)

	err = trades.UpdateSell(ctx, &entity.Trade{ID: 999})
	rq.True(domain.HasCode(err, errcodes.TradeNotFound))
}

package lifecycle_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/infrastructure/memory"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/tests"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func newManager(store *memory.Store) *lifecycle.Manager {
	return lifecycle.NewManager(store.Signals(), store.Items(), store.Snapshots(), store.Listings()).
		WithClock(func() time.Time { return now })
}

func seedSignal(t *testing.T, store *memory.Store, sig entity.Signal) entity.Signal {
	t.Helper()

	if sig.Direction == "" {
		sig.Direction = value.DirectionBuffToCSFloat
	}
	sig.IsActive = true
	require.NoError(t, store.Signals().Create(context.Background(), &sig))
	return sig
}

func TestDeactivateStale(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	manager := newManager(store)

	old := seedSignal(t, store, entity.Signal{MarketHashName: "old", CreatedAt: now.Add(-25 * time.Hour)})
	older := seedSignal(t, store, entity.Signal{MarketHashName: "older", CreatedAt: now.Add(-72 * time.Hour)})
	fresh := seedSignal(t, store, entity.Signal{MarketHashName: "fresh", CreatedAt: now.Add(-23 * time.Hour)})

	n, err := manager.DeactivateStale(ctx, 24*time.Hour)
	rq.NoError(err)
	rq.Equal(int64(2), n)

	n, err = manager.DeactivateStale(ctx, 24*time.Hour)
	rq.NoError(err)
	rq.Zero(n)

	for _, tc := range []struct {
		id     int64
		active bool
	}{
		{id: old.ID, active: false},
		{id: older.ID, active: false},
		{id: fresh.ID, active: true},
	} {
		sig, err := manager.Get(ctx, tc.id)
		rq.NoError(err)
		rq.Equal(tc.active, sig.IsActive)
	}
}

func TestDeactivateStaleDefaultAge(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	seedSignal(t, store, entity.Signal{MarketHashName: "old", CreatedAt: now.Add(-24*time.Hour - time.Second)})

	n, err := newManager(store).DeactivateStale(ctx, 0)
	rq.NoError(err)
	rq.Equal(int64(1), n)
}

func TestTopIsFilteredAndSorted(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	manager := newManager(store)
	random := tests.NewRandomizer()

	for i := range 200 {
		direction := value.DirectionCSFloatToBuff
		if random.Bool() {
			direction = value.DirectionBuffToCSFloat
		}

		sig := entity.Signal{
			Direction:      direction,
			MarketHashName: fmt.Sprintf("Item %d", i),
			ListingID:      lo.ToPtr(int64(i)),
			ROI:            random.Float64() * 0.5,
			CreatedAt:      now,
		}
		seedSignal(t, store, sig)

		if random.Bool() {
			_, err := store.Signals().DeactivateCreatedBefore(ctx, now.Add(time.Second))
			rq.NoError(err)
		}
	}

	direction := value.DirectionCSFloatToBuff

	testCases := []struct {
		name  string
		query lifecycle.TopQuery
	}{
		{name: "Defaults", query: lifecycle.DefaultTopQuery()},
		{name: "Min ROI", query: lifecycle.TopQuery{MinROI: lo.ToPtr(0.15), Limit: 500, ActiveOnly: true}},
		{name: "Direction and inactive", query: lifecycle.TopQuery{Direction: &direction, MinROI: lo.ToPtr(0.15), Limit: 500}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			got, err := manager.Top(ctx, tc.query)
			rq.NoError(err)
			rq.LessOrEqual(len(got), max(tc.query.Limit, lifecycle.DefaultLimit))

			for i, sig := range got {
				if tc.query.MinROI != nil {
					rq.GreaterOrEqual(sig.ROI, *tc.query.MinROI)
				}
				if tc.query.ActiveOnly {
					rq.True(sig.IsActive)
				}
				if tc.query.Direction != nil {
					rq.Equal(*tc.query.Direction, sig.Direction)
				}
				if i > 0 {
					rq.GreaterOrEqual(got[i-1].ROI, sig.ROI)
				}
			}
		})
	}
}

func TestMarkActedOnIgnoresActiveState(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	manager := newManager(store)

	sig := seedSignal(t, store, entity.Signal{MarketHashName: "x", CreatedAt: now.Add(-48 * time.Hour)})
	_, err := manager.DeactivateStale(ctx, 24*time.Hour)
	rq.NoError(err)

	rq.NoError(manager.MarkActedOn(ctx, sig.ID))

	got, err := manager.Get(ctx, sig.ID)
	rq.NoError(err)
	rq.True(got.ActedOn)
	rq.False(got.IsActive)

	err = manager.MarkActedOn(ctx, 404)
	rq.True(domain.HasCode(err, errcodes.SignalNotFound))
}

func TestItemOverviewAndStats(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	manager := newManager(store)
	name := "AK-47 | Redline (Field-Tested)"

	_, err := store.Items().Upsert(ctx, &entity.Item{GoodsID: 7, MarketHashName: name})
	rq.NoError(err)
	rq.NoError(store.Snapshots().Create(ctx, &entity.PriceSnapshot{GoodsID: 7, Timestamp: now.Add(-time.Hour), OverallMinCNY: 100}))
	rq.NoError(store.Snapshots().Create(ctx, &entity.PriceSnapshot{GoodsID: 7, Timestamp: now, OverallMinCNY: 90}))

	for i, cents := range []int64{900, 300, 700, 100, 500, 200, 800} {
		_, err := store.Listings().Upsert(ctx, &entity.Listing{
			ExternalID:     fmt.Sprintf("L%d", i),
			MarketHashName: name,
			PriceCents:     cents,
		})
		rq.NoError(err)
	}

	for i := range 7 {
		seedSignal(t, store, entity.Signal{
			Direction:      value.DirectionCSFloatToBuff,
			MarketHashName: name,
			ListingID:      lo.ToPtr(int64(i + 1)),
			CreatedAt:      now.Add(time.Duration(i) * time.Minute),
		})
	}

	overview, err := manager.ItemOverview(ctx, name)
	rq.NoError(err)
	rq.Equal(int64(7), overview.Item.GoodsID)
	rq.NotNil(overview.Snapshot)
	rq.InDelta(90, overview.Snapshot.OverallMinCNY, 1e-9)
	rq.Len(overview.Listings, 5)
	rq.Equal(int64(100), overview.Listings[0].PriceCents)
	rq.Equal(int64(200), overview.Listings[1].PriceCents)
	rq.Len(overview.Signals, 5)
	rq.True(overview.Signals[0].CreatedAt.After(overview.Signals[4].CreatedAt))

	_, err = manager.ItemOverview(ctx, "missing")
	rq.True(domain.HasCode(err, errcodes.ItemNotFound))

	stats, err := manager.Stats(ctx)
	rq.NoError(err)
	rq.Equal(int64(1), stats.Items)
	rq.Equal(int64(7), stats.ActiveListings)
	rq.Equal(int64(7), stats.ActiveSignals[value.DirectionCSFloatToBuff])
	rq.Zero(stats.ActiveSignals[value.DirectionBuffToCSFloat])
}

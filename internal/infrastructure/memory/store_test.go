package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/infrastructure/memory"
	"cs2arb/pkg/errcodes"
)

func TestInTxRollsBackOnError(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()
	errBoom := errors.New("boom")

	err := store.InTx(ctx, func(ctx context.Context) error {
		_, err := store.Items().Upsert(ctx, &entity.Item{GoodsID: 1, MarketHashName: "a"})
		rq.NoError(err)
		rq.NoError(store.Snapshots().Create(ctx, &entity.PriceSnapshot{GoodsID: 1, OverallMinCNY: 10}))
		return errBoom
	})
	rq.ErrorIs(err, errBoom)

	count, err := store.Items().Count(ctx)
	rq.NoError(err)
	rq.Zero(count)

	_, err = store.Snapshots().Latest(ctx, 1)
	rq.True(domain.HasCode(err, errcodes.SnapshotNotFound))
}

func TestNestedInTxActsAsSavepoint(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := memory.NewStore()

	err := store.InTx(ctx, func(ctx context.Context) error {
		for i, name := range []string{"a", "b", "c"} {
			_ = store.InTx(ctx, func(ctx context.Context) error {
				_, err := store.Listings().Upsert(ctx, &entity.Listing{ExternalID: name, MarketHashName: name, PriceCents: 1})
				rq.NoError(err)
				if i == 1 {
					return errors.New("conflict")
				}
				return nil
			})
		}
		return nil
	})
	rq.NoError(err)

	active, err := store.Listings().ListActive(ctx)
	rq.NoError(err)
	rq.Equal([]string{"a", "c"}, lo.Map(active, func(l entity.Listing, _ int) string { return l.ExternalID }))

	// Откат внешней транзакции забирает и зафиксированные вложенные шаги.
	err = store.InTx(ctx, func(ctx context.Context) error {
		rq.NoError(store.InTx(ctx, func(ctx context.Context) error {
			_, err := store.Listings().MarkInactiveExcept(ctx, nil)
			return err
		}))
		return errors.New("abort")
	})
	rq.Error(err)

	count, err := store.Listings().CountActive(ctx)
	rq.NoError(err)
	rq.Equal(int64(2), count)
}

func TestListingUpsertKeepsIdentity(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := memory.NewStore().Listings()

	first := entity.Listing{
		ExternalID:     "L1",
		MarketHashName: "AK-47 | Redline (Field-Tested)",
		PriceCents:     1000,
		Stickers:       []entity.Sticker{{Name: "Crown", Slot: 1}},
	}
	created, err := repo.Upsert(ctx, &first)
	rq.NoError(err)
	rq.True(created)

	second := entity.Listing{ExternalID: "L1", MarketHashName: first.MarketHashName, PriceCents: 900, Watchers: lo.ToPtr(4)}
	created, err = repo.Upsert(ctx, &second)
	rq.NoError(err)
	rq.False(created)
	rq.Equal(first.ID, second.ID)

	got, err := repo.GetByID(ctx, first.ID)
	rq.NoError(err)
	rq.Equal(int64(900), got.PriceCents)
	rq.Equal(4, *got.Watchers)
	rq.Len(got.Stickers, 1, "stickers are kept when the update carries none")
}

func TestSignalIdentityInvariant(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := memory.NewStore().Signals()

	testCases := []struct {
		name   string
		first  entity.Signal
		second entity.Signal
	}{
		{
			name:   "Direction A by listing",
			first:  entity.Signal{Direction: value.DirectionCSFloatToBuff, MarketHashName: "x", ListingID: lo.ToPtr(int64(1)), IsActive: true},
			second: entity.Signal{Direction: value.DirectionCSFloatToBuff, MarketHashName: "y", ListingID: lo.ToPtr(int64(1)), IsActive: true},
		},
		{
			name:   "Direction B by name",
			first:  entity.Signal{Direction: value.DirectionBuffToCSFloat, MarketHashName: "z", IsActive: true},
			second: entity.Signal{Direction: value.DirectionBuffToCSFloat, MarketHashName: "z", IsActive: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.NoError(repo.Create(ctx, &tc.first))
			err := repo.Create(ctx, &tc.second)
			rq.True(domain.HasCode(err, errcodes.Conflict))
		})
	}

	// Тот же листинг в другом направлении — другая идентичность.
	rq.NoError(repo.Create(ctx, &entity.Signal{Direction: value.DirectionBuffToCSFloat, MarketHashName: "x", IsActive: true}))
}

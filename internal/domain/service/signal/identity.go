package signal

import (
	"context"
	"errors"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
)

var errNoListingID = errors.New("listing identity requires listing id")

// identity находит активный сигнал, который кандидат должен обновить.
type identity interface {
	findActive(ctx context.Context, repo SignalRepository, candidate *entity.Signal) (*entity.Signal, error)
}

// listingIdentity — направление A: один активный сигнал на листинг.
type listingIdentity struct{}

func (listingIdentity) findActive(ctx context.Context, repo SignalRepository, candidate *entity.Signal) (*entity.Signal, error) {
	if candidate.ListingID == nil {
		return nil, errNoListingID
	}
	return repo.FindActiveByListing(ctx, candidate.Direction, *candidate.ListingID)
}

// itemIdentity — направление B: один активный сигнал на предмет.
type itemIdentity struct{}

func (itemIdentity) findActive(ctx context.Context, repo SignalRepository, candidate *entity.Signal) (*entity.Signal, error) {
	return repo.FindActiveByName(ctx, candidate.Direction, candidate.MarketHashName)
}

func identityFor(direction value.Direction) identity {
	if direction == value.DirectionBuffToCSFloat {
		return itemIdentity{}
	}
	return listingIdentity{}
}

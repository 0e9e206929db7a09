package memory

import (
	"context"
	"sort"
	"time"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/errcodes"
)

type ListingRepository struct {
	s *Store
}

// Upsert обновляет листинг с тем же внешним идентификатором или вставляет новый.
func (r *ListingRepository) Upsert(ctx context.Context, listing *entity.Listing) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	if listing.LastCheckedAt.IsZero() {
		listing.LastCheckedAt = now
	}

	if id, ok := r.s.listingsByExt[listing.ExternalID]; ok {
		existing := r.s.listings[id]
		prev := cloneListing(existing)

		existing.PriceCents = listing.PriceCents
		existing.Discount = listing.Discount
		existing.LastCheckedAt = listing.LastCheckedAt
		existing.IsActive = true
		existing.ReferenceQuantity = listing.ReferenceQuantity
		existing.Watchers = listing.Watchers
		if len(listing.Stickers) > 0 {
			existing.Stickers = listing.Stickers
		}

		*listing = *cloneListing(existing)

		r.s.track(ctx, func() { r.s.listings[prev.ID] = prev })
		return false, nil
	}

	if listing.SeenAt.IsZero() {
		listing.SeenAt = now
	}

	r.s.listingID++
	listing.ID = r.s.listingID
	listing.IsActive = true

	r.s.listings[listing.ID] = cloneListing(listing)
	r.s.listingsByExt[listing.ExternalID] = listing.ID

	id, ext := listing.ID, listing.ExternalID
	r.s.track(ctx, func() {
		delete(r.s.listings, id)
		delete(r.s.listingsByExt, ext)
	})

	return true, nil
}

func (r *ListingRepository) GetByID(_ context.Context, id int64) (*entity.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	listing, ok := r.s.listings[id]
	if !ok {
		return nil, domain.NewError(errcodes.ListingNotFound, "listing not found")
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) ListActive(_ context.Context) ([]entity.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]entity.Listing, 0, len(r.s.listings))
	for _, l := range r.s.listings {
		if l.IsActive {
			result = append(result, *cloneListing(l))
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListActiveByName — активные листинги предмета, дешёвые первыми.
func (r *ListingRepository) ListActiveByName(_ context.Context, name string, limit int) ([]entity.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []entity.Listing
	for _, l := range r.s.listings {
		if l.IsActive && l.MarketHashName == name {
			result = append(result, *cloneListing(l))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PriceCents != result[j].PriceCents {
			return result[i].PriceCents < result[j].PriceCents
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *ListingRepository) MarkInactiveExcept(ctx context.Context, externalIDs []string) (int64, error) {
	keep := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		keep[id] = struct{}{}
	}

	return r.deactivate(ctx, func(l *entity.Listing) bool {
		_, ok := keep[l.ExternalID]
		return !ok
	})
}

func (r *ListingRepository) DeactivateUncheckedSince(ctx context.Context, before time.Time) (int64, error) {
	return r.deactivate(ctx, func(l *entity.Listing) bool {
		return l.LastCheckedAt.Before(before)
	})
}

func (r *ListingRepository) CountActive(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, l := range r.s.listings {
		if l.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *ListingRepository) deactivate(ctx context.Context, match func(l *entity.Listing) bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, l := range r.s.listings {
		if !l.IsActive || !match(l) {
			continue
		}

		l.IsActive = false
		n++

		target := l
		r.s.track(ctx, func() { target.IsActive = true })
	}
	return n, nil
}

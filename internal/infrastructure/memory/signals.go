package memory

import (
	"context"
	"sort"
	"time"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/pkg/errcodes"
)

type SignalRepository struct {
	s *Store
}

// Create вставляет сигнал; второй активный сигнал с той же идентичностью
// отклоняется так же, как частичным уникальным индексом в PostgreSQL.
func (r *SignalRepository) Create(ctx context.Context, sig *entity.Signal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sig.IsActive {
		for _, existing := range r.s.signals {
			if existing.IsActive && sameIdentity(existing, sig) {
				return domain.NewError(errcodes.Conflict, "active signal already exists")
			}
		}
	}

	now := time.Now()
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = now
	}
	if sig.UpdatedAt.IsZero() {
		sig.UpdatedAt = sig.CreatedAt
	}

	r.s.signalID++
	sig.ID = r.s.signalID
	r.s.signals[sig.ID] = cloneSignal(sig)

	id := sig.ID
	r.s.track(ctx, func() { delete(r.s.signals, id) })
	return nil
}

// Update перезаписывает цены, ROI и заметку; флаги не трогает.
func (r *SignalRepository) Update(ctx context.Context, sig *entity.Signal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.signals[sig.ID]
	if !ok {
		return domain.NewError(errcodes.SignalNotFound, "signal not found")
	}

	prev := cloneSignal(existing)

	if sig.UpdatedAt.IsZero() {
		sig.UpdatedAt = time.Now()
	}

	existing.GoodsID = sig.GoodsID
	existing.BuffFloorCNY = sig.BuffFloorCNY
	existing.BuffFloorUSD = sig.BuffFloorUSD
	existing.CSFloatPriceUSD = sig.CSFloatPriceUSD
	existing.ROI = sig.ROI
	existing.Note = sig.Note
	existing.UpdatedAt = sig.UpdatedAt

	*sig = *cloneSignal(existing)

	r.s.track(ctx, func() { r.s.signals[prev.ID] = prev })
	return nil
}

func (r *SignalRepository) GetByID(_ context.Context, id int64) (*entity.Signal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sig, ok := r.s.signals[id]
	if !ok {
		return nil, domain.NewError(errcodes.SignalNotFound, "signal not found")
	}
	return cloneSignal(sig), nil
}

func (r *SignalRepository) FindActiveByListing(_ context.Context, direction value.Direction, listingID int64) (*entity.Signal, error) {
	return r.findActive(func(sig *entity.Signal) bool {
		return sig.Direction == direction && sig.ListingID != nil && *sig.ListingID == listingID
	})
}

func (r *SignalRepository) FindActiveByName(_ context.Context, direction value.Direction, name string) (*entity.Signal, error) {
	return r.findActive(func(sig *entity.Signal) bool {
		return sig.Direction == direction && sig.MarketHashName == name
	})
}

// List — выборка по фильтру, отсортированная по ROI по убыванию.
func (r *SignalRepository) List(_ context.Context, filter entity.SignalFilter) ([]entity.Signal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []entity.Signal
	for _, sig := range r.s.signals {
		if filter.ActiveOnly && !sig.IsActive {
			continue
		}
		if filter.Direction != nil && sig.Direction != *filter.Direction {
			continue
		}
		if filter.MinROI != nil && sig.ROI < *filter.MinROI {
			continue
		}
		result = append(result, *cloneSignal(sig))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ROI != result[j].ROI {
			return result[i].ROI > result[j].ROI
		}
		return result[i].ID < result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// ListByName — последние сигналы по предмету, новые первыми.
func (r *SignalRepository) ListByName(_ context.Context, name string, limit int) ([]entity.Signal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []entity.Signal
	for _, sig := range r.s.signals {
		if sig.MarketHashName == name {
			result = append(result, *cloneSignal(sig))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *SignalRepository) DeactivateCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, sig := range r.s.signals {
		if !sig.IsActive || !sig.CreatedAt.Before(before) {
			continue
		}

		sig.IsActive = false
		n++

		target := sig
		r.s.track(ctx, func() { target.IsActive = true })
	}
	return n, nil
}

func (r *SignalRepository) SetActedOn(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sig, ok := r.s.signals[id]
	if !ok {
		return domain.NewError(errcodes.SignalNotFound, "signal not found")
	}

	prev := sig.ActedOn
	sig.ActedOn = true

	r.s.track(ctx, func() { sig.ActedOn = prev })
	return nil
}

func (r *SignalRepository) CountActiveByDirection(_ context.Context) (map[value.Direction]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[value.Direction]int64{
		value.DirectionCSFloatToBuff: 0,
		value.DirectionBuffToCSFloat: 0,
	}
	for _, sig := range r.s.signals {
		if sig.IsActive {
			counts[sig.Direction]++
		}
	}
	return counts, nil
}

func (r *SignalRepository) findActive(match func(sig *entity.Signal) bool) (*entity.Signal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sig := range r.s.signals {
		if sig.IsActive && match(sig) {
			return cloneSignal(sig), nil
		}
	}
	return nil, domain.NewError(errcodes.SignalNotFound, "active signal not found")
}

func sameIdentity(a, b *entity.Signal) bool {
	if a.Direction != b.Direction {
		return false
	}

	if a.Direction == value.DirectionCSFloatToBuff {
		return a.ListingID != nil && b.ListingID != nil && *a.ListingID == *b.ListingID
	}
	return a.MarketHashName == b.MarketHashName
}

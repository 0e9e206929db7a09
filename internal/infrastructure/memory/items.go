package memory

import (
	"context"
	"slices"
	"time"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/errcodes"
)

type ItemRepository struct {
	s *Store
}

// Upsert создаёт предмет при первом появлении или обновляет LastSeenAt.
func (r *ItemRepository) Upsert(ctx context.Context, item *entity.Item) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	if item.LastSeenAt.IsZero() {
		item.LastSeenAt = now
	}

	if existing, ok := r.s.items[item.GoodsID]; ok {
		prev := cloneItem(existing)
		existing.LastSeenAt = item.LastSeenAt
		item.FirstSeenAt = existing.FirstSeenAt
		item.MarketHashName = existing.MarketHashName
		item.Name = existing.Name

		r.s.track(ctx, func() { r.s.items[prev.GoodsID] = prev })
		return false, nil
	}

	if _, taken := r.s.itemsByName[item.MarketHashName]; taken {
		return false, domain.NewError(errcodes.Conflict, "item name already taken")
	}

	if item.FirstSeenAt.IsZero() {
		item.FirstSeenAt = item.LastSeenAt
	}

	r.s.items[item.GoodsID] = cloneItem(item)
	r.s.itemsByName[item.MarketHashName] = item.GoodsID

	goodsID, name := item.GoodsID, item.MarketHashName
	r.s.track(ctx, func() {
		delete(r.s.items, goodsID)
		delete(r.s.itemsByName, name)
	})

	return true, nil
}

func (r *ItemRepository) GetByGoodsID(_ context.Context, goodsID int64) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.items[goodsID]
	if !ok {
		return nil, domain.NewError(errcodes.ItemNotFound, "item not found")
	}
	return cloneItem(item), nil
}

func (r *ItemRepository) GetByName(_ context.Context, name string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	goodsID, ok := r.s.itemsByName[name]
	if !ok {
		return nil, domain.NewError(errcodes.ItemNotFound, "item not found")
	}
	return cloneItem(r.s.items[goodsID]), nil
}

func (r *ItemRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.items)), nil
}

type SnapshotRepository struct {
	s *Store
}

func (r *SnapshotRepository) Create(ctx context.Context, snapshot *entity.PriceSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now()
	}

	r.s.snapshotID++
	snapshot.ID = r.s.snapshotID
	r.s.snapshots = append(r.s.snapshots, cloneSnapshot(*snapshot))

	id := snapshot.ID
	r.s.track(ctx, func() {
		r.s.snapshots = slices.DeleteFunc(r.s.snapshots, func(sn entity.PriceSnapshot) bool { return sn.ID == id })
	})
	return nil
}

// Latest — срез с максимальной меткой времени; при равенстве побеждает поздний.
func (r *SnapshotRepository) Latest(_ context.Context, goodsID int64) (*entity.PriceSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *entity.PriceSnapshot
	for i := range r.s.snapshots {
		sn := &r.s.snapshots[i]
		if sn.GoodsID != goodsID {
			continue
		}
		if latest == nil || !sn.Timestamp.Before(latest.Timestamp) {
			latest = sn
		}
	}

	if latest == nil {
		return nil, domain.NewError(errcodes.SnapshotNotFound, "snapshot not found")
	}

	c := cloneSnapshot(*latest)
	return &c, nil
}

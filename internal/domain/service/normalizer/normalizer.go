// Package normalizer приводит сырые записи фидов к каноническим сущностям.
package normalizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var (
	ErrMissingIdentity = errors.New("missing identity")
	ErrNoPrice         = errors.New("no positive price")
)

// PriceBand — целевой диапазон в долларах, границы включительно.
type PriceBand struct {
	MinUSD float64
	MaxUSD float64
}

func (b PriceBand) Contains(usd float64) bool {
	return usd >= b.MinUSD && usd <= b.MaxUSD
}

// BuffItem — результат нормализации одной записи Buff.
type BuffItem struct {
	Item     entity.Item
	Snapshot entity.PriceSnapshot
}

type Normalizer struct {
	fxCNYToUSD float64
	band       PriceBand
	now        func() time.Time
}

func New(fxCNYToUSD float64, band PriceBand) *Normalizer {
	return &Normalizer{
		fxCNYToUSD: fxCNYToUSD,
		band:       band,
		now:        time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

func (n *Normalizer) Buff(rec entity.BuffRecord) (BuffItem, error) {
	name := strings.TrimSpace(rec.MarketHashName)
	if rec.GoodsID <= 0 || name == "" {
		return BuffItem{}, fmt.Errorf("goods_id=%d name=%q: %w", rec.GoodsID, rec.MarketHashName, ErrMissingIdentity)
	}

	floor, ok := FloorPrice(rec.Sales)
	if !ok {
		return BuffItem{}, fmt.Errorf("goods_id=%d: %w", rec.GoodsID, ErrNoPrice)
	}

	now := n.now()

	return BuffItem{
		Item: entity.Item{
			GoodsID:        rec.GoodsID,
			MarketHashName: name,
			Name:           value.ParseItemName(name),
			FirstSeenAt:    now,
			LastSeenAt:     now,
		},
		Snapshot: entity.PriceSnapshot{
			GoodsID:           rec.GoodsID,
			Timestamp:         now,
			OverallMinCNY:     floor,
			TagFloors:         TagFloors(rec.Sales),
			StatTime:          rec.StatTime,
			WithinTargetRange: n.band.Contains(floor * n.fxCNYToUSD),
		},
	}, nil
}

// BuffBatch нормализует пачку; битые записи пропускаются с предупреждением.
func (n *Normalizer) BuffBatch(ctx context.Context, recs []entity.BuffRecord) ([]BuffItem, int) {
	result := make([]BuffItem, 0, len(recs))
	dropped := 0

	for _, rec := range recs {
		item, err := n.Buff(rec)
		if err != nil {
			dropped++
			logger(ctx).Warn("buff record dropped", "goods_id", rec.GoodsID, "error", err)
			continue
		}
		result = append(result, item)
	}

	return result, dropped
}

func (n *Normalizer) Listing(rec entity.CSFloatRecord) (entity.Listing, error) {
	id := strings.TrimSpace(rec.ID)
	name := strings.TrimSpace(rec.MarketHashName)
	if id == "" || name == "" {
		return entity.Listing{}, fmt.Errorf("id=%q name=%q: %w", rec.ID, rec.MarketHashName, ErrMissingIdentity)
	}

	if rec.PriceCents <= 0 {
		return entity.Listing{}, fmt.Errorf("id=%s price=%d: %w", id, rec.PriceCents, ErrNoPrice)
	}

	wear := rec.WearName
	if wear == "" && rec.FloatValue != nil {
		wear = value.WearFromFloat(*rec.FloatValue)
	}

	listingType := rec.Type
	if listingType == "" {
		listingType = "buy_now"
	}

	now := n.now()

	return entity.Listing{
		ExternalID:        id,
		MarketHashName:    name,
		PriceCents:        rec.PriceCents,
		Discount:          rec.Discount,
		Type:              listingType,
		FloatValue:        rec.FloatValue,
		PaintSeed:         rec.PaintSeed,
		WearName:          wear,
		Stickers:          rec.Stickers,
		ReferenceQuantity: rec.ReferenceQuantity,
		Watchers:          rec.Watchers,
		IsActive:          true,
		SeenAt:            now,
		LastCheckedAt:     now,
	}, nil
}

func (n *Normalizer) ListingBatch(ctx context.Context, recs []entity.CSFloatRecord) ([]entity.Listing, int) {
	result := make([]entity.Listing, 0, len(recs))
	dropped := 0

	for _, rec := range recs {
		listing, err := n.Listing(rec)
		if err != nil {
			dropped++
			logger(ctx).Warn("csfloat record dropped", "id", rec.ID, "error", err)
			continue
		}
		result = append(result, listing)
	}

	return result, dropped
}

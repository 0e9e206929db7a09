package persistence

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// itemSchema — строка таблицы items.
type itemSchema struct {
	GoodsID        int64     `db:"goods_id"`
	MarketHashName string    `db:"market_hash_name"`
	Weapon         *string   `db:"weapon"`
	SkinName       *string   `db:"skin_name"`
	Wear           *string   `db:"wear"`
	FirstSeenAt    time.Time `db:"first_seen_at"`
	LastSeenAt     time.Time `db:"last_seen_at"`
}

func (s itemSchema) toDomain() *entity.Item {
	return &entity.Item{
		GoodsID:        s.GoodsID,
		MarketHashName: s.MarketHashName,
		Name: value.ItemName{
			Weapon: deref(s.Weapon),
			Skin:   deref(s.SkinName),
			Wear:   deref(s.Wear),
		},
		FirstSeenAt: s.FirstSeenAt,
		LastSeenAt:  s.LastSeenAt,
	}
}

type snapshotSchema struct {
	ID                int64     `db:"id"`
	GoodsID           int64     `db:"goods_id"`
	Timestamp         time.Time `db:"ts"`
	OverallMinCNY     float64   `db:"overall_min_cny"`
	TagFloors         []byte    `db:"tag_floors"`
	StatTime          *int64    `db:"stat_time"`
	WithinTargetRange bool      `db:"within_target_range"`
}

func (s snapshotSchema) toDomain() (*entity.PriceSnapshot, error) {
	snapshot := &entity.PriceSnapshot{
		ID:                s.ID,
		GoodsID:           s.GoodsID,
		Timestamp:         s.Timestamp,
		OverallMinCNY:     s.OverallMinCNY,
		StatTime:          s.StatTime,
		WithinTargetRange: s.WithinTargetRange,
	}

	if len(s.TagFloors) > 0 {
		if err := json.Unmarshal(s.TagFloors, &snapshot.TagFloors); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

type listingSchema struct {
	ID                int64     `db:"id"`
	ExternalID        string    `db:"external_id"`
	MarketHashName    string    `db:"market_hash_name"`
	PriceCents        int64     `db:"price_cents"`
	Discount          *float64  `db:"discount"`
	Type              string    `db:"listing_type"`
	FloatValue        *float64  `db:"float_value"`
	PaintSeed         *int64    `db:"paint_seed"`
	WearName          *string   `db:"wear_name"`
	Stickers          []byte    `db:"stickers"`
	ReferenceQuantity *int      `db:"reference_quantity"`
	Watchers          *int      `db:"watchers"`
	IsActive          bool      `db:"is_active"`
	SeenAt            time.Time `db:"seen_at"`
	LastCheckedAt     time.Time `db:"last_checked_at"`
}

func (s listingSchema) toDomain() (*entity.Listing, error) {
	listing := &entity.Listing{
		ID:                s.ID,
		ExternalID:        s.ExternalID,
		MarketHashName:    s.MarketHashName,
		PriceCents:        s.PriceCents,
		Discount:          s.Discount,
		Type:              s.Type,
		FloatValue:        s.FloatValue,
		PaintSeed:         s.PaintSeed,
		WearName:          deref(s.WearName),
		ReferenceQuantity: s.ReferenceQuantity,
		Watchers:          s.Watchers,
		IsActive:          s.IsActive,
		SeenAt:            s.SeenAt,
		LastCheckedAt:     s.LastCheckedAt,
	}

	if len(s.Stickers) > 0 {
		if err := json.Unmarshal(s.Stickers, &listing.Stickers); err != nil {
			return nil, err
		}
	}

	return listing, nil
}

type signalSchema struct {
	ID              int64     `db:"id"`
	Direction       string    `db:"direction"`
	MarketHashName  string    `db:"market_hash_name"`
	GoodsID         *int64    `db:"goods_id"`
	ListingID       *int64    `db:"listing_id"`
	BuffFloorCNY    float64   `db:"buff_floor_cny"`
	BuffFloorUSD    float64   `db:"buff_floor_usd"`
	CSFloatPriceUSD float64   `db:"csfloat_price_usd"`
	ROI             float64   `db:"roi"`
	Note            string    `db:"note"`
	IsActive        bool      `db:"is_active"`
	ActedOn         bool      `db:"acted_on"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (s signalSchema) toDomain() entity.Signal {
	return entity.Signal{
		ID:              s.ID,
		Direction:       value.Direction(s.Direction),
		MarketHashName:  s.MarketHashName,
		GoodsID:         s.GoodsID,
		ListingID:       s.ListingID,
		BuffFloorCNY:    s.BuffFloorCNY,
		BuffFloorUSD:    s.BuffFloorUSD,
		CSFloatPriceUSD: s.CSFloatPriceUSD,
		ROI:             s.ROI,
		Note:            s.Note,
		IsActive:        s.IsActive,
		ActedOn:         s.ActedOn,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

type tradeSchema struct {
	ID             int64               `db:"id"`
	SignalID       *int64              `db:"signal_id"`
	MarketHashName string              `db:"market_hash_name"`
	Direction      string              `db:"direction"`
	BuyMarket      string              `db:"buy_market"`
	SellMarket     *string             `db:"sell_market"`
	BuyPriceUSD    decimal.Decimal     `db:"buy_price_usd"`
	SellPriceUSD   decimal.NullDecimal `db:"sell_price_usd"`
	BuyTime        time.Time           `db:"buy_time"`
	SellTime       *time.Time          `db:"sell_time"`
	Note           string              `db:"note"`
}

func (s tradeSchema) toDomain() entity.Trade {
	trade := entity.Trade{
		ID:             s.ID,
		SignalID:       s.SignalID,
		MarketHashName: s.MarketHashName,
		Direction:      value.Direction(s.Direction),
		BuyMarket:      value.Market(s.BuyMarket),
		BuyPriceUSD:    s.BuyPriceUSD,
		SellPriceUSD:   s.SellPriceUSD,
		BuyTime:        s.BuyTime,
		SellTime:       s.SellTime,
		Note:           s.Note,
	}

	if s.SellMarket != nil {
		market := value.Market(*s.SellMarket)
		trade.SellMarket = &market
	}

	return trade
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// jsonb кодирует значение; пустое значение хранится как NULL.
func jsonb(v any, empty bool) ([]byte, error) {
	if empty {
		return nil, nil
	}
	return json.Marshal(v)
}

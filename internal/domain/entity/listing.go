package entity

import "time"

type Sticker struct {
	Name string   `json:"name"`
	Slot int      `json:"slot"`
	Wear *float64 `json:"wear,omitempty"`
}

// Listing — отдельное предложение продажи на CSFloat.
type Listing struct {
	ID                int64
	ExternalID        string
	MarketHashName    string
	PriceCents        int64
	Discount          *float64
	Type              string
	FloatValue        *float64
	PaintSeed         *int64
	WearName          string
	Stickers          []Sticker
	ReferenceQuantity *int
	Watchers          *int
	IsActive          bool
	SeenAt            time.Time
	LastCheckedAt     time.Time
}

func (l Listing) PriceUSD() float64 {
	return float64(l.PriceCents) / 100
}

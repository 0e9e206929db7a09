package entity

import (
	"time"

	"cs2arb/internal/domain/value"
)

// Signal — найденная арбитражная возможность.
//
// Для направления A идентичность задаётся парой (направление, ListingID),
// для направления B — парой (направление, MarketHashName).
type Signal struct {
	ID              int64
	Direction       value.Direction
	MarketHashName  string
	GoodsID         *int64
	ListingID       *int64
	BuffFloorCNY    float64
	BuffFloorUSD    float64
	CSFloatPriceUSD float64
	ROI             float64
	Note            string
	IsActive        bool
	ActedOn         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BuyPriceUSD — цена покупки без учёта комиссий.
func (s Signal) BuyPriceUSD() float64 {
	if s.Direction == value.DirectionBuffToCSFloat {
		return s.BuffFloorUSD
	}
	return s.CSFloatPriceUSD
}

// SellPriceUSD — цена продажи без учёта комиссий.
func (s Signal) SellPriceUSD() float64 {
	if s.Direction == value.DirectionBuffToCSFloat {
		return s.CSFloatPriceUSD
	}
	return s.BuffFloorUSD
}

// SignalFilter — условия выборки сигналов для ранжирования.
type SignalFilter struct {
	Direction  *value.Direction
	MinROI     *float64
	ActiveOnly bool
	Limit      int
}

package entity

import (
	"time"

	"cs2arb/internal/domain/value"
)

// Item — предмет каталога Buff, точка склейки двух рынков по MarketHashName.
type Item struct {
	GoodsID        int64
	MarketHashName string
	Name           value.ItemName
	FirstSeenAt    time.Time
	LastSeenAt     time.Time
}

// PriceSnapshot — неизменяемый срез флора Buff в юанях.
type PriceSnapshot struct {
	ID                int64
	GoodsID           int64
	Timestamp         time.Time
	OverallMinCNY     float64
	TagFloors         map[string]float64
	StatTime          *int64
	WithinTargetRange bool
}

// FloorUSD пересчитывает флор по курсу.
func (s PriceSnapshot) FloorUSD(fxCNYToUSD float64) float64 {
	return s.OverallMinCNY * fxCNYToUSD
}

// IsStale сообщает, старше ли срез окна доверия.
func (s PriceSnapshot) IsStale(now time.Time, maxAge time.Duration) bool {
	return s.Timestamp.Before(now.Add(-maxAge))
}

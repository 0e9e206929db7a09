// Package rest описывает модели HTTP API.
package rest

import (
	"time"

	"github.com/shopspring/decimal"
)

type Signal struct {
	ID              int64     `json:"id"`
	Direction       string    `json:"direction"`
	DirectionShort  string    `json:"directionShort"`
	MarketHashName  string    `json:"marketHashName"`
	GoodsID         *int64    `json:"goodsId,omitempty"`
	ListingID       *int64    `json:"listingId,omitempty"`
	BuffFloorCNY    float64   `json:"buffFloorCny"`
	BuffFloorUSD    float64   `json:"buffFloorUsd"`
	CSFloatPriceUSD float64   `json:"csfloatPriceUsd"`
	BuyPriceUSD     float64   `json:"buyPriceUsd"`
	SellPriceUSD    float64   `json:"sellPriceUsd"`
	ROI             float64   `json:"roi"`
	Note            string    `json:"note"`
	IsActive        bool      `json:"isActive"`
	ActedOn         bool      `json:"actedOn"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type SignalList struct {
	Items []Signal `json:"items"`
}

type DeactivateStaleRequest struct {
	// MaxAgeHours — возраст в часах; пусто — 24.
	MaxAgeHours *float64 `json:"maxAgeHours" validate:"omitempty,gt=0"`
}

type DeactivateStaleResponse struct {
	Deactivated int64 `json:"deactivated"`
}

type Item struct {
	GoodsID        int64     `json:"goodsId"`
	MarketHashName string    `json:"marketHashName"`
	Weapon         string    `json:"weapon,omitempty"`
	Skin           string    `json:"skin,omitempty"`
	Wear           string    `json:"wear,omitempty"`
	FirstSeenAt    time.Time `json:"firstSeenAt"`
	LastSeenAt     time.Time `json:"lastSeenAt"`
}

type PriceSnapshot struct {
	Timestamp         time.Time          `json:"timestamp"`
	OverallMinCNY     float64            `json:"overallMinCny"`
	OverallMinUSD     float64            `json:"overallMinUsd"`
	TagFloors         map[string]float64 `json:"tagFloors,omitempty"`
	WithinTargetRange bool               `json:"withinTargetRange"`
}

type Listing struct {
	ID                int64    `json:"id"`
	ExternalID        string   `json:"externalId"`
	MarketHashName    string   `json:"marketHashName"`
	PriceUSD          float64  `json:"priceUsd"`
	Discount          *float64 `json:"discount,omitempty"`
	FloatValue        *float64 `json:"floatValue,omitempty"`
	WearName          string   `json:"wearName,omitempty"`
	ReferenceQuantity *int     `json:"referenceQuantity,omitempty"`
	Watchers          *int     `json:"watchers,omitempty"`
}

type ItemOverview struct {
	Item     Item           `json:"item"`
	Snapshot *PriceSnapshot `json:"snapshot,omitempty"`
	Listings []Listing      `json:"listings"`
	Signals  []Signal       `json:"signals"`
}

type Stats struct {
	Items          int64            `json:"items"`
	ActiveListings int64            `json:"activeListings"`
	ActiveSignals  map[string]int64 `json:"activeSignals"`
	ScannerRunning bool             `json:"scannerRunning"`
	WatchlistSize  int              `json:"watchlistSize"`
}

type Trade struct {
	ID             int64               `json:"id"`
	SignalID       *int64              `json:"signalId,omitempty"`
	MarketHashName string              `json:"marketHashName"`
	Direction      string              `json:"direction"`
	BuyMarket      string              `json:"buyMarket"`
	SellMarket     *string             `json:"sellMarket,omitempty"`
	BuyPriceUSD    decimal.Decimal     `json:"buyPriceUsd"`
	SellPriceUSD   decimal.NullDecimal `json:"sellPriceUsd"`
	BuyTime        time.Time           `json:"buyTime"`
	SellTime       *time.Time          `json:"sellTime,omitempty"`
	Note           string              `json:"note"`
	Open           bool                `json:"open"`
	ProfitUSD      decimal.NullDecimal `json:"profitUsd"`
	ROI            decimal.NullDecimal `json:"roi"`
	HoldDays       *int                `json:"holdDays,omitempty"`
}

type TradeList struct {
	Items []Trade `json:"items"`
}

type CreateTradeRequest struct {
	SignalID       *int64              `json:"signalId"`
	MarketHashName string              `json:"marketHashName"`
	Direction      string              `json:"direction" validate:"required"`
	BuyMarket      string              `json:"buyMarket" validate:"required"`
	SellMarket     *string             `json:"sellMarket"`
	BuyPriceUSD    decimal.Decimal     `json:"buyPriceUsd"`
	SellPriceUSD   decimal.NullDecimal `json:"sellPriceUsd"`
	Note           string              `json:"note" validate:"max=1000"`
}

type SellTradeRequest struct {
	SellPriceUSD decimal.Decimal `json:"sellPriceUsd"`
	SellMarket   *string         `json:"sellMarket"`
	Note         *string         `json:"note" validate:"omitempty,max=1000"`
}

type Profit struct {
	TotalUSD     decimal.Decimal `json:"totalUsd"`
	ClosedTrades int             `json:"closedTrades"`
}

type Watchlist struct {
	Items []string `json:"items"`
}

type WatchlistAddRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string

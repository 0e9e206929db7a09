package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
)

func TestTradeDerivedMetrics(t *testing.T) {
	rq := require.New(t)

	buyTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sellTime := buyTime.Add(7*24*time.Hour + 3*time.Hour)

	testCases := []struct {
		name       string
		trade      entity.Trade
		wantProfit string
		wantROI    string
		wantDays   int
		defined    bool
	}{
		{
			name: "Closed trade",
			trade: entity.Trade{
				Direction:    value.DirectionCSFloatToBuff,
				BuyPriceUSD:  decimal.NewFromInt(100),
				SellPriceUSD: decimal.NewNullDecimal(decimal.NewFromInt(120)),
				BuyTime:      buyTime,
				SellTime:     &sellTime,
			},
			wantProfit: "20",
			wantROI:    "0.2",
			wantDays:   7,
			defined:    true,
		},
		{
			name: "Losing trade",
			trade: entity.Trade{
				BuyPriceUSD:  decimal.NewFromInt(200),
				SellPriceUSD: decimal.NewNullDecimal(decimal.NewFromInt(150)),
				BuyTime:      buyTime,
				SellTime:     &buyTime,
			},
			wantProfit: "-50",
			wantROI:    "-0.25",
			wantDays:   0,
			defined:    true,
		},
		{
			name: "Open trade",
			trade: entity.Trade{
				BuyPriceUSD: decimal.NewFromInt(100),
				BuyTime:     buyTime,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			profit, okProfit := tc.trade.Profit()
			roi, okROI := tc.trade.ROI()
			days, okDays := tc.trade.HoldDays()

			rq.Equal(tc.defined, okProfit)
			rq.Equal(tc.defined, okROI)
			rq.Equal(tc.defined, okDays)
			rq.Equal(!tc.defined, tc.trade.IsOpen())

			if !tc.defined {
				return
			}

			rq.Equal(tc.wantProfit, profit.String())
			rq.Equal(tc.wantROI, roi.String())
			rq.Equal(tc.wantDays, days)
		})
	}
}

func TestPriceSnapshotStaleness(t *testing.T) {
	rq := require.New(t)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	fresh := entity.PriceSnapshot{Timestamp: now.Add(-23 * time.Hour), OverallMinCNY: 1000}
	stale := entity.PriceSnapshot{Timestamp: now.Add(-25 * time.Hour)}

	rq.False(fresh.IsStale(now, 24*time.Hour))
	rq.True(stale.IsStale(now, 24*time.Hour))
	rq.InDelta(140.0, fresh.FloorUSD(0.14), 1e-9)
}

package config

import (
	"errors"
	"fmt"
	"time"
)

type Arbitrage struct {
	FXCNYToUSD float64 `env:"FX_CNY_TO_USD" envDefault:"0.14"`

	BuffSellFeePct float64 `env:"BUFF_SELL_FEE_PCT" envDefault:"0.025"`
	// BuffBuyFeePct < 0 значит «не задано»: для направления B берётся комиссия продажи Buff.
	BuffBuyFeePct     float64 `env:"BUFF_BUY_FEE_PCT" envDefault:"-1"`
	CSFloatBuyFeePct  float64 `env:"CSFLOAT_BUY_FEE_PCT" envDefault:"0"`
	CSFloatSellFeePct float64 `env:"CSFLOAT_SELL_FEE_PCT" envDefault:"0.02"`

	MinPriceUSD float64 `env:"MIN_PRICE_USD" envDefault:"100"`
	MaxPriceUSD float64 `env:"MAX_PRICE_USD" envDefault:"1500"`

	MinROICSFloatToBuff float64 `env:"MIN_ROI_CSFLOAT_TO_BUFF" envDefault:"0.08"`
	MinROIBuffToCSFloat float64 `env:"MIN_ROI_BUFF_TO_CSFLOAT" envDefault:"0.10"`

	MinCSFloatListings int `env:"MIN_CSFLOAT_LISTINGS" envDefault:"5"`
	MinWatchers        int `env:"MIN_WATCHERS" envDefault:"0"`

	AllowedItemTypes []string `env:"ALLOWED_ITEM_TYPES" envDefault:"weapon,knife,gloves" envSeparator:","`

	SnapshotMaxAge time.Duration `env:"SNAPSHOT_MAX_AGE" envDefault:"24h"`
	SignalMaxAge   time.Duration `env:"SIGNAL_MAX_AGE" envDefault:"24h"`
	ListingMaxAge  time.Duration `env:"LISTING_MAX_AGE" envDefault:"2h"`
}

// BuffBuyFee возвращает комиссию покупки на Buff и признак того, что это
// приближение через комиссию продажи.
func (a Arbitrage) BuffBuyFee() (fee float64, approximated bool) {
	if a.BuffBuyFeePct < 0 {
		return a.BuffSellFeePct, true
	}
	return a.BuffBuyFeePct, false
}

// PriceBandCents — ценовой диапазон CSFloat в центах.
func (a Arbitrage) PriceBandCents() (minCents, maxCents int64) {
	return int64(a.MinPriceUSD * 100), int64(a.MaxPriceUSD * 100) //nolint:mnd
}

func (a Arbitrage) Validate() error {
	if a.FXCNYToUSD <= 0 {
		return errors.New("FX_CNY_TO_USD must be positive")
	}

	if a.MinPriceUSD > a.MaxPriceUSD {
		return fmt.Errorf("price band is empty: %.2f > %.2f", a.MinPriceUSD, a.MaxPriceUSD)
	}

	for name, fee := range map[string]float64{
		"BUFF_SELL_FEE_PCT":    a.BuffSellFeePct,
		"CSFLOAT_BUY_FEE_PCT":  a.CSFloatBuyFeePct,
		"CSFLOAT_SELL_FEE_PCT": a.CSFloatSellFeePct,
	} {
		if fee < 0 || fee >= 1 {
			return fmt.Errorf("%s must be in [0, 1), got %v", name, fee)
		}
	}

	return nil
}

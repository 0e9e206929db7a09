package server

import (
	"errors"

	"git.appkode.ru/pub/go/failure"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/rest"
)

func newRESTSignal(s entity.Signal) rest.Signal {
	return rest.Signal{
		ID:              s.ID,
		Direction:       s.Direction.String(),
		DirectionShort:  s.Direction.Short(),
		MarketHashName:  s.MarketHashName,
		GoodsID:         s.GoodsID,
		ListingID:       s.ListingID,
		BuffFloorCNY:    s.BuffFloorCNY,
		BuffFloorUSD:    s.BuffFloorUSD,
		CSFloatPriceUSD: s.CSFloatPriceUSD,
		BuyPriceUSD:     s.BuyPriceUSD(),
		SellPriceUSD:    s.SellPriceUSD(),
		ROI:             s.ROI,
		Note:            s.Note,
		IsActive:        s.IsActive,
		ActedOn:         s.ActedOn,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func newRESTSignals(signals []entity.Signal) []rest.Signal {
	return lo.Map(signals, func(s entity.Signal, _ int) rest.Signal {
		return newRESTSignal(s)
	})
}

func newRESTListing(l entity.Listing) rest.Listing {
	return rest.Listing{
		ID:                l.ID,
		ExternalID:        l.ExternalID,
		MarketHashName:    l.MarketHashName,
		PriceUSD:          l.PriceUSD(),
		Discount:          l.Discount,
		FloatValue:        l.FloatValue,
		WearName:          l.WearName,
		ReferenceQuantity: l.ReferenceQuantity,
		Watchers:          l.Watchers,
	}
}

func newRESTOverview(o lifecycle.Overview, fx float64) rest.ItemOverview {
	out := rest.ItemOverview{
		Item: rest.Item{
			GoodsID:        o.Item.GoodsID,
			MarketHashName: o.Item.MarketHashName,
			Weapon:         o.Item.Name.Weapon,
			Skin:           o.Item.Name.Skin,
			Wear:           o.Item.Name.Wear,
			FirstSeenAt:    o.Item.FirstSeenAt,
			LastSeenAt:     o.Item.LastSeenAt,
		},
		Listings: lo.Map(o.Listings, func(l entity.Listing, _ int) rest.Listing {
			return newRESTListing(l)
		}),
		Signals: newRESTSignals(o.Signals),
	}

	if o.Snapshot != nil {
		out.Snapshot = &rest.PriceSnapshot{
			Timestamp:         o.Snapshot.Timestamp,
			OverallMinCNY:     o.Snapshot.OverallMinCNY,
			OverallMinUSD:     o.Snapshot.FloorUSD(fx),
			TagFloors:         o.Snapshot.TagFloors,
			WithinTargetRange: o.Snapshot.WithinTargetRange,
		}
	}

	return out
}

func newRESTTrade(t entity.Trade) rest.Trade {
	out := rest.Trade{
		ID:             t.ID,
		SignalID:       t.SignalID,
		MarketHashName: t.MarketHashName,
		Direction:      t.Direction.String(),
		BuyMarket:      t.BuyMarket.String(),
		BuyPriceUSD:    t.BuyPriceUSD,
		SellPriceUSD:   t.SellPriceUSD,
		BuyTime:        t.BuyTime,
		SellTime:       t.SellTime,
		Note:           t.Note,
		Open:           t.IsOpen(),
	}

	if t.SellMarket != nil {
		out.SellMarket = lo.ToPtr(t.SellMarket.String())
	}
	if profit, ok := t.Profit(); ok {
		out.ProfitUSD = decimalNull(profit)
	}
	if roi, ok := t.ROI(); ok {
		out.ROI = decimalNull(roi)
	}
	if days, ok := t.HoldDays(); ok {
		out.HoldDays = &days
	}

	return out
}

// toFailure переводит доменные коды в классы failure, по которым reply
// выбирает HTTP-статус.
func toFailure(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	code, msg := appErr.Code, appErr.Message

	switch code {
	case errcodes.NotFound, errcodes.ItemNotFound, errcodes.SnapshotNotFound,
		errcodes.ListingNotFound, errcodes.SignalNotFound, errcodes.TradeNotFound:
		return failure.NewNotFoundError(err.Error(), failure.WithCode(code), failure.WithDescription(msg))
	case errcodes.ValidationError, errcodes.InvalidPaging, errcodes.InvalidSignalID,
		errcodes.InvalidDirection, errcodes.InvalidROI, errcodes.InvalidTradeID,
		errcodes.InvalidPrice, errcodes.InvalidItemName:
		return failure.NewInvalidArgumentError(err.Error(), failure.WithCode(code), failure.WithDescription(msg))
	case errcodes.Conflict:
		return failure.NewConflictError(err.Error(), failure.WithCode(code), failure.WithDescription(msg))
	case errcodes.TradeItemUnresolved:
		return failure.NewUnprocessableEntityError(err.Error(), failure.WithCode(code), failure.WithDescription(msg))
	default:
		return err
	}
}

func decimalNull(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

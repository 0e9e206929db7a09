// Package signal считает арбитражные сигналы в обе стороны.
//
// Направление A: покупка листинга CSFloat, продажа по флору Buff.
// Направление B: покупка по флору Buff, продажа по самому дешёвому листингу CSFloat.
package signal

import (
	"context"
	"fmt"
	"time"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/metrics"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/errcodes"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ItemRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Item, error)
}

type SnapshotRepository interface {
	Latest(ctx context.Context, goodsID int64) (*entity.PriceSnapshot, error)
}

type ListingRepository interface {
	ListActive(ctx context.Context) ([]entity.Listing, error)
}

type SignalRepository interface {
	Create(ctx context.Context, sig *entity.Signal) error
	Update(ctx context.Context, sig *entity.Signal) error
	FindActiveByListing(ctx context.Context, direction value.Direction, listingID int64) (*entity.Signal, error)
	FindActiveByName(ctx context.Context, direction value.Direction, name string) (*entity.Signal, error)
}

// CheapestListingProvider — живой поиск самого дешёвого листинга CSFloat.
// (nil, nil) означает, что листингов нет.
type CheapestListingProvider interface {
	Cheapest(ctx context.Context, marketHashName string) (*entity.Listing, error)
}

type Notifier interface {
	NotifySignal(ctx context.Context, sig entity.Signal) error
}

// Fees — комиссии в долях единицы.
type Fees struct {
	CSFloatBuy  float64
	CSFloatSell float64
	BuffSell    float64
	BuffBuy     float64
}

type Thresholds struct {
	MinROICSFloatToBuff float64
	MinROIBuffToCSFloat float64
	MinCSFloatListings  int
	MinWatchers         int
	SnapshotMaxAge      time.Duration
}

type Engine struct {
	tx        Transactor
	items     ItemRepository
	snapshots SnapshotRepository
	listings  ListingRepository
	signals   SignalRepository

	fxCNYToUSD float64
	fees       Fees
	thresholds Thresholds

	cheapest CheapestListingProvider
	notifier Notifier
	now      func() time.Time
}

func NewEngine(
	tx Transactor,
	items ItemRepository,
	snapshots SnapshotRepository,
	listings ListingRepository,
	signals SignalRepository,
	fxCNYToUSD float64,
	fees Fees,
	thresholds Thresholds,
) *Engine {
	return &Engine{
		tx:         tx,
		items:      items,
		snapshots:  snapshots,
		listings:   listings,
		signals:    signals,
		fxCNYToUSD: fxCNYToUSD,
		fees:       fees,
		thresholds: thresholds,
		now:        time.Now,
	}
}

func (e *Engine) WithCheapestListingProvider(p CheapestListingProvider) *Engine {
	e.cheapest = p
	return e
}

func (e *Engine) WithNotifier(n Notifier) *Engine {
	e.notifier = n
	return e
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ROI — (netSell − netBuy) / netBuy; false при неположительной стоимости.
func ROI(netBuy, netSell float64) (float64, bool) {
	if netBuy <= 0 {
		return 0, false
	}
	return (netSell - netBuy) / netBuy, true
}

// ComputeDirectionA оценивает листинги CSFloat; nil — все активные листинги.
func (e *Engine) ComputeDirectionA(ctx context.Context, listings []entity.Listing) (Summary, error) {
	direction := value.DirectionCSFloatToBuff
	summary := newSummary(direction)

	logger(ctx).Info("computing signals",
		"direction", direction.Short(),
		"min_listings", e.thresholds.MinCSFloatListings,
		"min_roi", e.thresholds.MinROICSFloatToBuff,
	)

	if listings == nil {
		active, err := e.listings.ListActive(ctx)
		if err != nil {
			return summary, fmt.Errorf("list active listings: %w", err)
		}
		listings = active
	}

	err := e.tx.InTx(ctx, func(ctx context.Context) error {
		for i := range listings {
			if err := ctx.Err(); err != nil {
				return err
			}

			listing := listings[i]
			eval := e.inSavepoint(ctx, func(ctx context.Context) Evaluation {
				return e.evaluateListing(ctx, listing)
			})
			e.settle(ctx, &summary, eval, "listing_id", listing.ExternalID)
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("direction A pass: %w", err)
	}

	e.finish(ctx, &summary)
	return summary, nil
}

// ComputeDirectionB оценивает предметы из списка наблюдения.
func (e *Engine) ComputeDirectionB(ctx context.Context, names []string) (Summary, error) {
	direction := value.DirectionBuffToCSFloat
	summary := newSummary(direction)

	if e.cheapest == nil {
		return summary, fmt.Errorf("direction B: cheapest listing provider is not configured")
	}

	logger(ctx).Info("computing signals",
		"direction", direction.Short(),
		"items", len(names),
		"min_roi", e.thresholds.MinROIBuffToCSFloat,
	)

	err := e.tx.InTx(ctx, func(ctx context.Context) error {
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return err
			}

			eval := e.inSavepoint(ctx, func(ctx context.Context) Evaluation {
				return e.evaluateItem(ctx, name)
			})
			e.settle(ctx, &summary, eval, "name", name)
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("direction B pass: %w", err)
	}

	e.finish(ctx, &summary)
	return summary, nil
}

func (e *Engine) evaluateListing(ctx context.Context, listing entity.Listing) Evaluation {
	if listing.ReferenceQuantity != nil && *listing.ReferenceQuantity < e.thresholds.MinCSFloatListings {
		return notEligible(ReasonLowLiquidity)
	}

	if listing.Watchers != nil && *listing.Watchers < e.thresholds.MinWatchers {
		return notEligible(ReasonFewWatchers)
	}

	item, snapshot, eval, ok := e.resolveFloor(ctx, listing.MarketHashName)
	if !ok {
		return eval
	}

	if e.thresholds.SnapshotMaxAge > 0 && snapshot.IsStale(e.now(), e.thresholds.SnapshotMaxAge) {
		return notEligible(ReasonStaleSnapshot)
	}

	csfloatUSD := listing.PriceUSD()
	buffUSD := snapshot.FloorUSD(e.fxCNYToUSD)

	netBuy := csfloatUSD * (1 + e.fees.CSFloatBuy)
	netSell := buffUSD * (1 - e.fees.BuffSell)

	roi, ok := ROI(netBuy, netSell)
	if !ok {
		return notEligible(ReasonNonPositiveCost)
	}

	if roi < e.thresholds.MinROICSFloatToBuff {
		return notEligible(ReasonBelowThreshold)
	}

	listingID := listing.ID
	goodsID := item.GoodsID

	return e.upsert(ctx, &entity.Signal{
		Direction:       value.DirectionCSFloatToBuff,
		MarketHashName:  listing.MarketHashName,
		GoodsID:         &goodsID,
		ListingID:       &listingID,
		BuffFloorCNY:    snapshot.OverallMinCNY,
		BuffFloorUSD:    buffUSD,
		CSFloatPriceUSD: csfloatUSD,
		ROI:             roi,
		IsActive:        true,
	})
}

func (e *Engine) evaluateItem(ctx context.Context, name string) Evaluation {
	item, snapshot, eval, ok := e.resolveFloor(ctx, name)
	if !ok {
		return eval
	}

	listing, err := e.cheapest.Cheapest(ctx, name)
	if err != nil {
		return transient(fmt.Errorf("cheapest listing: %w", err))
	}
	if listing == nil {
		return notEligible(ReasonNoListing)
	}

	buffUSD := snapshot.FloorUSD(e.fxCNYToUSD)
	csfloatUSD := listing.PriceUSD()

	netBuy := buffUSD * (1 + e.fees.BuffBuy)
	netSell := csfloatUSD * (1 - e.fees.CSFloatSell)

	roi, ok := ROI(netBuy, netSell)
	if !ok {
		return notEligible(ReasonNonPositiveCost)
	}

	if roi < e.thresholds.MinROIBuffToCSFloat {
		return notEligible(ReasonBelowThreshold)
	}

	goodsID := item.GoodsID

	return e.upsert(ctx, &entity.Signal{
		Direction:       value.DirectionBuffToCSFloat,
		MarketHashName:  name,
		GoodsID:         &goodsID,
		BuffFloorCNY:    snapshot.OverallMinCNY,
		BuffFloorUSD:    buffUSD,
		CSFloatPriceUSD: csfloatUSD,
		ROI:             roi,
		IsActive:        true,
	})
}

// resolveFloor находит предмет и его последний срез; ok=false несёт готовую оценку.
func (e *Engine) resolveFloor(ctx context.Context, name string) (*entity.Item, *entity.PriceSnapshot, Evaluation, bool) {
	item, err := e.items.GetByName(ctx, name)
	if err != nil {
		if domain.HasCode(err, errcodes.ItemNotFound) {
			return nil, nil, notEligible(ReasonNoItem), false
		}
		return nil, nil, transient(fmt.Errorf("get item: %w", err)), false
	}

	snapshot, err := e.snapshots.Latest(ctx, item.GoodsID)
	if err != nil {
		if domain.HasCode(err, errcodes.SnapshotNotFound) {
			return nil, nil, notEligible(ReasonNoSnapshot), false
		}
		return nil, nil, transient(fmt.Errorf("latest snapshot: %w", err)), false
	}

	return item, snapshot, Evaluation{}, true
}

// inSavepoint оценивает кандидата во вложенной транзакции: ошибка SQL
// откатывает только его и не ломает транзакцию прохода.
func (e *Engine) inSavepoint(ctx context.Context, evaluate func(ctx context.Context) Evaluation) Evaluation {
	var eval Evaluation

	err := e.tx.InTx(ctx, func(ctx context.Context) error {
		eval = evaluate(ctx)
		if eval.Outcome == OutcomeTransientError {
			return eval.Err
		}
		return nil
	})
	if err != nil && eval.Outcome != OutcomeTransientError {
		return transient(err)
	}

	return eval
}

// upsert обновляет активный сигнал той же идентичности или создаёт новый.
func (e *Engine) upsert(ctx context.Context, candidate *entity.Signal) Evaluation {
	var created bool

	err := func() error {
		existing, err := identityFor(candidate.Direction).findActive(ctx, e.signals, candidate)
		if err != nil && !domain.HasCode(err, errcodes.SignalNotFound) {
			return fmt.Errorf("find active signal: %w", err)
		}

		now := e.now()

		if existing != nil {
			candidate.ID = existing.ID
			candidate.ActedOn = existing.ActedOn
			candidate.Note = existing.Note
			candidate.CreatedAt = existing.CreatedAt
			candidate.UpdatedAt = now

			if err := e.signals.Update(ctx, candidate); err != nil {
				return fmt.Errorf("update signal: %w", err)
			}
			return nil
		}

		candidate.CreatedAt = now
		candidate.UpdatedAt = now

		if err := e.signals.Create(ctx, candidate); err != nil {
			return fmt.Errorf("create signal: %w", err)
		}
		created = true
		return nil
	}()
	if err != nil {
		return transient(err)
	}

	eval := found(candidate)
	eval.Created = created
	return eval
}

func (e *Engine) settle(ctx context.Context, summary *Summary, eval Evaluation, keyName, key string) {
	summary.add(eval)
	metrics.Signals.WithLabelValues(summary.Direction.Short(), eval.Outcome.String()).Inc()

	switch eval.Outcome {
	case OutcomeFound:
		if eval.Created {
			summary.Created++
			summary.New = append(summary.New, *eval.Signal)

			logger(ctx).Info("new signal",
				"direction", summary.Direction.Short(),
				"name", eval.Signal.MarketHashName,
				"buy_usd", eval.Signal.BuyPriceUSD(),
				"sell_usd", eval.Signal.SellPriceUSD(),
				"roi", eval.Signal.ROI,
			)
			return
		}

		summary.Updated++
		logger(ctx).Debug("signal updated", "id", eval.Signal.ID, "roi", eval.Signal.ROI)
	case OutcomeNotEligible:
		logger(ctx).Debug("not eligible", keyName, key, "reason", eval.Reason)
	case OutcomeTransientError:
		logger(ctx).Warn("signal evaluation failed", keyName, key, "error", eval.Err)
	}
}

// finish рассылает уведомления только после фиксации прохода.
func (e *Engine) finish(ctx context.Context, summary *Summary) {
	logger(ctx).Info("signals computed",
		"direction", summary.Direction.Short(),
		"evaluated", summary.Evaluated,
		"created", summary.Created,
		"updated", summary.Updated,
		"transient", summary.Transient,
	)

	if e.notifier == nil {
		return
	}

	for _, sig := range summary.New {
		if err := e.notifier.NotifySignal(ctx, sig); err != nil {
			logger(ctx).Warn("signal notification failed", "id", sig.ID, "error", err)
		}
	}
}

package worker

import (
	"context"
	"fmt"
	"time"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/ingest"
	"cs2arb/internal/domain/service/signal"
)

const (
	TaskBuffScan    = "buff_scan"
	TaskCSFloatScan = "csfloat_scan"
	TaskDirectionB  = "direction_b"
	TaskCleanup     = "cleanup"
)

type Ingestor interface {
	ScanBuff(ctx context.Context) (ingest.Result, error)
	ScanCSFloat(ctx context.Context) (ingest.Result, error)
	SweepListings(ctx context.Context, maxAge time.Duration) (int64, error)
}

type SignalEngine interface {
	ComputeDirectionA(ctx context.Context, listings []entity.Listing) (signal.Summary, error)
	ComputeDirectionB(ctx context.Context, names []string) (signal.Summary, error)
}

type StaleSweeper interface {
	DeactivateStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type Watchlist interface {
	List() []string
}

type Intervals struct {
	Buff       time.Duration
	CSFloat    time.Duration
	DirectionB time.Duration
	Cleanup    time.Duration
}

type MaxAges struct {
	Signal  time.Duration
	Listing time.Duration
}

// Tasks собирает стандартный набор задач сканера.
func Tasks(
	ingestor Ingestor,
	engine SignalEngine,
	sweeper StaleSweeper,
	watchlist Watchlist,
	intervals Intervals,
	maxAges MaxAges,
) []Task {
	return []Task{
		{
			Name:     TaskBuffScan,
			Interval: intervals.Buff,
			Run: func(ctx context.Context) error {
				_, err := ingestor.ScanBuff(ctx)
				return err
			},
		},
		{
			Name:     TaskCSFloatScan,
			Interval: intervals.CSFloat,
			Run: func(ctx context.Context) error {
				return scanCSFloat(ctx, ingestor, engine)
			},
		},
		{
			Name:     TaskDirectionB,
			Interval: intervals.DirectionB,
			Run: func(ctx context.Context) error {
				names := watchlist.List()
				if len(names) == 0 {
					logger(ctx).Info("watchlist is empty, direction B skipped")
					return nil
				}

				summary, err := engine.ComputeDirectionB(ctx, names)
				if err != nil {
					return fmt.Errorf("direction B: %w", err)
				}

				logger(ctx).Info("direction B computed", "found", summary.Found, "created", summary.Created)
				return nil
			},
		},
		{
			Name:     TaskCleanup,
			Interval: intervals.Cleanup,
			Run: func(ctx context.Context) error {
				signals, err := sweeper.DeactivateStale(ctx, maxAges.Signal)
				if err != nil {
					return fmt.Errorf("deactivate stale signals: %w", err)
				}

				listings, err := ingestor.SweepListings(ctx, maxAges.Listing)
				if err != nil {
					return fmt.Errorf("sweep listings: %w", err)
				}

				logger(ctx).Info("cleanup completed", "signals", signals, "listings", listings)
				return nil
			},
		},
	}
}

// scanCSFloat считает направление A только по листингам, которые вернул
// этот скан; пропавшие из выдачи листинги не оцениваются.
func scanCSFloat(ctx context.Context, ingestor Ingestor, engine SignalEngine) error {
	result, err := ingestor.ScanCSFloat(ctx)
	if err != nil {
		return err
	}

	if len(result.Listings) == 0 {
		return nil
	}

	summary, err := engine.ComputeDirectionA(ctx, result.Listings)
	if err != nil {
		return fmt.Errorf("direction A: %w", err)
	}

	logger(ctx).Info("direction A computed", "found", summary.Found, "created", summary.Created)
	return nil
}

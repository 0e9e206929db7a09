package application

import (
	"context"
	"fmt"

	"cs2arb/internal/config"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/ingest"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/service/signal"
)

type ScanOnceOptions struct {
	// DirectionB проверяет список наблюдения после направления A.
	DirectionB bool
	// Retain помечает неактивными листинги, не попавшие в этот проход.
	Retain bool
	TopLimit int
}

type ScanReport struct {
	Buff       ingest.Result
	CSFloat    ingest.Result
	Retired    int64
	DirectionA signal.Summary
	DirectionB *signal.Summary
	Top        []entity.Signal
}

// ScanOnce выполняет один полный проход без планировщика и серверов.
func ScanOnce(ctx context.Context, cfg config.Config, opts ScanOnceOptions) (ScanReport, error) {
	c, err := build(ctx, cfg)
	if err != nil {
		return ScanReport{}, err
	}
	defer c.close(ctx)

	var report ScanReport

	if report.Buff, err = c.ingest.ScanBuff(ctx); err != nil {
		return report, fmt.Errorf("buff scan: %w", err)
	}

	if report.CSFloat, err = c.ingest.ScanCSFloat(ctx); err != nil {
		return report, fmt.Errorf("csfloat scan: %w", err)
	}

	if opts.Retain {
		if report.Retired, err = c.ingest.RetainListings(ctx, report.CSFloat.SeenIDs); err != nil {
			return report, fmt.Errorf("retain listings: %w", err)
		}
	}

	if len(report.CSFloat.Listings) > 0 {
		if report.DirectionA, err = c.engine.ComputeDirectionA(ctx, report.CSFloat.Listings); err != nil {
			return report, fmt.Errorf("direction A: %w", err)
		}
	}

	if opts.DirectionB {
		summary, err := c.engine.ComputeDirectionB(ctx, c.watchlist.List())
		if err != nil {
			return report, fmt.Errorf("direction B: %w", err)
		}
		report.DirectionB = &summary
	}

	q := lifecycle.DefaultTopQuery()
	if opts.TopLimit > 0 {
		q.Limit = opts.TopLimit
	}

	if report.Top, err = c.lifecycle.Top(ctx, q); err != nil {
		return report, fmt.Errorf("top: %w", err)
	}

	return report, nil
}

// Package ingest переносит нормализованные записи фидов в хранилище.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/classifier"
	"cs2arb/internal/domain/service/normalizer"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/metrics"
	"cs2arb/pkg/contextx"
)

const defaultCommitEvery = 100

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ItemRepository interface {
	Upsert(ctx context.Context, item *entity.Item) (created bool, err error)
}

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.PriceSnapshot) error
}

type ListingRepository interface {
	Upsert(ctx context.Context, listing *entity.Listing) (created bool, err error)
	MarkInactiveExcept(ctx context.Context, externalIDs []string) (int64, error)
	DeactivateUncheckedSince(ctx context.Context, before time.Time) (int64, error)
}

type BuffFeed interface {
	FetchAllItems(ctx context.Context) ([]entity.BuffRecord, error)
}

type CSFloatFeed interface {
	FetchTopDiscounted(ctx context.Context, minCents, maxCents int64, pages int, minDiscount *float64) ([]entity.CSFloatRecord, error)
}

// ScanBand — параметры выборки листингов CSFloat.
type ScanBand struct {
	MinCents    int64
	MaxCents    int64
	Pages       int
	MinDiscount *float64
}

// Result — счётчики одного прохода ингеста.
type Result struct {
	Fetched    int
	Dropped    int
	Filtered   int
	Duplicates int
	Saved      int
	Created    int
	Failed     int
	// SeenIDs — внешние идентификаторы листингов, сохранённых в этом проходе.
	SeenIDs []string
	// Listings — листинги, сохранённые в этом проходе, с присвоенными ID.
	Listings []entity.Listing
}

type Service struct {
	tx          Transactor
	items       ItemRepository
	snapshots   SnapshotRepository
	listings    ListingRepository
	normalizer  *normalizer.Normalizer
	filter      classifier.Filter
	commitEvery int

	buffFeed    BuffFeed
	csfloatFeed CSFloatFeed
	band        ScanBand

	now func() time.Time
}

func NewService(
	tx Transactor,
	items ItemRepository,
	snapshots SnapshotRepository,
	listings ListingRepository,
	norm *normalizer.Normalizer,
	filter classifier.Filter,
) *Service {
	return &Service{
		tx:          tx,
		items:       items,
		snapshots:   snapshots,
		listings:    listings,
		normalizer:  norm,
		filter:      filter,
		commitEvery: defaultCommitEvery,
		now:         time.Now,
	}
}

func (s *Service) WithCommitEvery(n int) *Service {
	if n > 0 {
		s.commitEvery = n
	}
	return s
}

func (s *Service) WithFeeds(buff BuffFeed, csfloat CSFloatFeed) *Service {
	s.buffFeed = buff
	s.csfloatFeed = csfloat
	return s
}

func (s *Service) WithScanBand(band ScanBand) *Service {
	s.band = band
	return s
}

// ScanBuff забирает каталог Buff и сохраняет флоры.
func (s *Service) ScanBuff(ctx context.Context) (Result, error) {
	if s.buffFeed == nil {
		return Result{}, errors.New("buff feed is not configured")
	}

	records, err := s.buffFeed.FetchAllItems(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch buff items: %w", err)
	}

	return s.IngestBuff(ctx, records)
}

// ScanCSFloat забирает листинги CSFloat в ценовом диапазоне и сохраняет их.
func (s *Service) ScanCSFloat(ctx context.Context) (Result, error) {
	if s.csfloatFeed == nil {
		return Result{}, errors.New("csfloat feed is not configured")
	}

	records, err := s.csfloatFeed.FetchTopDiscounted(ctx, s.band.MinCents, s.band.MaxCents, s.band.Pages, s.band.MinDiscount)
	if err != nil {
		return Result{}, fmt.Errorf("fetch csfloat listings: %w", err)
	}

	return s.IngestListings(ctx, records)
}

func (s *Service) IngestBuff(ctx context.Context, records []entity.BuffRecord) (Result, error) {
	result := Result{Fetched: len(records)}

	normalized, dropped := s.normalizer.BuffBatch(ctx, records)
	result.Dropped = dropped

	seen := make(map[int64]struct{}, len(normalized))
	batch := make([]normalizer.BuffItem, 0, len(normalized))

	for _, item := range normalized {
		if _, ok := seen[item.Item.GoodsID]; ok {
			result.Duplicates++
			continue
		}
		seen[item.Item.GoodsID] = struct{}{}

		if !s.filter.Allowed(item.Item.MarketHashName) {
			result.Filtered++
			continue
		}
		batch = append(batch, item)
	}

	created := make([]bool, len(batch))

	err := s.inChunks(ctx, len(batch), func(ctx context.Context, i int) error {
		item := batch[i]

		isNew, err := s.items.Upsert(ctx, &item.Item)
		if err != nil {
			return fmt.Errorf("upsert item %d: %w", item.Item.GoodsID, err)
		}

		if err := s.snapshots.Create(ctx, &item.Snapshot); err != nil {
			return fmt.Errorf("create snapshot %d: %w", item.Item.GoodsID, err)
		}

		created[i] = isNew
		return nil
	}, func(i int, err error) {
		result.Failed++
		logger(ctx).Warn("buff item skipped", "goods_id", batch[i].Item.GoodsID, "error", err)
	}, func(i int) {
		result.Saved++
		if created[i] {
			result.Created++
		}
	})

	s.record(value.MarketBuff, result)

	logger(ctx).Info("buff ingestion finished",
		"fetched", result.Fetched,
		"saved", result.Saved,
		"created", result.Created,
		"dropped", result.Dropped,
		"filtered", result.Filtered,
		"failed", result.Failed,
	)

	return result, err
}

func (s *Service) IngestListings(ctx context.Context, records []entity.CSFloatRecord) (Result, error) {
	result := Result{Fetched: len(records)}

	normalized, dropped := s.normalizer.ListingBatch(ctx, records)
	result.Dropped = dropped

	seen := make(map[string]struct{}, len(normalized))
	batch := make([]entity.Listing, 0, len(normalized))

	for _, listing := range normalized {
		if _, ok := seen[listing.ExternalID]; ok {
			result.Duplicates++
			continue
		}
		seen[listing.ExternalID] = struct{}{}

		if !s.filter.Allowed(listing.MarketHashName) {
			result.Filtered++
			continue
		}
		batch = append(batch, listing)
	}

	created := make([]bool, len(batch))

	err := s.inChunks(ctx, len(batch), func(ctx context.Context, i int) error {
		isNew, err := s.listings.Upsert(ctx, &batch[i])
		if err != nil {
			return fmt.Errorf("upsert listing %s: %w", batch[i].ExternalID, err)
		}

		created[i] = isNew
		return nil
	}, func(i int, err error) {
		result.Failed++
		logger(ctx).Warn("csfloat listing skipped", "id", batch[i].ExternalID, "error", err)
	}, func(i int) {
		result.Saved++
		result.SeenIDs = append(result.SeenIDs, batch[i].ExternalID)
		result.Listings = append(result.Listings, batch[i])
		if created[i] {
			result.Created++
		}
	})

	s.record(value.MarketCSFloat, result)

	logger(ctx).Info("csfloat ingestion finished",
		"fetched", result.Fetched,
		"saved", result.Saved,
		"created", result.Created,
		"dropped", result.Dropped,
		"filtered", result.Filtered,
		"failed", result.Failed,
	)

	return result, err
}

// RetainListings деактивирует все активные листинги, кроме перечисленных.
func (s *Service) RetainListings(ctx context.Context, externalIDs []string) (int64, error) {
	n, err := s.listings.MarkInactiveExcept(ctx, externalIDs)
	if err != nil {
		return 0, fmt.Errorf("mark inactive: %w", err)
	}

	logger(ctx).Info("listings marked inactive", "count", n)
	return n, nil
}

// SweepListings деактивирует листинги, не подтверждённые за maxAge.
func (s *Service) SweepListings(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.listings.DeactivateUncheckedSince(ctx, s.now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("deactivate unchecked listings: %w", err)
	}

	if n > 0 {
		logger(ctx).Info("stale listings deactivated", "count", n, "max_age", maxAge)
	}
	return n, nil
}

// inChunks коммитит каждые commitEvery записей; ошибка одной записи
// откатывает только её вложенную транзакцию. onSaved вызывается для записей
// пачки только после её фиксации.
func (s *Service) inChunks(
	ctx context.Context,
	total int,
	step func(ctx context.Context, i int) error,
	onFail func(i int, err error),
	onSaved func(i int),
) error {
	for start := 0; start < total; start += s.commitEvery {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+s.commitEvery, total)
		saved := make([]int, 0, end-start)

		err := s.tx.InTx(ctx, func(ctx context.Context) error {
			saved = saved[:0]
			for i := start; i < end; i++ {
				if err := s.tx.InTx(ctx, func(ctx context.Context) error {
					return step(ctx, i)
				}); err != nil {
					onFail(i, err)
					continue
				}
				saved = append(saved, i)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("commit records %d..%d: %w", start, end, err)
		}

		for _, i := range saved {
			onSaved(i)
		}
	}

	return nil
}

func (s *Service) record(market value.Market, result Result) {
	m := market.String()
	metrics.IngestedRecords.WithLabelValues(m, metrics.ResultSaved).Add(float64(result.Saved))
	metrics.IngestedRecords.WithLabelValues(m, metrics.ResultDropped).Add(float64(result.Dropped))
	metrics.IngestedRecords.WithLabelValues(m, metrics.ResultFiltered).Add(float64(result.Filtered))
	metrics.IngestedRecords.WithLabelValues(m, metrics.ResultFailed).Add(float64(result.Failed))
}

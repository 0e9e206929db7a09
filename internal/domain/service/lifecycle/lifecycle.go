// Package lifecycle управляет жизнью сигналов: устаревание, ранжирование,
// отметка об исполнении, а также сводки для оператора.
package lifecycle

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

const (
	DefaultMaxAge    = 24 * time.Hour
	DefaultLimit     = 20
	overviewListings = 5
	overviewSignals  = 5
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type SignalRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Signal, error)
	List(ctx context.Context, filter entity.SignalFilter) ([]entity.Signal, error)
	ListByName(ctx context.Context, name string, limit int) ([]entity.Signal, error)
	DeactivateCreatedBefore(ctx context.Context, before time.Time) (int64, error)
	SetActedOn(ctx context.Context, id int64) error
	CountActiveByDirection(ctx context.Context) (map[value.Direction]int64, error)
}

type ItemRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Item, error)
	Count(ctx context.Context) (int64, error)
}

type SnapshotRepository interface {
	Latest(ctx context.Context, goodsID int64) (*entity.PriceSnapshot, error)
}

type ListingRepository interface {
	ListActiveByName(ctx context.Context, name string, limit int) ([]entity.Listing, error)
	CountActive(ctx context.Context) (int64, error)
}

// TopQuery — параметры ранжирования. Нулевой Limit означает DefaultLimit.
type TopQuery struct {
	Direction  *value.Direction
	MinROI     *float64
	Limit      int
	ActiveOnly bool
}

// DefaultTopQuery — только активные, первые DefaultLimit.
func DefaultTopQuery() TopQuery {
	return TopQuery{Limit: DefaultLimit, ActiveOnly: true}
}

// Overview — сводка по одному предмету.
type Overview struct {
	Item     entity.Item
	Snapshot *entity.PriceSnapshot
	Listings []entity.Listing
	Signals  []entity.Signal
}

type Stats struct {
	Items          int64
	ActiveListings int64
	ActiveSignals  map[value.Direction]int64
}

type Manager struct {
	signals   SignalRepository
	items     ItemRepository
	snapshots SnapshotRepository
	listings  ListingRepository
	now       func() time.Time
}

func NewManager(
	signals SignalRepository,
	items ItemRepository,
	snapshots SnapshotRepository,
	listings ListingRepository,
) *Manager {
	return &Manager{
		signals:   signals,
		items:     items,
		snapshots: snapshots,
		listings:  listings,
		now:       time.Now,
	}
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// DeactivateStale выключает активные сигналы, созданные раньше now − maxAge.
// Повторный запуск ничего не меняет.
func (m *Manager) DeactivateStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	n, err := m.signals.DeactivateCreatedBefore(ctx, m.now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("deactivate stale signals: %w", err)
	}

	logger(ctx).Info("stale signals deactivated", "count", n, "max_age", maxAge)

	m.refreshGauge(ctx)

	return n, nil
}

// Top возвращает сигналы по фильтру, отсортированные по ROI по убыванию.
func (m *Manager) Top(ctx context.Context, q TopQuery) ([]entity.Signal, error) {
	if q.Direction != nil && !q.Direction.Valid() {
		return nil, domain.NewError(errcodes.InvalidDirection, "unknown direction")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	signals, err := m.signals.List(ctx, entity.SignalFilter{
		Direction:  q.Direction,
		MinROI:     q.MinROI,
		ActiveOnly: q.ActiveOnly,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}

	return signals, nil
}

// MarkActedOn ставит флаг исполнения независимо от активности сигнала.
func (m *Manager) MarkActedOn(ctx context.Context, id int64) error {
	if err := m.signals.SetActedOn(ctx, id); err != nil {
		return fmt.Errorf("set acted on: %w", err)
	}

	logger(ctx).Info("signal marked as acted on", "id", id)
	return nil
}

func (m *Manager) Get(ctx context.Context, id int64) (*entity.Signal, error) {
	sig, err := m.signals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get signal: %w", err)
	}
	return sig, nil
}

// ItemOverview собирает последний срез, дешёвые листинги и свежие сигналы.
func (m *Manager) ItemOverview(ctx context.Context, name string) (Overview, error) {
	item, err := m.items.GetByName(ctx, name)
	if err != nil {
		return Overview{}, fmt.Errorf("get item: %w", err)
	}

	overview := Overview{Item: *item}

	snapshot, err := m.snapshots.Latest(ctx, item.GoodsID)
	switch {
	case err == nil:
		overview.Snapshot = snapshot
	case !domain.HasCode(err, errcodes.SnapshotNotFound):
		return Overview{}, fmt.Errorf("latest snapshot: %w", err)
	}

	if overview.Listings, err = m.listings.ListActiveByName(ctx, name, overviewListings); err != nil {
		return Overview{}, fmt.Errorf("list listings: %w", err)
	}

	if overview.Signals, err = m.signals.ListByName(ctx, name, overviewSignals); err != nil {
		return Overview{}, fmt.Errorf("list signals: %w", err)
	}

	return overview, nil
}

func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	items, err := m.items.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count items: %w", err)
	}

	listings, err := m.listings.CountActive(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count listings: %w", err)
	}

	signals, err := m.signals.CountActiveByDirection(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count signals: %w", err)
	}

	return Stats{Items: items, ActiveListings: listings, ActiveSignals: signals}, nil
}

func (m *Manager) refreshGauge(ctx context.Context) {
	counts, err := m.signals.CountActiveByDirection(ctx)
	if err != nil {
		logger(ctx).Warn("count active signals", "error", err)
		return
	}

	for direction, n := range counts {
		metrics.ActiveSignals.WithLabelValues(direction.Short()).Set(float64(n))
	}
}

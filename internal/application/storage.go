package application

import (
	"context"
	"fmt"

	"cs2arb/internal/config"
	"cs2arb/internal/domain/service/ingest"
	"cs2arb/internal/domain/service/ledger"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/service/signal"
	"cs2arb/internal/infrastructure/memory"
	"cs2arb/internal/infrastructure/persistence"
	"cs2arb/pkg/application/connectors"
)

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

type transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type itemRepository interface {
	ingest.ItemRepository
	signal.ItemRepository
	lifecycle.ItemRepository
}

type snapshotRepository interface {
	ingest.SnapshotRepository
	signal.SnapshotRepository
}

type listingRepository interface {
	ingest.ListingRepository
	signal.ListingRepository
	lifecycle.ListingRepository
}

type signalRepository interface {
	signal.SignalRepository
	lifecycle.SignalRepository
	ledger.SignalRepository
}

// storage — репозитории одного хранилища, PostgreSQL или памяти.
type storage struct {
	tx        transactor
	items     itemRepository
	snapshots snapshotRepository
	listings  listingRepository
	signals   signalRepository
	trades    ledger.TradeRepository

	close func(ctx context.Context)
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	switch cfg.App.StoreDriver {
	case driverMemory:
		logger(ctx).Warn("in-memory store: data is lost on restart")

		store := memory.NewStore()

		return &storage{
			tx:        store,
			items:     store.Items(),
			snapshots: store.Snapshots(),
			listings:  store.Listings(),
			signals:   store.Signals(),
			trades:    store.Trades(),
			close:     func(context.Context) {},
		}, nil
	case driverPostgres, "":
		pg := &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}

		db := pg.Client(ctx)

		if err := db.PingContext(ctx); err != nil {
			pg.Close(ctx)
			return nil, fmt.Errorf("db ping: %w", err)
		}

		if cfg.Postgres.Migrate {
			if err := persistence.Migrate(ctx, db); err != nil {
				pg.Close(ctx)
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		logger(ctx).Info("database connection OK")

		return &storage{
			tx:        persistence.NewTransactor(db),
			items:     persistence.NewItemRepository(db),
			snapshots: persistence.NewSnapshotRepository(db),
			listings:  persistence.NewListingRepository(db),
			signals:   persistence.NewSignalRepository(db),
			trades:    persistence.NewTradeRepository(db),
			close:     pg.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.App.StoreDriver)
	}
}

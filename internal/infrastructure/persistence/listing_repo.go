package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/lox"
)

const listingColumns = `id, external_id, market_hash_name, price_cents, discount, listing_type,
	float_value, paint_seed, wear_name, stickers, reference_quantity, watchers,
	is_active, seen_at, last_checked_at`

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Upsert вставляет листинг или обновляет изменчивые поля существующего.
// Наклейки перезаписываются, только если пришли в обновлении.
func (r *ListingRepository) Upsert(ctx context.Context, listing *entity.Listing) (bool, error) {
	now := time.Now()
	if listing.LastCheckedAt.IsZero() {
		listing.LastCheckedAt = now
	}
	if listing.SeenAt.IsZero() {
		listing.SeenAt = now
	}

	stickers, err := jsonb(listing.Stickers, len(listing.Stickers) == 0)
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to marshal stickers")
	}

	query := `
		INSERT INTO listings (
			external_id, market_hash_name, price_cents, discount, listing_type,
			float_value, paint_seed, wear_name, stickers, reference_quantity, watchers,
			is_active, seen_at, last_checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12, $13)
		ON CONFLICT (external_id) DO UPDATE SET
			price_cents        = EXCLUDED.price_cents,
			discount           = EXCLUDED.discount,
			last_checked_at    = EXCLUDED.last_checked_at,
			is_active          = TRUE,
			reference_quantity = EXCLUDED.reference_quantity,
			watchers           = EXCLUDED.watchers,
			stickers           = COALESCE(EXCLUDED.stickers, listings.stickers)
		RETURNING ` + listingColumns + `, (xmax = 0) AS created`

	var row struct {
		listingSchema
		Created bool `db:"created"`
	}

	if err := conn(ctx, r.db).GetContext(ctx, &row, query,
		listing.ExternalID,
		listing.MarketHashName,
		listing.PriceCents,
		listing.Discount,
		listing.Type,
		listing.FloatValue,
		listing.PaintSeed,
		nullable(listing.WearName),
		stickers,
		listing.ReferenceQuantity,
		listing.Watchers,
		listing.SeenAt,
		listing.LastCheckedAt,
	); err != nil {
		return false, wrapError(err, "failed to upsert listing")
	}

	stored, err := row.toDomain()
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to convert listing")
	}

	*listing = *stored
	return row.Created, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	var schema listingSchema
	if err := conn(ctx, r.db).GetContext(ctx, &schema,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id,
	); err != nil {
		return nil, notFound(err, errcodes.ListingNotFound, "listing not found")
	}

	listing, err := schema.toDomain()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert listing")
	}
	return listing, nil
}

func (r *ListingRepository) ListActive(ctx context.Context) ([]entity.Listing, error) {
	return r.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE is_active ORDER BY id`)
}

// ListActiveByName — активные листинги предмета, дешёвые первыми.
func (r *ListingRepository) ListActiveByName(ctx context.Context, name string, limit int) ([]entity.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE is_active AND market_hash_name = $1
		ORDER BY price_cents, id`

	if limit > 0 {
		return r.list(ctx, query+` LIMIT $2`, name, limit)
	}
	return r.list(ctx, query, name)
}

func (r *ListingRepository) MarkInactiveExcept(ctx context.Context, externalIDs []string) (int64, error) {
	if len(externalIDs) == 0 {
		return r.exec(ctx, `UPDATE listings SET is_active = FALSE WHERE is_active`)
	}

	query, args, err := sqlx.In(`UPDATE listings SET is_active = FALSE WHERE is_active AND external_id NOT IN (?)`, externalIDs)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	return r.exec(ctx, r.db.Rebind(query), args...)
}

func (r *ListingRepository) DeactivateUncheckedSince(ctx context.Context, before time.Time) (int64, error) {
	return r.exec(ctx, `UPDATE listings SET is_active = FALSE WHERE is_active AND last_checked_at < $1`, before)
}

func (r *ListingRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM listings WHERE is_active`); err != nil {
		return 0, wrapError(err, "failed to count listings")
	}
	return n, nil
}

func (r *ListingRepository) list(ctx context.Context, query string, args ...any) ([]entity.Listing, error) {
	var schemas []listingSchema
	if err := conn(ctx, r.db).SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, wrapError(err, "failed to list listings")
	}

	result, err := lox.MapErr(schemas, func(s listingSchema) (entity.Listing, error) {
		listing, err := s.toDomain()
		if err != nil {
			return entity.Listing{}, err
		}
		return *listing, nil
	})
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert listing")
	}
	return result, nil
}

func (r *ListingRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapError(err, "failed to update listings")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, wrapError(err, "failed to check affected rows")
	}
	return rows, nil
}

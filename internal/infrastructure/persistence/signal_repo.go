package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/value"
	"cs2arb/pkg/errcodes"
)

const signalColumns = `id, direction, market_hash_name, goods_id, listing_id, buff_floor_cny,
	buff_floor_usd, csfloat_price_usd, roi, note, is_active, acted_on, created_at, updated_at`

type SignalRepository struct {
	db *sqlx.DB
}

func NewSignalRepository(db *sqlx.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Create вставляет сигнал. Второй активный сигнал той же идентичности
// отклоняется частичным уникальным индексом с кодом Conflict.
func (r *SignalRepository) Create(ctx context.Context, sig *entity.Signal) error {
	now := time.Now()
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = now
	}
	if sig.UpdatedAt.IsZero() {
		sig.UpdatedAt = sig.CreatedAt
	}

	query := `
		INSERT INTO signals (
			direction, market_hash_name, goods_id, listing_id, buff_floor_cny, buff_floor_usd,
			csfloat_price_usd, roi, note, is_active, acted_on, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	if err := conn(ctx, r.db).GetContext(ctx, &sig.ID, query,
		sig.Direction.String(),
		sig.MarketHashName,
		sig.GoodsID,
		sig.ListingID,
		sig.BuffFloorCNY,
		sig.BuffFloorUSD,
		sig.CSFloatPriceUSD,
		sig.ROI,
		sig.Note,
		sig.IsActive,
		sig.ActedOn,
		sig.CreatedAt,
		sig.UpdatedAt,
	); err != nil {
		return wrapError(err, "failed to insert signal")
	}

	return nil
}

// Update перезаписывает цены, ROI и заметку; флаги не трогает.
func (r *SignalRepository) Update(ctx context.Context, sig *entity.Signal) error {
	if sig.UpdatedAt.IsZero() {
		sig.UpdatedAt = time.Now()
	}

	query := `
		UPDATE signals SET
			goods_id          = $1,
			buff_floor_cny    = $2,
			buff_floor_usd    = $3,
			csfloat_price_usd = $4,
			roi               = $5,
			note              = $6,
			updated_at        = $7
		WHERE id = $8
		RETURNING ` + signalColumns

	var schema signalSchema
	if err := conn(ctx, r.db).GetContext(ctx, &schema, query,
		sig.GoodsID,
		sig.BuffFloorCNY,
		sig.BuffFloorUSD,
		sig.CSFloatPriceUSD,
		sig.ROI,
		sig.Note,
		sig.UpdatedAt,
		sig.ID,
	); err != nil {
		return notFound(err, errcodes.SignalNotFound, "signal not found")
	}

	*sig = schema.toDomain()
	return nil
}

func (r *SignalRepository) GetByID(ctx context.Context, id int64) (*entity.Signal, error) {
	return r.get(ctx, `SELECT `+signalColumns+` FROM signals WHERE id = $1`, id)
}

func (r *SignalRepository) FindActiveByListing(ctx context.Context, direction value.Direction, listingID int64) (*entity.Signal, error) {
	return r.get(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE is_active AND direction = $1 AND listing_id = $2`,
		direction.String(), listingID,
	)
}

func (r *SignalRepository) FindActiveByName(ctx context.Context, direction value.Direction, name string) (*entity.Signal, error) {
	return r.get(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE is_active AND direction = $1 AND market_hash_name = $2`,
		direction.String(), name,
	)
}

// List — выборка по фильтру, отсортированная по ROI по убыванию.
func (r *SignalRepository) List(ctx context.Context, filter entity.SignalFilter) ([]entity.Signal, error) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ActiveOnly {
		where = append(where, "is_active")
	}
	if filter.Direction != nil {
		where = append(where, "direction = "+arg(filter.Direction.String()))
	}
	if filter.MinROI != nil {
		where = append(where, "roi >= "+arg(*filter.MinROI))
	}

	query := `SELECT ` + signalColumns + ` FROM signals`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY roi DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	return r.list(ctx, query, args...)
}

// ListByName — последние сигналы по предмету, новые первыми.
func (r *SignalRepository) ListByName(ctx context.Context, name string, limit int) ([]entity.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE market_hash_name = $1
		ORDER BY created_at DESC, id DESC`

	if limit > 0 {
		return r.list(ctx, query+` LIMIT $2`, name, limit)
	}
	return r.list(ctx, query, name)
}

func (r *SignalRepository) DeactivateCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE signals SET is_active = FALSE, updated_at = NOW() WHERE is_active AND created_at < $1`, before,
	)
	if err != nil {
		return 0, wrapError(err, "failed to deactivate signals")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, wrapError(err, "failed to check affected rows")
	}
	return rows, nil
}

func (r *SignalRepository) SetActedOn(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE signals SET acted_on = TRUE WHERE id = $1`, id)
	if err != nil {
		return wrapError(err, "failed to mark signal")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return wrapError(err, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.SignalNotFound, "signal not found")
	}
	return nil
}

func (r *SignalRepository) CountActiveByDirection(ctx context.Context) (map[value.Direction]int64, error) {
	var rows []struct {
		Direction string `db:"direction"`
		Count     int64  `db:"count"`
	}

	if err := conn(ctx, r.db).SelectContext(ctx, &rows,
		`SELECT direction, COUNT(*) AS count FROM signals WHERE is_active GROUP BY direction`,
	); err != nil {
		return nil, wrapError(err, "failed to count signals")
	}

	counts := map[value.Direction]int64{
		value.DirectionCSFloatToBuff: 0,
		value.DirectionBuffToCSFloat: 0,
	}
	for _, row := range rows {
		counts[value.Direction(row.Direction)] = row.Count
	}
	return counts, nil
}

func (r *SignalRepository) get(ctx context.Context, query string, args ...any) (*entity.Signal, error) {
	var schema signalSchema
	if err := conn(ctx, r.db).GetContext(ctx, &schema, query, args...); err != nil {
		return nil, notFound(err, errcodes.SignalNotFound, "signal not found")
	}

	sig := schema.toDomain()
	return &sig, nil
}

func (r *SignalRepository) list(ctx context.Context, query string, args ...any) ([]entity.Signal, error) {
	var schemas []signalSchema
	if err := conn(ctx, r.db).SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, wrapError(err, "failed to list signals")
	}

	result := make([]entity.Signal, 0, len(schemas))
	for _, s := range schemas {
		result = append(result, s.toDomain())
	}
	return result, nil
}

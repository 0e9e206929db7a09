package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/errcodes"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Create(ctx context.Context, snapshot *entity.PriceSnapshot) error {
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now()
	}

	tagFloors, err := jsonb(snapshot.TagFloors, len(snapshot.TagFloors) == 0)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal tag floors")
	}

	query := `
		INSERT INTO price_snapshots (goods_id, ts, overall_min_cny, tag_floors, stat_time, within_target_range)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if err := conn(ctx, r.db).GetContext(ctx, &snapshot.ID, query,
		snapshot.GoodsID,
		snapshot.Timestamp,
		snapshot.OverallMinCNY,
		tagFloors,
		snapshot.StatTime,
		snapshot.WithinTargetRange,
	); err != nil {
		return wrapError(err, "failed to insert snapshot")
	}

	return nil
}

// Latest — срез с максимальной меткой времени.
func (r *SnapshotRepository) Latest(ctx context.Context, goodsID int64) (*entity.PriceSnapshot, error) {
	query := `
		SELECT id, goods_id, ts, overall_min_cny, tag_floors, stat_time, within_target_range
		FROM price_snapshots
		WHERE goods_id = $1
		ORDER BY ts DESC, id DESC
		LIMIT 1`

	var schema snapshotSchema
	if err := conn(ctx, r.db).GetContext(ctx, &schema, query, goodsID); err != nil {
		return nil, notFound(err, errcodes.SnapshotNotFound, "snapshot not found")
	}

	snapshot, err := schema.toDomain()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert snapshot")
	}
	return snapshot, nil
}

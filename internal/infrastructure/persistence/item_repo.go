package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"cs2arb/internal/domain/entity"
	"cs2arb/pkg/errcodes"
)

const itemColumns = `goods_id, market_hash_name, weapon, skin_name, wear, first_seen_at, last_seen_at`

type ItemRepository struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Upsert создаёт предмет или обновляет last_seen_at; разобранное имя
// задаётся только при первом появлении.
func (r *ItemRepository) Upsert(ctx context.Context, item *entity.Item) (bool, error) {
	if item.LastSeenAt.IsZero() {
		item.LastSeenAt = time.Now()
	}
	if item.FirstSeenAt.IsZero() {
		item.FirstSeenAt = item.LastSeenAt
	}

	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (goods_id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
		RETURNING ` + itemColumns + `, (xmax = 0) AS created`

	var row struct {
		itemSchema
		Created bool `db:"created"`
	}

	if err := conn(ctx, r.db).GetContext(ctx, &row, query,
		item.GoodsID,
		item.MarketHashName,
		nullable(item.Name.Weapon),
		nullable(item.Name.Skin),
		nullable(item.Name.Wear),
		item.FirstSeenAt,
		item.LastSeenAt,
	); err != nil {
		return false, wrapError(err, "failed to upsert item")
	}

	*item = *row.toDomain()
	return row.Created, nil
}

func (r *ItemRepository) GetByGoodsID(ctx context.Context, goodsID int64) (*entity.Item, error) {
	var schema itemSchema
	if err := conn(ctx, r.db).GetContext(ctx, &schema,
		`SELECT `+itemColumns+` FROM items WHERE goods_id = $1`, goodsID,
	); err != nil {
		return nil, notFound(err, errcodes.ItemNotFound, "item not found")
	}
	return schema.toDomain(), nil
}

func (r *ItemRepository) GetByName(ctx context.Context, name string) (*entity.Item, error) {
	var schema itemSchema
	if err := conn(ctx, r.db).GetContext(ctx, &schema,
		`SELECT `+itemColumns+` FROM items WHERE market_hash_name = $1`, name,
	); err != nil {
		return nil, notFound(err, errcodes.ItemNotFound, "item not found")
	}
	return schema.toDomain(), nil
}

func (r *ItemRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM items`); err != nil {
		return 0, wrapError(err, "failed to count items")
	}
	return n, nil
}

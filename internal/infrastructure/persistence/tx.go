// Package persistence — хранилище PostgreSQL поверх sqlx и pgx.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"git.appkode.ru/pub/go/failure"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"cs2arb/internal/domain"
	"cs2arb/pkg/errcodes"
)

const pgUniqueViolation = "23505"

type txKey struct{}

type txState struct {
	tx    *sqlx.Tx
	depth int
}

// querier — общее подмножество *sqlx.DB и *sqlx.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Transactor кладёт транзакцию в контекст. Репозитории берут её оттуда,
// а вложенный InTx превращается в SAVEPOINT.
type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return t.savepoint(ctx, st, fn)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, &txState{tx: tx})); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

func (t *Transactor) savepoint(ctx context.Context, st *txState, fn func(ctx context.Context) error) error {
	st.depth++
	defer func() { st.depth-- }()

	name := fmt.Sprintf("sp_%d", st.depth)

	if _, err := st.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to create savepoint")
	}

	if err := fn(ctx); err != nil {
		if _, rbErr := st.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback to savepoint: %v", err, rbErr),
				errcodes.InternalServerError,
				"savepoint failed",
			)
		}
		return err
	}

	if _, err := st.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to release savepoint")
	}

	return nil
}

// conn возвращает транзакцию из контекста или пул.
func conn(ctx context.Context, db *sqlx.DB) querier {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return st.tx
	}
	return db
}

// wrapError переводит ошибку драйвера в доменную.
func wrapError(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.WrapError(err, errcodes.Conflict, message)
	}
	return domain.WrapError(err, errcodes.InternalServerError, message)
}

func notFound(err error, code failure.ErrorCode, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewError(code, message)
	}
	return wrapError(err, message)
}

package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/user-management/internal/domain/user"
)

// DBTX is the subset of pgx used by the repositories.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx begins a transaction, runs fn with it, and then commits on success
// or rolls back on error or panic. Panics are rethrown.
func WithTx(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.Background())
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit transaction: %w", commitErr)
		}
	}()

	err = fn(ctx, tx)
	return err
}

type postgresUnitOfWork struct {
	pool *pgxpool.Pool
}

func NewPostgresUnitOfWork(pool *pgxpool.Pool) user.UnitOfWork {
	return &postgresUnitOfWork{pool: pool}
}

func (u *postgresUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repo user.Repository) error) error {
	return WithTx(ctx, u.pool, pgx.TxOptions{}, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewPostgresUserRepo(tx))
	})
}

func (u *postgresUnitOfWork) ReadOnly(ctx context.Context, fn func(ctx context.Context, repo user.Repository) error) error {
	return WithTx(ctx, u.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewPostgresUserRepo(tx))
	})
}

package tr

import (
	"context"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/marble-shop/go-backend/pkg/e"
)

// Runner открывает транзакцию на пуле и кладёт её в контекст.
type Runner struct {
	db   transaction.Transactional
	opts pgx.TxOptions
}

func NewRunner(db transaction.Transactional) *Runner {
	return &Runner{db: db}
}

// WithTx выполняет fn в транзакции. Если транзакция уже лежит в контексте,
// fn выполняется в ней. Любая ошибка fn откатывает транзакцию.
func (r *Runner) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "tr.Runner.WithTx"

	if _, txErr := TxFromCtx(ctx); txErr == nil {
		return fn(ctx)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, r.opts, r.db)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if p := recover(); p != nil {
			if tx.IsActive() {
				_ = tx.Rollback(context.WithoutCancel(ctx))
			}
			panic(p)
		}
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(WithTx(ctx, tx.Transaction())); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

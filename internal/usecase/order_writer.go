package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
)

// OrderWriter атомарно списывает остатки и сохраняет заказ.
// Либо применяются все списания и заказ с событием order.placed, либо ничего.
type OrderWriter struct {
	tx          TxRunner
	productRepo ProductRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	logger      logger.Logger
}

func NewOrderWriter(
	tx TxRunner,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	logger logger.Logger,
) *OrderWriter {
	return &OrderWriter{
		tx:          tx,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// Commit повторно проверяет остатки под блокировкой строк и записывает заказ.
// pending: ledger, посчитанный до блокировки; он задаёт набор товаров.
// Цены и сумма берутся из заблокированного снимка.
func (w *OrderWriter) Commit(ctx context.Context, user *domain.User, lines []domain.LineRequest, pending *domain.Ledger) (*domain.Order, error) {
	const op = "OrderWriter.Commit"

	var created *domain.Order
	err := w.tx.WithTx(ctx, func(ctx context.Context) error {
		ids := pending.DecrementIDs()

		locked, err := w.productRepo.LockByIDs(ctx, ids)
		if err != nil {
			return persistence(op, err)
		}

		snapshot := make(map[int64]domain.Product, len(locked))
		for _, p := range locked {
			snapshot[p.ID] = p
		}
		for _, id := range ids {
			if _, ok := snapshot[id]; !ok {
				return e.Detail(e.ErrStockConflict, "product %d was removed while the order was being placed", id)
			}
		}

		ledger, err := domain.BuildLedger(snapshot, lines)
		if err != nil {
			if errors.Is(err, e.ErrInsufficientStock) {
				detail, _ := e.DetailOf(err)
				return e.Detail(e.ErrStockConflict, "%s", detail)
			}
			return err
		}

		for _, d := range ledger.Decrements {
			ok, err := w.productRepo.DecrementStock(ctx, d.ProductID, d.Quantity)
			if err != nil {
				return persistence(op, err)
			}
			if !ok {
				return e.Detail(e.ErrStockConflict, "stock for product %d changed concurrently", d.ProductID)
			}
		}

		order, err := w.orderRepo.Create(ctx, domain.NewOrder(user.ID, user.UID, ledger.Lines, ledger.Total))
		if err != nil {
			return persistence(op, err)
		}

		event, err := NewOrderPlacedEvent(order)
		if err != nil {
			return persistence(op, err)
		}
		if _, err := w.outboxRepo.Create(ctx, event); err != nil {
			return persistence(op, err)
		}

		created = order
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, persistence(op, err)
	}

	return created, nil
}

// persistence помечает ошибку хранилища как ErrPersistenceFailure, сохраняя причину.
func persistence(op string, err error) error {
	if errors.Is(err, e.ErrPersistenceFailure) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, e.ErrPersistenceFailure, err)
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		e.ErrInvalidRequest,
		e.ErrUserNotFound,
		e.ErrProductNotFound,
		e.ErrInsufficientStock,
		e.ErrStockConflict,
		e.ErrPersistenceFailure,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

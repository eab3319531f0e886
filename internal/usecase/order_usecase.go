package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
)

// OrderUseCase оформляет заказы и отдаёт их на чтение.
type OrderUseCase struct {
	catalog     *CatalogReader
	writer      *OrderWriter
	userRepo    UserRepository
	productRepo ProductRepository
	orderRepo   OrderRepository
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewOrderUC(
	catalog *CatalogReader,
	writer *OrderWriter,
	userRepo UserRepository,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		catalog:     catalog,
		writer:      writer,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// placement отслеживает переходы одного запроса received → validating → committing → committed|rejected.
type placement struct {
	state  domain.PlacementState
	logger logger.Logger
}

func (p *placement) to(state domain.PlacementState) {
	if p.state.Terminal() {
		return
	}
	p.logger.Debugf("order placement: %s -> %s", p.state, state)
	p.state = state
}

func (p *placement) reject(err error) error {
	p.to(domain.PlacementRejected)
	return err
}

// PlaceOrder оформляет заказ: проверяет покупателя, остатки и атомарно списывает товар.
// Заказ либо сохраняется целиком, либо не сохраняется вовсе.
func (o *OrderUseCase) PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error) {
	const op = "OrderUseCase.PlaceOrder"

	p := &placement{state: domain.PlacementReceived, logger: o.logger.With("user_uid", req.UserUID)}
	p.to(domain.PlacementValidating)

	if err := validatePlaceOrder(req); err != nil {
		return nil, p.reject(e.Wrap(op, err))
	}

	user, err := o.userRepo.GetByUID(ctx, req.UserUID)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, p.reject(e.Wrap(op, e.Detail(e.ErrUserNotFound, "user %s not found", req.UserUID)))
		}
		return nil, p.reject(persistence(op, err))
	}

	ids := make([]int64, len(req.Lines))
	for i, l := range req.Lines {
		ids[i] = l.ProductID
	}

	products, err := o.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, p.reject(e.Wrap(op, err))
	}

	ledger, err := domain.BuildLedger(products, req.Lines)
	if err != nil {
		return nil, p.reject(e.Wrap(op, err))
	}

	p.to(domain.PlacementCommitting)
	order, err := o.writer.Commit(ctx, user, req.Lines, ledger)
	if err != nil {
		if errors.Is(err, e.ErrPersistenceFailure) {
			o.logger.Errorf(err, "order placement failed for user %s", req.UserUID)
		}
		return nil, p.reject(e.Wrap(op, err))
	}
	p.to(domain.PlacementCommitted)

	// Кэш хранит остатки, после списания он устарел
	if err := o.cacheRepo.DeleteProducts(ctx, ledger.DecrementIDs()); err != nil {
		o.logger.Warnf("Failed to invalidate products cache: %v", e.Wrap(op, err))
	}

	o.logger.Infof("order %d placed: user=%s lines=%d total=%d", order.ID, order.UserUID, len(order.Lines), order.TotalAmount)

	return order, nil
}

// GetOrder возвращает заказ с раскрытыми товарами и покупателем.
func (o *OrderUseCase) GetOrder(ctx context.Context, id int64) (*domain.OrderDetails, error) {
	const op = "OrderUseCase.GetOrder"

	if id <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	details, err := o.expand(ctx, []domain.Order{*order})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &details[0], nil
}

// ListOrders возвращает все заказы с раскрытыми товарами и покупателями.
func (o *OrderUseCase) ListOrders(ctx context.Context) ([]domain.OrderDetails, error) {
	const op = "OrderUseCase.ListOrders"

	orders, err := o.orderRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	details, err := o.expand(ctx, orders)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return details, nil
}

// expand подгружает покупателей и товары заказов двумя запросами.
// Удалённые после оформления товары в Products отсутствуют.
func (o *OrderUseCase) expand(ctx context.Context, orders []domain.Order) ([]domain.OrderDetails, error) {
	if len(orders) == 0 {
		return []domain.OrderDetails{}, nil
	}

	var userIDs, productIDs []int64
	for _, order := range orders {
		userIDs = append(userIDs, order.UserID)
		for _, l := range order.Lines {
			productIDs = append(productIDs, l.ProductID)
		}
	}

	users, err := o.userRepo.GetByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, err
	}
	usersByID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	products, err := o.productRepo.GetByIDs(ctx, uniqueIDs(productIDs))
	if err != nil {
		return nil, err
	}
	productsByID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	details := make([]domain.OrderDetails, len(orders))
	for i, order := range orders {
		d := domain.OrderDetails{
			Order:    order,
			User:     usersByID[order.UserID],
			Products: make(map[int64]domain.Product, len(order.Lines)),
		}
		for _, l := range order.Lines {
			if p, ok := productsByID[l.ProductID]; ok {
				d.Products[l.ProductID] = p
			}
		}
		details[i] = d
	}

	return details, nil
}

// validatePlaceOrder проверяет форму запроса до обращения к хранилищу.
func validatePlaceOrder(req *PlaceOrderReq) error {
	if strings.TrimSpace(req.UserUID) == "" {
		return e.Detail(e.ErrInvalidRequest, "user id is required")
	}

	if len(req.Lines) == 0 {
		return e.Detail(e.ErrInvalidRequest, "products are required")
	}

	for i, l := range req.Lines {
		if l.ProductID <= 0 {
			return e.Detail(e.ErrInvalidRequest, "line %d: invalid product id %d", i+1, l.ProductID)
		}
		if l.Quantity <= 0 {
			return e.Detail(e.ErrInvalidRequest, "product %d: quantity must be a positive integer", l.ProductID)
		}
	}

	return nil
}

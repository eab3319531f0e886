package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/repository/pgdb/converter"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/tr"
)

// OrderRepo хранит заказы в orders и позиции в order_lines.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

// Create записывает заказ и все позиции одним батчем. Требует транзакцию в контексте.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := o.conv.ToModel(order)
	query := `
		INSERT INTO orders (user_id, total_amount)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, query, model.UserID, model.TotalAmount).Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, l := range model.Lines {
		batch.Queue(`
			INSERT INTO order_lines (order_id, line_no, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			model.ID, l.LineNo, l.ProductID, l.Quantity, l.UnitPrice,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for i := range model.Lines {
		model.Lines[i].OrderID = model.ID
	}

	return o.conv.ToEntity(model), nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.uid, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	q := tr.QuerierFromCtx(ctx, o.pool)

	var model converter.OrderModel
	err := q.QueryRow(ctx, query, id).
		Scan(&model.ID, &model.UserID, &model.UserUID, &model.TotalAmount, &model.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.Detail(e.ErrOrderNotFound, "order %d not found", id))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	orders := []*converter.OrderModel{&model}
	if err := o.attachLines(ctx, q, orders); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(&model), nil
}

// List возвращает все заказы, новые первыми.
func (o *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.uid, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
	`

	q := tr.QuerierFromCtx(ctx, o.pool)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []*converter.OrderModel
	for rows.Next() {
		var model converter.OrderModel
		if err := rows.Scan(&model.ID, &model.UserID, &model.UserUID, &model.TotalAmount, &model.CreatedAt); err != nil {
			rows.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &model)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := o.attachLines(ctx, q, models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Order, len(models))
	for i, m := range models {
		result[i] = *o.conv.ToEntity(m)
	}

	return result, nil
}

// attachLines подгружает позиции для набора заказов одним запросом.
func (o *OrderRepo) attachLines(ctx context.Context, q tr.Querier, orders []*converter.OrderModel) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*converter.OrderModel, len(orders))
	ids := make([]int64, len(orders))
	for i, m := range orders {
		byID[m.ID] = m
		ids[i] = m.ID
	}

	query := `
		SELECT order_id, line_no, product_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l converter.OrderLineModel
		if err := rows.Scan(&l.OrderID, &l.LineNo, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return err
		}
		if m, ok := byID[l.OrderID]; ok {
			m.Lines = append(m.Lines, l)
		}
	}

	return rows.Err()
}

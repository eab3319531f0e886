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

const productColumns = `
	pr.id, pr.name, pr.price, pr.stock, pr.category_id, cat.name,
	pr.where_to_use, pr.description, pr.image_key, pr.image_url,
	pr.created_at, pr.updated_at`

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Create сохраняет новый товар. Требует транзакцию в контексте.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := p.conv.ToModel(product)
	query := `
		INSERT INTO products (name, price, stock, category_id, where_to_use, description, image_key, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		model.Name,
		model.Price,
		model.Stock,
		model.CategoryID,
		model.WhereToUse,
		model.Description,
		model.ImageKey,
		model.ImageURL,
	).Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.Detail(e.ErrProductAlreadyExists, "product %q already exists", product.Name))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// GetByIDs возвращает найденные товары; отсутствующие id просто пропускаются.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products pr
		JOIN categories cat ON pr.category_id = cat.id
		WHERE pr.id = ANY($1)
		ORDER BY pr.id
	`

	return p.queryProducts(ctx, tr.QuerierFromCtx(ctx, p.pool), query, ids)
}

// LockByIDs берёт FOR UPDATE на строки товаров. Порядок по id исключает
// взаимоблокировки между заказами с пересекающимися товарами.
func (p *ProductRepo) LockByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT` + productColumns + `
		FROM products pr
		JOIN categories cat ON pr.category_id = cat.id
		WHERE pr.id = ANY($1)
		ORDER BY pr.id
		FOR UPDATE OF pr
	`

	return p.queryProducts(ctx, tx, query, ids)
}

// DecrementStock списывает qty только при достаточном остатке.
func (p *ProductRepo) DecrementStock(ctx context.Context, productID int64, qty int64) (bool, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, productID, qty)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return tag.RowsAffected() == 1, nil
}

func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products pr
		JOIN categories cat ON pr.category_id = cat.id
		ORDER BY pr.id
	`

	return p.queryProducts(ctx, tr.QuerierFromCtx(ctx, p.pool), query)
}

// Delete удаляет товар и возвращает удалённую запись.
func (p *ProductRepo) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		WITH deleted AS (
			DELETE FROM products WHERE id = $1
			RETURNING id, name, price, stock, category_id, where_to_use, description,
				image_key, image_url, created_at, updated_at
		)
		SELECT d.id, d.name, d.price, d.stock, d.category_id, cat.name,
			d.where_to_use, d.description, d.image_key, d.image_url, d.created_at, d.updated_at
		FROM deleted d
		JOIN categories cat ON d.category_id = cat.id
	`

	model, err := scanProduct(tr.QuerierFromCtx(ctx, p.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.Detail(e.ErrProductNotFound, "product %d not found", id))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) queryProducts(ctx context.Context, q tr.Querier, query string, args ...any) ([]domain.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *p.conv.ToEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	err := row.Scan(
		&model.ID, &model.Name, &model.Price, &model.Stock, &model.CategoryID, &model.CategoryName,
		&model.WhereToUse, &model.Description, &model.ImageKey, &model.ImageURL,
		&model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}

package usecase

import (
	"context"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/pkg/e"
)

// CatalogReader загружает товары, на которые ссылается заказ.
// Читает напрямую из БД, мимо кэша: нужны актуальные остатки.
type CatalogReader struct {
	productRepo ProductRepository
}

func NewCatalogReader(productRepo ProductRepository) *CatalogReader {
	return &CatalogReader{productRepo: productRepo}
}

// Resolve возвращает снимок товаров по id. Дубликаты в ids допустимы.
// Если хоть одного товара нет, возвращает ErrProductNotFound со списком отсутствующих.
func (c *CatalogReader) Resolve(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	const op = "CatalogReader.Resolve"

	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil, e.Detail(e.ErrInvalidRequest, "products are required")
	}

	products, err := c.productRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, persistence(op, err)
	}

	snapshot := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		snapshot[p.ID] = p
	}

	var missing []int64
	for _, id := range unique {
		if _, ok := snapshot[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, e.Detail(e.ErrProductNotFound, "one or more products not found: %v", missing)
	}

	return snapshot, nil
}

// uniqueIDs убирает повторы, сохраняя порядок первого появления.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

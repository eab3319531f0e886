package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
)

// ProductUseCase реализует бизнес-логику каталога товаров.
type ProductUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	tx           TxRunner
	imagesInfra  ImagesInfra
	logger       logger.Logger
	cacheRepo    CacheRepository
}

func NewProductUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	tx TxRunner,
	imagesInfra ImagesInfra,
	logger logger.Logger,
	cacheRepo CacheRepository,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		imagesInfra:  imagesInfra,
		logger:       logger,
		cacheRepo:    cacheRepo,
	}
}

// AddProduct загружает изображение в MinIO и сохраняет товар вместе с категорией.
// Если запись в БД не удалась, загруженное изображение удаляется.
func (p *ProductUseCase) AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.AddProduct"

	// Валидация данных
	if err := p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Сохранение изображений в MinIO
	imagesRes, err := p.uploadImages(ctx, req.Name, req.Images)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var product *domain.Product
	err = p.tx.WithTx(ctx, func(ctx context.Context) error {
		// идемпотентное создание категории
		category, err := p.createCategory(ctx, req.CategoryName)
		if err != nil {
			return err
		}

		image := imagesRes.Images[0]
		product, err = p.productRepo.Create(ctx, domain.NewProduct(
			req.Name, req.Price, req.Stock, category.ID, req.WhereToUse, req.Description, &image,
		))
		if err != nil {
			return err
		}
		product.Category = category.Name

		return nil
	})
	if err != nil {
		p.logger.Warnf(
			"Cleaning up orphaned images after transaction failure. product_name: %s, error: %v",
			req.Name,
			e.Wrap(op, err),
		)
		p.imagesInfra.CleanupImages(imagesRes.Keys())

		return nil, e.Wrap(op, err)
	}

	return product, nil
}

// ListProducts возвращает все товары каталога.
func (p *ProductUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// GetProduct возвращает один товар, используя кэш.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	const op = "ProductUseCase.GetProduct"

	if id <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	res, err := p.GetProductsInfo(ctx, NewGetProductsReq([]int64{id}))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(res.Products) == 0 {
		return nil, e.Wrap(op, e.Detail(e.ErrProductNotFound, "product %d not found", id))
	}

	return &res.Products[0], nil
}

// GetProductsInfo возвращает информацию о продуктах по их идентификаторам.
func (p *ProductUseCase) GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error) {
	const op = "ProductUseCase.GetProductsInfo"

	// Валидация
	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.Detail(e.ErrInvalidRequest, "products are required"))
	}

	// Поиск продуктов в кэше
	cached, err := p.cacheRepo.GetProducts(ctx, req.IDs)
	var cacheProductsMap map[int64]ProductInfo
	var nonCacheable []int64
	if err != nil {
		p.logger.Warnf("Failed to read products cache: %v", e.Wrap(op, err))
		cached = nil
		nonCacheable = uniqueIDs(req.IDs)
	} else {
		cacheProductsMap = cached.Products
		for _, productID := range uniqueIDs(req.IDs) {
			if _, ok := cacheProductsMap[productID]; !ok {
				nonCacheable = append(nonCacheable, productID)
			}
		}
	}

	// Получение продуктов из БД
	dbProductsMap := make(map[int64]ProductInfo, len(nonCacheable))
	if len(nonCacheable) > 0 {
		products, err := p.productRepo.GetByIDs(ctx, nonCacheable)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		infos := make([]ProductInfo, 0, len(products))
		for i := range products {
			info := NewProductInfo(&products[i])
			infos = append(infos, info)
			dbProductsMap[info.ID] = info
		}

		// Фоновое добавление продуктов в кэш. Товар, инвалидированный после чтения
		// поколений, записан не будет.
		if len(infos) > 0 && cached != nil {
			generations := cached.Generations
			go func() {
				bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
				defer cancel()

				if err := p.cacheRepo.SetProducts(bgCtx, infos, generations); err != nil {
					p.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
				}
			}()
		}
	}

	// Формирование результата
	result := make([]ProductInfo, 0, len(req.IDs))
	notFoundProducts := make([]int64, 0)
	for _, id := range req.IDs {
		if pr, ok := cacheProductsMap[id]; ok {
			result = append(result, pr)
		} else if pr, ok := dbProductsMap[id]; ok {
			result = append(result, pr)
		} else {
			notFoundProducts = append(notFoundProducts, id)
		}
	}

	return NewGetProductsRes(result, notFoundProducts), nil
}

// DeleteProduct удаляет товар, его изображение и запись в кэше.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.DeleteProduct"

	if id <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidID)
	}

	product, err := p.productRepo.Delete(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
	}

	if product.Image != nil && product.Image.Key != "" {
		p.imagesInfra.CleanupImages([]string{product.Image.Key})
	}

	return product, nil
}

// createCategory идемпотентно создаёт категорию по имени.
func (p *ProductUseCase) createCategory(ctx context.Context, categoryName string) (*domain.Category, error) {
	return p.categoryRepo.Create(ctx, domain.NewCategory(strings.TrimSpace(categoryName)))
}

// uploadImages сохраняет изображения продукта в MinIO.
func (p *ProductUseCase) uploadImages(ctx context.Context, name string, images []ProductImage) (*UploadImagesRes, error) {
	res, err := p.imagesInfra.UploadImages(ctx, NewUploadImagesReq(name, images))
	if err != nil {
		return nil, err
	}
	if len(res.Images) == 0 {
		return nil, e.ErrNoImages
	}
	return res, nil
}

// validateProduct проверяет корректность входных данных запроса на добавление продукта.
func (p *ProductUseCase) validateProduct(req *AddProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if strings.TrimSpace(req.CategoryName) == "" {
		return e.Detail(e.ErrMissingFields, "category is required")
	}

	if req.Price < 0 {
		return e.ErrPriceMustBePositive
	}

	if req.Stock < 0 {
		return e.ErrInvalidStock
	}

	if len(req.Images) == 0 {
		return e.ErrNoImages
	}

	// у товара одно изображение, остальные остались бы в MinIO без ссылок
	if len(req.Images) > 1 {
		return e.Detail(e.ErrInvalidRequest, "only one image is allowed per product")
	}

	return nil
}

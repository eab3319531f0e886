package converter

import (
	"github.com/marble-shop/go-backend/internal/usecase"
)

type ProductInfoConverter interface {
	ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel
	ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo
	ToArrRedisModel(entities []usecase.ProductInfo) []ProductInfoRedisModel
	ToArrUseCase(models []ProductInfoRedisModel) []usecase.ProductInfo
}

type ProductInfoConverterImpl struct{}

func (c *ProductInfoConverterImpl) ToRedisModel(entity *usecase.ProductInfo) *ProductInfoRedisModel {
	if entity == nil {
		return nil
	}

	return &ProductInfoRedisModel{
		ID:           entity.ID,
		Name:         entity.Name,
		CategoryName: entity.CategoryName,
		Price:        entity.Price,
		Stock:        entity.Stock,
		WhereToUse:   entity.WhereToUse,
		Description:  entity.Description,
		ImageKey:     entity.ImageKey,
		ImageURL:     entity.ImageURL,
	}
}

func (c *ProductInfoConverterImpl) ToUseCase(model *ProductInfoRedisModel) *usecase.ProductInfo {
	if model == nil {
		return nil
	}

	return &usecase.ProductInfo{
		ID:           model.ID,
		Name:         model.Name,
		CategoryName: model.CategoryName,
		Price:        model.Price,
		Stock:        model.Stock,
		WhereToUse:   model.WhereToUse,
		Description:  model.Description,
		ImageKey:     model.ImageKey,
		ImageURL:     model.ImageURL,
	}
}

func (c *ProductInfoConverterImpl) ToArrRedisModel(entities []usecase.ProductInfo) []ProductInfoRedisModel {
	if entities == nil {
		return nil
	}

	models := make([]ProductInfoRedisModel, len(entities))
	for i := range entities {
		models[i] = *c.ToRedisModel(&entities[i])
	}

	return models
}

func (c *ProductInfoConverterImpl) ToArrUseCase(models []ProductInfoRedisModel) []usecase.ProductInfo {
	if models == nil {
		return nil
	}

	entities := make([]usecase.ProductInfo, len(models))
	for i := range models {
		entities[i] = *c.ToUseCase(&models[i])
	}

	return entities
}

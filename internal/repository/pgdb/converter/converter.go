package converter

import (
	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter interface {
	ToModel(entity *domain.Category) *CategoryModel
	ToEntity(model *CategoryModel) *domain.Category
}

type UserConverter interface {
	ToModel(entity *domain.User) *UserModel
	ToEntity(model *UserModel) *domain.User
}

type AdminConverter interface {
	ToModel(entity *domain.Admin) *AdminModel
	ToEntity(model *AdminModel) *domain.Admin
}

// OrderConverter переводит заказ вместе с позициями.
type OrderConverter interface {
	ToModel(entity *domain.Order) *OrderModel
	ToEntity(model *OrderModel) *domain.Order
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}
	model := &ProductModel{
		ID:           entity.ID,
		Name:         entity.Name,
		Price:        entity.Price,
		Stock:        entity.Stock,
		CategoryID:   entity.CategoryID,
		CategoryName: entity.Category,
		WhereToUse:   entity.WhereToUse,
		Description:  entity.Description,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
	if entity.Image != nil {
		key, url := entity.Image.Key, entity.Image.URL
		model.ImageKey = &key
		model.ImageURL = &url
	}
	return model
}

func (ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}
	entity := &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Price:       model.Price,
		Stock:       model.Stock,
		CategoryID:  model.CategoryID,
		Category:    model.CategoryName,
		WhereToUse:  model.WhereToUse,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.ImageKey != nil {
		entity.Image = &domain.ImageRef{Key: *model.ImageKey}
		if model.ImageURL != nil {
			entity.Image.URL = *model.ImageURL
		}
	}
	return entity
}

type CategoryConverterImpl struct{}

func (CategoryConverterImpl) ToModel(entity *domain.Category) *CategoryModel {
	if entity == nil {
		return nil
	}
	return &CategoryModel{ID: entity.ID, Name: entity.Name, CreatedAt: entity.CreatedAt}
}

func (CategoryConverterImpl) ToEntity(model *CategoryModel) *domain.Category {
	if model == nil {
		return nil
	}
	return &domain.Category{ID: model.ID, Name: model.Name, CreatedAt: model.CreatedAt}
}

type UserConverterImpl struct{}

func (UserConverterImpl) ToModel(entity *domain.User) *UserModel {
	if entity == nil {
		return nil
	}
	return &UserModel{
		ID:          entity.ID,
		UID:         entity.UID,
		Name:        entity.Name,
		PhoneNumber: entity.PhoneNumber,
		Email:       entity.Email,
		Address:     entity.Address,
		CreatedAt:   entity.CreatedAt,
	}
}

func (UserConverterImpl) ToEntity(model *UserModel) *domain.User {
	if model == nil {
		return nil
	}
	return &domain.User{
		ID:          model.ID,
		UID:         model.UID,
		Name:        model.Name,
		PhoneNumber: model.PhoneNumber,
		Email:       model.Email,
		Address:     model.Address,
		CreatedAt:   model.CreatedAt,
	}
}

type AdminConverterImpl struct{}

func (AdminConverterImpl) ToModel(entity *domain.Admin) *AdminModel {
	if entity == nil {
		return nil
	}
	return &AdminModel{
		ID:        entity.ID,
		UID:       entity.UID,
		Name:      entity.Name,
		Phone:     entity.Phone,
		Email:     entity.Email,
		CreatedAt: entity.CreatedAt,
	}
}

func (AdminConverterImpl) ToEntity(model *AdminModel) *domain.Admin {
	if model == nil {
		return nil
	}
	return &domain.Admin{
		ID:        model.ID,
		UID:       model.UID,
		Name:      model.Name,
		Phone:     model.Phone,
		Email:     model.Email,
		CreatedAt: model.CreatedAt,
	}
}

type OrderConverterImpl struct{}

func (OrderConverterImpl) ToModel(entity *domain.Order) *OrderModel {
	if entity == nil {
		return nil
	}
	model := &OrderModel{
		ID:          entity.ID,
		UserID:      entity.UserID,
		UserUID:     entity.UserUID,
		TotalAmount: entity.TotalAmount,
		CreatedAt:   entity.CreatedAt,
		Lines:       make([]OrderLineModel, len(entity.Lines)),
	}
	for i, l := range entity.Lines {
		model.Lines[i] = OrderLineModel{
			OrderID:   entity.ID,
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return model
}

func (OrderConverterImpl) ToEntity(model *OrderModel) *domain.Order {
	if model == nil {
		return nil
	}
	entity := &domain.Order{
		ID:          model.ID,
		UserID:      model.UserID,
		UserUID:     model.UserUID,
		TotalAmount: model.TotalAmount,
		CreatedAt:   model.CreatedAt,
		Lines:       make([]domain.OrderLine, len(model.Lines)),
	}
	for i, l := range model.Lines {
		entity.Lines[i] = domain.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return entity
}

type OutboxEventConverterImpl struct{}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	if models == nil {
		return nil
	}
	out := make([]*usecase.OutboxEvent, len(models))
	for i, m := range models {
		out[i] = c.ToEntity(m)
	}
	return out
}

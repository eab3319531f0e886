package usecase

import (
	"context"

	"github.com/marble-shop/go-backend/internal/domain"
)

type ProductUC interface {
	AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
	DeleteProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type OrderUC interface {
	PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.OrderDetails, error)
	ListOrders(ctx context.Context) ([]domain.OrderDetails, error)
}

type UserUC interface {
	Register(ctx context.Context, req *RegisterUserReq) (*domain.User, error)
	Get(ctx context.Context, uid string) (*domain.User, error)
}

type AdminUC interface {
	Register(ctx context.Context, req *RegisterAdminReq) (*domain.Admin, error)
	Get(ctx context.Context, uid string) (*domain.Admin, error)
	AdminAuthorizer
}

// AdminAuthorizer проверяет право вызывающего на административные операции.
// Сейчас право есть у любого зарегистрированного администратора.
type AdminAuthorizer interface {
	Authorize(ctx context.Context, uid string) error
}

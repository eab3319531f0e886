package http

import (
	"context"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/usecase"
)

type stubProductUC struct {
	added    *usecase.AddProductReq
	product  *domain.Product
	info     *usecase.ProductInfo
	products []domain.Product
	err      error
}

func (s *stubProductUC) AddProduct(_ context.Context, req *usecase.AddProductReq) (*domain.Product, error) {
	s.added = req
	return s.product, s.err
}

func (s *stubProductUC) ListProducts(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductUC) GetProduct(context.Context, int64) (*usecase.ProductInfo, error) {
	return s.info, s.err
}

func (s *stubProductUC) GetProductsInfo(context.Context, *usecase.GetProductsReq) (*usecase.GetProductsRes, error) {
	return nil, s.err
}

func (s *stubProductUC) DeleteProduct(context.Context, int64) (*domain.Product, error) {
	return s.product, s.err
}

type stubOrderUC struct {
	req     *usecase.PlaceOrderReq
	order   *domain.Order
	details []domain.OrderDetails
	err     error
}

func (s *stubOrderUC) PlaceOrder(_ context.Context, req *usecase.PlaceOrderReq) (*domain.Order, error) {
	s.req = req
	return s.order, s.err
}

func (s *stubOrderUC) GetOrder(context.Context, int64) (*domain.OrderDetails, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.details[0], nil
}

func (s *stubOrderUC) ListOrders(context.Context) ([]domain.OrderDetails, error) {
	return s.details, s.err
}

type stubUserUC struct {
	user *domain.User
	err  error
}

func (s *stubUserUC) Register(_ context.Context, req *usecase.RegisterUserReq) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewUser(req.UID, req.Name, req.PhoneNumber, req.Email, req.Address), nil
}

func (s *stubUserUC) Get(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

type stubAdminUC struct {
	admins map[string]bool
	err    error
}

func (s *stubAdminUC) Register(_ context.Context, req *usecase.RegisterAdminReq) (*domain.Admin, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewAdmin(req.UID, req.Name, req.Phone, req.Email), nil
}

func (s *stubAdminUC) Get(_ context.Context, uid string) (*domain.Admin, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewAdmin(uid, "", "", ""), nil
}

func (s *stubAdminUC) Authorize(_ context.Context, uid string) error {
	if s.admins[uid] {
		return nil
	}
	return errForbidden
}

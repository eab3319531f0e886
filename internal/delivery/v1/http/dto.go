package http

import (
	"time"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/usecase"
)

// REQUESTS

type PlaceOrderRequest struct {
	UserID   string             `json:"userId"`
	Products []OrderLineRequest `json:"products"`
}

type OrderLineRequest struct {
	Product  int64 `json:"product"`
	Quantity int64 `json:"quantity"`
}

type RegisterUserRequest struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

type RegisterAdminRequest struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// RESPONSES

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int64  `json:"stock"`
	WhereToUse  string `json:"wheretouse,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image,omitempty"`
}

type OrderLineResponse struct {
	Product    int64            `json:"product"`
	Quantity   int64            `json:"quantity"`
	UnitPrice  string           `json:"unit_price"`
	Amount     string           `json:"amount"`
	Details    *ProductResponse `json:"details,omitempty"`
	Unresolved bool             `json:"unresolved,omitempty"`
}

type OrderResponse struct {
	ID          int64               `json:"id"`
	UserID      string              `json:"userId"`
	User        *UserResponse       `json:"user,omitempty"`
	Products    []OrderLineResponse `json:"products"`
	TotalAmount string              `json:"totalAmount"`
	TotalCents  int64               `json:"total_cents"`
	CreatedAt   time.Time           `json:"createdAt"`
}

type UserResponse struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
}

type AdminResponse struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// MAPPERS

func toPlaceOrderReq(req *PlaceOrderRequest) *usecase.PlaceOrderReq {
	lines := make([]domain.LineRequest, len(req.Products))
	for i, p := range req.Products {
		lines[i] = domain.LineRequest{ProductID: p.Product, Quantity: p.Quantity}
	}
	return usecase.NewPlaceOrderReq(req.UserID, lines)
}

func newProductResponse(p *domain.Product) ProductResponse {
	return newProductInfoResponse(usecase.NewProductInfo(p))
}

func newProductInfoResponse(info usecase.ProductInfo) ProductResponse {
	return ProductResponse{
		ID:          info.ID,
		Name:        info.Name,
		Category:    info.CategoryName,
		Price:       formatCents(info.Price),
		PriceCents:  info.Price,
		Stock:       info.Stock,
		WhereToUse:  info.WhereToUse,
		Description: info.Description,
		ImageURL:    info.ImageURL,
	}
}

func newOrderResponse(o *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			Product:   l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: formatCents(l.UnitPrice),
			Amount:    formatCents(l.Amount()),
		}
	}

	return OrderResponse{
		ID:          o.ID,
		UserID:      o.UserUID,
		Products:    lines,
		TotalAmount: formatCents(o.TotalAmount),
		TotalCents:  o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}
}

// newOrderDetailsResponse раскрывает товары и покупателя. Позиции с удалённым
// товаром помечаются unresolved.
func newOrderDetailsResponse(d *domain.OrderDetails) OrderResponse {
	res := newOrderResponse(&d.Order)
	user := newUserResponse(&d.User)
	res.User = &user

	for i := range res.Products {
		p, ok := d.Products[res.Products[i].Product]
		if !ok {
			res.Products[i].Unresolved = true
			continue
		}
		details := newProductResponse(&p)
		res.Products[i].Details = &details
	}

	return res
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UID:         u.UID,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		Address:     u.Address,
	}
}

func newAdminResponse(a *domain.Admin) AdminResponse {
	return AdminResponse{
		UID:   a.UID,
		Name:  a.Name,
		Phone: a.Phone,
		Email: a.Email,
	}
}

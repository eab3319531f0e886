package grpc

import (
	"context"
	"math"
	"time"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

type OrderService struct {
	orderUC usecase.OrderUC
	prUC    usecase.ProductUC
	logger  logger.Logger
}

func NewOrderService(orderUC usecase.OrderUC, prUC usecase.ProductUC, logger logger.Logger) *OrderService {
	return &OrderService{orderUC: orderUC, prUC: prUC, logger: logger}
}

// PlaceOrder принимает {"userId": "...", "products": [{"product": 1, "quantity": 2}]}.
func (g *OrderService) PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.PlaceOrder"

	placeReq, err := toPlaceOrderReq(req)
	if err != nil {
		return nil, GRPCErrorResponse(err)
	}

	order, err := g.orderUC.PlaceOrder(ctx, placeReq)
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := structpb.NewStruct(map[string]any{
		"message": "Order placed successfully",
		"order":   orderToMap(order),
	})
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

// GetProductsInfo принимает {"ids": [1, 2]} и возвращает найденные товары
// и список отсутствующих id.
func (g *OrderService) GetProductsInfo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.GetProductsInfo"

	ids, err := int64List(req.GetFields()["ids"], "ids")
	if err != nil {
		return nil, GRPCErrorResponse(err)
	}

	res, err := g.prUC.GetProductsInfo(ctx, usecase.NewGetProductsReq(ids))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	products := make([]any, len(res.Products))
	for i := range res.Products {
		products[i] = productToMap(&res.Products[i])
	}
	notFound := make([]any, len(res.NotFoundProducts))
	for i, id := range res.NotFoundProducts {
		notFound[i] = float64(id)
	}

	out, err := structpb.NewStruct(map[string]any{
		"products":           products,
		"products_not_found": notFound,
	})
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return out, nil
}

func toPlaceOrderReq(req *structpb.Struct) (*usecase.PlaceOrderReq, error) {
	fields := req.GetFields()

	lines := fields["products"].GetListValue().GetValues()
	reqLines := make([]domain.LineRequest, len(lines))
	for i, v := range lines {
		line := v.GetStructValue().GetFields()
		productID, err := int64Value(line["product"], "product")
		if err != nil {
			return nil, err
		}
		quantity, err := int64Value(line["quantity"], "quantity")
		if err != nil {
			return nil, err
		}
		reqLines[i] = domain.LineRequest{ProductID: productID, Quantity: quantity}
	}

	return usecase.NewPlaceOrderReq(fields["userId"].GetStringValue(), reqLines), nil
}

// int64Value достаёт целое из числового значения Struct. Дробные и
// выходящие за int64 значения отклоняются.
func int64Value(v *structpb.Value, field string) (int64, error) {
	if v == nil {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, e.Detail(e.ErrInvalidRequest, "%s must be a number", field)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, e.Detail(e.ErrInvalidRequest, "%s must be an integer", field)
	}
	return int64(f), nil
}

func int64List(v *structpb.Value, field string) ([]int64, error) {
	values := v.GetListValue().GetValues()
	out := make([]int64, len(values))
	for i, item := range values {
		n, err := int64Value(item, field)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func orderToMap(o *domain.Order) map[string]any {
	lines := make([]any, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = map[string]any{
			"product":    float64(l.ProductID),
			"quantity":   float64(l.Quantity),
			"unit_price": float64(l.UnitPrice),
		}
	}

	return map[string]any{
		"id":           float64(o.ID),
		"userId":       o.UserUID,
		"products":     lines,
		"total_amount": float64(o.TotalAmount),
		"created_at":   o.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func productToMap(p *usecase.ProductInfo) map[string]any {
	return map[string]any{
		"id":        float64(p.ID),
		"name":      p.Name,
		"category":  p.CategoryName,
		"price":     float64(p.Price),
		"stock":     float64(p.Stock),
		"image_url": p.ImageURL,
	}
}

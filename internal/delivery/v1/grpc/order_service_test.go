package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/marble-shop/go-backend/internal/cfg"
	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubOrderUC struct {
	req   *usecase.PlaceOrderReq
	order *domain.Order
	err   error
}

func (s *stubOrderUC) PlaceOrder(_ context.Context, req *usecase.PlaceOrderReq) (*domain.Order, error) {
	s.req = req
	return s.order, s.err
}

func (s *stubOrderUC) GetOrder(context.Context, int64) (*domain.OrderDetails, error) {
	return nil, s.err
}

func (s *stubOrderUC) ListOrders(context.Context) ([]domain.OrderDetails, error) {
	return nil, s.err
}

type stubProductUC struct {
	ids []int64
	res *usecase.GetProductsRes
	err error
}

func (s *stubProductUC) AddProduct(context.Context, *usecase.AddProductReq) (*domain.Product, error) {
	return nil, s.err
}

func (s *stubProductUC) ListProducts(context.Context) ([]domain.Product, error) {
	return nil, s.err
}

func (s *stubProductUC) GetProduct(context.Context, int64) (*usecase.ProductInfo, error) {
	return nil, s.err
}

func (s *stubProductUC) GetProductsInfo(_ context.Context, req *usecase.GetProductsReq) (*usecase.GetProductsRes, error) {
	s.ids = req.IDs
	return s.res, s.err
}

func (s *stubProductUC) DeleteProduct(context.Context, int64) (*domain.Product, error) {
	return nil, s.err
}

func newTestClient(t *testing.T, orderUC usecase.OrderUC, prUC usecase.ProductUC) *OrderServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(&cfg.GRPCConfig{}, logger.NewNop())
	srv.RegisterServices(orderUC, prUC)

	go func() {
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	return NewOrderServiceClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestOrderService_PlaceOrder(t *testing.T) {
	orders := &stubOrderUC{order: &domain.Order{
		ID:          10,
		UserUID:     "u1",
		Lines:       []domain.OrderLine{{ProductID: 1, Quantity: 2, UnitPrice: 500}},
		TotalAmount: 1000,
		CreatedAt:   time.Now(),
	}}
	client := newTestClient(t, orders, &stubProductUC{})

	res, err := client.PlaceOrder(context.Background(), mustStruct(t, map[string]any{
		"userId":   "u1",
		"products": []any{map[string]any{"product": 1, "quantity": 2}},
	}))
	require.NoError(t, err)

	order := res.GetFields()["order"].GetStructValue().GetFields()
	assert.Equal(t, float64(1000), order["total_amount"].GetNumberValue())
	assert.Equal(t, "u1", order["userId"].GetStringValue())

	require.NotNil(t, orders.req)
	assert.Equal(t, []domain.LineRequest{{ProductID: 1, Quantity: 2}}, orders.req.Lines)
}

func TestOrderService_PlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"insufficient stock", e.Detail(e.ErrInsufficientStock, "not enough stock for Carrara"), codes.FailedPrecondition, "not enough stock for Carrara"},
		{"conflict", e.Detail(e.ErrStockConflict, "stock for product 1 changed concurrently"), codes.Aborted, "stock for product 1 changed concurrently"},
		{"user not found", e.Detail(e.ErrUserNotFound, "user u1 not found"), codes.NotFound, "user u1 not found"},
		{"persistence", e.Wrap("op", e.ErrPersistenceFailure), codes.Internal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &stubOrderUC{err: tt.err}, &stubProductUC{})

			_, err := client.PlaceOrder(context.Background(), mustStruct(t, map[string]any{
				"userId":   "u1",
				"products": []any{map[string]any{"product": 1, "quantity": 1}},
			}))

			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.msg, st.Message())
		})
	}
}

func TestOrderService_PlaceOrderRejectsFractionalQuantity(t *testing.T) {
	orders := &stubOrderUC{}
	client := newTestClient(t, orders, &stubProductUC{})

	_, err := client.PlaceOrder(context.Background(), mustStruct(t, map[string]any{
		"userId":   "u1",
		"products": []any{map[string]any{"product": 1, "quantity": 1.5}},
	}))

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Nil(t, orders.req)
}

func TestOrderService_GetProductsInfo(t *testing.T) {
	products := &stubProductUC{res: usecase.NewGetProductsRes(
		[]usecase.ProductInfo{{ID: 1, Name: "Carrara", Price: 100, Stock: 3}},
		[]int64{2},
	)}
	client := newTestClient(t, &stubOrderUC{}, products)

	res, err := client.GetProductsInfo(context.Background(), mustStruct(t, map[string]any{
		"ids": []any{1, 2},
	}))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, products.ids)
	list := res.GetFields()["products"].GetListValue().GetValues()
	require.Len(t, list, 1)
	assert.Equal(t, "Carrara", list[0].GetStructValue().GetFields()["name"].GetStringValue())
	notFound := res.GetFields()["products_not_found"].GetListValue().GetValues()
	require.Len(t, notFound, 1)
	assert.Equal(t, float64(2), notFound[0].GetNumberValue())
}

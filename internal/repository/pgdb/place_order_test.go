package pgdb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/repository/pgdb/converter"
	"github.com/marble-shop/go-backend/internal/testutil"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/marble-shop/go-backend/pkg/tr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCache struct{}

func (nopCache) GetProducts(context.Context, []int64) (*usecase.CachedProducts, error) {
	return &usecase.CachedProducts{}, nil
}

func (nopCache) SetProducts(context.Context, []usecase.ProductInfo, map[int64]int64) error { return nil }

func (nopCache) DeleteProducts(context.Context, []int64) error { return nil }

func newOrderUC(pool *pgxpool.Pool) *usecase.OrderUseCase {
	log := logger.NewNop()
	runner := tr.NewRunner(pool)
	products := NewProductRepo(pool, converter.ProductConverterImpl{})
	orders := NewOrderRepo(pool, converter.OrderConverterImpl{})
	outbox := NewOutboxEventRepo(pool, converter.OutboxEventConverterImpl{})
	users := NewUserRepo(pool, converter.UserConverterImpl{})

	return usecase.NewOrderUC(
		usecase.NewCatalogReader(products),
		usecase.NewOrderWriter(runner, products, orders, outbox, log),
		users,
		products,
		orders,
		nopCache{},
		log,
	)
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM `+table).Scan(&n))
	return n
}

func TestPlaceOrder_CommitsOrderStockAndEvent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	uc := newOrderUC(pool)
	ctx := context.Background()

	testutil.InsertUser(t, pool, "u1")
	p1 := testutil.InsertProduct(t, pool, "Carrara", 1000, 5)
	p2 := testutil.InsertProduct(t, pool, "Nero", 2500, 2)

	order, err := uc.PlaceOrder(ctx, usecase.NewPlaceOrderReq("u1", []domain.LineRequest{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 2},
		{ProductID: p1, Quantity: 1},
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(8000), order.TotalAmount)
	assert.Len(t, order.Lines, 3)

	assert.Equal(t, int64(2), testutil.Stock(t, pool, p1))
	assert.Equal(t, int64(0), testutil.Stock(t, pool, p2))
	assert.Equal(t, 1, countRows(t, pool, "orders"))
	assert.Equal(t, 3, countRows(t, pool, "order_lines"))
	assert.Equal(t, 1, countRows(t, pool, "outbox_events"))

	details, err := uc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", details.User.UID)
	assert.Len(t, details.Products, 2)
}

func TestPlaceOrder_InsufficientStockLeavesNoTrace(t *testing.T) {
	pool := testutil.NewTestPool(t)
	uc := newOrderUC(pool)

	testutil.InsertUser(t, pool, "u1")
	p1 := testutil.InsertProduct(t, pool, "Carrara", 1000, 5)
	p2 := testutil.InsertProduct(t, pool, "Nero", 2500, 1)

	_, err := uc.PlaceOrder(context.Background(), usecase.NewPlaceOrderReq("u1", []domain.LineRequest{
		{ProductID: p1, Quantity: 1},
		{ProductID: p2, Quantity: 2},
	}))
	require.ErrorIs(t, err, e.ErrInsufficientStock)

	assert.Equal(t, int64(5), testutil.Stock(t, pool, p1))
	assert.Equal(t, int64(1), testutil.Stock(t, pool, p2))
	assert.Zero(t, countRows(t, pool, "orders"))
	assert.Zero(t, countRows(t, pool, "outbox_events"))
}

func TestPlaceOrder_SecondOrderAfterDrainIsRejected(t *testing.T) {
	pool := testutil.NewTestPool(t)
	uc := newOrderUC(pool)
	ctx := context.Background()

	testutil.InsertUser(t, pool, "a")
	testutil.InsertUser(t, pool, "b")
	p := testutil.InsertProduct(t, pool, "Onyx", 1000, 5)

	orderA, err := uc.PlaceOrder(ctx, usecase.NewPlaceOrderReq("a", []domain.LineRequest{{ProductID: p, Quantity: 5}}))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), orderA.TotalAmount)

	_, err = uc.PlaceOrder(ctx, usecase.NewPlaceOrderReq("b", []domain.LineRequest{{ProductID: p, Quantity: 1}}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrInsufficientStock) || errors.Is(err, e.ErrStockConflict), "unexpected error: %v", err)

	assert.Equal(t, int64(0), testutil.Stock(t, pool, p))
	assert.Equal(t, 1, countRows(t, pool, "orders"))
	assert.Equal(t, 1, countRows(t, pool, "outbox_events"))
}

func TestPlaceOrder_ConcurrentNeverOversells(t *testing.T) {
	pool := testutil.NewTestPool(t)
	uc := newOrderUC(pool)
	ctx := context.Background()

	testutil.InsertUser(t, pool, "u1")
	p1 := testutil.InsertProduct(t, pool, "Carrara", 100, 7)
	p2 := testutil.InsertProduct(t, pool, "Nero", 100, 7)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// разный порядок позиций проверяет отсутствие взаимоблокировок
			lines := []domain.LineRequest{{ProductID: p1, Quantity: 1}, {ProductID: p2, Quantity: 1}}
			if i%2 == 1 {
				lines[0], lines[1] = lines[1], lines[0]
			}
			_, err := uc.PlaceOrder(ctx, usecase.NewPlaceOrderReq("u1", lines))
			if err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, e.ErrInsufficientStock) || errors.Is(err, e.ErrStockConflict), "unexpected error: %v", err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 7, placed)
	assert.Equal(t, int64(0), testutil.Stock(t, pool, p1))
	assert.Equal(t, int64(0), testutil.Stock(t, pool, p2))
	assert.Equal(t, placed, countRows(t, pool, "orders"))
	assert.Equal(t, placed, countRows(t, pool, "outbox_events"))
}

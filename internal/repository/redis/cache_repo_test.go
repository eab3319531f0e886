package redis

import (
	"context"
	"testing"
	"time"

	"github.com/marble-shop/go-backend/internal/cfg"
	"github.com/marble-shop/go-backend/internal/repository/redis/converter"
	"github.com/marble-shop/go-backend/internal/testutil"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/clients"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCacheRepo(t *testing.T) *CacheRepo {
	client := testutil.NewTestRedis(t)
	return NewCacheRepo(
		&clients.RedisClient{Client: client},
		&converter.ProductInfoConverterImpl{},
		&cfg.RedisCfg{ProductTTL: time.Minute},
		logger.NewNop(),
	)
}

func TestCacheRepo_SetThenGet(t *testing.T) {
	repo := newTestCacheRepo(t)
	ctx := context.Background()

	products := []usecase.ProductInfo{
		{ID: 1, Name: "Carrara", CategoryName: "marble", Price: 1000, Stock: 3, ImageURL: "http://minio/a.png"},
		{ID: 2, Name: "Nero", CategoryName: "marble", Price: 2500, Stock: 0},
	}
	before, err := repo.GetProducts(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, before.Products)
	assert.Equal(t, map[int64]int64{1: 0, 2: 0, 3: 0}, before.Generations)

	require.NoError(t, repo.SetProducts(ctx, products, before.Generations))

	got, err := repo.GetProducts(ctx, []int64{1, 2, 3})
	require.NoError(t, err)

	assert.Len(t, got.Products, 2)
	assert.Equal(t, products[0], got.Products[1])
	assert.Equal(t, products[1], got.Products[2])
	_, ok := got.Products[3]
	assert.False(t, ok)
}

func TestCacheRepo_Delete(t *testing.T) {
	repo := newTestCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetProducts(ctx, []usecase.ProductInfo{{ID: 5, Name: "Onyx"}}, nil))
	require.NoError(t, repo.DeleteProducts(ctx, []int64{5}))

	got, err := repo.GetProducts(ctx, []int64{5})
	require.NoError(t, err)
	assert.Empty(t, got.Products)
	assert.Equal(t, int64(1), got.Generations[5])
}

func TestCacheRepo_SetAfterInvalidationIsDropped(t *testing.T) {
	repo := newTestCacheRepo(t)
	ctx := context.Background()

	// чтение до удаления, запись после
	read, err := repo.GetProducts(ctx, []int64{7})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteProducts(ctx, []int64{7}))
	require.NoError(t, repo.SetProducts(ctx, []usecase.ProductInfo{{ID: 7, Name: "Travertine"}}, read.Generations))

	got, err := repo.GetProducts(ctx, []int64{7})
	require.NoError(t, err)
	assert.Empty(t, got.Products)

	// со свежим поколением запись проходит
	require.NoError(t, repo.SetProducts(ctx, []usecase.ProductInfo{{ID: 7, Name: "Travertine"}}, got.Generations))
	got, err = repo.GetProducts(ctx, []int64{7})
	require.NoError(t, err)
	assert.Equal(t, "Travertine", got.Products[7].Name)

	ttl, err := repo.client.TTL(ctx, repo.generationKey(7)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCacheRepo_IDMismatchIsMiss(t *testing.T) {
	repo := newTestCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.client.Set(ctx, repo.productKey(9), `{"id":10,"name":"wrong"}`, time.Minute).Err())

	got, err := repo.GetProducts(ctx, []int64{9})
	require.NoError(t, err)
	assert.Empty(t, got.Products)

	exists, err := repo.client.Exists(ctx, repo.productKey(9)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestCacheRepo_EmptyIDs(t *testing.T) {
	repo := &CacheRepo{conv: &converter.ProductInfoConverterImpl{}, logger: logger.NewNop()}

	got, err := repo.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got.Products)
	assert.NoError(t, repo.DeleteProducts(context.Background(), nil))
	assert.NoError(t, repo.SetProducts(context.Background(), nil, nil))
}

func TestRedisValueToBytes(t *testing.T) {
	b, err := redisValueToBytes("x", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), b)

	b, err = redisValueToBytes(nil, "k")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = redisValueToBytes(42, "k")
	assert.Error(t, err)
}

func TestRedisValueToInt64(t *testing.T) {
	n, err := redisValueToInt64("3", "k")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = redisValueToInt64(nil, "k")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = redisValueToInt64("x", "k")
	assert.Error(t, err)
}

package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	redisOnce sync.Once
	redisAddr string
	redisErr  error
)

// NewTestRedis возвращает клиент к чистой тестовой базе Redis.
// Адрес берётся из TEST_REDIS_ADDR, иначе поднимается контейнер.
func NewTestRedis(t *testing.T) *r.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		redisOnce.Do(func() {
			redisAddr, redisErr = startRedis()
		})
		if redisErr != nil {
			t.Skipf("skipping Redis integration tests: %v", redisErr)
		}
		addr = redisAddr
	}

	client := r.NewClient(&r.Options{Addr: addr, DB: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skipping Redis integration tests: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func startRedis() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		return "", err
	}

	return container.Endpoint(ctx, "")
}

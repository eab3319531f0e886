package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/marble-shop/go-backend/pkg/postgres"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDBUser         = "shop"
	testDBPassword     = "shop"
	testDBName         = "shop_test"
	testDBLockID int64 = 734001
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// NewTestPool возвращает пул к тестовой базе с накатанными миграциями.
// База берётся из TEST_DATABASE_URL, иначе поднимается контейнер postgres.
// Если ни то ни другое недоступно, тест пропускается.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		pgOnce.Do(func() {
			pgDSN, pgErr = startPostgres()
		})
		if pgErr != nil {
			t.Skipf("skipping Postgres integration tests: %v", pgErr)
		}
		dsn = pgDSN
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	cfg.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping Postgres integration tests: %v", err)
	}

	t.Cleanup(pool.Close)

	lockTestDB(t, pool)

	if err := postgres.RunMigrations(dsn, MigrationsPath(), logger.NewNop()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	TruncateAll(t, pool)

	return pool
}

// MigrationsPath возвращает абсолютный путь к db/migrations.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "db", "migrations")
}

func TruncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE outbox_events, order_lines, orders, products, categories, users, admins RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// InsertUser создаёт покупателя и возвращает его id.
func InsertUser(t *testing.T, pool *pgxpool.Pool, uid string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(context.Background(),
		`INSERT INTO users (uid, name) VALUES ($1, $1) RETURNING id`, uid,
	).Scan(&id); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// InsertProduct создаёт товар (и при необходимости категорию) и возвращает его id.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, name string, price, stock int64) int64 {
	t.Helper()
	ctx := context.Background()

	var categoryID int64
	if err := pool.QueryRow(ctx, `
INSERT INTO categories (name) VALUES ('test')
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`).Scan(&categoryID); err != nil {
		t.Fatalf("insert category: %v", err)
	}

	var id int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO products (name, price, stock, category_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, price, stock, categoryID,
	).Scan(&id); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

// Stock читает текущий остаток товара.
func Stock(t *testing.T, pool *pgxpool.Pool, productID int64) int64 {
	t.Helper()
	var stock int64
	if err := pool.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id = $1`, productID,
	).Scan(&stock); err != nil {
		t.Fatalf("select stock: %v", err)
	}
	return stock
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testDBUser,
				"POSTGRES_PASSWORD": testDBPassword,
				"POSTGRES_DB":       testDBName,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testDBUser, testDBPassword, host, port.Port(), testDBName), nil
}

// lockTestDB сериализует пакеты, которые делят одну тестовую базу.
func lockTestDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire lock conn: %v", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, testDBLockID); err != nil {
		conn.Release()
		t.Fatalf("acquire test lock: %v", err)
	}

	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, testDBLockID)
		conn.Release()
	})
}

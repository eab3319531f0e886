package usecase

import (
	"context"

	"github.com/marble-shop/go-backend/internal/domain"
)

// TxRunner выполняет fn в транзакции; репозитории берут её из контекста.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	// LockByIDs блокирует строки товаров до конца транзакции (в порядке id).
	LockByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	// DecrementStock списывает qty, только если остатка хватает. false: не хватило.
	DecrementStock(ctx context.Context, productID int64, qty int64) (bool, error)
	List(ctx context.Context) ([]domain.Product, error)
	Delete(ctx context.Context, id int64) (*domain.Product, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByUID(ctx context.Context, uid string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
}

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	GetByUID(ctx context.Context, uid string) (*domain.Admin, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// Release возвращает событие в pending после неудачной отправки.
	Release(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (*CachedProducts, error)
	// SetProducts пропускает товар, если его поколение изменилось после GetProducts.
	SetProducts(ctx context.Context, products []ProductInfo, generations map[int64]int64) error
	// DeleteProducts удаляет записи и увеличивает поколение каждого товара.
	DeleteProducts(ctx context.Context, ids []int64) error
}

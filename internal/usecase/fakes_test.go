package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/pkg/e"
)

type inTxKey struct{}

// memStore: хранилище в памяти. Транзакция держит мьютекс целиком
// и при ошибке восстанавливает снимок, как это делает Postgres при ROLLBACK.
type memStore struct {
	mu sync.Mutex

	products   map[int64]domain.Product
	categories map[string]domain.Category
	users      map[string]domain.User
	admins     map[string]domain.Admin
	orders     []domain.Order
	events     []*OutboxEvent

	nextID int64

	// хуки для моделирования конкурентных изменений и сбоев
	beforeLock  func(s *memStore)
	orderErr    error
	outboxErr   error
	getByIDsErr error
	commits     int
	rollbacks   int
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]domain.Product{},
		categories: map[string]domain.Category{},
		users:      map[string]domain.User{},
		admins:     map[string]domain.Admin{},
		nextID:     100,
	}
}

func (s *memStore) guard(ctx context.Context) func() {
	if ctx.Value(inTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *memStore) addUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UID] = u
}

func (s *memStore) stock(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// TxRunner

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products := make(map[int64]domain.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	categories := make(map[string]domain.Category, len(s.categories))
	for k, v := range s.categories {
		categories[k] = v
	}
	orders, events := len(s.orders), len(s.events)
	rollback := func() {
		s.products = products
		s.categories = categories
		s.orders = s.orders[:orders]
		s.events = s.events[:events]
		s.rollbacks++
	}

	if err := fn(context.WithValue(ctx, inTxKey{}, true)); err != nil {
		rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		rollback()
		return err
	}

	s.commits++
	return nil
}

// ProductRepository

type memProductRepo struct{ s *memStore }

func (r memProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	defer r.s.guard(ctx)()
	for _, p := range r.s.products {
		if p.Name == product.Name {
			return nil, e.ErrProductAlreadyExists
		}
	}
	created := *product
	created.ID = r.s.id()
	created.CreatedAt = time.Now()
	r.s.products[created.ID] = created
	return &created, nil
}

func (r memProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	defer r.s.guard(ctx)()
	if r.s.getByIDsErr != nil {
		return nil, r.s.getByIDsErr
	}
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProductRepo) LockByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if ctx.Value(inTxKey{}) == nil {
		return nil, e.ErrTransactionNotFound
	}
	if r.s.beforeLock != nil {
		r.s.beforeLock(r.s)
	}
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []domain.Product
	for _, id := range sorted {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProductRepo) DecrementStock(ctx context.Context, productID int64, qty int64) (bool, error) {
	if ctx.Value(inTxKey{}) == nil {
		return false, e.ErrTransactionNotFound
	}
	p, ok := r.s.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.products[productID] = p
	return true, nil
}

func (r memProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	defer r.s.guard(ctx)()
	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProductRepo) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	defer r.s.guard(ctx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	delete(r.s.products, id)
	return &p, nil
}

// CategoryRepository

type memCategoryRepo struct{ s *memStore }

func (r memCategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	defer r.s.guard(ctx)()
	if c, ok := r.s.categories[category.Name]; ok {
		return &c, nil
	}
	created := *category
	created.ID = r.s.id()
	r.s.categories[created.Name] = created
	return &created, nil
}

// UserRepository

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	defer r.s.guard(ctx)()
	if _, ok := r.s.users[user.UID]; ok {
		return nil, e.ErrUserAlreadyExists
	}
	created := *user
	created.ID = r.s.id()
	r.s.users[created.UID] = created
	return &created, nil
}

func (r memUserRepo) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	defer r.s.guard(ctx)()
	u, ok := r.s.users[uid]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	defer r.s.guard(ctx)()
	var out []domain.User
	for _, u := range r.s.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

// AdminRepository

type memAdminRepo struct{ s *memStore }

func (r memAdminRepo) Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	defer r.s.guard(ctx)()
	if _, ok := r.s.admins[admin.UID]; ok {
		return nil, e.ErrAdminAlreadyExists
	}
	created := *admin
	created.ID = r.s.id()
	r.s.admins[created.UID] = created
	return &created, nil
}

func (r memAdminRepo) GetByUID(ctx context.Context, uid string) (*domain.Admin, error) {
	defer r.s.guard(ctx)()
	a, ok := r.s.admins[uid]
	if !ok {
		return nil, e.ErrAdminNotFound
	}
	return &a, nil
}

// OrderRepository

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if ctx.Value(inTxKey{}) == nil {
		return nil, e.ErrTransactionNotFound
	}
	if r.s.orderErr != nil {
		return nil, r.s.orderErr
	}
	created := *order
	created.ID = r.s.id()
	created.CreatedAt = time.Now().UTC()
	r.s.orders = append(r.s.orders, created)
	return &created, nil
}

func (r memOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	defer r.s.guard(ctx)()
	for _, o := range r.s.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, e.ErrOrderNotFound
}

func (r memOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	defer r.s.guard(ctx)()
	return append([]domain.Order(nil), r.s.orders...), nil
}

// OutboxRepository

type memOutboxRepo struct{ s *memStore }

func (r memOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	if ctx.Value(inTxKey{}) == nil {
		return nil, e.ErrTransactionNotFound
	}
	if r.s.outboxErr != nil {
		return nil, r.s.outboxErr
	}
	created := *event
	created.ID = r.s.id()
	r.s.events = append(r.s.events, &created)
	return &created, nil
}

func (r memOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r memOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error { return nil }

func (r memOutboxRepo) Release(ctx context.Context, id int64) error { return nil }

// CacheRepository

type memCache struct {
	mu       sync.Mutex
	items    map[int64]ProductInfo
	gens     map[int64]int64
	deleted  []int64
	getErr   error
	setCalls chan []ProductInfo

	// gate, если задан, задерживает SetProducts до закрытия канала
	gate chan struct{}
}

func newMemCache() *memCache {
	return &memCache{
		items:    map[int64]ProductInfo{},
		gens:     map[int64]int64{},
		setCalls: make(chan []ProductInfo, 16),
	}
}

func (c *memCache) GetProducts(ctx context.Context, ids []int64) (*CachedProducts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := &CachedProducts{Products: map[int64]ProductInfo{}, Generations: map[int64]int64{}}
	for _, id := range ids {
		if p, ok := c.items[id]; ok {
			out.Products[id] = p
		}
		out.Generations[id] = c.gens[id]
	}
	return out, nil
}

// SetProducts сообщает в setCalls только реально записанные товары.
func (c *memCache) SetProducts(ctx context.Context, products []ProductInfo, generations map[int64]int64) error {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	stored := make([]ProductInfo, 0, len(products))
	for _, p := range products {
		if c.gens[p.ID] != generations[p.ID] {
			continue
		}
		c.items[p.ID] = p
		stored = append(stored, p)
	}
	c.mu.Unlock()
	c.setCalls <- stored
	return nil
}

func (c *memCache) DeleteProducts(ctx context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
		c.gens[id]++
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

// ImagesInfra

type memImages struct {
	mu       sync.Mutex
	uploaded []string
	cleaned  []string
	err      error
}

func (m *memImages) UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	refs := make([]domain.ImageRef, len(req.Images))
	for i := range req.Images {
		key := req.Name + "/" + req.Images[i].Name
		refs[i] = domain.ImageRef{Key: key, URL: "http://minio/" + key}
		m.uploaded = append(m.uploaded, key)
	}
	return NewUploadImagesRes(refs), nil
}

func (m *memImages) CleanupImages(keys []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaned = append(m.cleaned, keys...)
}

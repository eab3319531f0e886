package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/marble-shop/go-backend/internal/cfg"
	"github.com/marble-shop/go-backend/internal/repository/redis/converter"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/clients"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует карточки товаров. Остаток в карточке может устареть,
// при оформлении заказа он всегда перечитывается из БД.
type CacheRepo struct {
	client r.Cmdable
	conv   converter.ProductInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client.Client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// generationTTL должен превышать время жизни любого запроса на чтение,
// иначе сброшенный счётчик совпадёт с прочитанным нулём.
const generationTTL = 24 * time.Hour

// setIfGenerationScript пишет карточку, только если поколение товара не изменилось.
// KEYS[1]: карточка, KEYS[2]: поколение. ARGV: ожидаемое поколение, данные, TTL в мс.
var setIfGenerationScript = r.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// GetProducts возвращает закэшированные продукты и поколения по ID одним MGET,
// игнорируя промахи и логируя их
func (c *CacheRepo) GetProducts(ctx context.Context, ids []int64) (*usecase.CachedProducts, error) {
	res := &usecase.CachedProducts{
		Products:    make(map[int64]usecase.ProductInfo, len(ids)),
		Generations: make(map[int64]int64, len(ids)),
	}
	if len(ids) == 0 {
		return res, nil
	}

	keys := c.buildProductCacheKeys(ids)
	genKeys := make([]string, len(ids))
	for i, id := range ids {
		genKeys[i] = c.generationKey(id)
	}

	values, err := c.client.MGet(ctx, append(keys, genKeys...)...).Result()
	if err != nil {
		c.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for i, val := range values[len(ids):] {
		gen, err := redisValueToInt64(val, genKeys[i])
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		res.Generations[ids[i]] = gen
	}

	for i, val := range values[:len(ids)] {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			c.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		model, err := c.unmarshalProductFromCache(data)
		if err != nil {
			c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if model.ID != ids[i] {
			c.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", ids[i], model.ID)
			if err := c.client.Del(ctx, keys[i]).Err(); err != nil {
				c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}
		res.Products[ids[i]] = *c.conv.ToUseCase(model)
	}

	return res, nil
}

// SetProducts кэширует несколько продуктов одним пайплайном с заданным TTL.
// Каждая запись условная: если поколение товара ушло вперёд, она пропускается.
// Ошибки сериализации и записи только логируются.
func (c *CacheRepo) SetProducts(ctx context.Context, products []usecase.ProductInfo, generations map[int64]int64) error {
	models := c.conv.ToArrRedisModel(products)
	if len(models) == 0 {
		return nil
	}

	pipeline := c.client.Pipeline()
	for _, model := range models {
		data, err := c.marshalProductForCache(model)
		if err != nil {
			c.logger.Warnf("Failed to marshal product for caching (Product ID: %d): %v", model.ID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		setIfGenerationScript.Eval(ctx, pipeline,
			[]string{c.productKey(model.ID), c.generationKey(model.ID)},
			generations[model.ID], data, c.cfg.ProductTTL.Milliseconds(),
		)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		c.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteProducts удаляет продукты из кэша по ID и сдвигает их поколения,
// чтобы отложенные записи со старым снимком были отброшены
func (c *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	pipeline := c.client.TxPipeline()
	for _, id := range ids {
		genKey := c.generationKey(id)
		pipeline.Incr(ctx, genKey)
		pipeline.Expire(ctx, genKey, generationTTL)
	}
	pipeline.Del(ctx, c.buildProductCacheKeys(ids)...)

	if _, err := pipeline.Exec(ctx); err != nil {
		c.logger.Warnf("Redis invalidation failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

func (c *CacheRepo) marshalProductForCache(model converter.ProductInfoRedisModel) ([]byte, error) {
	return json.Marshal(model)
}

func (c *CacheRepo) unmarshalProductFromCache(data []byte) (*converter.ProductInfoRedisModel, error) {
	var model converter.ProductInfoRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// buildProductCacheKeys формирует Redis-ключи из ID продуктов
func (c *CacheRepo) buildProductCacheKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.productKey(id)
	}

	return keys
}

// Hash tag держит карточку и поколение в одном слоте кластера.
func (c *CacheRepo) productKey(id int64) string {
	return fmt.Sprintf("product:{%d}", id)
}

func (c *CacheRepo) generationKey(id int64) string {
	return fmt.Sprintf("product:{%d}:gen", id)
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}

// redisValueToInt64 читает счётчик поколения; отсутствующий ключ означает ноль.
func redisValueToInt64(val interface{}, key string) (int64, error) {
	data, err := redisValueToBytes(val, key)
	if err != nil || data == nil {
		return 0, err
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid generation for key %s: %w", key, err)
	}

	return n, nil
}

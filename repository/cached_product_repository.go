package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yashrajoria/storefront-service/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ProductCachePrefix  = "product:detail:"
	ProductListCacheKey = "products:list"
)

// CacheMetrics records cache hits and misses. *aws.MetricsClient satisfies it.
type CacheMetrics interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// CachedProductRepository is a read-through Redis cache in front of a
// ProductRepository. Concurrent misses for the same key share one load.
// Checkout must use the underlying repository so prices are read fresh.
type CachedProductRepository struct {
	next    ProductRepository
	redis   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics CacheMetrics
	logger  *zap.Logger
}

func NewCachedProductRepository(next ProductRepository, client *redis.Client, ttl time.Duration, metrics CacheMetrics, logger *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		next:    next,
		redis:   client,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *CachedProductRepository) record(ctx context.Context, metric string) {
	if c.metrics == nil {
		return
	}
	_ = c.metrics.RecordCount(ctx, metric, map[string]string{"Cache": "products"})
}

func (c *CachedProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key := ProductCachePrefix + id
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var p models.Product
		if err := json.Unmarshal(data, &p); err == nil {
			c.record(ctx, "CacheHits")
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Product cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.record(ctx, "CacheMisses")

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		p, err := c.next.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*models.Product)
	return &p, nil
}

func (c *CachedProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	found := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductCachePrefix + id
	}

	missing := ids
	values, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("Product cache multi-read failed", zap.Error(err))
	} else {
		missing = []string{}
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var p models.Product
			if err := json.Unmarshal([]byte(s), &p); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			found[p.ID] = p
		}
	}

	if len(missing) == 0 {
		c.record(ctx, "CacheHits")
		return found, nil
	}
	c.record(ctx, "CacheMisses")

	loaded, err := c.next.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, p := range loaded {
		p := p
		found[id] = p
		c.store(ctx, ProductCachePrefix+id, &p)
	}
	return found, nil
}

// Exists always asks the underlying store.
func (c *CachedProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	return c.next.Exists(ctx, id)
}

func (c *CachedProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	if data, err := c.redis.Get(ctx, ProductListCacheKey).Bytes(); err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			c.record(ctx, "CacheHits")
			return products, nil
		}
	}
	c.record(ctx, "CacheMisses")

	v, err, _ := c.group.Do(ProductListCacheKey, func() (interface{}, error) {
		products, err := c.next.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, ProductListCacheKey, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.Product{}, v.([]models.Product)...), nil
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.next.Create(ctx, product); err != nil {
		return err
	}
	if err := c.redis.Del(ctx, ProductListCacheKey, ProductCachePrefix+product.ID).Err(); err != nil {
		c.logger.Warn("Product cache invalidation failed", zap.Error(err))
	}
	return nil
}

func (c *CachedProductRepository) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to marshal product for cache", zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache product", zap.String("key", key), zap.Error(err))
	}
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CategoryCache keeps the catalog's category list between sessions. Get reports false when
// nothing is cached yet.
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]string, bool, error)
	SetCategories(ctx context.Context, categories []string) error
}

type redisCategoryCache struct {
	redisClient *redis.Client
	key         string
	ttl         time.Duration
}

func NewRedisCategoryCache(redisClient *redis.Client, ttl time.Duration) CategoryCache {
	return &redisCategoryCache{
		redisClient: redisClient,
		key:         "storefront:categories",
		ttl:         ttl,
	}
}

func (c *redisCategoryCache) GetCategories(ctx context.Context) ([]string, bool, error) {
	val, err := c.redisClient.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Nothing cached yet
		}
		return nil, false, fmt.Errorf("failed to get cached categories: %w", err)
	}

	var categories []string
	if err := json.Unmarshal(val, &categories); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached categories: %w", err)
	}

	return categories, true, nil
}

func (c *redisCategoryCache) SetCategories(ctx context.Context, categories []string) error {
	val, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	if err := c.redisClient.Set(ctx, c.key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache categories: %w", err)
	}
	return nil
}

type memoryCategoryCache struct {
	mu         sync.RWMutex
	categories []string
	expiresAt  time.Time
	ttl        time.Duration
	now        func() time.Time
}

// NewMemoryCategoryCache is the in-process fallback used when Redis is disabled. A zero ttl
// keeps entries forever.
func NewMemoryCategoryCache(ttl time.Duration) CategoryCache {
	return &memoryCategoryCache{ttl: ttl, now: time.Now}
}

func (c *memoryCategoryCache) GetCategories(_ context.Context) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.categories == nil {
		return nil, false, nil
	}
	if c.ttl > 0 && !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return append([]string(nil), c.categories...), true, nil
}

func (c *memoryCategoryCache) SetCategories(_ context.Context, categories []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.categories = append(make([]string, 0, len(categories)), categories...)
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meethahouse/dessert-api/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DessertListKey   = "desserts:list"
	DessertKeyPrefix = "desserts:detail:"
	DefaultTTL       = 5 * time.Minute
)

// DessertCache is a read-through cache for the catalogue. A nil
// *DessertCache is valid and always misses.
type DessertCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func New(client *redis.Client, ttl time.Duration, log *zap.Logger) *DessertCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DessertCache{redis: client, ttl: ttl, log: log}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string, ttl time.Duration, log *zap.Logger) (*DessertCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ttl, log), nil
}

func (c *DessertCache) GetList(ctx context.Context) ([]models.Dessert, bool) {
	var desserts []models.Dessert
	if !c.get(ctx, DessertListKey, &desserts) {
		return nil, false
	}
	return desserts, true
}

func (c *DessertCache) SetList(ctx context.Context, desserts []models.Dessert) {
	c.set(ctx, DessertListKey, desserts)
}

func (c *DessertCache) Get(ctx context.Context, id string) (*models.Dessert, bool) {
	var dessert models.Dessert
	if !c.get(ctx, DessertKeyPrefix+id, &dessert) {
		return nil, false
	}
	return &dessert, true
}

func (c *DessertCache) Set(ctx context.Context, dessert *models.Dessert) {
	c.set(ctx, DessertKeyPrefix+dessert.ID, dessert)
}

// Invalidate drops the list and, when id is non-empty, that dessert's entry.
func (c *DessertCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.redis == nil {
		return
	}
	keys := []string{DessertListKey}
	if id != "" {
		keys = append(keys, DessertKeyPrefix+id)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("Failed to invalidate dessert cache", zap.Error(err), zap.Strings("keys", keys))
	}
}

// Flush drops the list and every cached dessert. Used after the catalogue
// is replaced wholesale, when the stale ids are not known.
func (c *DessertCache) Flush(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	keys := []string{DessertListKey}
	iter := c.redis.Scan(ctx, 0, DessertKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan dessert keys: %w", err)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete dessert keys: %w", err)
	}
	return nil
}

func (c *DessertCache) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func (c *DessertCache) get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.redis == nil {
		return false
	}
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Dessert cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("Failed to unmarshal cached desserts", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *DessertCache) set(ctx context.Context, key string, value any) {
	if c == nil || c.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("Failed to marshal desserts for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to cache desserts", zap.String("key", key), zap.Error(err))
	}
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb}
}

func (c *Cache) GetCatalog(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, getCacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) SetCatalog(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	log.Printf("creating cache entry for catalog %q, ttl %s...", key, ttl)

	if err := c.client.Set(ctx, getCacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *Cache) DeleteCatalog(ctx context.Context, key string) error {
	log.Printf("deleting cache entry for catalog %q...", key)

	if err := c.client.Del(ctx, getCacheKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func getCacheKey(key string) string {
	return "catalog:" + key
}

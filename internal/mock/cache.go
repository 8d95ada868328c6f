package mock

import (
	"context"
	"sync"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/port"
)

// Cache is an in-memory port.Cache. TTLs are recorded, not enforced.
type Cache struct {
	mu      sync.Mutex
	Entries map[string][]byte
	TTLs    map[string]time.Duration

	GetErr error
	SetErr error
}

var _ port.Cache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{Entries: make(map[string][]byte), TTLs: make(map[string]time.Duration)}
}

func (c *Cache) GetCatalog(ctx context.Context, key string) ([]byte, error) {
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Entries[key], nil
}

func (c *Cache) SetCatalog(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.SetErr != nil {
		return c.SetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries[key] = data
	c.TTLs[key] = ttl
	return nil
}

func (c *Cache) DeleteCatalog(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Entries, key)
	delete(c.TTLs, key)
	return nil
}

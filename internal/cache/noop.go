package cache

import (
	"context"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/port"
)

// Noop is used when redis is not configured; every lookup is a miss.
type Noop struct{}

var _ port.Cache = (*Noop)(nil)

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) GetCatalog(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (n *Noop) SetCatalog(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (n *Noop) DeleteCatalog(ctx context.Context, key string) error {
	return nil
}

package port

import (
	"context"
	"time"
)

// Cache stores vendor catalog payloads (avatars, voices) so the remote
// API is not hit on every listing request.
type Cache interface {
	GetCatalog(ctx context.Context, key string) ([]byte, error)
	SetCatalog(ctx context.Context, key string, data []byte, ttl time.Duration) error
	DeleteCatalog(ctx context.Context, key string) error
}

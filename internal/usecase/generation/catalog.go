package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/port"
)

const (
	avatarsCacheKey = "avatars"
	voicesCacheKey  = "voices"
	catalogTTL      = time.Hour
)

// catalogSrv serves the vendor's avatar/voice listings through the
// cache. Quota is always fetched live.
type catalogSrv struct {
	client port.GenerationClient
	cache  port.Cache
}

var _ port.CatalogGetter = (*catalogSrv)(nil)

func NewCatalogGetter(client port.GenerationClient, cache port.Cache) port.CatalogGetter {
	return &catalogSrv{client: client, cache: cache}
}

func (s *catalogSrv) GetAvatars(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, avatarsCacheKey, s.client.ListAvatars)
}

func (s *catalogSrv) GetVoices(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, voicesCacheKey, s.client.ListVoices)
}

func (s *catalogSrv) GetQuota(ctx context.Context) (json.RawMessage, error) {
	quota, err := s.client.RemainingQuota(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remaining quota: %w", err)
	}
	return quota, nil
}

func (s *catalogSrv) cached(ctx context.Context, key string, fetch func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if data, err := s.cache.GetCatalog(ctx, key); err != nil {
		logger.Warn(ctx, "catalog cache read failed", "key", key, "error", err)
	} else if len(data) > 0 {
		return data, nil
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s catalog: %w", key, err)
	}

	if err := s.cache.SetCatalog(ctx, key, data, catalogTTL); err != nil {
		logger.Warn(ctx, "catalog cache write failed", "key", key, "error", err)
	}
	return data, nil
}

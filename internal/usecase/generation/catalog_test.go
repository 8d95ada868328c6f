package generation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/mock"
)

func TestGetAvatars_CachesResult(t *testing.T) {
	client := &mock.GenerationClient{AvatarsOut: json.RawMessage(`{"avatars":[{"id":"a1"}]}`)}
	cache := mock.NewCache()
	getter := NewCatalogGetter(client, cache)
	ctx := context.Background()

	first, err := getter.GetAvatars(ctx)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	second, err := getter.GetAvatars(ctx)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if string(first) != string(second) {
		t.Error("cached payload differs from the fetched one")
	}
	if client.AvatarCalls != 1 {
		t.Errorf("vendor calls = %d, want 1", client.AvatarCalls)
	}
	if cache.TTLs["avatars"] != time.Hour {
		t.Errorf("ttl = %v, want 1h", cache.TTLs["avatars"])
	}
}

func TestGetVoices_CacheMissFetches(t *testing.T) {
	client := &mock.GenerationClient{VoicesOut: json.RawMessage(`{"voices":[]}`)}
	getter := NewCatalogGetter(client, mock.NewCache())

	out, err := getter.GetVoices(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(out) != `{"voices":[]}` {
		t.Errorf("payload = %s", out)
	}
	if client.VoiceCalls != 1 {
		t.Errorf("vendor calls = %d", client.VoiceCalls)
	}
}

func TestGetQuota_NeverCached(t *testing.T) {
	client := &mock.GenerationClient{QuotaOut: json.RawMessage(`{"remaining_quota":60}`)}
	cache := mock.NewCache()
	getter := NewCatalogGetter(client, cache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := getter.GetQuota(ctx); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if client.QuotaCalls != 2 {
		t.Errorf("vendor calls = %d, want 2", client.QuotaCalls)
	}
	if len(cache.Entries) != 0 {
		t.Error("quota must not be cached")
	}
}

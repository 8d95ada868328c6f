package port

import (
	"context"
	"encoding/json"
	"io"
)

// GenerationStatus is the remote synthesis API's view of one job.
type GenerationStatus struct {
	Status          string
	VideoURL        string
	ThumbnailURL    string
	DurationSeconds float64
	Error           string
}

// SubmitGenerationInput carries everything the remote API needs to
// render one avatar video.
type SubmitGenerationInput struct {
	Script   string
	AvatarID string
	VoiceID  string
	Width    int
	Height   int
	TestMode bool
}

// GenerationClient talks to the remote avatar-synthesis API.
type GenerationClient interface {
	Submit(ctx context.Context, in SubmitGenerationInput) (string, error)
	Status(ctx context.Context, remoteID string) (GenerationStatus, error)
	// Download fetches the finished asset from the URL the remote API
	// returned. Size is -1 when the server does not announce it.
	Download(ctx context.Context, url string) (io.ReadCloser, int64, error)
	ListAvatars(ctx context.Context) (json.RawMessage, error)
	ListVoices(ctx context.Context) (json.RawMessage, error)
	RemainingQuota(ctx context.Context) (json.RawMessage, error)
}

package mock

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/edmetrics/lessons-media-go/internal/port"
)

// GenerationClient fakes the remote synthesis vendor. StatusQueue is
// consumed one entry per Status call; the last entry repeats once the
// queue is drained.
type GenerationClient struct {
	SubmitOut   string
	SubmitErr   error
	SubmitCalls int
	SubmittedIn port.SubmitGenerationInput

	StatusQueue []port.GenerationStatus
	StatusErr   error
	StatusCalls int

	DownloadData string
	DownloadErr  error
	DownloadedURL string

	AvatarsOut json.RawMessage
	VoicesOut  json.RawMessage
	QuotaOut   json.RawMessage
	CatalogErr error

	AvatarCalls int
	VoiceCalls  int
	QuotaCalls  int
}

var _ port.GenerationClient = (*GenerationClient)(nil)

func (c *GenerationClient) Submit(ctx context.Context, in port.SubmitGenerationInput) (string, error) {
	c.SubmitCalls++
	c.SubmittedIn = in
	if c.SubmitErr != nil {
		return "", c.SubmitErr
	}
	return c.SubmitOut, nil
}

func (c *GenerationClient) Status(ctx context.Context, remoteID string) (port.GenerationStatus, error) {
	c.StatusCalls++
	if c.StatusErr != nil {
		return port.GenerationStatus{}, c.StatusErr
	}
	if len(c.StatusQueue) == 0 {
		return port.GenerationStatus{Status: "processing"}, nil
	}
	st := c.StatusQueue[0]
	if len(c.StatusQueue) > 1 {
		c.StatusQueue = c.StatusQueue[1:]
	}
	return st, nil
}

func (c *GenerationClient) Download(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	c.DownloadedURL = url
	if c.DownloadErr != nil {
		return nil, 0, c.DownloadErr
	}
	return io.NopCloser(strings.NewReader(c.DownloadData)), int64(len(c.DownloadData)), nil
}

func (c *GenerationClient) ListAvatars(ctx context.Context) (json.RawMessage, error) {
	c.AvatarCalls++
	if c.CatalogErr != nil {
		return nil, c.CatalogErr
	}
	return c.AvatarsOut, nil
}

func (c *GenerationClient) ListVoices(ctx context.Context) (json.RawMessage, error) {
	c.VoiceCalls++
	if c.CatalogErr != nil {
		return nil, c.CatalogErr
	}
	return c.VoicesOut, nil
}

func (c *GenerationClient) RemainingQuota(ctx context.Context) (json.RawMessage, error) {
	c.QuotaCalls++
	if c.CatalogErr != nil {
		return nil, c.CatalogErr
	}
	return c.QuotaOut, nil
}

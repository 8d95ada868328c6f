package avatargen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/port"
)

const (
	requestTimeout  = 60 * time.Second
	downloadTimeout = 300 * time.Second

	backgroundColor = "#ffffff"
)

// Client talks to the remote avatar-synthesis vendor over its JSON
// HTTP API. All endpoints authenticate with an API key header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	downloader *http.Client
}

var _ port.GenerationClient = (*Client)(nil)

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		downloader: &http.Client{Timeout: downloadTimeout},
	}
}

type submitRequest struct {
	VideoInputs []videoInput `json:"video_inputs"`
	Dimension   dimension    `json:"dimension"`
	Test        bool         `json:"test"`
}

type videoInput struct {
	Character character  `json:"character"`
	Voice     voice      `json:"voice"`
	Background background `json:"background"`
}

type character struct {
	Type     string `json:"type"`
	AvatarID string `json:"avatar_id"`
	Style    string `json:"avatar_style"`
}

type voice struct {
	Type      string  `json:"type"`
	InputText string  `json:"input_text"`
	VoiceID   string  `json:"voice_id"`
	Speed     float64 `json:"speed"`
}

type background struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type submitResponse struct {
	Error *apiError `json:"error"`
	Data  struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
}

type statusResponse struct {
	Code int `json:"code"`
	Data struct {
		Status       string  `json:"status"`
		VideoURL     string  `json:"video_url"`
		ThumbnailURL string  `json:"thumbnail_url"`
		Duration     float64 `json:"duration"`
		Error        *struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		} `json:"error"`
	} `json:"data"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) Submit(ctx context.Context, in port.SubmitGenerationInput) (string, error) {
	payload := submitRequest{
		VideoInputs: []videoInput{{
			Character: character{
				Type:     "avatar",
				AvatarID: in.AvatarID,
				Style:    "normal",
			},
			Voice: voice{
				Type:      "text",
				InputText: in.Script,
				VoiceID:   in.VoiceID,
				Speed:     1.0,
			},
			Background: background{
				Type:  "color",
				Value: backgroundColor,
			},
		}},
		Dimension: dimension{Width: in.Width, Height: in.Height},
		Test:      in.TestMode,
	}

	body, err := c.doJSON(ctx, http.MethodPost, "/v2/video/generate", payload)
	if err != nil {
		return "", err
	}

	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse generation response: %w", err)
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return "", fmt.Errorf("generation request rejected: %s", resp.Error.Message)
	}
	if resp.Data.VideoID == "" {
		return "", fmt.Errorf("generation response contained no video id")
	}
	return resp.Data.VideoID, nil
}

func (c *Client) Status(ctx context.Context, remoteID string) (port.GenerationStatus, error) {
	path := "/v1/video_status.get?video_id=" + url.QueryEscape(remoteID)
	body, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return port.GenerationStatus{}, err
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return port.GenerationStatus{}, fmt.Errorf("failed to parse status response: %w", err)
	}

	out := port.GenerationStatus{
		Status:          resp.Data.Status,
		VideoURL:        resp.Data.VideoURL,
		ThumbnailURL:    resp.Data.ThumbnailURL,
		DurationSeconds: resp.Data.Duration,
	}
	if resp.Data.Error != nil {
		out.Error = resp.Data.Error.Message
		if resp.Data.Error.Detail != "" {
			out.Error = resp.Data.Error.Message + ": " + resp.Data.Error.Detail
		}
	}
	return out, nil
}

func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.downloader.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to download generated video: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}

func (c *Client) ListAvatars(ctx context.Context) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, "/v2/avatars", nil)
}

func (c *Client) ListVoices(ctx context.Context) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, "/v2/voices", nil)
}

func (c *Client) RemainingQuota(ctx context.Context) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, "/v1/user/remaining_quota", nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Package imagehost relays uploaded images to an external image-hosting
// service with an imgbb-compatible API.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// =============================================================================
// Client Interface
// =============================================================================

// Client uploads an image and returns its hosted URL.
type Client interface {
	Upload(ctx context.Context, filename string, image []byte) (*Image, error)
}

// Image is a hosted copy of an upload.
type Image struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	DisplayURL string `json:"display_url"`
	DeleteURL  string `json:"delete_url"`
}

// ErrDisabled is returned by the no-op client.
var ErrDisabled = errors.New("image host not configured")

// =============================================================================
// HTTP Client Implementation
// =============================================================================

// Config holds configuration for the image host client.
type Config struct {
	BaseURL    string
	APIKey     string
	Expiration time.Duration
	Timeout    time.Duration
}

// DefaultConfig returns default image host configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.imgbb.com/1/upload",
		Timeout: 30 * time.Second,
	}
}

// HTTPClient implements Client for imgbb-compatible APIs.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	expiration time.Duration
	httpClient *http.Client
}

// NewHTTPClient creates a new image host client.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		expiration: cfg.Expiration,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// uploadResponse is the imgbb response envelope.
type uploadResponse struct {
	Data    Image `json:"data"`
	Success bool  `json:"success"`
	Status  int   `json:"status"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload posts the image as multipart form data.
func (c *HTTPClient) Upload(ctx context.Context, filename string, image []byte) (*Image, error) {
	if len(image) == 0 {
		return nil, errors.New("image is empty")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.WriteField("name", filename); err != nil {
		return nil, fmt.Errorf("failed to write name: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	if c.expiration > 0 {
		q.Set("expiration", fmt.Sprintf("%d", int(c.expiration.Seconds())))
	}
	endpoint := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send upload request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("image host returned error %d: %s", resp.StatusCode, string(respBody))
	}

	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if !out.Success || out.Data.URL == "" {
		msg := "no image URL in response"
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("image host rejected upload: %s", msg)
	}

	return &out.Data, nil
}

// =============================================================================
// No-Op Client (for development/testing)
// =============================================================================

// NoopClient is an image host client that does nothing.
type NoopClient struct{}

// NewNoopClient creates a no-op image host client.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

// Upload always returns ErrDisabled.
func (c *NoopClient) Upload(ctx context.Context, filename string, image []byte) (*Image, error) {
	return nil, ErrDisabled
}

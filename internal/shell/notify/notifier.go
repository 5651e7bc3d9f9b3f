// Package notify relays placed orders to the shop's WhatsApp Business number.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/solarshop/internal/core/checkout"
	"github.com/artpar/solarshop/internal/core/domain"
)

// ErrNotConfigured is returned when a notifier is missing credentials.
var ErrNotConfigured = errors.New("notifier is not configured")

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends a summary of a placed order to the shop.
type Notifier interface {
	NotifyOrder(ctx context.Context, order *domain.Order) error
}

// =============================================================================
// WhatsApp Cloud API Notifier
// =============================================================================

// Config holds configuration for the WhatsApp Cloud API notifier.
type Config struct {
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
	Recipient     string
	Currency      string
	Timeout       time.Duration
}

// DefaultConfig returns default notifier configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://graph.facebook.com/v19.0",
		Timeout: 15 * time.Second,
	}
}

// Enabled reports whether enough is configured to send messages.
func (c Config) Enabled() bool {
	return c.PhoneNumberID != "" && c.AccessToken != "" && c.Recipient != ""
}

// WhatsAppNotifier implements Notifier against the WhatsApp Cloud API.
type WhatsAppNotifier struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	recipient     string
	currency      string
	httpClient    *http.Client
}

// NewWhatsAppNotifier creates a new WhatsApp Cloud API notifier.
func NewWhatsAppNotifier(cfg Config) *WhatsAppNotifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &WhatsAppNotifier{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		recipient:     checkout.PhoneDigits(cfg.Recipient),
		currency:      cfg.Currency,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// messageRequest is the Cloud API body for a plain text message.
type messageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             messageText `json:"text"`
}

type messageText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NotifyOrder sends the order summary as a text message.
func (n *WhatsAppNotifier) NotifyOrder(ctx context.Context, order *domain.Order) error {
	if n.phoneNumberID == "" || n.accessToken == "" || n.recipient == "" {
		return ErrNotConfigured
	}

	payload := messageRequest{
		MessagingProduct: "whatsapp",
		To:               n.recipient,
		Type:             "text",
		Text: messageText{
			Body: checkout.WhatsAppMessage(order, n.currency),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := n.baseURL + "/" + n.phoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.accessToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("whatsapp API error: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("whatsapp API error: status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// =============================================================================
// No-op Notifier
// =============================================================================

// NoopNotifier accepts every order without sending anything.
type NoopNotifier struct{}

// NotifyOrder does nothing.
func (NoopNotifier) NotifyOrder(ctx context.Context, order *domain.Order) error {
	return nil
}

// New returns a WhatsApp notifier when configured, otherwise a no-op.
func New(cfg Config) Notifier {
	if !cfg.Enabled() {
		return NoopNotifier{}
	}
	return NewWhatsAppNotifier(cfg)
}

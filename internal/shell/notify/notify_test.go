package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(ref string) domain.Order {
	return domain.Order{
		ReferenceID: ref,
		Customer: domain.Customer{
			Name:    "Ayesha Khan",
			Phone:   "+923001234567",
			Address: "House 12",
			City:    "Lahore",
		},
		Items: []domain.LineItem{
			{ProductID: "prod_1", Name: "Panel", UnitPrice: 42000, Quantity: 2, Subtotal: 84000},
		},
		Total:         84000,
		Status:        domain.OrderPending,
		PaymentMethod: domain.PaymentCashOnDelivery,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// WhatsApp Notifier Tests
// =============================================================================

func TestNewWhatsAppNotifier_Defaults(t *testing.T) {
	n := NewWhatsAppNotifier(Config{Recipient: "+92 300 1234567"})
	assert.Equal(t, "https://graph.facebook.com/v19.0", n.baseURL)
	assert.Equal(t, "923001234567", n.recipient)
	assert.Equal(t, 15*time.Second, n.httpClient.Timeout)
}

func TestWhatsAppNotifier_NotifyOrder_Success(t *testing.T) {
	var received messageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	n := NewWhatsAppNotifier(Config{
		BaseURL:       server.URL,
		PhoneNumberID: "12345",
		AccessToken:   "secret",
		Recipient:     "+923009999999",
		Currency:      "Rs",
	})

	order := testOrder("ord_abc")
	require.NoError(t, n.NotifyOrder(context.Background(), &order))

	assert.Equal(t, "whatsapp", received.MessagingProduct)
	assert.Equal(t, "923009999999", received.To)
	assert.Equal(t, "text", received.Type)
	assert.Contains(t, received.Text.Body, "ord_abc")
	assert.Contains(t, received.Text.Body, "Rs 84,000")
}

func TestWhatsAppNotifier_NotifyOrder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer server.Close()

	n := NewWhatsAppNotifier(Config{
		BaseURL:       server.URL,
		PhoneNumberID: "12345",
		AccessToken:   "bad",
		Recipient:     "923009999999",
	})

	order := testOrder("ord_abc")
	err := n.NotifyOrder(context.Background(), &order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestWhatsAppNotifier_NotConfigured(t *testing.T) {
	n := NewWhatsAppNotifier(Config{})
	order := testOrder("ord_abc")
	assert.ErrorIs(t, n.NotifyOrder(context.Background(), &order), ErrNotConfigured)
}

func TestNew_SelectsImplementation(t *testing.T) {
	_, ok := New(Config{}).(NoopNotifier)
	assert.True(t, ok)

	_, ok = New(Config{PhoneNumberID: "1", AccessToken: "t", Recipient: "923001234567"}).(*WhatsAppNotifier)
	assert.True(t, ok)
}

// =============================================================================
// Relay Tests
// =============================================================================

type stubQueue struct {
	mu       sync.Mutex
	orders   []domain.Order
	notified map[string]time.Time
	listErr  error
}

func newStubQueue(orders ...domain.Order) *stubQueue {
	return &stubQueue{orders: orders, notified: map[string]time.Time{}}
}

func (q *stubQueue) ListUnnotifiedOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.listErr != nil {
		return nil, q.listErr
	}
	var out []domain.Order
	for _, o := range q.orders {
		if _, done := q.notified[o.ReferenceID]; done {
			continue
		}
		out = append(out, o)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (q *stubQueue) MarkOrderNotified(ctx context.Context, id string, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notified[id] = at
	return nil
}

type stubNotifier struct {
	mu     sync.Mutex
	failOn map[string]bool
	sent   []string
}

func (n *stubNotifier) NotifyOrder(ctx context.Context, order *domain.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failOn[order.ReferenceID] {
		return errors.New("boom")
	}
	n.sent = append(n.sent, order.ReferenceID)
	return nil
}

type stubCounter struct {
	ok, failed int
}

func (c *stubCounter) IncNotification(success bool) {
	if success {
		c.ok++
	} else {
		c.failed++
	}
}

func TestRelay_DeliversAndMarks(t *testing.T) {
	queue := newStubQueue(testOrder("ord_1"), testOrder("ord_2"))
	notifier := &stubNotifier{}
	counter := &stubCounter{}

	relay := NewRelay(RelayConfig{Queue: queue, Notifier: notifier, Counter: counter, Logger: quietLogger()})

	assert.Equal(t, 2, relay.RelayNow(context.Background()))
	assert.Equal(t, []string{"ord_1", "ord_2"}, notifier.sent)
	assert.Len(t, queue.notified, 2)
	assert.Equal(t, 2, counter.ok)

	// Nothing left on the second pass.
	assert.Equal(t, 0, relay.RelayNow(context.Background()))
}

func TestRelay_FailedOrdersStayQueued(t *testing.T) {
	queue := newStubQueue(testOrder("ord_1"), testOrder("ord_2"))
	notifier := &stubNotifier{failOn: map[string]bool{"ord_1": true}}
	counter := &stubCounter{}

	relay := NewRelay(RelayConfig{Queue: queue, Notifier: notifier, Counter: counter, Logger: quietLogger()})

	assert.Equal(t, 1, relay.RelayNow(context.Background()))
	_, marked := queue.notified["ord_1"]
	assert.False(t, marked)
	assert.Equal(t, 1, counter.failed)

	notifier.failOn = nil
	assert.Equal(t, 1, relay.RelayNow(context.Background()))
	_, marked = queue.notified["ord_1"]
	assert.True(t, marked)
}

func TestRelay_BatchSize(t *testing.T) {
	queue := newStubQueue(testOrder("ord_1"), testOrder("ord_2"), testOrder("ord_3"))
	relay := NewRelay(RelayConfig{Queue: queue, Notifier: &stubNotifier{}, BatchSize: 2, Logger: quietLogger()})

	assert.Equal(t, 2, relay.RelayNow(context.Background()))
	assert.Equal(t, 1, relay.RelayNow(context.Background()))
}

func TestRelay_ListError(t *testing.T) {
	queue := newStubQueue()
	queue.listErr = errors.New("db down")
	relay := NewRelay(RelayConfig{Queue: queue, Logger: quietLogger()})

	assert.Equal(t, 0, relay.RelayNow(context.Background()))
}

func TestRelay_StartStop(t *testing.T) {
	queue := newStubQueue(testOrder("ord_1"))
	notifier := &stubNotifier{}
	relay := NewRelay(RelayConfig{Queue: queue, Notifier: notifier, Interval: time.Hour, Logger: quietLogger()})

	go relay.Start(context.Background())

	require.Eventually(t, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.sent) == 1
	}, time.Second, 10*time.Millisecond)

	relay.Stop()
}

func TestRelay_ContextCancel(t *testing.T) {
	relay := NewRelay(RelayConfig{Queue: newStubQueue(), Interval: time.Hour, Logger: quietLogger()})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		relay.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop on context cancellation")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, strings.HasPrefix(cfg.BaseURL, "https://graph.facebook.com"))
	assert.False(t, cfg.Enabled())
}

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/artpar/solarshop/internal/core/domain"
)

// =============================================================================
// Background Relay
// =============================================================================

// OrderQueue is the slice of the store the relay needs.
type OrderQueue interface {
	ListUnnotifiedOrders(ctx context.Context, limit int) ([]domain.Order, error)
	MarkOrderNotified(ctx context.Context, id string, at time.Time) error
}

// ResultCounter counts notification outcomes.
type ResultCounter interface {
	IncNotification(success bool)
}

// Relay delivers notifications for orders that have not been relayed yet.
// Failed orders stay queued and are retried on the next tick.
type Relay struct {
	queue     OrderQueue
	notifier  Notifier
	counter   ResultCounter
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// RelayConfig holds configuration for the background relay.
type RelayConfig struct {
	Queue     OrderQueue
	Notifier  Notifier
	Counter   ResultCounter
	Interval  time.Duration
	BatchSize int
	Logger    *slog.Logger
}

// NewRelay creates a new background relay.
func NewRelay(cfg RelayConfig) *Relay {
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 20
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NoopNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Relay{
		queue:     cfg.Queue,
		notifier:  cfg.Notifier,
		counter:   cfg.Counter,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the relay loop.
// It runs until Stop() is called or the context is cancelled.
func (r *Relay) Start(ctx context.Context) {
	r.logger.Info("starting order notification relay",
		"interval", r.interval,
		"batch_size", r.batchSize,
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	r.relayBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("order notification relay stopped due to context cancellation")
			return
		case <-r.stopCh:
			r.logger.Info("order notification relay stopped")
			return
		case <-ticker.C:
			r.relayBatch(ctx)
		}
	}
}

// Stop signals the relay to stop and waits for it to finish.
func (r *Relay) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// RelayNow runs one relay cycle immediately and returns how many orders
// were delivered.
func (r *Relay) RelayNow(ctx context.Context) int {
	return r.relayBatch(ctx)
}

func (r *Relay) relayBatch(ctx context.Context) int {
	orders, err := r.queue.ListUnnotifiedOrders(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("failed to list unnotified orders", "error", err)
		return 0
	}

	if len(orders) == 0 {
		return 0
	}

	sent := 0
	for i := range orders {
		if ctx.Err() != nil {
			break
		}
		order := &orders[i]

		if err := r.notifier.NotifyOrder(ctx, order); err != nil {
			r.count(false)
			r.logger.Warn("failed to notify order",
				"order_id", order.ReferenceID,
				"error", err,
			)
			continue
		}
		r.count(true)

		if err := r.queue.MarkOrderNotified(ctx, order.ReferenceID, r.now()); err != nil {
			r.logger.Error("failed to mark order notified",
				"order_id", order.ReferenceID,
				"error", err,
			)
			continue
		}
		sent++
	}

	r.logger.Info("relayed order notifications", "sent", sent, "pending", len(orders))
	return sent
}

func (r *Relay) count(success bool) {
	if r.counter != nil {
		r.counter.IncNotification(success)
	}
}

// Package worker runs background consumers for the storefront. The Bling
// worker subscribes to approved-order events and pushes each order into the
// Bling ERP, keeping the ERP bridge off the request path.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
	"github.com/opticalmarket/storefront/internal/events"
	"github.com/opticalmarket/storefront/internal/telemetry"
)

// BlingConfig holds Bling worker configuration.
type BlingConfig struct {
	// WorkerID uniquely identifies this worker instance in logs.
	WorkerID string

	// ServiceToken authenticates the worker against the backend. Order
	// pushes run outside any shopper request, so the shopper's token is
	// not available.
	ServiceToken string

	// MaxAttempts bounds retries per order push.
	MaxAttempts int

	// RetryDelay is the pause between attempts for one order.
	RetryDelay time.Duration
}

// BlingWorker consumes approved-order events and pushes them to Bling.
type BlingWorker struct {
	config    BlingConfig
	orders    commerce.OrdersAPI
	subscribe func(subject, queue string, handler func(events.OrderEvent)) (*nats.Subscription, error)
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger
}

// NewBlingWorker creates a Bling sync worker reading from the given
// publisher's connection.
func NewBlingWorker(
	publisher *events.NATSPublisher,
	orders commerce.OrdersAPI,
	metrics *telemetry.BusinessMetrics,
	config BlingConfig,
	logger zerolog.Logger,
) *BlingWorker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("bling-%s", uuid.New().String()[:8])
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 5 * time.Second
	}

	return &BlingWorker{
		config:    config,
		orders:    orders,
		subscribe: publisher.Subscribe,
		metrics:   metrics,
		logger: logger.With().
			Str("component", "bling_worker").
			Str("worker_id", config.WorkerID).
			Logger(),
	}
}

// Start subscribes to approved-order events and blocks until the context is
// cancelled. The queue group spreads events across instances when more than
// one storefront runs.
func (w *BlingWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("bling worker starting")

	sub, err := w.subscribe(events.SubjectOrderApproved, "bling-sync", func(event events.OrderEvent) {
		w.handle(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.SubjectOrderApproved, err)
	}

	<-ctx.Done()

	if err := sub.Unsubscribe(); err != nil {
		w.logger.Warn().Err(err).Msg("unsubscribe failed")
	}
	w.logger.Info().Msg("bling worker stopped")
	return nil
}

// handle pushes one order, retrying transient failures. A push that keeps
// failing is logged and dropped; the order remains queryable at the backend
// and a seller can re-push from the admin surface.
func (w *BlingWorker) handle(ctx context.Context, event events.OrderEvent) {
	ctx = domain.NewContextWithToken(ctx, w.config.ServiceToken)
	log := w.logger.With().Str("order_id", event.OrderID).Logger()

	for attempt := 1; attempt <= w.config.MaxAttempts; attempt++ {
		result, err := w.orders.PushOrderToBling(ctx, event.OrderID)
		if err == nil && result.Success {
			w.metrics.BlingSyncs.WithLabelValues("success").Inc()
			log.Info().Int("attempt", attempt).Str("bling_id", result.BlingID).Msg("order pushed to bling")
			return
		}

		if err == nil {
			err = fmt.Errorf("bling rejected order: %s", result.ErrorMsg)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("bling push failed")

		// Client-side rejections will not heal with a retry.
		if domain.IsCode(err, domain.EINVALID) || domain.IsCode(err, domain.ENOTFOUND) {
			break
		}

		if attempt < w.config.MaxAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.config.RetryDelay):
			}
		}
	}

	w.metrics.BlingSyncs.WithLabelValues("failure").Inc()
	log.Error().Msg("order push to bling abandoned")
}

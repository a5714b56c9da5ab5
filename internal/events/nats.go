package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSPublisher publishes order events to a NATS server.
type NATSPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewNATSPublisher connects to the NATS server at url. The connection
// reconnects indefinitely; the storefront keeps serving while NATS is down
// and events resume when it returns.
func NewNATSPublisher(url string, logger zerolog.Logger) (*NATSPublisher, error) {
	log := logger.With().Str("component", "events").Logger()

	conn, err := nats.Connect(url,
		nats.Name("optical-storefront"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NATSPublisher{conn: conn, logger: log}, nil
}

// Publish emits one event. Serialization failures are programmer errors and
// are returned; transport failures are returned for the caller to log.
func (p *NATSPublisher) Publish(subject string, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.Debug().Str("subject", subject).Str("order_id", event.OrderID).Msg("event published")
	return nil
}

// Subscribe registers a queue subscription for the worker group. Decode
// failures are logged and dropped; the handler only sees valid events.
func (p *NATSPublisher) Subscribe(subject, queue string, handler func(OrderEvent)) (*nats.Subscription, error) {
	return p.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var event OrderEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			p.logger.Error().Err(err).Str("subject", msg.Subject).Msg("failed to decode event")
			return
		}
		handler(event)
	})
}

// Close drains the connection so queued events flush before shutdown.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("nats drain failed")
	}
}

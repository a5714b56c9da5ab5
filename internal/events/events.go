// Package events publishes order lifecycle events over NATS so background
// consumers (the Bling sync worker today) stay decoupled from the request
// path. Publishing is best-effort: a failed publish is logged, never
// surfaced to the shopper.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderSubmitted = "orders.submitted"
	SubjectOrderApproved  = "orders.approved"
)

// OrderEvent is the payload for order lifecycle subjects.
type OrderEvent struct {
	OrderID       string          `json:"orderId"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	Total         decimal.Decimal `json:"total"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	Publish(subject string, event OrderEvent) error
	Close()
}

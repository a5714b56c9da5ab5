package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order domain errors.
var (
	ErrOrderNotFound      = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrInvalidOrderStatus = &Error{Code: EINVALID, Message: "Invalid order status"}
)

// Order fulfillment statuses, owned by the backend.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Payment statuses reported by the gateway through the backend.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusInProcess = "IN_PROCESS"
	PaymentStatusApproved  = "APPROVED"
	PaymentStatusRejected  = "REJECTED"
	PaymentStatusCancelled = "CANCELLED"
)

// ValidOrderStatus reports whether s is a known fulfillment status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// NextFulfillmentStatus returns the natural next step in the fulfillment
// chain (PAID -> SHIPPED -> DELIVERED). The second return is false when the
// current status has no forward transition.
func NextFulfillmentStatus(current string) (string, bool) {
	switch current {
	case OrderStatusPaid:
		return OrderStatusShipped, true
	case OrderStatusShipped:
		return OrderStatusDelivered, true
	}
	return "", false
}

// ApprovedPaymentStatus reports whether s is an approved terminal state.
func ApprovedPaymentStatus(s string) bool {
	return s == PaymentStatusApproved || s == OrderStatusPaid
}

// FailedPaymentStatus reports whether s is a failed terminal state.
func FailedPaymentStatus(s string) bool {
	return s == PaymentStatusRejected || s == PaymentStatusCancelled
}

// OrderProduct is the product snapshot embedded in an order item.
type OrderProduct struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	SKU    string   `json:"sku,omitempty"`
	Images []string `json:"images,omitempty"`
}

// OrderItem is one line of a placed order, priced authoritatively by the backend.
type OrderItem struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Product  OrderProduct    `json:"product"`
}

// OrderBuyer identifies the buyer on seller-facing order views.
type OrderBuyer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is a placed order as reported by the backend collaborator. The core
// only constructs creation requests and consumes these responses.
type Order struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	PaymentMethod string          `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`
	Items         []OrderItem     `json:"items"`
	Address       Address         `json:"address"`
	Buyer         *OrderBuyer     `json:"user,omitempty"`
}

// Address is a delivery address owned by the backend address collaborator.
type Address struct {
	ID           string `json:"id,omitempty"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	IsDefault    bool   `json:"isDefault"`
}

package commerce

import (
	"context"
	"net/http"
	"net/url"

	"github.com/opticalmarket/storefront/internal/domain"
)

// PaymentsAPI covers the backend's payment-gateway bridge.
type PaymentsAPI interface {
	// CreatePayment asks the backend to create a payment record with the
	// gateway for an existing order.
	CreatePayment(ctx context.Context, params CreatePaymentParams) (*domain.PaymentResult, error)

	// PaymentStatus returns the current payment status for an order.
	// Absence of confirmation is a status, not an error.
	PaymentStatus(ctx context.Context, orderID string) (string, error)
}

// CreatePaymentParams is the payment-creation request body.
type CreatePaymentParams struct {
	OrderID       string               `json:"orderId"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	PayerEmail    string               `json:"payerEmail"`
}

func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*domain.PaymentResult, error) {
	var result domain.PaymentResult
	if err := c.do(ctx, http.MethodPost, "/payment/create", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PaymentStatus(ctx context.Context, orderID string) (string, error) {
	var out struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := c.do(ctx, http.MethodGet, "/payment/"+url.PathEscape(orderID)+"/status", nil, &out); err != nil {
		return "", err
	}
	return out.PaymentStatus, nil
}

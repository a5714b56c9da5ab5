package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Checkout domain errors.
var (
	ErrEmptyCart = &Error{Code: EINVALID, Message: "Cart is empty"}

	ErrMissingAddress = &Error{Code: EINVALID, Message: "No delivery address selected"}

	ErrSubmissionInFlight = &Error{Code: ECONFLICT, Message: "An order submission is already in progress"}

	ErrPaymentNotApproved = &Error{Code: EPAYMENT, Message: "Payment was not approved"}
)

// PaymentMethod is a closed set of supported payment instruments.
type PaymentMethod string

const (
	PaymentMethodPIX        PaymentMethod = "PIX"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodBoleto     PaymentMethod = "BOLETO"
)

// Valid reports whether the method is one of the supported variants.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodPIX, PaymentMethodCreditCard, PaymentMethodBoleto:
		return true
	}
	return false
}

// Asynchronous reports whether the instrument settles outside the app and
// therefore requires confirmation polling after the payment record exists.
func (m PaymentMethod) Asynchronous() bool {
	switch m {
	case PaymentMethodPIX, PaymentMethodBoleto:
		return true
	}
	return false
}

// ShippingOption is the shipping choice carried between checkout steps.
type ShippingOption struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"deliveryDays"`
}

// CheckoutSession is the ephemeral state bridging the address, payment and
// confirmation steps of one purchase attempt. It must not outlive the
// checkout: the session store deletes it on successful payment submission.
type CheckoutSession struct {
	// AddressID references an address owned by the backend collaborator.
	AddressID string

	// Shipping is the selected shipping option, when the flow variant uses one.
	Shipping *ShippingOption

	// PendingOrderID holds the order created by a submission whose payment
	// step failed or is still awaiting confirmation, so the order is never
	// silently orphaned.
	PendingOrderID string
}

// OrderCreationError reports that the backend rejected order creation
// (step 1 of submission). The cart and checkout session are preserved so the
// shopper can adjust and retry.
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error {
	return e.Err
}

// PaymentCreationError reports that the order exists but payment creation
// (step 2 of submission) failed. OrderID is carried so the unpaid order stays
// referenceable for retry or support follow-up.
type PaymentCreationError struct {
	OrderID string
	Err     error
}

func (e *PaymentCreationError) Error() string {
	return fmt.Sprintf("payment creation failed for order %s: %v", e.OrderID, e.Err)
}

func (e *PaymentCreationError) Unwrap() error {
	return e.Err
}

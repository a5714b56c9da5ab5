package domain

import (
	"github.com/shopspring/decimal"
)

// Cart domain errors.
var (
	ErrCartNotFound    = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrInvalidStock    = &Error{Code: EINVALID, Message: "Stock must not be negative"}
)

// CartItem is one line in the cart, keyed by product ID. Price and stock are
// snapshots taken when the product was added; they are display-only and are
// never re-validated against the backend until order creation.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Stock     int             `json:"stock"`
}

// Subtotal returns price * quantity for this line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the aggregate of cart lines for one shopper. Lines keep insertion
// order; product IDs are unique within the slice.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Find returns the index of the line with the given product ID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Total recomputes the cart total from the current lines on every call.
// Nothing is cached, so partial updates can never leave a stale total behind.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy of the cart. Stores hand out clones so callers
// cannot mutate state behind the owner's back.
func (c *Cart) Clone() *Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return &Cart{Items: items}
}

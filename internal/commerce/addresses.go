package commerce

import (
	"context"
	"net/http"

	"github.com/opticalmarket/storefront/internal/domain"
)

// AddressesAPI covers the backend's address book.
type AddressesAPI interface {
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	CreateAddress(ctx context.Context, params CreateAddressParams) (*domain.Address, error)
}

// CreateAddressParams is the address-creation request body. Validation
// happens at the handler before this is sent.
type CreateAddressParams struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	IsDefault    bool   `json:"isDefault"`
}

func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var addresses []domain.Address
	if err := c.do(ctx, http.MethodGet, "/address", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, params CreateAddressParams) (*domain.Address, error) {
	var address domain.Address
	if err := c.do(ctx, http.MethodPost, "/address", params, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
)

// AddressHandler handles the shopper's address book.
type AddressHandler struct {
	addresses commerce.AddressesAPI
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(addresses commerce.AddressesAPI) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// List handles GET /addresses.
func (h *AddressHandler) List(c echo.Context) error {
	addresses, err := h.addresses.ListAddresses(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addresses)
}

type createAddressRequest struct {
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number" validate:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required,len=2"`
	ZipCode      string `json:"zipCode" validate:"required"`
	IsDefault    bool   `json:"isDefault"`
}

// Create handles POST /addresses.
func (h *AddressHandler) Create(c echo.Context) error {
	var req createAddressRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.AddressCreate", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	address, err := h.addresses.CreateAddress(c.Request().Context(), commerce.CreateAddressParams{
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, address)
}

// Package admin holds the seller-facing handlers: catalog management,
// seller orders and the Bling ERP bridge. Every route here sits behind the
// seller-role middleware.
package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/domain"
)

// ProductHandler handles catalog management.
type ProductHandler struct {
	catalog commerce.CatalogAPI
}

// NewProductHandler creates a new admin product handler.
func NewProductHandler(catalog commerce.CatalogAPI) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"categoryId" validate:"required"`
	SKU         string          `json:"sku"`
}

func (r productRequest) params() commerce.ProductParams {
	return commerce.ProductParams{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Images:      r.Images,
		CategoryID:  r.CategoryID,
		SKU:         r.SKU,
	}
}

// Create handles POST /admin/products.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.ProductCreate", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.catalog.CreateProduct(c.Request().Context(), req.params())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// Update handles PUT /admin/products/:productId.
func (h *ProductHandler) Update(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.ProductUpdate", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.catalog.UpdateProduct(c.Request().Context(), c.Param("productId"), req.params())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /admin/products/:productId.
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteProduct(c.Request().Context(), c.Param("productId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateCategory handles POST /admin/categories.
func (h *ProductHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.CategoryCreate", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.catalog.CreateCategory(c.Request().Context(), commerce.CategoryParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /admin/categories/:categoryId.
func (h *ProductHandler) UpdateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.CategoryUpdate", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.catalog.UpdateCategory(c.Request().Context(), c.Param("categoryId"), commerce.CategoryParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /admin/categories/:categoryId.
func (h *ProductHandler) DeleteCategory(c echo.Context) error {
	if err := h.catalog.DeleteCategory(c.Request().Context(), c.Param("categoryId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

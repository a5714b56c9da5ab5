package storefront

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/commerce"
)

// ProductHandler handles catalog browsing.
type ProductHandler struct {
	catalog commerce.CatalogAPI
}

// NewProductHandler creates a new product handler.
func NewProductHandler(catalog commerce.CatalogAPI) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List handles GET /products with optional category, search and paging
// filters.
func (h *ProductHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	products, err := h.catalog.ListProducts(c.Request().Context(), commerce.ListProductsParams{
		CategoryID: c.QueryParam("categoryId"),
		Search:     c.QueryParam("search"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /products/:productId.
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.catalog.GetProduct(c.Request().Context(), c.Param("productId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Categories handles GET /categories.
func (h *ProductHandler) Categories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

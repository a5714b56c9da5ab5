package commerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// CatalogAPI covers the backend's product and category endpoints.
type CatalogAPI interface {
	ListProducts(ctx context.Context, params ListProductsParams) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, params ProductParams) (*Product, error)
	UpdateProduct(ctx context.Context, productID string, params ProductParams) (*Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, params CategoryParams) (*Category, error)
	UpdateCategory(ctx context.Context, categoryID string, params CategoryParams) (*Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

// Product is a catalog product as the backend serializes it. Price and
// stock here are display snapshots; the backend revalidates both at order
// creation.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"categoryId"`
	SKU         string          `json:"sku,omitempty"`
	SellerID    string          `json:"sellerId,omitempty"`
}

// FirstImage returns the primary image URL, or "" when none exist.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category is a catalog category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListProductsParams filters a product listing. Zero values are omitted
// from the query string.
type ListProductsParams struct {
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}

// ProductParams is the create/update request body for a product.
type ProductParams struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"categoryId"`
	SKU         string          `json:"sku,omitempty"`
}

// CategoryParams is the create/update request body for a category.
type CategoryParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, error) {
	query := url.Values{}
	if params.CategoryID != "" {
		query.Set("categoryId", params.CategoryID)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	path := "/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) CreateProduct(ctx context.Context, params ProductParams) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPost, "/products", params, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, params ProductParams) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(productID), params, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(productID), nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, params CategoryParams) (*Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodPost, "/categories", params, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, categoryID string, params CategoryParams) (*Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(categoryID), params, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, categoryID string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(categoryID), nil, nil)
}

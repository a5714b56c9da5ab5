// Package router assembles the echo instance: global middleware, the
// storefront and admin route trees, and the operational endpoints.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/opticalmarket/storefront/internal/cart"
	"github.com/opticalmarket/storefront/internal/checkout"
	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/cookie"
	"github.com/opticalmarket/storefront/internal/handler"
	"github.com/opticalmarket/storefront/internal/handler/admin"
	"github.com/opticalmarket/storefront/internal/handler/storefront"
	"github.com/opticalmarket/storefront/internal/middleware"
	"github.com/opticalmarket/storefront/internal/session"
	"github.com/opticalmarket/storefront/internal/telemetry"
)

// Config wires the router's collaborators.
type Config struct {
	Carts    cart.Service
	Sessions *session.Store
	Flow     *checkout.Flow
	Backend  commerce.API
	Metrics  *telemetry.BusinessMetrics
	Registry *prometheus.Registry
	Cookies  *cookie.Config
	Logger   zerolog.Logger
}

// New builds the echo instance with all routes registered.
func New(cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(cfg.Logger)
	e.Validator = handler.NewValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.NewHTTPMetrics(cfg.Registry, "optical").Middleware())
	e.Use(middleware.RequestLogger(cfg.Logger))
	e.Use(middleware.WithCartKey(cfg.Cookies))
	e.Use(middleware.WithUser(cfg.Backend, cfg.Logger))

	// Operational endpoints.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	registerStorefront(e, cfg)
	registerAdmin(e, cfg)

	return e
}

func registerStorefront(e *echo.Echo, cfg Config) {
	auth := storefront.NewAuthHandler(cfg.Backend, cfg.Cookies)
	e.POST("/auth/login", auth.Login)
	e.POST("/auth/register", auth.Register)
	e.POST("/auth/logout", auth.Logout)
	e.GET("/auth/me", auth.Me, middleware.RequireAuth)

	products := storefront.NewProductHandler(cfg.Backend)
	e.GET("/products", products.List)
	e.GET("/products/:productId", products.Get)
	e.GET("/categories", products.Categories)

	carts := storefront.NewCartHandler(cfg.Carts, cfg.Backend, cfg.Metrics)
	e.GET("/cart", carts.View)
	e.POST("/cart/items", carts.Add)
	e.PATCH("/cart/items/:productId", carts.UpdateQuantity)
	e.DELETE("/cart/items/:productId", carts.Remove)
	e.DELETE("/cart", carts.Clear)

	addresses := storefront.NewAddressHandler(cfg.Backend)
	e.GET("/addresses", addresses.List, middleware.RequireAuth)
	e.POST("/addresses", addresses.Create, middleware.RequireAuth)

	co := storefront.NewCheckoutHandler(cfg.Flow, cfg.Sessions, cfg.Backend)
	e.GET("/checkout/session", co.Session)
	e.POST("/checkout/address", co.SelectAddress, middleware.RequireAuth)
	e.POST("/checkout/shipping", co.SelectShipping)
	e.POST("/checkout/submit", co.Submit, middleware.RequireAuth)
	e.GET("/checkout/confirmation/:orderId", co.Confirmation, middleware.RequireAuth)
	e.GET("/checkout/confirmation/:orderId/watch", co.Watch, middleware.RequireAuth)

	orders := storefront.NewOrderHandler(cfg.Backend)
	e.GET("/orders", orders.List, middleware.RequireAuth)
	e.GET("/orders/:orderId", orders.Get, middleware.RequireAuth)
}

func registerAdmin(e *echo.Echo, cfg Config) {
	g := e.Group("/admin", middleware.RequireSeller)

	products := admin.NewProductHandler(cfg.Backend)
	g.POST("/products", products.Create)
	g.PUT("/products/:productId", products.Update)
	g.DELETE("/products/:productId", products.Delete)
	g.POST("/categories", products.CreateCategory)
	g.PUT("/categories/:categoryId", products.UpdateCategory)
	g.DELETE("/categories/:categoryId", products.DeleteCategory)

	orders := admin.NewOrderHandler(cfg.Backend)
	g.GET("/orders", orders.List)
	g.PATCH("/orders/:orderId/status", orders.UpdateStatus)
	g.POST("/orders/:orderId/advance", orders.Advance)

	bling := admin.NewBlingHandler(cfg.Backend, cfg.Backend, cfg.Metrics)
	g.GET("/bling/status", bling.Status)
	g.POST("/bling/credentials", bling.SaveCredentials)
	g.POST("/bling/sync/products", bling.SyncProducts)
	g.POST("/orders/:orderId/bling", bling.PushOrder)
}

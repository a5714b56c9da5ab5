// Package middleware holds the storefront's echo middleware: request IDs,
// request-scoped logging, HTTP metrics, the cart-key cookie, and the auth
// layer that turns the backend bearer token into a context user.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/domain"
)

// RequestID attaches an ID to every request, reusing an inbound
// X-Request-Id when a proxy already assigned one.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			ctx := domain.NewContextWithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

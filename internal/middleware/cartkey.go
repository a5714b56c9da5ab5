package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/cookie"
	"github.com/opticalmarket/storefront/internal/session"
)

// cartKeyContextKey is the echo context key holding the shopper's cart key.
const cartKeyContextKey = "cart_key"

// CartKeyCookieMaxAge keeps the cart cookie alive for 30 days of inactivity.
const CartKeyCookieMaxAge = 30 * 24 * 60 * 60

// WithCartKey ensures every request carries a cart key, minting one and
// setting the cookie on first contact. The key identifies both the cart and
// the checkout session; anonymous shoppers get one before they ever log in.
func WithCartKey(cookies *cookie.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cookie.Get(c.Request(), cookie.CartCookieName)
			if key == "" {
				generated, err := session.GenerateKey()
				if err != nil {
					return err
				}
				key = generated
				cookies.Set(c.Response(), cookie.CartCookieName, key, CartKeyCookieMaxAge)
			}

			c.Set(cartKeyContextKey, key)
			return next(c)
		}
	}
}

// CartKey returns the request's cart key, "" when WithCartKey did not run.
func CartKey(c echo.Context) string {
	key, _ := c.Get(cartKeyContextKey).(string)
	return key
}

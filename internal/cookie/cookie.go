// Package cookie provides the storefront's cookie helpers. The cart cookie
// carries the shopper's cart key (anonymous shoppers included); the auth
// cookie carries the backend bearer token.
package cookie

import "net/http"

// Common cookie names used throughout the application.
const (
	// CartCookieName stores the cart key identifying the shopper's cart
	// and checkout session.
	CartCookieName = "optical_cart"

	// AuthCookieName stores the backend bearer token for authenticated
	// shoppers.
	AuthCookieName = "optical_auth"
)

// Config holds cookie configuration.
type Config struct {
	// Secure determines whether cookies require HTTPS. True in
	// production, false in development.
	Secure bool
}

// NewConfig creates a new cookie configuration.
func NewConfig(secure bool) *Config {
	return &Config{Secure: secure}
}

// Set sets an HttpOnly session cookie. maxAge follows http.Cookie
// semantics: positive for a persistent cookie, zero for a browser-session
// cookie.
func (c *Config) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes a cookie by setting MaxAge to -1.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get retrieves a cookie value from the request. Returns "" when the cookie
// is absent.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

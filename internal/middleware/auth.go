package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/cookie"
	"github.com/opticalmarket/storefront/internal/domain"
)

// WithUser resolves the backend bearer token (auth cookie, or an
// Authorization header for API clients) into a context user. It never
// rejects: unauthenticated requests continue without a user, and handlers
// behind RequireAuth decide what needs one.
func WithUser(auth commerce.AuthAPI, logger zerolog.Logger) echo.MiddlewareFunc {
	log := logger.With().Str("component", "auth").Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookie.Get(c.Request(), cookie.AuthCookieName)
			if token == "" {
				if header := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
					token = strings.TrimPrefix(header, "Bearer ")
				}
			}
			if token == "" {
				return next(c)
			}

			ctx := domain.NewContextWithToken(c.Request().Context(), token)

			user, err := auth.Profile(ctx)
			if err != nil {
				// Expired or revoked token: continue anonymous. Backend
				// outages are logged but must not lock shoppers out of
				// public pages.
				if !domain.IsCode(err, domain.EUNAUTHORIZED) {
					log.Warn().Err(err).Msg("profile lookup failed")
				}
				return next(c)
			}

			ctx = domain.NewContextWithUser(ctx, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAuth rejects requests without an authenticated user.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !domain.IsAuthenticated(c.Request().Context()) {
			return domain.Unauthorized("middleware.RequireAuth", "authentication required")
		}
		return next(c)
	}
}

// RequireSeller rejects requests unless the user holds a seller or admin
// role.
func RequireSeller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := domain.UserFromContext(c.Request().Context())
		if user == nil {
			return domain.Unauthorized("middleware.RequireSeller", "authentication required")
		}
		if !user.CanSell() {
			return domain.Forbidden("middleware.RequireSeller", "seller access required")
		}
		return next(c)
	}
}

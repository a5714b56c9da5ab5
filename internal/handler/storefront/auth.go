package storefront

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/cookie"
	"github.com/opticalmarket/storefront/internal/domain"
)

// AuthCookieMaxAge keeps the auth cookie alive for 7 days, matching the
// backend token lifetime.
const AuthCookieMaxAge = 7 * 24 * 60 * 60

// AuthHandler handles login, registration and logout. Credentials pass
// through to the backend; only the issued token is kept, in an HttpOnly
// cookie.
type AuthHandler struct {
	auth    commerce.AuthAPI
	cookies *cookie.Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth commerce.AuthAPI, cookies *cookie.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userResponse exposes the authenticated user without the token; the token
// lives only in the cookie.
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.Login", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.Request().Context(), commerce.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.cookies.Set(c.Response(), cookie.AuthCookieName, result.Token, AuthCookieMaxAge)
	return c.JSON(http.StatusOK, userResponse{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
		Role:  result.User.Role,
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.Register", "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.Request().Context(), commerce.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.cookies.Set(c.Response(), cookie.AuthCookieName, result.Token, AuthCookieMaxAge)
	return c.JSON(http.StatusCreated, userResponse{
		ID:    result.User.ID,
		Name:  result.User.Name,
		Email: result.User.Email,
		Role:  result.User.Role,
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c.Response(), cookie.AuthCookieName)
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	user := domain.UserFromContext(c.Request().Context())
	if user == nil {
		return domain.Unauthorized("storefront.Me", "authentication required")
	}
	return c.JSON(http.StatusOK, userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}

package commerce

import (
	"context"
	"net/http"

	"github.com/opticalmarket/storefront/internal/domain"
)

// AuthAPI covers the backend's authentication endpoints. The storefront
// never stores credentials; it forwards them and keeps the issued token
// in the auth cookie.
type AuthAPI interface {
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	Profile(ctx context.Context) (*domain.User, error)
}

// LoginParams is the login request body.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterParams is the registration request body.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the backend's auth response: a bearer token plus the
// authenticated user.
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

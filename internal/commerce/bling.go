package commerce

import (
	"context"
	"net/http"
)

// BlingAPI covers the backend's Bling ERP integration endpoints. All of
// them require a seller credential; the backend enforces that.
type BlingAPI interface {
	BlingStatus(ctx context.Context) (*BlingStatus, error)
	SyncBlingProducts(ctx context.Context) (*BlingSyncResult, error)
	SaveBlingCredentials(ctx context.Context, params BlingCredentialsParams) error
}

// BlingStatus reports whether the seller's Bling connection is live.
type BlingStatus struct {
	Connected bool   `json:"connected"`
	Company   string `json:"company,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// BlingSyncResult is the outcome of a sync push, either for one order
// or for a product batch.
type BlingSyncResult struct {
	Success  bool   `json:"success"`
	Synced   int    `json:"synced,omitempty"`
	BlingID  string `json:"blingId,omitempty"`
	ErrorMsg string `json:"error,omitempty"`
}

// BlingCredentialsParams carries the seller's Bling OAuth credentials.
type BlingCredentialsParams struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

func (c *Client) BlingStatus(ctx context.Context) (*BlingStatus, error) {
	var status BlingStatus
	if err := c.do(ctx, http.MethodGet, "/bling/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) SyncBlingProducts(ctx context.Context) (*BlingSyncResult, error) {
	var result BlingSyncResult
	if err := c.do(ctx, http.MethodGet, "/bling/sync/products", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SaveBlingCredentials(ctx context.Context, params BlingCredentialsParams) error {
	return c.do(ctx, http.MethodPost, "/bling/credentials", params, nil)
}

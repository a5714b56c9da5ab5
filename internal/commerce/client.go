// Package commerce is the typed client for the commerce backend REST API:
// orders, payments, addresses, catalog, auth and the Bling ERP bridge. The
// backend owns all of that state; this package only constructs requests and
// classifies failures.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/opticalmarket/storefront/internal/domain"
)

// DefaultTimeout bounds every backend request so a stalled collaborator
// surfaces as a distinguishable timeout instead of a hung handler.
const DefaultTimeout = 15 * time.Second

// API groups the backend surfaces the storefront consumes. Client implements
// all of them; tests substitute per-surface mocks.
type API interface {
	OrdersAPI
	PaymentsAPI
	AddressesAPI
	CatalogAPI
	BlingAPI
	AuthAPI
}

// ClientConfig configures the backend client.
type ClientConfig struct {
	// BaseURL is the backend API root, e.g. "http://localhost:3000/api".
	BaseURL string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Logger receives request-level debug logging.
	Logger zerolog.Logger
}

// Client talks to the commerce backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a backend client with a bounded timeout and an
// OpenTelemetry-instrumented transport.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: cfg.Logger.With().Str("component", "commerce").Logger(),
	}, nil
}

// apiError is the backend's error envelope.
type apiError struct {
	Message string `json:"message"`
	Error_  string `json:"error"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error_
}

// do performs one backend request. The bearer token is taken from the
// context when present (the auth middleware forwards the shopper's token;
// the Bling worker injects a service token).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := fmt.Sprintf("commerce.%s %s", method, path)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.Internal(err, op, "failed to encode request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return domain.Internal(err, op, "failed to build request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := domain.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(err, op)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode >= 400 {
		return c.statusError(resp, op)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Internal(err, op, "failed to decode response")
	}

	return nil
}

// classifyTransportError maps transport failures onto the network error
// taxonomy. No partial state is committed on either side, so both classes
// are safely retryable.
func (c *Client) classifyTransportError(err error, op string) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	if !timeout {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			timeout = true
		}
	}

	c.logger.Warn().Err(err).Str("op", op).Bool("timeout", timeout).Msg("backend transport failure")
	return domain.NetworkError(err, op, timeout)
}

// statusError maps backend HTTP errors onto domain error codes, preserving
// the backend's user-facing message when it supplies one.
func (c *Client) statusError(resp *http.Response, op string) error {
	var envelope apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope)

	message := envelope.text()
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	code := domain.EINTERNAL
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		code = domain.EINVALID
	case resp.StatusCode == http.StatusUnauthorized:
		code = domain.EUNAUTHORIZED
	case resp.StatusCode == http.StatusForbidden:
		code = domain.EFORBIDDEN
	case resp.StatusCode == http.StatusNotFound:
		code = domain.ENOTFOUND
	case resp.StatusCode == http.StatusConflict:
		code = domain.ECONFLICT
	case resp.StatusCode == http.StatusPaymentRequired:
		code = domain.EPAYMENT
	case resp.StatusCode == http.StatusGatewayTimeout:
		code = domain.ETIMEOUT
	case resp.StatusCode >= 500:
		code = domain.EUNAVAILABLE
	}

	return domain.Errorf(code, op, "%s", message)
}

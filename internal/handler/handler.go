// Package handler holds plumbing shared by the storefront and admin HTTP
// surfaces: the domain-error-to-HTTP mapping and request validation.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opticalmarket/storefront/internal/domain"
)

// ErrorResponse is the JSON error envelope. Message is always safe to show
// to the shopper; internal detail stays in the logs.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`

	// OrderID is set when a submission failed after its order was created,
	// so the client can offer payment retry instead of resubmitting.
	OrderID string `json:"orderId,omitempty"`

	// Fields carries per-field validation messages.
	Fields map[string]string `json:"fields,omitempty"`
}

// statusForCode maps domain error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EUNAVAILABLE:
		return http.StatusBadGateway
	case domain.ETIMEOUT:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// NewHTTPErrorHandler builds the echo error handler translating domain
// errors into the JSON envelope. Internal errors are logged with their
// operation and shown as a generic message.
func NewHTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		resp := ErrorResponse{Message: "An internal error occurred"}

		var httpErr *echo.HTTPError
		var validationErr *domain.ValidationError
		var paymentErr *domain.PaymentCreationError
		var orderErr *domain.OrderCreationError

		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(status)
			}

		case errors.As(err, &validationErr):
			status = http.StatusBadRequest
			resp.Message = "Request validation failed"
			resp.Code = domain.EINVALID
			resp.Fields = validationErr.Fields

		case errors.As(err, &paymentErr):
			// The order exists. Surface its ID so the client can retry the
			// payment without creating a duplicate order.
			status = http.StatusPaymentRequired
			resp.Message = "Payment could not be created for your order"
			resp.Code = domain.EPAYMENT
			resp.OrderID = paymentErr.OrderID

		case errors.As(err, &orderErr):
			status = statusForCode(domain.ErrorCode(orderErr.Err))
			resp.Message = domain.ErrorMessage(orderErr.Err)
			resp.Code = domain.ErrorCode(orderErr.Err)

		default:
			code := domain.ErrorCode(err)
			status = statusForCode(code)
			resp.Code = code
			resp.Message = domain.ErrorMessage(err)
		}

		if status >= 500 {
			logger.Error().
				Err(err).
				Str("op", domain.ErrorOp(err)).
				Str("path", c.Request().URL.Path).
				Str("request_id", domain.RequestIDFromContext(c.Request().Context())).
				Msg("request failed")
			resp.Message = "An internal error occurred"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator. Struct tag violations come back as a
// field-keyed ValidationError.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return domain.Internal(err, "handler.Validate", "validation failed")
	}

	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fe.Field()] = validationMessage(fe)
	}

	return &domain.ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gt", "gte":
		return "is too small"
	case "oneof":
		return "is not a recognized value"
	}
	return "is invalid"
}

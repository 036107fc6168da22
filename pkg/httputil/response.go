// Package httputil provides the JSON response envelope and error mapping
// shared by the demo server handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
	"github.com/utafrali/checkout-go/pkg/logger"
	"github.com/utafrali/checkout-go/pkg/validator"
)

// Response is the standard JSON response envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a checkout error onto an HTTP status and writes the
// standard error envelope. It prefers the request-scoped logger from context
// over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())

	status := http.StatusInternalServerError
	code := "CHECKOUT_ERROR"
	message := "an internal error occurred"

	var checkoutErr *checkouterrors.CheckoutError
	if errors.As(err, &checkoutErr) {
		code = checkoutErr.Code
		message = checkoutErr.Message
		status = httpStatusFor(err)
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, checkouterrors.ErrRedirectParse),
		errors.Is(err, checkouterrors.ErrSerialization),
		errors.Is(err, checkouterrors.ErrMissingPaymentData),
		errors.Is(err, checkouterrors.ErrUnsupportedAction):
		return http.StatusBadRequest
	case errors.Is(err, checkouterrors.ErrFlowTakenOver):
		return http.StatusConflict
	case errors.Is(err, checkouterrors.ErrPaymentIncomplete):
		return http.StatusPaymentRequired
	case errors.Is(err, checkouterrors.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteValidationError writes a field-level validation error response.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
)

// APIErrorResponse mirrors the error body returned by the checkout API.
type APIErrorResponse struct {
	Status    int    `json:"status"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	ErrorType string `json:"errorType"`
	PSPRef    string `json:"pspReference,omitempty"`
}

func (e *APIErrorResponse) Error() string {
	return fmt.Sprintf("checkout API error %d (%s/%s): %s", e.Status, e.ErrorType, e.ErrorCode, e.Message)
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into a checkout error. If the body matches the checkout API's error
// format, its code and message are preserved as the cause. Otherwise the raw
// body is included.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, call string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return checkouterrors.Transport(call, fmt.Errorf("status %d (failed to read body: %w)", resp.StatusCode, err))
	}

	// Try to parse a structured API error body.
	var apiErr APIErrorResponse
	if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.ErrorCode != "" {
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return checkouterrors.Transport(call, &apiErr)
	}

	// Fallback: unstructured error body.
	return checkouterrors.Transport(call, fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes)))
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors are never retried; the request itself was invalid.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

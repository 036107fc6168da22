// Package api implements the typed client for the checkout session and
// status endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
	"github.com/utafrali/checkout-go/pkg/httpclient"
)

// Doer abstracts the transport so the client works with the plain retrying
// client and the circuit-breaker wrapper alike.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_api_requests_total",
		Help: "Total checkout API calls by endpoint and HTTP status code.",
	},
	[]string{"call", "code"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

// Client talks to the checkout API. All session calls are scoped to a
// session ID and authenticated with the client key.
type Client struct {
	doer      Doer
	baseURL   string
	clientKey string
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Config holds the static parameters of the API client.
type Config struct {
	BaseURL   string `env:"CHECKOUT_API_BASE_URL" validate:"required,url"`
	ClientKey string `env:"CHECKOUT_CLIENT_KEY" validate:"required"`
}

// NewClient creates an API client on top of the given transport.
func NewClient(doer Doer, cfg Config, logger *slog.Logger) *Client {
	return &Client{
		doer:      doer,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		clientKey: cfg.ClientKey,
		tracer:    otel.Tracer("checkout-api"),
		logger:    logger,
	}
}

// SessionSetup exchanges the initial session data for the session
// configuration.
func (c *Client) SessionSetup(ctx context.Context, sessionID string, req SessionSetupRequest) (*SessionSetupResponse, error) {
	var resp SessionSetupResponse
	if err := c.post(ctx, "sessions.setup", c.sessionURL(sessionID, "setup"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionPayments submits the collected payment data for the session.
func (c *Client) SessionPayments(ctx context.Context, sessionID string, req SessionPaymentsRequest) (*SessionPaymentsResponse, error) {
	var resp SessionPaymentsResponse
	if err := c.post(ctx, "sessions.payments", c.sessionURL(sessionID, "payments"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDetails submits the outcome of a secondary action step.
func (c *Client) SessionDetails(ctx context.Context, sessionID string, req SessionDetailsRequest) (*SessionDetailsResponse, error) {
	var resp SessionDetailsResponse
	if err := c.post(ctx, "sessions.details", c.sessionURL(sessionID, "paymentDetails"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionBalance checks the balance of a stored-value payment method.
func (c *Client) SessionBalance(ctx context.Context, sessionID string, req SessionBalanceRequest) (*SessionBalanceResponse, error) {
	var resp SessionBalanceResponse
	if err := c.post(ctx, "sessions.balance", c.sessionURL(sessionID, "paymentMethodBalance"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionCreateOrder creates a partial-payment order for the session.
func (c *Client) SessionCreateOrder(ctx context.Context, sessionID string, req SessionOrderRequest) (*SessionOrderResponse, error) {
	var resp SessionOrderResponse
	if err := c.post(ctx, "sessions.orders", c.sessionURL(sessionID, "orders"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionCancelOrder cancels a partial-payment order.
func (c *Client) SessionCancelOrder(ctx context.Context, sessionID string, req SessionCancelOrderRequest) (*SessionCancelOrderResponse, error) {
	var resp SessionCancelOrderResponse
	if err := c.post(ctx, "sessions.orders.cancel", c.sessionURL(sessionID, "orders/cancel"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDisableToken removes a stored payment method from the shopper
// profile.
func (c *Client) SessionDisableToken(ctx context.Context, sessionID string, req SessionDisableTokenRequest) (*SessionDisableTokenResponse, error) {
	var resp SessionDisableTokenResponse
	if err := c.post(ctx, "sessions.disableToken", c.sessionURL(sessionID, "disableToken"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PaymentStatus fetches the current status of an asynchronous payment.
func (c *Client) PaymentStatus(ctx context.Context, paymentData string) (*checkout.StatusResponse, error) {
	var resp checkout.StatusResponse
	endpoint := fmt.Sprintf("%s/v1/status?clientKey=%s", c.baseURL, url.QueryEscape(c.clientKey))
	if err := c.post(ctx, "status", endpoint, StatusRequest{PaymentData: paymentData}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) sessionURL(sessionID, operation string) string {
	return fmt.Sprintf("%s/v1/sessions/%s/%s?clientKey=%s",
		c.baseURL, url.PathEscape(sessionID), operation, url.QueryEscape(c.clientKey))
}

func (c *Client) post(ctx context.Context, call, endpoint string, reqBody, respBody any) error {
	ctx, span := c.tracer.Start(ctx, call, trace.WithAttributes(
		attribute.String("checkout.call", call),
	))
	defer span.End()

	payload, err := json.Marshal(reqBody)
	if err != nil {
		span.SetStatus(codes.Error, "marshal")
		return checkouterrors.Serialization("encoding "+call+" request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		span.SetStatus(codes.Error, "request")
		return checkouterrors.Transport(call, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		requestsTotal.WithLabelValues(call, "error").Inc()
		span.SetStatus(codes.Error, "transport")
		return checkouterrors.Transport(call, err)
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(call, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "api")
		c.logger.Error("checkout api call failed",
			slog.String("call", call),
			slog.Int("status", resp.StatusCode))
		return httpclient.ParseResponseError(resp, call)
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		span.SetStatus(codes.Error, "decode")
		return checkouterrors.Serialization("decoding "+call+" response", err)
	}
	return nil
}

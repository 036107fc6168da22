package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/checkout-go/pkg/logger"
)

func testConfig() *Config {
	return &Config{
		Environment:  "test",
		LogLevel:     "error",
		HTTPPort:     8090,
		APIBaseURL:   "https://checkout.example.com",
		ClientKey:    "test_key",
		SessionID:    "CS-TEST",
		SessionData:  "sd-test",
		ReturnURL:    "http://localhost:8090/return",
		StateBackend: BackendMemory,
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.validate())

	cfg.HTTPPort = 0
	assert.Error(t, cfg.validate())

	cfg = testConfig()
	cfg.APIBaseURL = ""
	assert.Error(t, cfg.validate())

	cfg = testConfig()
	cfg.StateBackend = "etcd"
	assert.Error(t, cfg.validate())
}

func TestAppServesCheckoutEndpoints(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logger.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(app.router())
	defer srv.Close()
	defer app.component.Teardown()

	app.component.Initialize(context.Background())

	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := `{"paymentMethod":{"type":"scheme","encryptedCardNumber":"enc"}}`
	resp, err = http.Post(srv.URL+"/api/v1/checkout/payment-method", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/v1/checkout/payment-method", "application/json", strings.NewReader(`{"paymentMethod":{}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/checkout/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

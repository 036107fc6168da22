package demo

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/pkg/health"
	"github.com/utafrali/checkout-go/pkg/httputil"
	"github.com/utafrali/checkout-go/pkg/middleware"
)

func (a *App) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(a.logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(a.logger))
	r.Use(middleware.PrometheusMetrics("checkoutdemo"))
	r.Use(middleware.Tracing("checkoutdemo"))
	r.Use(middleware.RequestLogger(a.logger))

	hc := health.NewHandler()
	for name, check := range a.healthChecks {
		hc.Register(name, check)
	}
	if a.producer != nil {
		hc.Register("kafka", a.producer.Ping)
	}
	r.Get("/health/live", hc.LivenessHandler())
	r.Get("/health/ready", hc.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/return", a.handleReturn)

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/payment-method", a.handlePaymentMethod)
		r.Post("/submit", a.handleSubmit)
		r.Post("/refresh", a.handleRefresh)
		r.Get("/status", a.handleStatus)
	})

	return r
}

var errMissingPaymentMethodType = errors.New("paymentMethod.type is required")

type paymentMethodRequest struct {
	PaymentMethod checkout.PaymentMethodDetails `json:"paymentMethod" validate:"required"`
	Amount        *checkout.Amount              `json:"amount,omitempty"`
}

// handlePaymentMethod replaces the collected payment method on the component.
func (a *App) handlePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "malformed request body"},
		})
		return
	}
	if req.PaymentMethod.Type() == "" {
		httputil.WriteValidationError(w, errMissingPaymentMethodType)
		return
	}
	a.component.UpdateInput(func(data *checkout.PaymentComponentData) {
		data.PaymentMethod = req.PaymentMethod
		if req.Amount != nil {
			data.Amount = req.Amount
		}
	})
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// handleSubmit triggers submission of the collected payment data.
func (a *App) handleSubmit(w http.ResponseWriter, r *http.Request) {
	a.component.Submit()
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// handleRefresh forces an immediate status poll for the pending action.
func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a.component.RefreshStatus()
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "accepted"}})
}

// handleReturn is the endpoint the shopper lands on after an external
// redirect. The raw query is handed back to the component verbatim.
func (a *App) handleReturn(w http.ResponseWriter, r *http.Request) {
	if err := a.component.HandleRedirectReturn(r.Context(), r.URL.String()); err != nil {
		httputil.WriteError(w, r, err, a.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"message": "redirect result accepted"},
	})
}

type statusResponse struct {
	RedirectURL string                         `json:"redirectUrl,omitempty"`
	Result      *checkout.SessionPaymentResult `json:"result,omitempty"`
	Error       string                         `json:"error,omitempty"`
}

// handleStatus reports the demo's view of the checkout: a pending redirect
// URL, the terminal result or the last error.
func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	resp := statusResponse{
		RedirectURL: a.redirectURL,
		Result:      a.lastResult,
	}
	if a.lastErr != nil {
		resp.Error = a.lastErr.Error()
	}
	a.mu.Unlock()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

package api

import (
	"encoding/json"

	"github.com/utafrali/checkout-go/checkout"
)

// SessionSetupRequest initialises a session created by the merchant backend.
type SessionSetupRequest struct {
	SessionData string `json:"sessionData"`
}

// SessionSetupResponse carries the configuration the session was created
// with. PaymentMethods is kept raw; rendering it is the host's concern.
type SessionSetupResponse struct {
	ID             string           `json:"id"`
	SessionData    string           `json:"sessionData"`
	Amount         *checkout.Amount `json:"amount,omitempty"`
	ExpiresAt      string           `json:"expiresAt,omitempty"`
	ReturnURL      string           `json:"returnUrl,omitempty"`
	CountryCode    string           `json:"countryCode,omitempty"`
	ShopperLocale  string           `json:"shopperLocale,omitempty"`
	PaymentMethods json.RawMessage  `json:"paymentMethods,omitempty"`
}

// SessionPaymentsRequest submits the collected payment data.
type SessionPaymentsRequest struct {
	SessionData        string                        `json:"sessionData"`
	PaymentMethod      checkout.PaymentMethodDetails `json:"paymentMethod"`
	Order              *checkout.Order               `json:"order,omitempty"`
	Amount             *checkout.Amount              `json:"amount,omitempty"`
	StorePaymentMethod *bool                         `json:"storePaymentMethod,omitempty"`
	ShopperReference   string                        `json:"shopperReference,omitempty"`
	ReturnURL          string                        `json:"returnUrl,omitempty"`
}

// SessionPaymentsResponse is the processor's answer to a payment submission.
// A non-nil Action means the flow is not finished yet.
type SessionPaymentsResponse struct {
	SessionData   string                  `json:"sessionData,omitempty"`
	SessionResult string                  `json:"sessionResult,omitempty"`
	Status        string                  `json:"status,omitempty"`
	ResultCode    string                  `json:"resultCode,omitempty"`
	Action        *checkout.Action        `json:"action,omitempty"`
	Order         *checkout.OrderResponse `json:"order,omitempty"`
}

// SessionDetailsRequest submits the outcome of a secondary action step.
type SessionDetailsRequest struct {
	SessionData string         `json:"sessionData"`
	PaymentData string         `json:"paymentData,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// SessionDetailsResponse mirrors the payments response; actions can chain.
type SessionDetailsResponse struct {
	SessionData   string                  `json:"sessionData,omitempty"`
	SessionResult string                  `json:"sessionResult,omitempty"`
	Status        string                  `json:"status,omitempty"`
	ResultCode    string                  `json:"resultCode,omitempty"`
	Action        *checkout.Action        `json:"action,omitempty"`
	Order         *checkout.OrderResponse `json:"order,omitempty"`
}

// SessionBalanceRequest checks the remaining balance of a gift card or
// similar stored-value method.
type SessionBalanceRequest struct {
	SessionData   string                        `json:"sessionData"`
	PaymentMethod checkout.PaymentMethodDetails `json:"paymentMethod"`
}

// SessionBalanceResponse carries the balance and optional per-transaction
// limit of the checked method.
type SessionBalanceResponse struct {
	SessionData      string           `json:"sessionData,omitempty"`
	Balance          *checkout.Amount `json:"balance,omitempty"`
	TransactionLimit *checkout.Amount `json:"transactionLimit,omitempty"`
}

// SessionOrderRequest creates a partial-payment order within the session.
type SessionOrderRequest struct {
	SessionData string `json:"sessionData"`
}

// SessionOrderResponse identifies the created order.
type SessionOrderResponse struct {
	SessionData  string `json:"sessionData,omitempty"`
	PSPReference string `json:"pspReference"`
	OrderData    string `json:"orderData"`
}

// SessionCancelOrderRequest cancels a previously created order.
type SessionCancelOrderRequest struct {
	SessionData string          `json:"sessionData"`
	Order       *checkout.Order `json:"order"`
}

// SessionCancelOrderResponse reports the cancellation status.
type SessionCancelOrderResponse struct {
	SessionData string `json:"sessionData,omitempty"`
	Status      string `json:"status,omitempty"`
}

// SessionDisableTokenRequest removes a stored payment method.
type SessionDisableTokenRequest struct {
	SessionData           string `json:"sessionData"`
	StoredPaymentMethodID string `json:"storedPaymentMethodId"`
}

// SessionDisableTokenResponse acknowledges the removal.
type SessionDisableTokenResponse struct {
	SessionData string `json:"sessionData,omitempty"`
}

// StatusRequest polls the progress of an asynchronous payment.
type StatusRequest struct {
	PaymentData string `json:"paymentData"`
}

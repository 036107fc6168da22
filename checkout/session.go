package checkout

import "strings"

// SessionModel is the mutable session token pair threaded through every
// session call. SessionData is replaced wholesale after each successful call;
// values are treated as copy-on-write so the latest one can be persisted and
// restored verbatim across a host process recreation.
type SessionModel struct {
	ID          string `json:"id"`
	SessionData string `json:"sessionData"`
}

// WithSessionData returns a copy of the model carrying the new session data.
func (m SessionModel) WithSessionData(sessionData string) SessionModel {
	m.SessionData = sessionData
	return m
}

// SessionPaymentResult is the terminal outcome of a session payment attempt.
type SessionPaymentResult struct {
	SessionID     string         `json:"sessionId"`
	SessionResult string         `json:"sessionResult,omitempty"`
	SessionData   string         `json:"sessionData,omitempty"`
	ResultCode    string         `json:"resultCode,omitempty"`
	Order         *OrderResponse `json:"order,omitempty"`
}

// IsRefused reports whether the result code is a refusal, case-insensitively.
func IsRefused(resultCode string) bool {
	return strings.EqualFold(resultCode, ResultRefused)
}

// BalanceResult is the outcome of a payment method balance check.
type BalanceResult struct {
	Balance          Amount  `json:"balance"`
	TransactionLimit *Amount `json:"transactionLimit,omitempty"`
}

package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for the checkout error taxonomy.
var (
	ErrUnsupportedAction  = errors.New("unsupported action")
	ErrTransport          = errors.New("transport failure")
	ErrSerialization      = errors.New("serialization failure")
	ErrRedirectParse      = errors.New("redirect parse failure")
	ErrPaymentIncomplete  = errors.New("payment was not completed")
	ErrFlowTakenOver      = errors.New("flow taken over")
	ErrMissingPaymentData = errors.New("payment data missing")
)

// CheckoutError represents a structured checkout error carrying a stable code
// and the original cause.
type CheckoutError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// UnsupportedAction signals that the active delegate cannot handle the given
// action type. Fatal to that handleAction call, never retried.
func UnsupportedAction(actionType string) *CheckoutError {
	return &CheckoutError{
		Code:    "UNSUPPORTED_ACTION",
		Message: fmt.Sprintf("action type %q is not supported by this component", actionType),
		Err:     ErrUnsupportedAction,
	}
}

// Transport wraps an HTTP or network layer failure.
func Transport(call string, err error) *CheckoutError {
	cause := error(ErrTransport)
	if err != nil {
		cause = fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return &CheckoutError{
		Code:    "TRANSPORT_FAILURE",
		Message: fmt.Sprintf("%s call failed", call),
		Err:     cause,
	}
}

// Serialization wraps a malformed payload or a missing required field.
// Always fatal, never retried.
func Serialization(message string, err error) *CheckoutError {
	cause := error(ErrSerialization)
	if err != nil {
		cause = fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return &CheckoutError{
		Code:    "SERIALIZATION_FAILURE",
		Message: message,
		Err:     cause,
	}
}

// RedirectParse signals that a redirect return URL could not be parsed into a
// detail payload.
func RedirectParse(message string) *CheckoutError {
	return &CheckoutError{
		Code:    "REDIRECT_PARSE_FAILURE",
		Message: message,
		Err:     ErrRedirectParse,
	}
}

// PaymentIncomplete signals a terminal status whose payload is empty or whose
// result code is not an accepted success.
func PaymentIncomplete(resultCode string) *CheckoutError {
	return &CheckoutError{
		Code:    "PAYMENT_INCOMPLETE",
		Message: fmt.Sprintf("payment was not completed - %s", resultCode),
		Err:     ErrPaymentIncomplete,
	}
}

// FlowTakenOver signals that the session flow was taken over by the host in a
// previous call, so the named host callback must be implemented.
func FlowTakenOver(callbackName string) *CheckoutError {
	return &CheckoutError{
		Code:    "FLOW_TAKEN_OVER",
		Message: fmt.Sprintf("sessions flow was already taken over in a previous call, %s must be implemented", callbackName),
		Err:     ErrFlowTakenOver,
	}
}

// MissingPaymentData signals an action that arrived without the continuation
// token the processor expects echoed back.
func MissingPaymentData() *CheckoutError {
	return &CheckoutError{
		Code:    "MISSING_PAYMENT_DATA",
		Message: "action carries no payment data",
		Err:     ErrMissingPaymentData,
	}
}

// Wrap builds a generic checkout error around an arbitrary cause.
func Wrap(message string, err error) *CheckoutError {
	return &CheckoutError{
		Code:    "CHECKOUT_ERROR",
		Message: message,
		Err:     err,
	}
}

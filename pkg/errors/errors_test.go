package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutError_Error(t *testing.T) {
	err := &CheckoutError{Code: "TEST", Message: "something broke"}
	assert.Equal(t, "TEST: something broke", err.Error())

	cause := errors.New("root cause")
	err = &CheckoutError{Code: "TEST", Message: "something broke", Err: cause}
	assert.Contains(t, err.Error(), "root cause")
}

func TestCheckoutError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap("wrapper", cause)
	assert.ErrorIs(t, err, cause)
}

func TestSentinelMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"unsupported action", UnsupportedAction("voucher"), ErrUnsupportedAction, "UNSUPPORTED_ACTION"},
		{"transport", Transport("payments", errors.New("dial tcp")), ErrTransport, "TRANSPORT_FAILURE"},
		{"serialization", Serialization("bad json", errors.New("unexpected EOF")), ErrSerialization, "SERIALIZATION_FAILURE"},
		{"redirect parse", RedirectParse("no query"), ErrRedirectParse, "REDIRECT_PARSE_FAILURE"},
		{"payment incomplete", PaymentIncomplete("refused"), ErrPaymentIncomplete, "PAYMENT_INCOMPLETE"},
		{"flow taken over", FlowTakenOver("OnSubmit"), ErrFlowTakenOver, "FLOW_TAKEN_OVER"},
		{"missing payment data", MissingPaymentData(), ErrMissingPaymentData, "MISSING_PAYMENT_DATA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)

			var checkoutErr *CheckoutError
			require.ErrorAs(t, tt.err, &checkoutErr)
			assert.Equal(t, tt.code, checkoutErr.Code)
		})
	}
}

func TestTransport_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Transport("status", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestFlowTakenOver_NamesCallback(t *testing.T) {
	err := FlowTakenOver("OnAdditionalDetails")
	assert.Contains(t, err.Message, "OnAdditionalDetails")
}

func TestConstructors_NilCause(t *testing.T) {
	terr := Transport("payments", nil)
	assert.ErrorIs(t, terr, ErrTransport)
	assert.NotContains(t, terr.Error(), "%!w")
	assert.NotContains(t, terr.Error(), "<nil>")

	serr := Serialization("balance missing from response", nil)
	assert.ErrorIs(t, serr, ErrSerialization)
	assert.NotContains(t, serr.Error(), "%!w")
	assert.NotContains(t, serr.Error(), "<nil>")
}

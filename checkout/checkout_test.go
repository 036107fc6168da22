package checkout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusResponse_IsFinal(t *testing.T) {
	tests := []struct {
		resultCode string
		final      bool
	}{
		{ResultAuthorised, true},
		{ResultRefused, true},
		{ResultCancelled, true},
		{ResultError, true},
		{ResultPending, false},
		{ResultReceived, false},
		{"unknownCode", true},
	}

	for _, tt := range tests {
		t.Run(tt.resultCode, func(t *testing.T) {
			assert.Equal(t, tt.final, StatusResponse{ResultCode: tt.resultCode}.IsFinal())
		})
	}
}

func TestSessionModel_WithSessionData(t *testing.T) {
	original := SessionModel{ID: "CS1", SessionData: "data-1"}
	updated := original.WithSessionData("data-2")

	assert.Equal(t, "data-2", updated.SessionData)
	assert.Equal(t, "CS1", updated.ID)
	// Copy-on-write: the original value is untouched.
	assert.Equal(t, "data-1", original.SessionData)
}

func TestOrderResponse_IsNonFullyPaid(t *testing.T) {
	var nilOrder *OrderResponse
	assert.False(t, nilOrder.IsNonFullyPaid())

	assert.False(t, (&OrderResponse{}).IsNonFullyPaid())
	assert.False(t, (&OrderResponse{RemainingAmount: &Amount{Value: 0}}).IsNonFullyPaid())
	assert.True(t, (&OrderResponse{RemainingAmount: &Amount{Value: 250}}).IsNonFullyPaid())
}

func TestOrderResponse_Request(t *testing.T) {
	var nilOrder *OrderResponse
	assert.Nil(t, nilOrder.Request())

	o := &OrderResponse{PSPReference: "psp1", OrderData: "od1", Amount: &Amount{Value: 100}}
	req := o.Request()
	require.NotNil(t, req)
	assert.Equal(t, Order{PSPReference: "psp1", OrderData: "od1"}, *req)
}

func TestPaymentMethodDetails_Type(t *testing.T) {
	assert.Equal(t, "scheme", PaymentMethodDetails{"type": "scheme"}.Type())
	assert.Empty(t, PaymentMethodDetails{}.Type())
	assert.Empty(t, PaymentMethodDetails{"type": 42}.Type())
}

func TestComponentState_IsValid(t *testing.T) {
	assert.True(t, ComponentState{IsInputValid: true, IsReady: true}.IsValid())
	assert.False(t, ComponentState{IsInputValid: true}.IsValid())
	assert.False(t, ComponentState{IsReady: true}.IsValid())
}

func TestIsRefused_CaseInsensitive(t *testing.T) {
	assert.True(t, IsRefused("Refused"))
	assert.True(t, IsRefused("refused"))
	assert.False(t, IsRefused("authorised"))
}

func TestAction_JSONRoundTrip(t *testing.T) {
	action := Action{
		Type:              ActionTypeRedirect,
		PaymentMethodType: "ideal",
		PaymentData:       "pd-1",
		URL:               "https://auth.example.com/redirect",
		Method:            "GET",
	}

	data, err := json.Marshal(action)
	require.NoError(t, err)

	var decoded Action
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, action, decoded)
}

func TestComponentEvent_Constructors(t *testing.T) {
	state := ComponentState{IsReady: true}
	e := NewStateChangedEvent(state)
	assert.Equal(t, EventStateChanged, e.Type)
	require.NotNil(t, e.State)

	e = NewSubmitEvent(state)
	assert.Equal(t, EventSubmit, e.Type)

	e = NewActionDetailsEvent(ActionComponentData{PaymentData: "pd"})
	assert.Equal(t, EventActionDetails, e.Type)
	require.NotNil(t, e.Details)
	assert.Equal(t, "pd", e.Details.PaymentData)

	e = NewErrorEvent(assert.AnError)
	assert.Equal(t, EventError, e.Type)
	assert.ErrorIs(t, e.Err, assert.AnError)
}

package delegate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/pkg/logger"
)

func recvState(t *testing.T, ch <-chan checkout.ComponentState) checkout.ComponentState {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for component state")
		return checkout.ComponentState{}
	}
}

func TestDefaultPaymentDelegate_EmitsInitialState(t *testing.T) {
	d := NewDefaultPaymentDelegate(checkout.PaymentComponentData{}, logger.Nop())
	defer d.Teardown()

	d.Initialize(context.Background())

	state := recvState(t, d.States())
	assert.True(t, state.IsReady)
	assert.False(t, state.IsInputValid)
}

func TestDefaultPaymentDelegate_UpdateInputEmits(t *testing.T) {
	d := NewDefaultPaymentDelegate(checkout.PaymentComponentData{}, logger.Nop())
	defer d.Teardown()

	d.Initialize(context.Background())
	recvState(t, d.States())

	d.UpdateInput(func(data *checkout.PaymentComponentData) {
		data.PaymentMethod = checkout.PaymentMethodDetails{"type": "scheme"}
	})

	state := recvState(t, d.States())
	assert.True(t, state.IsInputValid)
	assert.Equal(t, "scheme", state.Data.PaymentMethod.Type())
}

func TestDefaultPaymentDelegate_Submit(t *testing.T) {
	t.Run("valid state is emitted", func(t *testing.T) {
		d := NewDefaultPaymentDelegate(checkout.PaymentComponentData{
			PaymentMethod: checkout.PaymentMethodDetails{"type": "ideal"},
		}, logger.Nop())
		defer d.Teardown()
		d.Initialize(context.Background())

		d.Submit()

		state := recvState(t, d.Submits())
		assert.Equal(t, "ideal", state.Data.PaymentMethod.Type())
	})

	t.Run("invalid state is dropped", func(t *testing.T) {
		d := NewDefaultPaymentDelegate(checkout.PaymentComponentData{}, logger.Nop())
		defer d.Teardown()
		d.Initialize(context.Background())

		d.Submit()

		select {
		case <-d.Submits():
			t.Fatal("invalid state must not be submitted")
		case <-time.After(30 * time.Millisecond):
		}
	})
}

func TestDefaultPaymentDelegate_NoEmissionsAfterTeardown(t *testing.T) {
	d := NewDefaultPaymentDelegate(checkout.PaymentComponentData{
		PaymentMethod: checkout.PaymentMethodDetails{"type": "scheme"},
	}, logger.Nop())
	d.Initialize(context.Background())
	recvState(t, d.States())

	d.Teardown()
	require.NotPanics(t, d.Teardown)

	d.UpdateInput(func(data *checkout.PaymentComponentData) {
		data.ShopperReference = "ref"
	})
	d.Submit()

	select {
	case <-d.States():
		t.Fatal("state emitted after teardown")
	case <-d.Submits():
		t.Fatal("submit emitted after teardown")
	case <-time.After(30 * time.Millisecond):
	}
}

package component

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/delegate"
	"github.com/utafrali/checkout-go/pkg/logger"
	"github.com/utafrali/checkout-go/store"
)

// stubActionDelegate counts handled actions and lets tests emit details.
type stubActionDelegate struct {
	handled atomic.Int64
	details chan checkout.ActionComponentData
	errs    chan error
}

func newStubActionDelegate() *stubActionDelegate {
	return &stubActionDelegate{
		details: make(chan checkout.ActionComponentData, 1),
		errs:    make(chan error, 1),
	}
}

func (s *stubActionDelegate) Initialize(context.Context) {}

func (s *stubActionDelegate) Teardown() {}

func (s *stubActionDelegate) HandleAction(context.Context, *checkout.Action) error {
	s.handled.Add(1)
	return nil
}

func (s *stubActionDelegate) Details() <-chan checkout.ActionComponentData { return s.details }

func (s *stubActionDelegate) Errors() <-chan error { return s.errs }

// callbackSpy records host callback invocations behind a mutex.
type callbackSpy struct {
	mu      sync.Mutex
	states  []checkout.ComponentState
	submits []checkout.ComponentState
	details []checkout.ActionComponentData
	errs    []error
}

func (c *callbackSpy) OnStateChanged(state checkout.ComponentState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = append(c.states, state)
}

func (c *callbackSpy) OnSubmit(state checkout.ComponentState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submits = append(c.submits, state)
}

func (c *callbackSpy) OnAdditionalDetails(data checkout.ActionComponentData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details = append(c.details, data)
}

func (c *callbackSpy) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *callbackSpy) submitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submits)
}

func (c *callbackSpy) waitForSubmits(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.submitCount() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d submits, got %d", n, c.submitCount())
}

func newTestComponent(t *testing.T, sub delegate.ActionDelegate) (*Component, *callbackSpy) {
	t.Helper()
	payment := delegate.NewDefaultPaymentDelegate(checkout.PaymentComponentData{
		PaymentMethod: checkout.PaymentMethodDetails{"type": "scheme"},
	}, logger.Nop())
	action := delegate.NewGenericActionDelegate(map[checkout.ActionType]delegate.ActionDelegate{
		checkout.ActionTypeAwait: sub,
	}, store.NewMemory(), logger.Nop())

	callback := &callbackSpy{}
	c := New(payment, action, NewCallbackEventHandler(callback, logger.Nop()), logger.Nop())
	t.Cleanup(c.Teardown)
	return c, callback
}

func TestComponent_SubmitReachesCallback(t *testing.T) {
	c, callback := newTestComponent(t, newStubActionDelegate())
	c.Initialize(context.Background())

	c.Submit()

	callback.waitForSubmits(t, 1)
	assert.Equal(t, "scheme", callback.submits[0].Data.PaymentMethod.Type())
}

func TestComponent_SubmitIgnoredWhileActionActive(t *testing.T) {
	sub := newStubActionDelegate()
	c, callback := newTestComponent(t, sub)
	c.Initialize(context.Background())

	require.NoError(t, c.HandleAction(context.Background(), &checkout.Action{
		Type:        checkout.ActionTypeAwait,
		PaymentData: "pd-1",
	}))
	assert.Equal(t, int64(1), sub.handled.Load())

	c.Submit()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, callback.submitCount())
}

func TestComponent_SwitchNeverFlipsBack(t *testing.T) {
	sub := newStubActionDelegate()
	c, callback := newTestComponent(t, sub)
	c.Initialize(context.Background())

	require.NoError(t, c.HandleAction(context.Background(), &checkout.Action{
		Type:        checkout.ActionTypeAwait,
		PaymentData: "pd-1",
	}))

	// The action concluding does not hand the flow back to the payment
	// delegate.
	sub.details <- checkout.ActionComponentData{
		Details: map[string]any{checkout.DetailKeyPayload: "pl"},
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		callback.mu.Lock()
		n := len(callback.details)
		callback.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.Submit()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, callback.submitCount())
}

func TestComponent_CanHandleAction(t *testing.T) {
	c, _ := newTestComponent(t, newStubActionDelegate())

	assert.True(t, c.CanHandleAction(&checkout.Action{Type: checkout.ActionTypeAwait}))
	assert.False(t, c.CanHandleAction(&checkout.Action{Type: checkout.ActionTypeVoucher}))
}

func TestComponent_ActionErrorReachesCallback(t *testing.T) {
	sub := newStubActionDelegate()
	c, callback := newTestComponent(t, sub)
	c.Initialize(context.Background())

	sub.errs <- assert.AnError

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		callback.mu.Lock()
		n := len(callback.errs)
		callback.mu.Unlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("action error never reached the callback")
}

func TestComponent_TeardownIdempotent(t *testing.T) {
	c, _ := newTestComponent(t, newStubActionDelegate())
	c.Initialize(context.Background())

	require.NotPanics(t, func() {
		c.Teardown()
		c.Teardown()
	})
}

func TestComponent_NoEventsAfterTeardown(t *testing.T) {
	c, callback := newTestComponent(t, newStubActionDelegate())
	c.Initialize(context.Background())
	c.Teardown()

	c.Submit()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, callback.submitCount())
}

// blockingEventHandler stalls inside HandleEvent until the scope is
// cancelled, standing in for a slow session call.
type blockingEventHandler struct {
	entered chan struct{}
	once    sync.Once
}

func (h *blockingEventHandler) HandleEvent(ctx context.Context, event checkout.ComponentEvent, _ Flow) {
	if event.Type != checkout.EventSubmit {
		return
	}
	h.once.Do(func() { close(h.entered) })
	<-ctx.Done()
}

func TestComponent_TeardownUnblocksInFlightEvent(t *testing.T) {
	payment := delegate.NewDefaultPaymentDelegate(checkout.PaymentComponentData{
		PaymentMethod: checkout.PaymentMethodDetails{"type": "scheme"},
	}, logger.Nop())
	action := delegate.NewGenericActionDelegate(map[checkout.ActionType]delegate.ActionDelegate{
		checkout.ActionTypeAwait: newStubActionDelegate(),
	}, store.NewMemory(), logger.Nop())

	handler := &blockingEventHandler{entered: make(chan struct{})}
	c := New(payment, action, handler, logger.Nop())
	c.Initialize(context.Background())

	c.Submit()
	select {
	case <-handler.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the event handler to start")
	}

	done := make(chan struct{})
	go func() {
		c.Teardown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("teardown blocked behind an in-flight event")
	}
}

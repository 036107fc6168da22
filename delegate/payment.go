package delegate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/checkout"
)

// DefaultPaymentDelegate keeps the payment form state and emits it on every
// change. It marks the state valid once the payment method carries a type
// discriminator; method-specific validation belongs to the host form.
type DefaultPaymentDelegate struct {
	logger *slog.Logger

	mu    sync.Mutex
	state checkout.ComponentState
	ctx   context.Context
	stop  context.CancelFunc

	states  chan checkout.ComponentState
	submits chan checkout.ComponentState
}

// NewDefaultPaymentDelegate creates a payment delegate seeded with the given
// component data.
func NewDefaultPaymentDelegate(initial checkout.PaymentComponentData, logger *slog.Logger) *DefaultPaymentDelegate {
	return &DefaultPaymentDelegate{
		logger:  logger,
		state:   checkout.ComponentState{Data: initial},
		states:  make(chan checkout.ComponentState, 8),
		submits: make(chan checkout.ComponentState, 1),
	}
}

// Initialize binds the delegate to the scope and emits the initial state.
func (d *DefaultPaymentDelegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	d.ctx, d.stop = context.WithCancel(ctx)
	d.state.IsReady = true
	d.refreshValidityLocked()
	state, emitCtx := d.state, d.ctx
	d.mu.Unlock()

	emit(emitCtx, d.states, state)
}

// States emits a component state after every input change.
func (d *DefaultPaymentDelegate) States() <-chan checkout.ComponentState {
	return d.states
}

// Submits emits the state the shopper asked to pay with.
func (d *DefaultPaymentDelegate) Submits() <-chan checkout.ComponentState {
	return d.submits
}

// UpdateInput applies an input mutation and emits the resulting state.
func (d *DefaultPaymentDelegate) UpdateInput(update func(*checkout.PaymentComponentData)) {
	d.mu.Lock()
	if d.ctx == nil || d.ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	update(&d.state.Data)
	d.refreshValidityLocked()
	state, emitCtx := d.state, d.ctx
	d.mu.Unlock()

	emit(emitCtx, d.states, state)
}

// Submit emits the current state on the submit stream. Invalid states are
// dropped with a warning so the host can surface form errors instead.
func (d *DefaultPaymentDelegate) Submit() {
	d.mu.Lock()
	if d.ctx == nil || d.ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	state, emitCtx := d.state, d.ctx
	d.mu.Unlock()

	if !state.IsValid() {
		d.logger.Warn("submit ignored, component state is not valid",
			slog.Bool("input_valid", state.IsInputValid),
			slog.Bool("ready", state.IsReady))
		return
	}
	emit(emitCtx, d.submits, state)
}

// Teardown ends the scope. Safe to call repeatedly.
func (d *DefaultPaymentDelegate) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
}

func (d *DefaultPaymentDelegate) refreshValidityLocked() {
	d.state.IsInputValid = d.state.Data.PaymentMethod.Type() != ""
}

// Package component assembles the payment and action delegates behind one
// host-facing façade and routes their events through an event handler.
package component

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/delegate"
	"github.com/utafrali/checkout-go/observer"
)

// Flow is the surface an event handler can drive on the component while
// processing an event.
type Flow interface {
	HandleAction(ctx context.Context, action *checkout.Action) error
}

// EventHandler processes every component event. Implementations decide what
// reaches the host and which network calls to run.
type EventHandler interface {
	HandleEvent(ctx context.Context, event checkout.ComponentEvent, flow Flow)
}

// Component is the host-facing façade over one payment flow. Once an action
// arrives the action delegate becomes the active one; the switch never flips
// back for the lifetime of the component.
type Component struct {
	payment delegate.PaymentDelegate
	action  *delegate.GenericActionDelegate
	handler EventHandler
	events  *observer.Repository
	logger  *slog.Logger

	mu   sync.Mutex
	ctx  context.Context
	stop context.CancelFunc
	torn bool

	actionActive atomic.Bool
}

// New assembles a component from its delegates and event handler.
func New(payment delegate.PaymentDelegate, action *delegate.GenericActionDelegate, handler EventHandler, logger *slog.Logger) *Component {
	return &Component{
		payment: payment,
		action:  action,
		handler: handler,
		events:  observer.NewRepository(logger),
		logger:  logger,
	}
}

// Initialize binds the component and its delegates to the scope and starts
// routing delegate emissions through the event handler.
func (c *Component) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.ctx, c.stop = context.WithCancel(ctx)
	scope := c.ctx
	c.mu.Unlock()

	c.payment.Initialize(scope)
	c.action.Initialize(scope)

	c.events.AddObservers(scope, observer.Streams{
		States:  c.payment.States(),
		Submits: c.payment.Submits(),
		Details: c.action.Details(),
		Errors:  c.action.Errors(),
	}, func(event checkout.ComponentEvent) {
		c.handler.HandleEvent(scope, event, c)
	})
}

// Submit asks the payment delegate to submit the current state. While an
// action is being handled the call is ignored; the secondary step owns the
// flow then.
func (c *Component) Submit() {
	if c.actionActive.Load() {
		c.logger.Info("submit ignored while an action is being handled")
		return
	}
	c.payment.Submit()
}

// UpdateInput applies an input mutation on the payment delegate.
func (c *Component) UpdateInput(update func(*checkout.PaymentComponentData)) {
	c.payment.UpdateInput(update)
}

// CanHandleAction reports whether the component owns a delegate for the
// action's type.
func (c *Component) CanHandleAction(action *checkout.Action) bool {
	return c.action.CanHandle(action)
}

// HandleAction hands an action to the action delegate. The action delegate
// stays the active one from here on.
func (c *Component) HandleAction(ctx context.Context, action *checkout.Action) error {
	c.actionActive.Store(true)
	return c.action.HandleAction(ctx, action)
}

// HandleRedirectReturn forwards the URL the shopper came back on. Always
// routed to the action delegate regardless of the switch.
func (c *Component) HandleRedirectReturn(ctx context.Context, returnURL string) error {
	return c.action.HandleRedirectReturn(ctx, returnURL)
}

// RefreshStatus forces an immediate status check on a polling action.
func (c *Component) RefreshStatus() {
	c.action.RefreshStatus()
}

// Teardown stops event routing and tears down both delegates. Safe to call
// repeatedly.
func (c *Component) Teardown() {
	c.mu.Lock()
	if c.torn {
		c.mu.Unlock()
		return
	}
	c.torn = true
	stop := c.stop
	c.mu.Unlock()

	// Cancel the scope first so in-flight session calls abort before
	// RemoveObservers waits on the forward goroutines.
	if stop != nil {
		stop()
	}
	c.action.Teardown()
	c.payment.Teardown()
	c.events.RemoveObservers()
}

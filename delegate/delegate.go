// Package delegate contains the flow logic of the checkout component. A
// payment delegate collects and submits payment data; action delegates run
// the secondary steps a processor response can demand.
package delegate

import (
	"context"

	"github.com/utafrali/checkout-go/checkout"
)

// Delegate is the common lifecycle of every flow delegate. Initialize binds
// the delegate to a scope; Teardown releases everything it started and is
// safe to call more than once.
type Delegate interface {
	Initialize(ctx context.Context)
	Teardown()
}

// PaymentDelegate collects payment data and emits submittable states.
type PaymentDelegate interface {
	Delegate

	// States emits a new component state after every input change.
	States() <-chan checkout.ComponentState
	// Submits emits the state the shopper asked to pay with.
	Submits() <-chan checkout.ComponentState

	UpdateInput(update func(*checkout.PaymentComponentData))
	Submit()
}

// ActionDelegate performs the secondary step demanded by an action and emits
// either a detail payload to submit back or an error.
type ActionDelegate interface {
	Delegate

	HandleAction(ctx context.Context, action *checkout.Action) error
	Details() <-chan checkout.ActionComponentData
	Errors() <-chan error
}

// RedirectReturnHandler is implemented by action delegates that consume the
// URL the shopper came back on.
type RedirectReturnHandler interface {
	HandleRedirectReturn(ctx context.Context, returnURL string) error
}

// StatusRefresher is implemented by polling delegates that can force an
// immediate status check, typically when the shopper claims to have paid.
type StatusRefresher interface {
	RefreshStatus()
}

// SDKResultHandler is implemented by delegates whose secondary step runs in
// a native vendor SDK on the host side.
type SDKResultHandler interface {
	HandleSDKResult(ctx context.Context, details map[string]any) error
}

// emit delivers v on ch unless the scope ended first.
func emit[T any](ctx context.Context, ch chan<- T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}

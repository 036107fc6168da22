// Package observer binds delegate event streams to a single host callback for
// exactly the window during which the host declares itself observing.
package observer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/checkout"
)

// EventCallback receives every wrapped emission of the bound streams.
type EventCallback func(checkout.ComponentEvent)

// Streams carries the delegate channels a repository can bind. Nil channels
// are skipped.
type Streams struct {
	States  <-chan checkout.ComponentState
	Submits <-chan checkout.ComponentState
	Details <-chan checkout.ActionComponentData
	Errors  <-chan error
}

// Repository owns at most one active binding set. Calling AddObservers again
// replaces the previous bindings instead of accumulating them; emissions stop
// reaching the callback the moment the observing scope is cancelled, even if
// the underlying streams keep producing.
type Repository struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewRepository creates an empty repository.
func NewRepository(logger *slog.Logger) *Repository {
	return &Repository{logger: logger}
}

// AddObservers tears down any previous binding set, then forwards each
// stream's emissions, wrapped in a tagged ComponentEvent, to callback until
// scope is cancelled or the stream closes. Per-stream ordering is preserved;
// interleaving across streams is not.
func (r *Repository) AddObservers(scope context.Context, streams Streams, callback EventCallback) {
	r.RemoveObservers()

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithCancel(scope)
	r.cancel = cancel

	if streams.States != nil {
		r.forward(ctx, func() (checkout.ComponentEvent, bool) {
			v, ok := recv(ctx, streams.States)
			return checkout.NewStateChangedEvent(v), ok
		}, callback)
	}
	if streams.Submits != nil {
		r.forward(ctx, func() (checkout.ComponentEvent, bool) {
			v, ok := recv(ctx, streams.Submits)
			return checkout.NewSubmitEvent(v), ok
		}, callback)
	}
	if streams.Details != nil {
		r.forward(ctx, func() (checkout.ComponentEvent, bool) {
			v, ok := recv(ctx, streams.Details)
			return checkout.NewActionDetailsEvent(v), ok
		}, callback)
	}
	if streams.Errors != nil {
		r.forward(ctx, func() (checkout.ComponentEvent, bool) {
			v, ok := recv(ctx, streams.Errors)
			return checkout.NewErrorEvent(v), ok
		}, callback)
	}
}

// RemoveObservers cancels every subscription and clears the binding set.
// It is idempotent.
func (r *Repository) RemoveObservers() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
}

// forward pumps one stream on its own goroutine so per-stream order holds.
func (r *Repository) forward(ctx context.Context, next func() (checkout.ComponentEvent, bool), callback EventCallback) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			event, ok := next()
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			callback(event)
		}
	}()
}

// recv receives one value unless the scope ends first.
func recv[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false
	case v, ok := <-ch:
		if !ok {
			return zero, false
		}
		return v, true
	}
}

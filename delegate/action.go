package delegate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
	"github.com/utafrali/checkout-go/store"
)

// DefaultActionStoreKey is where the pending action is persisted so a host
// process recreation can resume an interrupted secondary step.
const DefaultActionStoreKey = "checkout:pending_action"

// GenericActionDelegate owns one delegate per action type and dispatches
// each incoming action to the matching one. It persists the pending action
// and restores it on initialization, and merges the sub-delegates' streams
// into a single pair.
type GenericActionDelegate struct {
	logger    *slog.Logger
	state     store.Store
	stateKey  string
	delegates map[checkout.ActionType]ActionDelegate

	mu     sync.Mutex
	ctx    context.Context
	stop   context.CancelFunc
	active ActionDelegate

	details chan checkout.ActionComponentData
	errs    chan error
}

// NewGenericActionDelegate wires the given sub-delegates behind one
// dispatching front. The state store keeps the pending action across host
// process recreations; pass a memory store when persistence is not wanted.
func NewGenericActionDelegate(delegates map[checkout.ActionType]ActionDelegate, state store.Store, logger *slog.Logger) *GenericActionDelegate {
	return &GenericActionDelegate{
		logger:    logger,
		state:     state,
		stateKey:  DefaultActionStoreKey,
		delegates: delegates,
		details:   make(chan checkout.ActionComponentData, 1),
		errs:      make(chan error, 1),
	}
}

// WithStateKey changes the persistence key, for hosts running several
// components against one store.
func (d *GenericActionDelegate) WithStateKey(key string) *GenericActionDelegate {
	d.stateKey = key
	return d
}

// Initialize binds every sub-delegate to the scope, starts merging their
// streams and restores a persisted pending action if one exists.
func (d *GenericActionDelegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	d.ctx, d.stop = context.WithCancel(ctx)
	scope := d.ctx
	d.mu.Unlock()

	for _, sub := range d.delegates {
		sub.Initialize(scope)
		go d.forwardDetails(scope, sub.Details())
		go d.forwardErrors(scope, sub.Errors())
	}

	d.restore(scope)
}

// Details merges the detail emissions of every sub-delegate.
func (d *GenericActionDelegate) Details() <-chan checkout.ActionComponentData {
	return d.details
}

// Errors merges the error emissions of every sub-delegate.
func (d *GenericActionDelegate) Errors() <-chan error {
	return d.errs
}

// CanHandle reports whether a sub-delegate exists for the action's type.
func (d *GenericActionDelegate) CanHandle(action *checkout.Action) bool {
	if action == nil {
		return false
	}
	_, ok := d.delegates[action.Type]
	return ok
}

// HandleAction persists the action and dispatches it to the sub-delegate
// owning its type.
func (d *GenericActionDelegate) HandleAction(ctx context.Context, action *checkout.Action) error {
	if action == nil {
		return checkouterrors.UnsupportedAction("")
	}
	sub, ok := d.delegates[action.Type]
	if !ok {
		return checkouterrors.UnsupportedAction(string(action.Type))
	}

	d.persist(ctx, action)

	d.mu.Lock()
	d.active = sub
	d.mu.Unlock()

	d.logger.Info("handling action", slog.String("action_type", string(action.Type)))
	return sub.HandleAction(ctx, action)
}

// HandleRedirectReturn forwards the return URL to the active sub-delegate.
func (d *GenericActionDelegate) HandleRedirectReturn(ctx context.Context, returnURL string) error {
	d.mu.Lock()
	active := d.active
	d.mu.Unlock()

	handler, ok := active.(RedirectReturnHandler)
	if !ok {
		return checkouterrors.RedirectParse("no active delegate accepts redirect returns")
	}
	return handler.HandleRedirectReturn(ctx, returnURL)
}

// RefreshStatus forwards to the active sub-delegate when it polls.
func (d *GenericActionDelegate) RefreshStatus() {
	d.mu.Lock()
	active := d.active
	d.mu.Unlock()

	if refresher, ok := active.(StatusRefresher); ok {
		refresher.RefreshStatus()
	}
}

// Teardown stops the merge and tears down every sub-delegate. Safe to call
// repeatedly.
func (d *GenericActionDelegate) Teardown() {
	d.mu.Lock()
	if d.stop != nil {
		d.stop()
	}
	d.active = nil
	d.mu.Unlock()

	for _, sub := range d.delegates {
		sub.Teardown()
	}
}

func (d *GenericActionDelegate) forwardDetails(ctx context.Context, in <-chan checkout.ActionComponentData) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-in:
			if !ok {
				return
			}
			// The secondary step concluded; the persisted action is stale.
			d.clear(ctx)
			emit(ctx, d.details, data)
		}
	}
}

func (d *GenericActionDelegate) forwardErrors(ctx context.Context, in <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-in:
			if !ok {
				return
			}
			d.clear(ctx)
			emit(ctx, d.errs, err)
		}
	}
}

func (d *GenericActionDelegate) persist(ctx context.Context, action *checkout.Action) {
	payload, err := json.Marshal(action)
	if err != nil {
		d.logger.Warn("pending action could not be encoded", slog.String("error", err.Error()))
		return
	}
	if err := d.state.Set(ctx, d.stateKey, string(payload)); err != nil {
		d.logger.Warn("pending action could not be persisted", slog.String("error", err.Error()))
	}
}

func (d *GenericActionDelegate) restore(ctx context.Context) {
	payload, ok, err := d.state.Get(ctx, d.stateKey)
	if err != nil {
		d.logger.Warn("pending action could not be read", slog.String("error", err.Error()))
		return
	}
	if !ok {
		return
	}

	var action checkout.Action
	if err := json.Unmarshal([]byte(payload), &action); err != nil {
		d.logger.Warn("persisted pending action is corrupt", slog.String("error", err.Error()))
		d.clear(ctx)
		return
	}

	d.logger.Info("resuming persisted action", slog.String("action_type", string(action.Type)))
	if err := d.HandleAction(ctx, &action); err != nil {
		emit(ctx, d.errs, err)
	}
}

func (d *GenericActionDelegate) clear(ctx context.Context) {
	if err := d.state.Delete(ctx, d.stateKey); err != nil {
		d.logger.Warn("pending action could not be cleared", slog.String("error", err.Error()))
	}
}

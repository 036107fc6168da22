package delegate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
)

// ThreeDS2Handler is the host port that runs the 3-D Secure 2 fingerprint or
// challenge for the given action token and returns the opaque transaction
// result to submit back.
type ThreeDS2Handler interface {
	Authenticate(ctx context.Context, subtype, token string) (string, error)
}

// ThreeDS2HandlerFunc adapts a function to the ThreeDS2Handler interface.
type ThreeDS2HandlerFunc func(ctx context.Context, subtype, token string) (string, error)

// Authenticate implements ThreeDS2Handler.
func (f ThreeDS2HandlerFunc) Authenticate(ctx context.Context, subtype, token string) (string, error) {
	return f(ctx, subtype, token)
}

// ThreeDS2Delegate delegates the 3-D Secure 2 authentication to a host-side
// handler and wraps its result into a submittable payload.
type ThreeDS2Delegate struct {
	handler ThreeDS2Handler
	logger  *slog.Logger

	mu   sync.Mutex
	ctx  context.Context
	stop context.CancelFunc

	details chan checkout.ActionComponentData
	errs    chan error
}

// NewThreeDS2Delegate creates a 3-D Secure 2 delegate around the host
// handler.
func NewThreeDS2Delegate(handler ThreeDS2Handler, logger *slog.Logger) *ThreeDS2Delegate {
	return &ThreeDS2Delegate{
		handler: handler,
		logger:  logger,
		details: make(chan checkout.ActionComponentData, 1),
		errs:    make(chan error, 1),
	}
}

// Initialize binds the delegate to the scope.
func (d *ThreeDS2Delegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx, d.stop = context.WithCancel(ctx)
}

// Details emits the authentication result as a submittable payload.
func (d *ThreeDS2Delegate) Details() <-chan checkout.ActionComponentData {
	return d.details
}

// Errors emits authentication failures.
func (d *ThreeDS2Delegate) Errors() <-chan error {
	return d.errs
}

// HandleAction runs the authentication asynchronously and emits its result.
func (d *ThreeDS2Delegate) HandleAction(_ context.Context, action *checkout.Action) error {
	if action.Type != checkout.ActionTypeThreeDS2 {
		return checkouterrors.UnsupportedAction(string(action.Type))
	}
	if action.Token == "" {
		return checkouterrors.Serialization("threeDS2 action carries no token", nil)
	}

	d.mu.Lock()
	runCtx := d.ctx
	d.mu.Unlock()
	if runCtx == nil {
		return checkouterrors.Wrap("threeDS2 delegate is not initialized", nil)
	}

	d.logger.Info("starting 3ds2 authentication", slog.String("subtype", action.Subtype))

	go func() {
		result, err := d.handler.Authenticate(runCtx, action.Subtype, action.Token)
		if err != nil {
			emit[error](runCtx, d.errs, checkouterrors.Wrap("3ds2 authentication failed", err))
			return
		}
		emit(runCtx, d.details, checkout.ActionComponentData{
			Details:     map[string]any{checkout.DetailKeyThreeDSResult: result},
			PaymentData: action.PaymentData,
		})
	}()
	return nil
}

// Teardown ends the scope. Safe to call repeatedly.
func (d *ThreeDS2Delegate) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
}

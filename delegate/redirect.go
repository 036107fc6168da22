package delegate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
	"github.com/utafrali/checkout-go/redirect"
)

// RedirectActionDelegate sends the shopper to an external page and turns the
// return URL back into a submittable detail payload.
type RedirectActionDelegate struct {
	dispatcher *redirect.Dispatcher
	logger     *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	stop        context.CancelFunc
	paymentData string

	details chan checkout.ActionComponentData
	errs    chan error
}

// NewRedirectActionDelegate creates a redirect delegate launching through
// the given dispatcher.
func NewRedirectActionDelegate(dispatcher *redirect.Dispatcher, logger *slog.Logger) *RedirectActionDelegate {
	return &RedirectActionDelegate{
		dispatcher: dispatcher,
		logger:     logger,
		details:    make(chan checkout.ActionComponentData, 1),
		errs:       make(chan error, 1),
	}
}

// Initialize binds the delegate to the scope.
func (d *RedirectActionDelegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx, d.stop = context.WithCancel(ctx)
}

// Details emits the parsed return payload.
func (d *RedirectActionDelegate) Details() <-chan checkout.ActionComponentData {
	return d.details
}

// Errors emits launch and parse failures.
func (d *RedirectActionDelegate) Errors() <-chan error {
	return d.errs
}

// HandleAction remembers the continuation token and launches the redirect.
func (d *RedirectActionDelegate) HandleAction(ctx context.Context, action *checkout.Action) error {
	if action.Type != checkout.ActionTypeRedirect {
		return checkouterrors.UnsupportedAction(string(action.Type))
	}

	d.mu.Lock()
	d.paymentData = action.PaymentData
	d.mu.Unlock()

	return d.dispatcher.Launch(ctx, action)
}

// HandleRedirectReturn parses the URL the shopper came back on and emits the
// resulting details paired with the remembered continuation token.
func (d *RedirectActionDelegate) HandleRedirectReturn(ctx context.Context, returnURL string) error {
	details, err := redirect.ParseReturnURL(returnURL)
	if err != nil {
		return err
	}

	d.mu.Lock()
	paymentData := d.paymentData
	emitCtx := d.ctx
	d.mu.Unlock()
	if emitCtx == nil {
		emitCtx = ctx
	}

	d.logger.Info("redirect return parsed", slog.Int("detail_keys", len(details)))
	emit(emitCtx, d.details, checkout.ActionComponentData{
		Details:     details,
		PaymentData: paymentData,
	})
	return nil
}

// Teardown ends the scope. Safe to call repeatedly.
func (d *RedirectActionDelegate) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
}

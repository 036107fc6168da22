package delegate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
	"github.com/utafrali/checkout-go/status"
)

// awaitMaxDuration bounds how long an await action is polled before the
// delegate gives up silently.
const awaitMaxDuration = 15 * time.Minute

// AwaitDelegate completes actions that finish asynchronously on the
// processor side, polling the status endpoint until a final result arrives.
type AwaitDelegate struct {
	poller *status.Poller
	logger *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	stop        context.CancelFunc
	paymentData string

	details chan checkout.ActionComponentData
	errs    chan error
}

// NewAwaitDelegate creates an await delegate polling through the given
// poller.
func NewAwaitDelegate(poller *status.Poller, logger *slog.Logger) *AwaitDelegate {
	return &AwaitDelegate{
		poller:  poller,
		logger:  logger,
		details: make(chan checkout.ActionComponentData, 1),
		errs:    make(chan error, 1),
	}
}

// Initialize binds the delegate to the scope.
func (d *AwaitDelegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx, d.stop = context.WithCancel(ctx)
}

// Details emits the completion payload once the status turns final.
func (d *AwaitDelegate) Details() <-chan checkout.ActionComponentData {
	return d.details
}

// Errors emits terminal failures of the await step.
func (d *AwaitDelegate) Errors() <-chan error {
	return d.errs
}

// HandleAction starts polling for the action's payment data token.
func (d *AwaitDelegate) HandleAction(ctx context.Context, action *checkout.Action) error {
	if action.Type != checkout.ActionTypeAwait {
		return checkouterrors.UnsupportedAction(string(action.Type))
	}
	if action.PaymentData == "" {
		return checkouterrors.MissingPaymentData()
	}

	d.mu.Lock()
	if d.ctx == nil {
		d.mu.Unlock()
		return checkouterrors.Wrap("await delegate is not initialized", nil)
	}
	d.paymentData = action.PaymentData
	pollCtx := d.ctx
	d.mu.Unlock()

	d.logger.Info("awaiting asynchronous payment completion",
		slog.String("payment_method", action.PaymentMethodType))

	results := d.poller.Poll(pollCtx, action.PaymentData, awaitMaxDuration)
	go d.consume(pollCtx, action.PaymentData, results)
	return nil
}

// RefreshStatus forces an immediate status check.
func (d *AwaitDelegate) RefreshStatus() {
	d.mu.Lock()
	paymentData := d.paymentData
	d.mu.Unlock()
	if paymentData != "" {
		d.poller.RefreshStatus(paymentData)
	}
}

// Teardown stops polling. Safe to call repeatedly.
func (d *AwaitDelegate) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
}

func (d *AwaitDelegate) consume(ctx context.Context, paymentData string, results <-chan status.Result) {
	for r := range results {
		if r.Err != nil {
			// A failed status call is fatal for this action instance.
			d.logger.Error("status poll failed", slog.String("error", r.Err.Error()))
			d.poller.Stop()
			emit[error](ctx, d.errs, checkouterrors.Wrap("error while polling payment status", r.Err))
			return
		}
		if !r.Response.IsFinal() {
			d.logger.Debug("payment still in progress",
				slog.String("result_code", r.Response.ResultCode))
			continue
		}
		d.deliver(ctx, paymentData, r.Response)
		return
	}
}

// deliver turns a final status into a detail payload, or an error when the
// processor produced no payload to submit.
func (d *AwaitDelegate) deliver(ctx context.Context, paymentData string, resp *checkout.StatusResponse) {
	if resp.Payload == "" {
		emit[error](ctx, d.errs, checkouterrors.PaymentIncomplete(resp.ResultCode))
		return
	}
	emit(ctx, d.details, checkout.ActionComponentData{
		Details:     map[string]any{checkout.DetailKeyPayload: resp.Payload},
		PaymentData: paymentData,
	})
}

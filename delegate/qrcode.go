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

// Polling windows per QR payment method. Short-lived QR codes expire on the
// processor side well before the generic window.
const (
	qrDefaultMaxDuration = 15 * time.Minute
	qrPayNowMaxDuration  = 3 * time.Minute
	qrUPIMaxDuration     = 5 * time.Minute
)

const (
	methodPayNow = "paynow"
	methodUPIQR  = "upi_qr"
)

// QRCodeDelegate shows a scannable code through the host and polls for the
// scan result. The code itself is exposed via QRCodeData for the host to
// render.
type QRCodeDelegate struct {
	poller *status.Poller
	logger *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	stop        context.CancelFunc
	paymentData string
	qrCodeData  string

	details chan checkout.ActionComponentData
	errs    chan error
}

// NewQRCodeDelegate creates a QR code delegate polling through the given
// poller.
func NewQRCodeDelegate(poller *status.Poller, logger *slog.Logger) *QRCodeDelegate {
	return &QRCodeDelegate{
		poller:  poller,
		logger:  logger,
		details: make(chan checkout.ActionComponentData, 1),
		errs:    make(chan error, 1),
	}
}

// Initialize binds the delegate to the scope.
func (d *QRCodeDelegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx, d.stop = context.WithCancel(ctx)
}

// Details emits the completion payload once the code was scanned and paid.
func (d *QRCodeDelegate) Details() <-chan checkout.ActionComponentData {
	return d.details
}

// Errors emits terminal failures of the QR step.
func (d *QRCodeDelegate) Errors() <-chan error {
	return d.errs
}

// QRCodeData returns the code payload of the action being handled, empty
// before any action arrived.
func (d *QRCodeDelegate) QRCodeData() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.qrCodeData
}

// HandleAction starts polling for the action's payment data token with a
// window fitted to the payment method.
func (d *QRCodeDelegate) HandleAction(ctx context.Context, action *checkout.Action) error {
	if action.Type != checkout.ActionTypeQRCode {
		return checkouterrors.UnsupportedAction(string(action.Type))
	}
	if action.PaymentData == "" {
		return checkouterrors.MissingPaymentData()
	}

	d.mu.Lock()
	if d.ctx == nil {
		d.mu.Unlock()
		return checkouterrors.Wrap("qr code delegate is not initialized", nil)
	}
	d.paymentData = action.PaymentData
	d.qrCodeData = action.QRCodeData
	pollCtx := d.ctx
	d.mu.Unlock()

	window := maxDurationFor(action.PaymentMethodType)
	d.logger.Info("polling for qr code scan",
		slog.String("payment_method", action.PaymentMethodType),
		slog.Duration("window", window))

	results := d.poller.Poll(pollCtx, action.PaymentData, window)
	go d.consume(pollCtx, action.PaymentData, results)
	return nil
}

// RefreshStatus forces an immediate status check.
func (d *QRCodeDelegate) RefreshStatus() {
	d.mu.Lock()
	paymentData := d.paymentData
	d.mu.Unlock()
	if paymentData != "" {
		d.poller.RefreshStatus(paymentData)
	}
}

// Teardown stops polling. Safe to call repeatedly.
func (d *QRCodeDelegate) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
}

func (d *QRCodeDelegate) consume(ctx context.Context, paymentData string, results <-chan status.Result) {
	for r := range results {
		if r.Err != nil {
			// A failed status call is fatal for this action instance.
			d.logger.Error("status poll failed", slog.String("error", r.Err.Error()))
			d.poller.Stop()
			emit[error](ctx, d.errs, checkouterrors.Wrap("error while polling payment status", r.Err))
			return
		}
		if !r.Response.IsFinal() {
			continue
		}
		if r.Response.Payload == "" {
			emit[error](ctx, d.errs, checkouterrors.PaymentIncomplete(r.Response.ResultCode))
			return
		}
		emit(ctx, d.details, checkout.ActionComponentData{
			Details:     map[string]any{checkout.DetailKeyPayload: r.Response.Payload},
			PaymentData: paymentData,
		})
		return
	}
}

func maxDurationFor(paymentMethodType string) time.Duration {
	switch paymentMethodType {
	case methodPayNow:
		return qrPayNowMaxDuration
	case methodUPIQR:
		return qrUPIMaxDuration
	default:
		return qrDefaultMaxDuration
	}
}

package delegate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
)

// SDKLauncher is the host port that hands the vendor payload to a native
// SDK, for example WeChat Pay.
type SDKLauncher interface {
	Launch(ctx context.Context, sdkData map[string]string) error
}

// SDKLauncherFunc adapts a function to the SDKLauncher interface.
type SDKLauncherFunc func(ctx context.Context, sdkData map[string]string) error

// Launch implements SDKLauncher.
func (f SDKLauncherFunc) Launch(ctx context.Context, sdkData map[string]string) error {
	return f(ctx, sdkData)
}

// SDKDelegate runs actions whose secondary step lives in a vendor SDK on the
// host side. The host reports the SDK outcome through HandleSDKResult.
type SDKDelegate struct {
	launcher SDKLauncher
	logger   *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	stop        context.CancelFunc
	paymentData string

	details chan checkout.ActionComponentData
	errs    chan error
}

// NewSDKDelegate creates an SDK delegate launching through the given port.
func NewSDKDelegate(launcher SDKLauncher, logger *slog.Logger) *SDKDelegate {
	return &SDKDelegate{
		launcher: launcher,
		logger:   logger,
		details:  make(chan checkout.ActionComponentData, 1),
		errs:     make(chan error, 1),
	}
}

// Initialize binds the delegate to the scope.
func (d *SDKDelegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx, d.stop = context.WithCancel(ctx)
}

// Details emits the SDK outcome as a submittable payload.
func (d *SDKDelegate) Details() <-chan checkout.ActionComponentData {
	return d.details
}

// Errors emits launch failures.
func (d *SDKDelegate) Errors() <-chan error {
	return d.errs
}

// HandleAction remembers the continuation token and hands the vendor payload
// to the native SDK.
func (d *SDKDelegate) HandleAction(ctx context.Context, action *checkout.Action) error {
	if action.Type != checkout.ActionTypeSDK {
		return checkouterrors.UnsupportedAction(string(action.Type))
	}
	if len(action.SDKData) == 0 {
		return checkouterrors.Serialization("sdk action carries no sdkData", nil)
	}

	d.mu.Lock()
	d.paymentData = action.PaymentData
	d.mu.Unlock()

	d.logger.Info("launching native sdk",
		slog.String("payment_method", action.PaymentMethodType))
	if err := d.launcher.Launch(ctx, action.SDKData); err != nil {
		return checkouterrors.Wrap("native sdk could not be launched", err)
	}
	return nil
}

// HandleSDKResult emits the detail payload the vendor SDK produced.
func (d *SDKDelegate) HandleSDKResult(ctx context.Context, details map[string]any) error {
	if len(details) == 0 {
		return checkouterrors.Serialization("sdk result carries no details", nil)
	}

	d.mu.Lock()
	paymentData := d.paymentData
	emitCtx := d.ctx
	d.mu.Unlock()
	if emitCtx == nil {
		emitCtx = ctx
	}

	emit(emitCtx, d.details, checkout.ActionComponentData{
		Details:     details,
		PaymentData: paymentData,
	})
	return nil
}

// Teardown ends the scope. Safe to call repeatedly.
func (d *SDKDelegate) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
}

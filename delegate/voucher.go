package delegate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
)

// VoucherDelegate presents a payable voucher. The flow completes outside the
// component (the shopper pays at a till or bank), so the delegate never
// emits details; it only holds the voucher fields for the host to render.
type VoucherDelegate struct {
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	stop   context.CancelFunc
	action *checkout.Action

	details chan checkout.ActionComponentData
	errs    chan error
}

// NewVoucherDelegate creates a voucher delegate.
func NewVoucherDelegate(logger *slog.Logger) *VoucherDelegate {
	return &VoucherDelegate{
		logger:  logger,
		details: make(chan checkout.ActionComponentData, 1),
		errs:    make(chan error, 1),
	}
}

// Initialize binds the delegate to the scope.
func (d *VoucherDelegate) Initialize(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ctx, d.stop = context.WithCancel(ctx)
}

// Details never emits for vouchers; the stream exists so the delegate can be
// observed uniformly.
func (d *VoucherDelegate) Details() <-chan checkout.ActionComponentData {
	return d.details
}

// Errors emits handling failures.
func (d *VoucherDelegate) Errors() <-chan error {
	return d.errs
}

// Voucher returns the action being presented, nil before any arrived.
func (d *VoucherDelegate) Voucher() *checkout.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.action
}

// HandleAction stores the voucher for rendering.
func (d *VoucherDelegate) HandleAction(_ context.Context, action *checkout.Action) error {
	if action.Type != checkout.ActionTypeVoucher {
		return checkouterrors.UnsupportedAction(string(action.Type))
	}

	d.mu.Lock()
	d.action = action
	d.mu.Unlock()

	d.logger.Info("voucher issued",
		slog.String("payment_method", action.PaymentMethodType),
		slog.String("reference", action.Reference))
	return nil
}

// Teardown ends the scope. Safe to call repeatedly.
func (d *VoucherDelegate) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
}

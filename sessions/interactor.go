package sessions

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/checkout-go/api"
	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
)

// TakeoverCallback lets the host intercept session calls. Returning true
// means the host ran the call itself; from that moment the whole flow is
// taken over and every later interception must also return true.
type TakeoverCallback interface {
	OnSubmit(state checkout.ComponentState) bool
	OnAdditionalDetails(data checkout.ActionComponentData) bool
}

// BalanceTakeover optionally intercepts balance checks.
type BalanceTakeover interface {
	OnBalanceCheck(method checkout.PaymentMethodDetails) bool
}

// OrderTakeover optionally intercepts order creation and cancellation.
type OrderTakeover interface {
	OnOrderRequest() bool
	OnOrderCancel(order *checkout.Order) bool
}

// StoredPaymentTakeover optionally intercepts stored payment method removal.
type StoredPaymentTakeover interface {
	OnRemoveStoredPaymentMethod(storedPaymentMethodID string) bool
}

// Interactor runs the session flow. It owns the session model, replaces the
// session data after every call and enforces the taken-over contract: once
// the host handles any call itself, it must handle all of them.
type Interactor struct {
	repo     Repository
	takeover TakeoverCallback
	logger   *slog.Logger

	mu        sync.Mutex
	model     checkout.SessionModel
	takenOver bool

	onSessionChanged func(model checkout.SessionModel)
}

// NewInteractor creates an interactor for the given session. The takeover
// callback may be nil when the host never intercepts.
func NewInteractor(repo Repository, model checkout.SessionModel, takeover TakeoverCallback, logger *slog.Logger) *Interactor {
	return &Interactor{
		repo:     repo,
		takeover: takeover,
		logger:   logger,
		model:    model,
	}
}

// SetOnSessionChanged registers a hook invoked with the new model whenever
// the session data is replaced. Used for persistence.
func (i *Interactor) SetOnSessionChanged(fn func(model checkout.SessionModel)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onSessionChanged = fn
}

// SessionModel returns the current session model.
func (i *Interactor) SessionModel() checkout.SessionModel {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.model
}

// IsFlowTakenOver reports whether the host took the flow over.
func (i *Interactor) IsFlowTakenOver() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.takenOver
}

// RestoreSessionData replaces the session data, typically with a persisted
// value after a host process recreation.
func (i *Interactor) RestoreSessionData(sessionData string) {
	i.updateSessionData(sessionData)
}

// Setup fetches the session configuration. Setup is never intercepted.
func (i *Interactor) Setup(ctx context.Context) (*api.SessionSetupResponse, error) {
	resp, err := i.repo.Setup(ctx, i.SessionModel())
	if err != nil {
		return nil, checkouterrors.Wrap("session setup failed", err)
	}
	i.updateSessionData(resp.SessionData)
	return resp, nil
}

// SubmitPayment submits the component state through the session, unless the
// host takes the call over.
func (i *Interactor) SubmitPayment(ctx context.Context, state checkout.ComponentState) PaymentResult {
	handled := i.takeover != nil && i.takeover.OnSubmit(state)
	taken, err := i.gate("OnSubmit", handled)
	if err != nil {
		return PaymentResult{Kind: ResultError, Err: err}
	}
	if taken {
		return PaymentResult{Kind: ResultTakenOver}
	}

	model := i.SessionModel()
	resp, err := i.repo.SubmitPayment(ctx, model, state.Data)
	if err != nil {
		return PaymentResult{Kind: ResultError, Err: checkouterrors.Wrap("payments call failed", err)}
	}
	i.updateSessionData(resp.SessionData)

	result := &checkout.SessionPaymentResult{
		SessionID:     model.ID,
		SessionResult: resp.SessionResult,
		SessionData:   resp.SessionData,
		ResultCode:    resp.ResultCode,
		Order:         resp.Order,
	}
	switch {
	case checkout.IsRefused(resp.ResultCode) && resp.Order.IsNonFullyPaid():
		return PaymentResult{Kind: ResultRefusedPartialPayment, Result: result}
	case resp.Action != nil:
		return PaymentResult{Kind: ResultAction, Action: resp.Action}
	case resp.Order.IsNonFullyPaid():
		return PaymentResult{Kind: ResultNotFullyPaidOrder, Result: result}
	default:
		return PaymentResult{Kind: ResultFinished, Result: result}
	}
}

// SubmitDetails submits the outcome of a secondary action step, unless the
// host takes the call over.
func (i *Interactor) SubmitDetails(ctx context.Context, data checkout.ActionComponentData) DetailsResult {
	handled := i.takeover != nil && i.takeover.OnAdditionalDetails(data)
	taken, err := i.gate("OnAdditionalDetails", handled)
	if err != nil {
		return DetailsResult{Kind: ResultError, Err: err}
	}
	if taken {
		return DetailsResult{Kind: ResultTakenOver}
	}

	model := i.SessionModel()
	resp, err := i.repo.SubmitDetails(ctx, model, data)
	if err != nil {
		return DetailsResult{Kind: ResultError, Err: checkouterrors.Wrap("details call failed", err)}
	}
	i.updateSessionData(resp.SessionData)

	if resp.Action != nil {
		return DetailsResult{Kind: ResultAction, Action: resp.Action}
	}
	return DetailsResult{Kind: ResultFinished, Result: &checkout.SessionPaymentResult{
		SessionID:     model.ID,
		SessionResult: resp.SessionResult,
		SessionData:   resp.SessionData,
		ResultCode:    resp.ResultCode,
		Order:         resp.Order,
	}}
}

// CheckBalance checks a stored-value payment method balance, unless the host
// takes the call over.
func (i *Interactor) CheckBalance(ctx context.Context, method checkout.PaymentMethodDetails) BalanceCheckResult {
	var handled bool
	if t, ok := i.takeover.(BalanceTakeover); ok {
		handled = t.OnBalanceCheck(method)
	}
	taken, err := i.gate("OnBalanceCheck", handled)
	if err != nil {
		return BalanceCheckResult{Kind: ResultError, Err: err}
	}
	if taken {
		return BalanceCheckResult{Kind: ResultTakenOver}
	}

	resp, err := i.repo.CheckBalance(ctx, i.SessionModel(), method)
	if err != nil {
		return BalanceCheckResult{Kind: ResultError, Err: checkouterrors.Wrap("balance call failed", err)}
	}
	i.updateSessionData(resp.SessionData)

	if resp.Balance == nil {
		return BalanceCheckResult{
			Kind: ResultError,
			Err:  checkouterrors.Serialization("balance response carries no balance", nil),
		}
	}
	return BalanceCheckResult{Kind: ResultSuccessful, Balance: &checkout.BalanceResult{
		Balance:          *resp.Balance,
		TransactionLimit: resp.TransactionLimit,
	}}
}

// CreateOrder creates a partial-payment order, unless the host takes the
// call over.
func (i *Interactor) CreateOrder(ctx context.Context) OrderCreateResult {
	var handled bool
	if t, ok := i.takeover.(OrderTakeover); ok {
		handled = t.OnOrderRequest()
	}
	taken, err := i.gate("OnOrderRequest", handled)
	if err != nil {
		return OrderCreateResult{Kind: ResultError, Err: err}
	}
	if taken {
		return OrderCreateResult{Kind: ResultTakenOver}
	}

	resp, err := i.repo.CreateOrder(ctx, i.SessionModel())
	if err != nil {
		return OrderCreateResult{Kind: ResultError, Err: checkouterrors.Wrap("order call failed", err)}
	}
	i.updateSessionData(resp.SessionData)

	return OrderCreateResult{Kind: ResultSuccessful, Order: &checkout.OrderResponse{
		PSPReference: resp.PSPReference,
		OrderData:    resp.OrderData,
	}}
}

// CancelOrder cancels a partial-payment order, unless the host takes the
// call over.
func (i *Interactor) CancelOrder(ctx context.Context, order *checkout.Order) OrderCancelResult {
	var handled bool
	if t, ok := i.takeover.(OrderTakeover); ok {
		handled = t.OnOrderCancel(order)
	}
	taken, err := i.gate("OnOrderCancel", handled)
	if err != nil {
		return OrderCancelResult{Kind: ResultError, Err: err}
	}
	if taken {
		return OrderCancelResult{Kind: ResultTakenOver}
	}

	resp, err := i.repo.CancelOrder(ctx, i.SessionModel(), order)
	if err != nil {
		return OrderCancelResult{Kind: ResultError, Err: checkouterrors.Wrap("order cancel call failed", err)}
	}
	i.updateSessionData(resp.SessionData)
	return OrderCancelResult{Kind: ResultSuccessful}
}

// DisableToken removes a stored payment method, unless the host takes the
// call over.
func (i *Interactor) DisableToken(ctx context.Context, storedPaymentMethodID string) DisableTokenResult {
	var handled bool
	if t, ok := i.takeover.(StoredPaymentTakeover); ok {
		handled = t.OnRemoveStoredPaymentMethod(storedPaymentMethodID)
	}
	taken, err := i.gate("OnRemoveStoredPaymentMethod", handled)
	if err != nil {
		return DisableTokenResult{Kind: ResultError, Err: err}
	}
	if taken {
		return DisableTokenResult{Kind: ResultTakenOver}
	}

	resp, err := i.repo.DisableToken(ctx, i.SessionModel(), storedPaymentMethodID)
	if err != nil {
		return DisableTokenResult{Kind: ResultError, Err: checkouterrors.Wrap("disable token call failed", err)}
	}
	i.updateSessionData(resp.SessionData)
	return DisableTokenResult{Kind: ResultSuccessful}
}

// gate applies the taken-over contract to one intercepted call. The flag is
// sticky: it is set the first time the host handles a call and never reset.
func (i *Interactor) gate(callbackName string, handled bool) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if handled {
		if !i.takenOver {
			i.logger.Info("session flow taken over by the host",
				slog.String("callback", callbackName))
		}
		i.takenOver = true
		return true, nil
	}
	if i.takenOver {
		return false, checkouterrors.FlowTakenOver(callbackName)
	}
	return false, nil
}

func (i *Interactor) updateSessionData(sessionData string) {
	if sessionData == "" {
		return
	}
	i.mu.Lock()
	if i.model.SessionData == sessionData {
		i.mu.Unlock()
		return
	}
	i.model = i.model.WithSessionData(sessionData)
	model, hook := i.model, i.onSessionChanged
	i.mu.Unlock()

	if hook != nil {
		hook(model)
	}
}

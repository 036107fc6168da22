package sessions

import "github.com/utafrali/checkout-go/checkout"

// ResultKind tags the outcome of a session call. TakenOver means the host
// handled the call itself and the interactor did nothing.
type ResultKind int

const (
	ResultFinished ResultKind = iota
	ResultAction
	ResultNotFullyPaidOrder
	ResultRefusedPartialPayment
	ResultSuccessful
	ResultTakenOver
	ResultError
)

// PaymentResult is the outcome of a payment submission.
type PaymentResult struct {
	Kind   ResultKind
	Result *checkout.SessionPaymentResult
	Action *checkout.Action
	Err    error
}

// DetailsResult is the outcome of an additional-details submission.
type DetailsResult struct {
	Kind   ResultKind
	Result *checkout.SessionPaymentResult
	Action *checkout.Action
	Err    error
}

// BalanceCheckResult is the outcome of a balance check.
type BalanceCheckResult struct {
	Kind    ResultKind
	Balance *checkout.BalanceResult
	Err     error
}

// OrderCreateResult is the outcome of creating a partial-payment order.
type OrderCreateResult struct {
	Kind  ResultKind
	Order *checkout.OrderResponse
	Err   error
}

// OrderCancelResult is the outcome of cancelling a partial-payment order.
type OrderCancelResult struct {
	Kind ResultKind
	Err  error
}

// DisableTokenResult is the outcome of removing a stored payment method.
type DisableTokenResult struct {
	Kind ResultKind
	Err  error
}

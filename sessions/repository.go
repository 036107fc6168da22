// Package sessions orchestrates the merchant-session payment flow: it runs
// the session calls, keeps the session data current and decides whether the
// host has taken the flow over.
package sessions

import (
	"context"

	"github.com/utafrali/checkout-go/api"
	"github.com/utafrali/checkout-go/checkout"
)

// Repository runs the session-scoped API calls for one session model.
type Repository interface {
	Setup(ctx context.Context, model checkout.SessionModel) (*api.SessionSetupResponse, error)
	SubmitPayment(ctx context.Context, model checkout.SessionModel, data checkout.PaymentComponentData) (*api.SessionPaymentsResponse, error)
	SubmitDetails(ctx context.Context, model checkout.SessionModel, data checkout.ActionComponentData) (*api.SessionDetailsResponse, error)
	CheckBalance(ctx context.Context, model checkout.SessionModel, method checkout.PaymentMethodDetails) (*api.SessionBalanceResponse, error)
	CreateOrder(ctx context.Context, model checkout.SessionModel) (*api.SessionOrderResponse, error)
	CancelOrder(ctx context.Context, model checkout.SessionModel, order *checkout.Order) (*api.SessionCancelOrderResponse, error)
	DisableToken(ctx context.Context, model checkout.SessionModel, storedPaymentMethodID string) (*api.SessionDisableTokenResponse, error)
}

// APIRepository implements Repository on top of the typed API client.
type APIRepository struct {
	client *api.Client
}

// NewAPIRepository wraps the API client into a session repository.
func NewAPIRepository(client *api.Client) *APIRepository {
	return &APIRepository{client: client}
}

func (r *APIRepository) Setup(ctx context.Context, model checkout.SessionModel) (*api.SessionSetupResponse, error) {
	return r.client.SessionSetup(ctx, model.ID, api.SessionSetupRequest{SessionData: model.SessionData})
}

func (r *APIRepository) SubmitPayment(ctx context.Context, model checkout.SessionModel, data checkout.PaymentComponentData) (*api.SessionPaymentsResponse, error) {
	return r.client.SessionPayments(ctx, model.ID, api.SessionPaymentsRequest{
		SessionData:        model.SessionData,
		PaymentMethod:      data.PaymentMethod,
		Order:              data.Order,
		Amount:             data.Amount,
		StorePaymentMethod: data.StorePaymentMethod,
		ShopperReference:   data.ShopperReference,
		ReturnURL:          data.ReturnURL,
	})
}

func (r *APIRepository) SubmitDetails(ctx context.Context, model checkout.SessionModel, data checkout.ActionComponentData) (*api.SessionDetailsResponse, error) {
	return r.client.SessionDetails(ctx, model.ID, api.SessionDetailsRequest{
		SessionData: model.SessionData,
		PaymentData: data.PaymentData,
		Details:     data.Details,
	})
}

func (r *APIRepository) CheckBalance(ctx context.Context, model checkout.SessionModel, method checkout.PaymentMethodDetails) (*api.SessionBalanceResponse, error) {
	return r.client.SessionBalance(ctx, model.ID, api.SessionBalanceRequest{
		SessionData:   model.SessionData,
		PaymentMethod: method,
	})
}

func (r *APIRepository) CreateOrder(ctx context.Context, model checkout.SessionModel) (*api.SessionOrderResponse, error) {
	return r.client.SessionCreateOrder(ctx, model.ID, api.SessionOrderRequest{SessionData: model.SessionData})
}

func (r *APIRepository) CancelOrder(ctx context.Context, model checkout.SessionModel, order *checkout.Order) (*api.SessionCancelOrderResponse, error) {
	return r.client.SessionCancelOrder(ctx, model.ID, api.SessionCancelOrderRequest{
		SessionData: model.SessionData,
		Order:       order,
	})
}

func (r *APIRepository) DisableToken(ctx context.Context, model checkout.SessionModel, storedPaymentMethodID string) (*api.SessionDisableTokenResponse, error) {
	return r.client.SessionDisableToken(ctx, model.ID, api.SessionDisableTokenRequest{
		SessionData:           model.SessionData,
		StoredPaymentMethodID: storedPaymentMethodID,
	})
}

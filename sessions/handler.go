package sessions

import (
	"context"
	"log/slog"

	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/component"
	"github.com/utafrali/checkout-go/pkg/kafka"
	"github.com/utafrali/checkout-go/store"
)

// DefaultSessionDataStoreKey is where the latest session data is persisted
// so a host process recreation can resume the session.
const DefaultSessionDataStoreKey = "checkout:session_data"

// DefaultResultsTopic receives the terminal payment results when a
// publisher is attached.
const DefaultResultsTopic = "checkout.results"

// SessionCallback is the host surface of the session-driven flow. The
// handler runs every network call itself; the host only reacts to outcomes.
type SessionCallback interface {
	OnStateChanged(state checkout.ComponentState)
	OnLoading(loading bool)
	OnFinished(result checkout.SessionPaymentResult)
	OnError(err error)
}

// PartialPaymentCallback is implemented by hosts that support partial
// payments. Without it, partial outcomes fall back to OnFinished.
type PartialPaymentCallback interface {
	OnOrderUpdated(result checkout.SessionPaymentResult)
	OnPartialPaymentRefused(result checkout.SessionPaymentResult)
}

// ResultPublisher publishes terminal payment results, typically to Kafka
// for the merchant backend to consume.
type ResultPublisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Handler is the session-aware component event handler. It submits payments
// and details through the interactor, drives follow-up actions on the
// component and persists the session data after every replacement.
type Handler struct {
	interactor *Interactor
	callback   SessionCallback
	state      store.Store
	stateKey   string
	publisher  ResultPublisher
	topic      string
	logger     *slog.Logger
}

// NewHandler wires the session event handler. The state store keeps the
// latest session data; pass a memory store when persistence is not wanted.
func NewHandler(interactor *Interactor, callback SessionCallback, state store.Store, logger *slog.Logger) *Handler {
	h := &Handler{
		interactor: interactor,
		callback:   callback,
		state:      state,
		stateKey:   DefaultSessionDataStoreKey,
		topic:      DefaultResultsTopic,
		logger:     logger,
	}
	interactor.SetOnSessionChanged(h.persistSessionData)
	return h
}

// WithPublisher attaches a terminal-result publisher.
func (h *Handler) WithPublisher(publisher ResultPublisher, topic string) *Handler {
	h.publisher = publisher
	if topic != "" {
		h.topic = topic
	}
	return h
}

// WithStateKey changes the persistence key, for hosts running several
// sessions against one store.
func (h *Handler) WithStateKey(key string) *Handler {
	h.stateKey = key
	return h
}

// Restore replaces the interactor's session data with the persisted value,
// if any. Call before initializing the component after a process recreation.
func (h *Handler) Restore(ctx context.Context) {
	sessionData, ok, err := h.state.Get(ctx, h.stateKey)
	if err != nil {
		h.logger.Warn("persisted session data could not be read", slog.String("error", err.Error()))
		return
	}
	if ok {
		h.interactor.RestoreSessionData(sessionData)
	}
}

// HandleEvent implements component.EventHandler.
func (h *Handler) HandleEvent(ctx context.Context, event checkout.ComponentEvent, flow component.Flow) {
	switch event.Type {
	case checkout.EventStateChanged:
		h.callback.OnStateChanged(*event.State)
	case checkout.EventSubmit:
		h.submitPayment(ctx, *event.State, flow)
	case checkout.EventActionDetails:
		h.submitDetails(ctx, *event.Details, flow)
	case checkout.EventError:
		h.callback.OnError(event.Err)
	default:
		h.logger.Warn("unhandled component event", slog.String("type", string(event.Type)))
	}
}

func (h *Handler) submitPayment(ctx context.Context, state checkout.ComponentState, flow component.Flow) {
	h.callback.OnLoading(true)
	result := h.interactor.SubmitPayment(ctx, state)
	h.callback.OnLoading(false)

	switch result.Kind {
	case ResultAction:
		h.handleAction(ctx, result.Action, flow)
	case ResultFinished:
		h.finish(ctx, *result.Result)
	case ResultNotFullyPaidOrder:
		h.orderUpdated(*result.Result)
	case ResultRefusedPartialPayment:
		h.partialRefused(ctx, *result.Result)
	case ResultTakenOver:
		// The host ran the call itself; nothing left to do here.
	case ResultError:
		h.fail(ctx, result.Err)
	}
}

func (h *Handler) submitDetails(ctx context.Context, data checkout.ActionComponentData, flow component.Flow) {
	h.callback.OnLoading(true)
	result := h.interactor.SubmitDetails(ctx, data)
	h.callback.OnLoading(false)

	switch result.Kind {
	case ResultAction:
		h.handleAction(ctx, result.Action, flow)
	case ResultFinished:
		h.finish(ctx, *result.Result)
	case ResultTakenOver:
	case ResultError:
		h.fail(ctx, result.Err)
	}
}

func (h *Handler) handleAction(ctx context.Context, action *checkout.Action, flow component.Flow) {
	if err := flow.HandleAction(ctx, action); err != nil {
		h.fail(ctx, err)
	}
}

func (h *Handler) finish(ctx context.Context, result checkout.SessionPaymentResult) {
	h.publish(ctx, kafka.EventTypePaymentFinished, result)
	h.callback.OnFinished(result)
}

func (h *Handler) orderUpdated(result checkout.SessionPaymentResult) {
	if cb, ok := h.callback.(PartialPaymentCallback); ok {
		cb.OnOrderUpdated(result)
		return
	}
	h.callback.OnFinished(result)
}

func (h *Handler) partialRefused(ctx context.Context, result checkout.SessionPaymentResult) {
	if cb, ok := h.callback.(PartialPaymentCallback); ok {
		cb.OnPartialPaymentRefused(result)
		return
	}
	h.finish(ctx, result)
}

func (h *Handler) fail(ctx context.Context, err error) {
	h.publish(ctx, kafka.EventTypePaymentFailed, checkout.SessionPaymentResult{
		SessionID: h.interactor.SessionModel().ID,
	})
	h.callback.OnError(err)
}

func (h *Handler) publish(ctx context.Context, eventType string, result checkout.SessionPaymentResult) {
	if h.publisher == nil {
		return
	}
	event, err := kafka.NewEvent(eventType, h.interactor.SessionModel().ID, "checkout-go", result)
	if err != nil {
		h.logger.Warn("result event could not be built", slog.String("error", err.Error()))
		return
	}
	if err := h.publisher.Publish(ctx, h.topic, event); err != nil {
		h.logger.Warn("result event could not be published", slog.String("error", err.Error()))
	}
}

func (h *Handler) persistSessionData(model checkout.SessionModel) {
	if err := h.state.Set(context.Background(), h.stateKey, model.SessionData); err != nil {
		h.logger.Warn("session data could not be persisted", slog.String("error", err.Error()))
	}
}

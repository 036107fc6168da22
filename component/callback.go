package component

import (
	"context"
	"log/slog"

	"github.com/utafrali/checkout-go/checkout"
)

// Callback is the host surface of the merchant-driven flow. The component
// never calls the payment API itself; the host runs the payments and details
// calls from OnSubmit and OnAdditionalDetails and feeds resulting actions
// back through HandleAction.
type Callback interface {
	OnStateChanged(state checkout.ComponentState)
	OnSubmit(state checkout.ComponentState)
	OnAdditionalDetails(data checkout.ActionComponentData)
	OnError(err error)
}

// CallbackEventHandler routes every event straight to the host callback.
type CallbackEventHandler struct {
	callback Callback
	logger   *slog.Logger
}

// NewCallbackEventHandler creates the merchant-driven event handler.
func NewCallbackEventHandler(callback Callback, logger *slog.Logger) *CallbackEventHandler {
	return &CallbackEventHandler{callback: callback, logger: logger}
}

// HandleEvent implements EventHandler.
func (h *CallbackEventHandler) HandleEvent(_ context.Context, event checkout.ComponentEvent, _ Flow) {
	switch event.Type {
	case checkout.EventStateChanged:
		h.callback.OnStateChanged(*event.State)
	case checkout.EventSubmit:
		h.callback.OnSubmit(*event.State)
	case checkout.EventActionDetails:
		h.callback.OnAdditionalDetails(*event.Details)
	case checkout.EventError:
		h.callback.OnError(event.Err)
	default:
		h.logger.Warn("unhandled component event", slog.String("type", string(event.Type)))
	}
}

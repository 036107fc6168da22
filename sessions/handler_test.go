package sessions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/checkout-go/api"
	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/pkg/kafka"
	"github.com/utafrali/checkout-go/pkg/logger"
	"github.com/utafrali/checkout-go/store"
)

// sessionCallbackSpy records every host callback invocation.
type sessionCallbackSpy struct {
	states   []checkout.ComponentState
	loading  []bool
	finished []checkout.SessionPaymentResult
	errs     []error
}

func (s *sessionCallbackSpy) OnStateChanged(state checkout.ComponentState) {
	s.states = append(s.states, state)
}

func (s *sessionCallbackSpy) OnLoading(loading bool) {
	s.loading = append(s.loading, loading)
}

func (s *sessionCallbackSpy) OnFinished(result checkout.SessionPaymentResult) {
	s.finished = append(s.finished, result)
}

func (s *sessionCallbackSpy) OnError(err error) {
	s.errs = append(s.errs, err)
}

// flowSpy records actions the handler pushed back into the component.
type flowSpy struct {
	actions []*checkout.Action
	err     error
}

func (f *flowSpy) HandleAction(_ context.Context, action *checkout.Action) error {
	f.actions = append(f.actions, action)
	return f.err
}

// publisherSpy records published events.
type publisherSpy struct {
	topics []string
	events []*kafka.Event
}

func (p *publisherSpy) Publish(_ context.Context, topic string, event *kafka.Event) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func submitEvent() checkout.ComponentEvent {
	return checkout.NewSubmitEvent(validState())
}

func TestHandler_SubmitFinishes(t *testing.T) {
	repo := &fakeRepository{paymentsResp: &api.SessionPaymentsResponse{
		ResultCode:  checkout.ResultAuthorised,
		SessionData: "sd-2",
	}}
	interactor := NewInteractor(repo, testModel, nil, logger.Nop())
	callback := &sessionCallbackSpy{}
	state := store.NewMemory()
	h := NewHandler(interactor, callback, state, logger.Nop())

	h.HandleEvent(context.Background(), submitEvent(), &flowSpy{})

	require.Len(t, callback.finished, 1)
	assert.Equal(t, checkout.ResultAuthorised, callback.finished[0].ResultCode)
	assert.Equal(t, []bool{true, false}, callback.loading)

	// The replaced session data was persisted.
	persisted, ok, err := state.Get(context.Background(), DefaultSessionDataStoreKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sd-2", persisted)
}

func TestHandler_SubmitDrivesActionOnFlow(t *testing.T) {
	action := &checkout.Action{Type: checkout.ActionTypeAwait, PaymentData: "pd-1"}
	repo := &fakeRepository{paymentsResp: &api.SessionPaymentsResponse{Action: action}}
	interactor := NewInteractor(repo, testModel, nil, logger.Nop())
	callback := &sessionCallbackSpy{}
	flow := &flowSpy{}
	h := NewHandler(interactor, callback, store.NewMemory(), logger.Nop())

	h.HandleEvent(context.Background(), submitEvent(), flow)

	require.Len(t, flow.actions, 1)
	assert.Equal(t, checkout.ActionTypeAwait, flow.actions[0].Type)
	assert.Empty(t, callback.finished)
	assert.Empty(t, callback.errs)
}

func TestHandler_DetailsFinish(t *testing.T) {
	repo := &fakeRepository{detailsResp: &api.SessionDetailsResponse{
		ResultCode: checkout.ResultAuthorised,
	}}
	interactor := NewInteractor(repo, testModel, nil, logger.Nop())
	callback := &sessionCallbackSpy{}
	h := NewHandler(interactor, callback, store.NewMemory(), logger.Nop())

	h.HandleEvent(context.Background(), checkout.NewActionDetailsEvent(checkout.ActionComponentData{
		Details: map[string]any{checkout.DetailKeyPayload: "pl"},
	}), &flowSpy{})

	require.Len(t, callback.finished, 1)
	assert.Equal(t, checkout.ResultAuthorised, callback.finished[0].ResultCode)
}

func TestHandler_PublishesTerminalResult(t *testing.T) {
	repo := &fakeRepository{paymentsResp: &api.SessionPaymentsResponse{
		ResultCode: checkout.ResultAuthorised,
	}}
	interactor := NewInteractor(repo, testModel, nil, logger.Nop())
	publisher := &publisherSpy{}
	h := NewHandler(interactor, &sessionCallbackSpy{}, store.NewMemory(), logger.Nop()).
		WithPublisher(publisher, "")

	h.HandleEvent(context.Background(), submitEvent(), &flowSpy{})

	require.Len(t, publisher.events, 1)
	assert.Equal(t, DefaultResultsTopic, publisher.topics[0])
	assert.Equal(t, kafka.EventTypePaymentFinished, publisher.events[0].EventType)
	assert.Equal(t, "sess-1", publisher.events[0].SessionID)

	var result checkout.SessionPaymentResult
	require.NoError(t, publisher.events[0].UnmarshalData(&result))
	assert.Equal(t, checkout.ResultAuthorised, result.ResultCode)
}

func TestHandler_ErrorReachesCallback(t *testing.T) {
	repo := &fakeRepository{err: assert.AnError}
	interactor := NewInteractor(repo, testModel, nil, logger.Nop())
	callback := &sessionCallbackSpy{}
	h := NewHandler(interactor, callback, store.NewMemory(), logger.Nop())

	h.HandleEvent(context.Background(), submitEvent(), &flowSpy{})

	require.Len(t, callback.errs, 1)
	assert.ErrorIs(t, callback.errs[0], assert.AnError)
}

func TestHandler_StateChangedForwarded(t *testing.T) {
	interactor := NewInteractor(&fakeRepository{}, testModel, nil, logger.Nop())
	callback := &sessionCallbackSpy{}
	h := NewHandler(interactor, callback, store.NewMemory(), logger.Nop())

	h.HandleEvent(context.Background(), checkout.NewStateChangedEvent(validState()), &flowSpy{})

	require.Len(t, callback.states, 1)
	assert.Empty(t, callback.loading)
}

func TestHandler_Restore(t *testing.T) {
	state := store.NewMemory()
	require.NoError(t, state.Set(context.Background(), DefaultSessionDataStoreKey, "sd-persisted"))

	interactor := NewInteractor(&fakeRepository{}, testModel, nil, logger.Nop())
	h := NewHandler(interactor, &sessionCallbackSpy{}, state, logger.Nop())

	h.Restore(context.Background())

	assert.Equal(t, "sd-persisted", interactor.SessionModel().SessionData)
}

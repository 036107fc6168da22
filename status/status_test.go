package status

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/checkout-go/checkout"
	"github.com/utafrali/checkout-go/pkg/logger"
)

type stubClient struct {
	calls     atomic.Int64
	responses func(call int64) (*checkout.StatusResponse, error)
}

func (s *stubClient) PaymentStatus(_ context.Context, _ string) (*checkout.StatusResponse, error) {
	call := s.calls.Add(1)
	return s.responses(call)
}

func collect(t *testing.T, ch <-chan Result, timeout time.Duration) []Result {
	t.Helper()
	var results []Result
	deadline := time.After(timeout)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				return results
			}
			results = append(results, r)
		case <-deadline:
			t.Fatalf("timed out collecting results, got %d", len(results))
		}
	}
}

func TestPoller_StopsOnFinalStatus(t *testing.T) {
	client := &stubClient{responses: func(call int64) (*checkout.StatusResponse, error) {
		if call < 3 {
			return &checkout.StatusResponse{ResultCode: checkout.ResultPending}, nil
		}
		return &checkout.StatusResponse{ResultCode: checkout.ResultAuthorised, Payload: "pl"}, nil
	}}
	poller := NewPoller(client, Config{Interval: 10 * time.Millisecond}, logger.Nop())

	results := collect(t, poller.Poll(context.Background(), "pd", time.Second), 2*time.Second)

	require.Len(t, results, 3)
	assert.Equal(t, checkout.ResultPending, results[0].Response.ResultCode)
	assert.Equal(t, checkout.ResultAuthorised, results[2].Response.ResultCode)
	assert.Equal(t, "pl", results[2].Response.Payload)
}

func TestPoller_MaxDurationStopsSilently(t *testing.T) {
	client := &stubClient{responses: func(int64) (*checkout.StatusResponse, error) {
		return &checkout.StatusResponse{ResultCode: checkout.ResultPending}, nil
	}}
	poller := NewPoller(client, Config{Interval: 10 * time.Millisecond}, logger.Nop())

	results := collect(t, poller.Poll(context.Background(), "pd", 35*time.Millisecond), time.Second)

	// Every emission is a pending response, the window elapsing emits nothing.
	require.NotEmpty(t, results)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, checkout.ResultPending, r.Response.ResultCode)
	}
}

func TestPoller_EmitsErrorsAndKeepsPolling(t *testing.T) {
	client := &stubClient{responses: func(call int64) (*checkout.StatusResponse, error) {
		if call == 1 {
			return nil, errors.New("boom")
		}
		return &checkout.StatusResponse{ResultCode: checkout.ResultRefused}, nil
	}}
	poller := NewPoller(client, Config{Interval: 10 * time.Millisecond}, logger.Nop())

	results := collect(t, poller.Poll(context.Background(), "pd", time.Second), 2*time.Second)

	require.Len(t, results, 2)
	assert.EqualError(t, results[0].Err, "boom")
	assert.Equal(t, checkout.ResultRefused, results[1].Response.ResultCode)
}

func TestPoller_TerminalStatusIsRemembered(t *testing.T) {
	client := &stubClient{responses: func(int64) (*checkout.StatusResponse, error) {
		return &checkout.StatusResponse{ResultCode: checkout.ResultAuthorised}, nil
	}}
	poller := NewPoller(client, Config{Interval: 10 * time.Millisecond}, logger.Nop())

	first := collect(t, poller.Poll(context.Background(), "pd", time.Second), time.Second)
	require.Len(t, first, 1)

	// A later poll for the same token does not hit the client again.
	second := collect(t, poller.Poll(context.Background(), "pd", time.Second), time.Second)
	require.Len(t, second, 1)
	assert.Equal(t, checkout.ResultAuthorised, second[0].Response.ResultCode)
	assert.Equal(t, int64(1), client.calls.Load())
}

func TestPoller_RefreshTriggersImmediateCall(t *testing.T) {
	client := &stubClient{responses: func(call int64) (*checkout.StatusResponse, error) {
		if call < 2 {
			return &checkout.StatusResponse{ResultCode: checkout.ResultPending}, nil
		}
		return &checkout.StatusResponse{ResultCode: checkout.ResultAuthorised}, nil
	}}
	poller := NewPoller(client, Config{Interval: time.Hour}, logger.Nop())

	ch := poller.Poll(context.Background(), "pd", time.Hour)

	// The interval is far away, only the refresh can trigger the second call.
	first := <-ch
	assert.Equal(t, checkout.ResultPending, first.Response.ResultCode)

	poller.RefreshStatus("pd")
	select {
	case second := <-ch:
		assert.Equal(t, checkout.ResultAuthorised, second.Response.ResultCode)
	case <-time.After(time.Second):
		t.Fatal("refresh did not trigger a status call")
	}
}

func TestPoller_RefreshForUnknownTokenIsNoop(t *testing.T) {
	client := &stubClient{responses: func(int64) (*checkout.StatusResponse, error) {
		return &checkout.StatusResponse{ResultCode: checkout.ResultPending}, nil
	}}
	poller := NewPoller(client, Config{Interval: time.Hour}, logger.Nop())
	defer poller.Stop()

	poller.RefreshStatus("nope")

	ch := poller.Poll(context.Background(), "pd", time.Hour)
	<-ch
	poller.RefreshStatus("other")

	select {
	case <-ch:
		t.Fatal("unexpected emission after refreshing a different token")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPoller_NewPollCancelsPrevious(t *testing.T) {
	client := &stubClient{responses: func(int64) (*checkout.StatusResponse, error) {
		return &checkout.StatusResponse{ResultCode: checkout.ResultPending}, nil
	}}
	poller := NewPoller(client, Config{Interval: time.Hour}, logger.Nop())
	defer poller.Stop()

	first := poller.Poll(context.Background(), "pd-1", time.Hour)
	<-first
	second := poller.Poll(context.Background(), "pd-2", time.Hour)
	<-second

	// The first channel closes once the second poll starts.
	select {
	case _, ok := <-first:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("previous poll channel was not closed")
	}
}

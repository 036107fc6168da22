// Package status polls the payment status endpoint until a final result
// code is reached or the polling window runs out.
package status

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/checkout-go/checkout"
)

// Client fetches the current status of an in-flight payment.
type Client interface {
	PaymentStatus(ctx context.Context, paymentData string) (*checkout.StatusResponse, error)
}

// Result is a single poll emission. Exactly one of Response or Err is set.
type Result struct {
	Response *checkout.StatusResponse
	Err      error
}

// DefaultInterval is the delay between consecutive status calls.
const DefaultInterval = 2 * time.Second

// Config tunes the poller. The zero value falls back to defaults.
type Config struct {
	Interval time.Duration
}

type activePoll struct {
	paymentData string
	refresh     chan struct{}
	cancel      context.CancelFunc
}

// Poller repeatedly fetches payment status for a payment data token and
// emits every response on a channel. A final result code ends the poll and
// is remembered so later polls for the same token return it immediately.
type Poller struct {
	client   Client
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	active   *activePoll
	terminal map[string]*checkout.StatusResponse
}

// NewPoller creates a status poller on top of the given client.
func NewPoller(client Client, cfg Config, logger *slog.Logger) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		client:   client,
		interval: interval,
		logger:   logger,
		terminal: make(map[string]*checkout.StatusResponse),
	}
}

// Poll starts polling for the given payment data token and returns the
// emission channel. The channel is closed when a final status is received,
// when maxDuration elapses or when ctx is cancelled. Starting a new poll
// cancels the previous one.
func (p *Poller) Poll(ctx context.Context, paymentData string, maxDuration time.Duration) <-chan Result {
	out := make(chan Result, 1)

	p.mu.Lock()
	if cached, ok := p.terminal[paymentData]; ok {
		p.mu.Unlock()
		out <- Result{Response: cached}
		close(out)
		return out
	}
	if p.active != nil {
		p.active.cancel()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	poll := &activePoll{
		paymentData: paymentData,
		refresh:     make(chan struct{}, 1),
		cancel:      cancel,
	}
	p.active = poll
	p.mu.Unlock()

	go p.run(pollCtx, poll, maxDuration, out)
	return out
}

// RefreshStatus triggers an immediate extra status call for the token if a
// poll for it is currently running. It is a no-op otherwise.
func (p *Poller) RefreshStatus(paymentData string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil || p.active.paymentData != paymentData {
		return
	}
	select {
	case p.active.refresh <- struct{}{}:
	default:
	}
}

// Stop cancels the running poll, if any.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		p.active.cancel()
		p.active = nil
	}
}

func (p *Poller) run(ctx context.Context, poll *activePoll, maxDuration time.Duration, out chan<- Result) {
	defer close(out)
	defer p.clear(poll)

	deadline := time.NewTimer(maxDuration)
	defer deadline.Stop()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First fetch happens immediately, not after one interval.
	if done := p.fetch(ctx, poll.paymentData, out); done {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			p.logger.Warn("status polling window elapsed without a final result",
				slog.Duration("max_duration", maxDuration))
			return
		case <-poll.refresh:
			if done := p.fetch(ctx, poll.paymentData, out); done {
				return
			}
			ticker.Reset(p.interval)
		case <-ticker.C:
			if done := p.fetch(ctx, poll.paymentData, out); done {
				return
			}
		}
	}
}

// fetch performs one status call and emits the result. It reports true when
// polling should stop, either because a final status arrived or because the
// consumer went away.
func (p *Poller) fetch(ctx context.Context, paymentData string, out chan<- Result) bool {
	resp, err := p.client.PaymentStatus(ctx, paymentData)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		p.logger.Error("status call failed", slog.String("error", err.Error()))
		return !p.emit(ctx, out, Result{Err: err})
	}

	final := resp.IsFinal()
	if final {
		p.mu.Lock()
		p.terminal[paymentData] = resp
		p.mu.Unlock()
	}
	if !p.emit(ctx, out, Result{Response: resp}) {
		return true
	}
	return final
}

func (p *Poller) emit(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Poller) clear(poll *activePoll) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == poll {
		p.active = nil
	}
	poll.cancel()
}

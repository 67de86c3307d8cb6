package app

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

type PollerConfig struct {
	// CycleTimeout bounds one whole polling cycle (one fetch plus one
	// dispatch).
	CycleTimeout time.Duration
	// CallTimeout bounds each individual order fetch or dispatch.
	CallTimeout time.Duration
	// The pause between cycles is drawn uniformly from [BackoffMin, BackoffMax]
	// so restarts do not synchronize against the upstream API.
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Poller drives the order notification loop: fetch at most one pending
// order, dispatch an SMS for it, sleep, repeat. One order per cycle: the
// upstream keeps an order pending until its delivery report arrives, so a
// cycle that kept re-fetching would text the same customer again before the
// callback lands. It survives failed cycles; an error ends the cycle, not
// the loop.
type Poller struct {
	orders     OrderClient
	dispatcher *Dispatcher
	cfg        PollerConfig
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(orders OrderClient, dispatcher *Dispatcher, cfg PollerConfig, logger *slog.Logger) *Poller {
	return &Poller{
		orders:     orders,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.With("component", "poller"),
	}
}

// Start launches the polling loop in its own goroutine. The loop runs until
// Stop is called; it is not tied to any caller context, since HTTP handlers
// may start it. It reports false when the loop is already running.
func (p *Poller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return false
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(loopCtx, p.done)
	p.logger.Info("polling started")
	return true
}

// Stop cancels the loop and waits for it to exit. It reports false when the
// loop was not running.
func (p *Poller) Stop() bool {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return false
	}
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	p.logger.Info("polling stopped")
	return true
}

func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		cycleCtx, cancel := context.WithTimeout(ctx, p.cfg.CycleTimeout)
		p.runCycle(cycleCtx)
		cancel()

		select {
		case <-time.After(p.backoff()):
		case <-ctx.Done():
			return
		}
	}
}

// runCycle performs one fetch and at most one dispatch, then returns to the
// backoff sleep. A dispatched order stays pending upstream until its
// delivery report is reconciled, so re-fetching within the same cycle would
// hand back the order just sent.
func (p *Poller) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		pollCyclesTotal.WithLabelValues("timeout").Inc()
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	order, err := p.orders.FetchNewOrder(callCtx)
	cancel()
	if err != nil {
		p.logger.ErrorContext(ctx, "order fetch failed, ending cycle", "error", err)
		pollCyclesTotal.WithLabelValues("error").Inc()
		return
	}
	if order == nil {
		pollCyclesTotal.WithLabelValues("ok").Inc()
		return
	}
	ordersFetchedTotal.Inc()
	p.logger.InfoContext(ctx, "order received", "order_id", order.ID)

	callCtx, cancel = context.WithTimeout(ctx, p.cfg.CallTimeout)
	_, err = p.dispatcher.Dispatch(callCtx, *order)
	cancel()
	if err != nil {
		// The failure is recorded on the message; the next cycle moves on.
		p.logger.ErrorContext(ctx, "order dispatch failed", "order_id", order.ID, "error", err)
		pollCyclesTotal.WithLabelValues("error").Inc()
		return
	}
	pollCyclesTotal.WithLabelValues("ok").Inc()
}

func (p *Poller) backoff() time.Duration {
	span := p.cfg.BackoffMax - p.cfg.BackoffMin
	if span <= 0 {
		return p.cfg.BackoffMin
	}
	return p.cfg.BackoffMin + time.Duration(rand.Int63n(int64(span)))
}

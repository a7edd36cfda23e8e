package updates

import (
	"context"
	"time"

	"github.com/dd0wney/threatloom/pkg/logging"
)

// NewTicker creates a ticker publishing provider's metrics to registry every
// interval. A non-positive interval selects DefaultInterval.
func NewTicker(registry *Registry, provider MetricsProvider, interval time.Duration, logger logging.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Ticker{
		registry: registry,
		provider: provider,
		interval: interval,
		logger:   logger.With(logging.Component("ticker")),
	}
}

// Interval returns the publish period
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Start arms the ticker. Calling Start on a running ticker does nothing.
// The loop ends on Stop or when ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	go t.loop(loopCtx, t.done)
	t.logger.Info("update ticker started", logging.Duration("interval", t.interval))
}

// Stop disarms the ticker and waits for the loop to exit
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	cancel()
	<-done
	t.logger.Info("update ticker stopped")
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.Tick(ctx)
		}
	}
}

// Tick publishes one metrics_update event. Ticks with no subscribers skip
// generation; a provider failure is logged and nothing is published.
func (t *Ticker) Tick(ctx context.Context) {
	if t.registry.Len() == 0 {
		return
	}

	m, err := t.provider.DashboardMetrics(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Warn("metrics update skipped", logging.Error(err))
		}
		return
	}
	t.registry.Publish(Event{Kind: KindMetricsUpdate, Data: m})
}

// Running reports whether the loop is armed
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itbpos/restaurant-backend/pkg/logger"
)

// Ticker drives a single periodic callback, typically one display view's
// refresh. Start is idempotent: at most one timer runs no matter how often a
// client asks for it, and Stop is safe to call at any time.
type Ticker struct {
	logg     *logger.Logger
	interval time.Duration
	fn       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker builds a ticker around the callback.
func NewTicker(logg *logger.Logger, interval time.Duration, fn func(ctx context.Context)) (*Ticker, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if fn == nil {
		return nil, fmt.Errorf("callback required")
	}
	return &Ticker{
		logg:     logg,
		interval: interval,
		fn:       fn,
	}, nil
}

// Start begins ticking. Calling Start while already running keeps the
// existing timer instead of stacking a second one.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	done := make(chan struct{})
	t.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				t.fn(runCtx)
			}
		}
	}()
}

// Stop halts the timer and waits for an in-flight callback to finish.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the timer is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

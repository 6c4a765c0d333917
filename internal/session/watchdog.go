package session

import (
	"context"
	"sync"
	"time"
)

// Watchdog fires once the user has been idle for the configured timeout.
// A single timer exists for its whole life; Touch pushes its deadline out.
type Watchdog struct {
	timeout  time.Duration
	onExpire func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewWatchdog returns an unarmed watchdog.
func NewWatchdog(timeout time.Duration, onExpire func()) *Watchdog {
	return &Watchdog{timeout: timeout, onExpire: onExpire}
}

// NewInactivityWatchdog returns a watchdog that enqueues an inactivity
// invalidation for the stored session on expiry.
func NewInactivityWatchdog(timeout time.Duration, inv *Invalidator) *Watchdog {
	return NewWatchdog(timeout, inv.Expire)
}

// Start arms the timer.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = false
	if w.timer == nil {
		w.timer = time.AfterFunc(w.timeout, w.onExpire)
		return
	}
	w.timer.Stop()
	w.timer.Reset(w.timeout)
}

// Touch records user activity. It does nothing before Start or after Stop.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil || w.stopped {
		return
	}
	w.timer.Stop()
	w.timer.Reset(w.timeout)
}

// Stop disarms the timer.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Run arms the watchdog and disarms it when ctx is done.
func (w *Watchdog) Run(ctx context.Context) error {
	w.Start()
	<-ctx.Done()
	w.Stop()
	return nil
}

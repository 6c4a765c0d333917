package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdogFiresAfterIdleTimeout(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(30*time.Millisecond, func() { fired.Add(1) })
	w.Start()
	defer w.Stop()

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWatchdogTouchDebouncesToLatestActivity(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(60*time.Millisecond, func() { fired.Add(1) })
	w.Start()
	defer w.Stop()

	for i := 0; i < 10; i++ {
		time.Sleep(15 * time.Millisecond)
		w.Touch()
	}
	assert.Zero(t, fired.Load(), "activity keeps pushing the deadline out")

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "only one timer is ever armed")
}

func TestWatchdogTouchBeforeStartAndAfterStop(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(20*time.Millisecond, func() { fired.Add(1) })

	w.Touch()
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, fired.Load())

	w.Start()
	w.Stop()
	w.Touch()
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestWatchdogRunStopsOnCancel(t *testing.T) {
	var fired atomic.Int32
	w := NewWatchdog(50*time.Millisecond, func() { fired.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestInactivityWatchdogEnqueuesInvalidation(t *testing.T) {
	f := newFixture(t, false)
	f.login(t, 11)

	w := NewInactivityWatchdog(20*time.Millisecond, f.inv)
	w.Start()
	defer w.Stop()

	require.Eventually(t, func() bool { return f.nav.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, f.manager.Identity())
}

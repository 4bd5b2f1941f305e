// Package timer provides the session's cancellable one-second ticker.
package timer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// TickSource starts a ticker and returns its channel and a stop function.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

// Option configures a Timer.
type Option func(*Timer)

// WithTickSource replaces the time.Ticker based source.
func WithTickSource(src TickSource) Option {
	return func(t *Timer) {
		if src != nil {
			t.source = src
		}
	}
}

// Timer counts elapsed ticks on a background goroutine.
type Timer struct {
	interval time.Duration
	source   TickSource
	// onTick runs on the timer goroutine after every tick.
	onTick func(int64)

	elapsed atomic.Int64

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New returns a stopped Timer.
func New(opts ...Option) *Timer {
	t := &Timer{
		interval: time.Second,
		source:   tickerSource,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func tickerSource(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

// Start begins ticking. Starting a running timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	ticks, stopTicker := t.source(t.interval)
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop = stop
	t.done = done
	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-stop:
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				n := t.elapsed.Add(1)
				if t.onTick != nil {
					t.onTick(n)
				}
			}
		}
	}()
}

// Stop halts the timer and waits for the tick goroutine to exit. Stopping a stopped timer
// is a no-op.
func (t *Timer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Reset stops the timer and zeroes the elapsed count.
func (t *Timer) Reset() {
	t.Stop()
	t.elapsed.Store(0)
}

// Running reports whether the timer is ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Seconds returns the elapsed tick count.
func (t *Timer) Seconds() int64 {
	return t.elapsed.Load()
}

// Format renders seconds as MM:SS.
func Format(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

package timer

import (
	"testing"
	"time"
)

type manualTicks struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newManualTicks() *manualTicks {
	return &manualTicks{ch: make(chan time.Time), stopped: make(chan struct{}, 4)}
}

func (m *manualTicks) source(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() { m.stopped <- struct{}{} }
}

func newManualTimer(t *testing.T) (*Timer, *manualTicks, chan int64) {
	t.Helper()
	ticks := newManualTicks()
	seen := make(chan int64, 16)
	tm := New(WithTickSource(ticks.source))
	tm.onTick = func(n int64) { seen <- n }
	t.Cleanup(tm.Stop)
	return tm, ticks, seen
}

func waitTick(t *testing.T, seen chan int64, want int64) {
	t.Helper()
	select {
	case n := <-seen:
		if n != want {
			t.Fatalf("expected tick %d, got %d", want, n)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for tick %d", want)
	}
}

func TestTimerCountsTicks(t *testing.T) {
	tm, ticks, seen := newManualTimer(t)
	tm.Start()
	if !tm.Running() {
		t.Fatalf("expected running timer")
	}
	for i := int64(1); i <= 3; i++ {
		ticks.ch <- time.Now()
		waitTick(t, seen, i)
	}
	if got := tm.Seconds(); got != 3 {
		t.Fatalf("expected 3 seconds, got %d", got)
	}
}

func TestTimerStopReleasesTicker(t *testing.T) {
	tm, ticks, seen := newManualTimer(t)
	tm.Start()
	ticks.ch <- time.Now()
	waitTick(t, seen, 1)
	tm.Stop()
	select {
	case <-ticks.stopped:
	default:
		t.Fatalf("expected ticker to be stopped after Stop returns")
	}
	if tm.Running() {
		t.Fatalf("expected stopped timer")
	}
	if got := tm.Seconds(); got != 1 {
		t.Fatalf("expected elapsed count kept after stop, got %d", got)
	}
}

func TestTimerStopAndResetAreIdempotent(t *testing.T) {
	tm := New()
	tm.Stop()
	tm.Stop()
	tm.Reset()
	tm.Reset()
	if tm.Running() {
		t.Fatalf("expected stopped timer")
	}
	if tm.Seconds() != 0 {
		t.Fatalf("expected zero seconds")
	}
}

func TestTimerStartTwiceKeepsOneGoroutine(t *testing.T) {
	tm, ticks, seen := newManualTimer(t)
	tm.Start()
	tm.Start()
	ticks.ch <- time.Now()
	waitTick(t, seen, 1)
	tm.Stop()
	select {
	case <-ticks.stopped:
	default:
		t.Fatalf("expected one ticker stop")
	}
	select {
	case <-ticks.stopped:
		t.Fatalf("expected a single ticker, got two")
	default:
	}
}

func TestTimerResetZeroes(t *testing.T) {
	tm, ticks, seen := newManualTimer(t)
	tm.Start()
	ticks.ch <- time.Now()
	waitTick(t, seen, 1)
	tm.Reset()
	if tm.Seconds() != 0 || tm.Running() {
		t.Fatalf("expected reset timer, got seconds=%d running=%v", tm.Seconds(), tm.Running())
	}
}

func TestTimerRealTicker(t *testing.T) {
	seen := make(chan int64, 4)
	tm := New()
	tm.interval = 5 * time.Millisecond
	tm.onTick = func(n int64) {
		select {
		case seen <- n:
		default:
		}
	}
	tm.Start()
	defer tm.Stop()
	waitTick(t, seen, 1)
}

func TestFormat(t *testing.T) {
	tests := map[int64]string{0: "00:00", 59: "00:59", 61: "01:01", 3600: "60:00", -5: "00:00"}
	for in, want := range tests {
		if got := Format(in); got != want {
			t.Fatalf("Format(%d) = %q, want %q", in, got, want)
		}
	}
}

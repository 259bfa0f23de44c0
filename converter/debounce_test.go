package converter

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	if got := fired.Load(); got != 0 {
		t.Fatalf("fired during burst: %d", got)
	}

	waitFor(t, func() bool { return fired.Load() == 1 })
	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly one fire, got %d", got)
	}
}

func TestDebouncerFlushAndStop(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(time.Hour, func() { fired.Add(1) })

	if d.Flush() {
		t.Fatal("flush with nothing pending must report false")
	}
	d.Trigger()
	if !d.Pending() {
		t.Fatal("expected pending timer")
	}
	if !d.Flush() || fired.Load() != 1 {
		t.Fatalf("flush did not fire, count=%d", fired.Load())
	}
	if d.Pending() {
		t.Fatal("flush must disarm the timer")
	}

	d.Stop()
	d.Trigger()
	if d.Pending() || d.Flush() {
		t.Fatal("stopped debouncer must ignore triggers")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	d := New(30 * time.Millisecond)
	var calls int32
	var last atomic.Value

	for i := 0; i < 10; i++ {
		v := i
		d.Schedule(func() {
			atomic.AddInt32(&calls, 1)
			last.Store(v)
		})
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
	if got := last.Load().(int); got != 9 {
		t.Errorf("expected the latest call to win, got %d", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	d := New(time.Hour)
	ran := false
	d.Schedule(func() { ran = true })
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	d.Flush()
	if !ran {
		t.Error("Flush did not run the pending call")
	}
	if d.Pending() {
		t.Error("nothing should be pending after Flush")
	}
	// second flush is a no-op
	d.Flush()
}

func TestDebouncer_CancelAndStop(t *testing.T) {
	t.Run("cancel drops the call", func(t *testing.T) {
		d := New(10 * time.Millisecond)
		var calls int32
		d.Schedule(func() { atomic.AddInt32(&calls, 1) })
		d.Cancel()
		time.Sleep(50 * time.Millisecond)
		if atomic.LoadInt32(&calls) != 0 {
			t.Error("cancelled call ran")
		}
	})

	t.Run("stop ignores later schedules", func(t *testing.T) {
		d := New(10 * time.Millisecond)
		var calls int32
		d.Stop()
		d.Schedule(func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(50 * time.Millisecond)
		if atomic.LoadInt32(&calls) != 0 {
			t.Error("call scheduled after Stop ran")
		}
	})
}

package env

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestManualFrameOrder(t *testing.T) {
	m := NewManual(80, 40, epoch)

	var order []string
	m.OnFrame(func() { order = append(order, "first") })
	m.OnFrame(func() { order = append(order, "second") })

	m.Frame()

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("frame order = %v, want [first second]", order)
	}
	if m.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", m.Frames())
	}
}

func TestHandleCancelIsIdempotent(t *testing.T) {
	m := NewManual(80, 40, epoch)

	calls := 0
	h := m.OnFrame(func() { calls++ })
	m.Frame()
	h.Cancel()
	h.Cancel()
	m.Frame()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if frame, _, _, _ := m.Subscribers(); frame != 0 {
		t.Errorf("frame subscribers = %d, want 0", frame)
	}
}

func TestCancelDuringDispatchSkipsSubscriber(t *testing.T) {
	m := NewManual(80, 40, epoch)

	var second Handle
	secondCalls := 0
	m.OnFrame(func() { second.Cancel() })
	second = m.OnFrame(func() { secondCalls++ })

	m.Frame()

	if secondCalls != 0 {
		t.Errorf("cancelled subscriber ran %d times", secondCalls)
	}
}

func TestManualAdvanceFiresTimersInOrder(t *testing.T) {
	m := NewManual(80, 40, epoch)

	var fired []time.Time
	m.Every(time.Second, func() { fired = append(fired, m.Now()) })

	m.Advance(3500 * time.Millisecond)

	if len(fired) != 3 {
		t.Fatalf("fired %d times, want 3", len(fired))
	}
	for i, at := range fired {
		want := epoch.Add(time.Duration(i+1) * time.Second)
		if !at.Equal(want) {
			t.Errorf("tick %d at %v, want %v", i, at, want)
		}
	}
	if !m.Now().Equal(epoch.Add(3500 * time.Millisecond)) {
		t.Errorf("Now() = %v after advance", m.Now())
	}
}

func TestManualResizeAndPointer(t *testing.T) {
	m := NewManual(80, 40, epoch)

	var gotW, gotH int
	var gotX, gotY float64
	m.OnResize(func(w, h int) { gotW, gotH = w, h })
	m.OnPointerMove(func(x, y float64) { gotX, gotY = x, y })

	m.Resize(120, 60)
	m.PointerMove(3, 4)

	if gotW != 120 || gotH != 60 {
		t.Errorf("resize delivered %dx%d", gotW, gotH)
	}
	if w, h := m.Size(); w != 120 || h != 60 {
		t.Errorf("Size() = %dx%d after resize", w, h)
	}
	if gotX != 3 || gotY != 4 {
		t.Errorf("pointer delivered (%v,%v)", gotX, gotY)
	}
}

func TestCancelNilHandle(t *testing.T) {
	Cancel(nil)
}

func TestLoopRunsPostedWorkAndFrames(t *testing.T) {
	l := NewLoop(time.Millisecond, 10, 10)

	var frames, presents atomic.Int32
	var resized atomic.Bool
	l.OnFrame(func() { frames.Add(1) })
	l.OnResize(func(w, h int) {
		if w == 20 && h == 30 {
			resized.Store(true)
		}
	})
	l.Resize(20, 30)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, func() {
			if presents.Add(1) >= 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("loop did not stop")
	}

	if !resized.Load() {
		t.Error("resize was not dispatched")
	}
	if w, h := l.Size(); w != 20 || h != 30 {
		t.Errorf("Size() = %dx%d, want 20x30", w, h)
	}
	if frames.Load() < presents.Load() {
		t.Errorf("frames = %d, presents = %d", frames.Load(), presents.Load())
	}
}

func TestLoopTimerStopsOnCancel(t *testing.T) {
	l := NewLoop(time.Millisecond, 10, 10)

	var ticks atomic.Int32
	var h Handle
	h = l.Every(time.Millisecond, func() {
		if ticks.Add(1) == 2 {
			h.Cancel()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	l.Run(ctx, nil)

	if got := ticks.Load(); got != 2 {
		t.Errorf("ticks = %d, want 2", got)
	}
}

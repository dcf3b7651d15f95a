package env

import (
	"time"
)

// Manual is a deterministic environment. Nothing happens until the caller
// asks: Frame runs one animation frame, Advance moves the clock and fires due
// timers, Resize and PointerMove dispatch immediately. Manual is not safe for
// concurrent use.
type Manual struct {
	width  int
	height int
	now    time.Time
	frames int

	resize  hub[func(width, height int)]
	pointer hub[func(x, y float64)]
	frame   hub[func()]
	timers  []*manualTimer
}

// Compile-time check that Manual is a full environment.
var (
	_ Viewport = (*Manual)(nil)
	_ Timer    = (*Manual)(nil)
)

// NewManual creates a manual environment with the given viewport size and
// starting wall-clock time.
func NewManual(width, height int, now time.Time) *Manual {
	return &Manual{width: width, height: height, now: now}
}

// Size returns the current viewport size.
func (m *Manual) Size() (width, height int) {
	return m.width, m.height
}

// Now returns the manual wall-clock time.
func (m *Manual) Now() time.Time {
	return m.now
}

// SetNow moves the clock without firing timers. Useful for simulating clock
// corrections.
func (m *Manual) SetNow(now time.Time) {
	m.now = now
}

// OnResize registers fn to run after every viewport resize.
func (m *Manual) OnResize(fn func(width, height int)) Handle {
	return m.resize.add(fn)
}

// OnPointerMove registers fn to run for every pointer sample.
func (m *Manual) OnPointerMove(fn func(x, y float64)) Handle {
	return m.pointer.add(fn)
}

// OnFrame registers fn to run on every Frame call.
func (m *Manual) OnFrame(fn func()) Handle {
	return m.frame.add(fn)
}

// Every schedules fn to run each time Advance crosses a multiple of interval
// from now.
func (m *Manual) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		interval = time.Millisecond
	}
	t := &manualTimer{interval: interval, next: m.now.Add(interval), fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Frame runs one animation frame.
func (m *Manual) Frame() {
	m.frames++
	m.frame.each(func(fn func()) {
		fn()
	})
}

// Frames reports how many frames have run.
func (m *Manual) Frames() int {
	return m.frames
}

// Resize changes the viewport size and notifies subscribers.
func (m *Manual) Resize(width, height int) {
	m.width = width
	m.height = height
	m.resize.each(func(fn func(int, int)) {
		fn(width, height)
	})
}

// PointerMove delivers a pointer sample to subscribers.
func (m *Manual) PointerMove(x, y float64) {
	m.pointer.each(func(fn func(float64, float64)) {
		fn(x, y)
	})
}

// Advance moves the clock forward by d, firing due timers in time order. The
// clock reads each timer's due time while its callback runs.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		due := m.nextDue(target)
		if due == nil {
			break
		}
		m.now = due.next
		due.next = due.next.Add(due.interval)
		due.fn()
	}
	m.now = target
}

func (m *Manual) nextDue(limit time.Time) *manualTimer {
	var earliest *manualTimer
	for _, t := range m.timers {
		if t.cancelled || t.next.After(limit) {
			continue
		}
		if earliest == nil || t.next.Before(earliest.next) {
			earliest = t
		}
	}
	return earliest
}

// Subscribers reports live registrations per kind: frame, resize, pointer
// and timer.
func (m *Manual) Subscribers() (frame, resize, pointer, timers int) {
	for _, t := range m.timers {
		if !t.cancelled {
			timers++
		}
	}
	return m.frame.len(), m.resize.len(), m.pointer.len(), timers
}

type manualTimer struct {
	interval  time.Duration
	next      time.Time
	fn        func()
	cancelled bool
}

func (t *manualTimer) Cancel() {
	t.cancelled = true
}

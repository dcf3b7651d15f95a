// Package countdown tracks the time left until the recurring monthly launch
// and fires a one-time callback when it is reached.
package countdown

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/env"
)

// ErrClockUnavailable is returned by Start when there is no usable time
// source or timer.
var ErrClockUnavailable = errors.New("countdown: clock unavailable")

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the local wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// ReadClock reads c once. A missing clock, a nil ClockFunc, a clock that
// panics and one that reads the zero time are all ErrClockUnavailable.
func ReadClock(c Clock) (now time.Time, err error) {
	if c == nil {
		return time.Time{}, ErrClockUnavailable
	}
	if f, ok := c.(ClockFunc); ok && f == nil {
		return time.Time{}, fmt.Errorf("%w: nil ClockFunc", ErrClockUnavailable)
	}
	defer func() {
		if r := recover(); r != nil {
			now, err = time.Time{}, fmt.Errorf("%w: %v", ErrClockUnavailable, r)
		}
	}()

	now = c.Now()
	if now.IsZero() {
		return now, ErrClockUnavailable
	}
	return now, nil
}

// Phase is the engine's position in its two-state lifecycle.
type Phase int

const (
	Counting Phase = iota // Waiting for the target
	Launched              // Terminal; never left
)

func (p Phase) String() string {
	switch p {
	case Counting:
		return "counting"
	case Launched:
		return "launched"
	default:
		return "unknown"
	}
}

// State is what the engine publishes after every tick.
type State struct {
	Remaining
	Target   time.Time
	Launched bool
}

// Options configures an Engine.
type Options struct {
	Clock     Clock
	Timer     env.Timer
	Interval  time.Duration // Defaults to one second
	LaunchDay int           // Defaults to config.LaunchDay
	OnLaunch  func()        // Called once, on the Counting -> Launched transition
	OnUpdate  func(State)   // Called after every tick
}

// Engine recomputes the remaining time on every tick. Tick, Start and Stop
// are meant to be called from one goroutine (the timer's); State may be read
// from anywhere.
type Engine struct {
	clock     Clock
	timer     env.Timer
	interval  time.Duration
	launchDay int
	onLaunch  func()
	onUpdate  func(State)

	phase      Phase
	lastTarget time.Time
	schedule   env.Handle

	mu    sync.RWMutex
	state State
}

// NewEngine creates an engine in the Counting phase.
func NewEngine(opts Options) *Engine {
	interval := opts.Interval
	if interval <= 0 {
		interval = config.CountdownInterval
	}
	day := opts.LaunchDay
	if day < 1 || day > 28 {
		day = config.LaunchDay
	}
	return &Engine{
		clock:     opts.Clock,
		timer:     opts.Timer,
		interval:  interval,
		launchDay: day,
		onLaunch:  opts.OnLaunch,
		onUpdate:  opts.OnUpdate,
	}
}

// Start ticks once immediately and then once per interval until Stop.
// Starting a running engine is a no-op.
func (e *Engine) Start() error {
	if e.timer == nil {
		return fmt.Errorf("%w: no timer", ErrClockUnavailable)
	}
	if e.schedule != nil {
		return nil
	}
	now, err := ReadClock(e.clock)
	if err != nil {
		return err
	}

	e.Tick(now)
	e.schedule = e.timer.Every(e.interval, func() {
		e.Tick(e.clock.Now())
	})
	return nil
}

// Stop cancels the periodic schedule. Safe to call repeatedly and before
// Start.
func (e *Engine) Stop() {
	env.Cancel(e.schedule)
	e.schedule = nil
}

// Tick recomputes the target for now and publishes the remaining time.
//
// The transition to Launched is edge-triggered: it fires when the remaining
// time is zero, or when now has reached the target published by the previous
// tick (the target rolls forward as soon as it passes, so a late tick only
// sees the next month's target).
func (e *Engine) Tick(now time.Time) State {
	target := TargetOn(now, e.launchDay)
	diff := target.Sub(now)
	crossed := !e.lastTarget.IsZero() && !now.Before(e.lastTarget)
	e.lastTarget = target

	fire := false
	if e.phase == Counting && (diff <= 0 || crossed) {
		e.phase = Launched
		fire = true
	}

	st := State{Target: target, Launched: e.phase == Launched}
	if !st.Launched {
		st.Remaining = Breakdown(diff)
	}

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()

	if fire && e.onLaunch != nil {
		e.onLaunch()
	}
	if e.onUpdate != nil {
		e.onUpdate(st)
	}
	return st
}

// State returns the most recently published state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Running reports whether the periodic schedule is active.
func (e *Engine) Running() bool {
	return e.schedule != nil
}

// Package env provides the viewport and timer environment the display
// subsystems run in. Loop is the cooperative single-goroutine environment
// used by the binaries; Manual drives the same callbacks synchronously for
// tests.
package env

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handle is an owned registration returned when subscribing to the
// environment. Cancel stops further callbacks and is safe to call more than
// once.
type Handle interface {
	Cancel()
}

// Viewport supplies the current drawable size plus resize, pointer-move and
// per-frame notifications. Sizes are in surface pixels.
type Viewport interface {
	Size() (width, height int)
	OnResize(fn func(width, height int)) Handle
	OnPointerMove(fn func(x, y float64)) Handle
	OnFrame(fn func()) Handle
}

// Timer schedules a callback to run repeatedly at a fixed wall-clock interval.
type Timer interface {
	Every(interval time.Duration, fn func()) Handle
}

// hub keeps subscribers in registration order.
type hub[F any] struct {
	mu   sync.Mutex
	subs []*hubHandle[F]
}

func (h *hub[F]) add(fn F) Handle {
	sub := &hubHandle[F]{hub: h, fn: fn}
	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()
	return sub
}

func (h *hub[F]) remove(sub *hubHandle[F]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s == sub {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

// each calls visit for every live subscriber. It iterates a snapshot so
// callbacks may subscribe or cancel while being dispatched; a subscriber
// cancelled mid-dispatch is skipped.
func (h *hub[F]) each(visit func(fn F)) {
	h.mu.Lock()
	subs := make([]*hubHandle[F], len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		if s.cancelled.Load() {
			continue
		}
		visit(s.fn)
	}
}

func (h *hub[F]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

type hubHandle[F any] struct {
	hub       *hub[F]
	fn        F
	cancelled atomic.Bool
}

func (h *hubHandle[F]) Cancel() {
	if h.cancelled.CompareAndSwap(false, true) {
		h.hub.remove(h)
	}
}

// Cancel cancels h if it is non-nil. Convenience for owners that keep a nil
// handle until started.
func Cancel(h Handle) {
	if h != nil {
		h.Cancel()
	}
}

package env

import (
	"context"
	"sync"
	"time"
)

// Loop is a cooperative event loop. All subscriber callbacks, posted work,
// timer ticks and frame callbacks run on the goroutine that calls Run, so
// subscribers never need their own locking. Resize, PointerMove and Post are
// safe to call from any goroutine and never block.
type Loop struct {
	frameInterval time.Duration

	mu     sync.Mutex
	width  int
	height int
	queue  []func()

	wake     chan struct{}
	done     chan struct{}
	doneOnce sync.Once

	resize  hub[func(width, height int)]
	pointer hub[func(x, y float64)]
	frame   hub[func()]
}

// Compile-time check that Loop is a full environment.
var (
	_ Viewport = (*Loop)(nil)
	_ Timer    = (*Loop)(nil)
)

// NewLoop creates a loop that fires frame callbacks every frameInterval over
// a viewport of the given initial size.
func NewLoop(frameInterval time.Duration, width, height int) *Loop {
	if frameInterval <= 0 {
		frameInterval = time.Second / 60
	}
	return &Loop{
		frameInterval: frameInterval,
		width:         width,
		height:        height,
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// Size returns the current viewport size.
func (l *Loop) Size() (width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.width, l.height
}

// OnResize registers fn to run after every viewport resize.
func (l *Loop) OnResize(fn func(width, height int)) Handle {
	return l.resize.add(fn)
}

// OnPointerMove registers fn to run for every pointer sample.
func (l *Loop) OnPointerMove(fn func(x, y float64)) Handle {
	return l.pointer.add(fn)
}

// OnFrame registers fn to run once per frame, before the frame is presented.
func (l *Loop) OnFrame(fn func()) Handle {
	return l.frame.add(fn)
}

// Every runs fn on the loop goroutine once per interval until the handle is
// cancelled or the loop stops.
func (l *Loop) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		interval = l.frameInterval
	}
	t := &loopTimer{stop: make(chan struct{})}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if !t.cancelled() {
						fn()
					}
				})
			case <-t.stop:
				return
			case <-l.done:
				return
			}
		}
	}()

	return t
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Resize records a new viewport size and notifies resize subscribers on the
// loop goroutine. A resize posted before a frame is visible to that frame.
func (l *Loop) Resize(width, height int) {
	l.Post(func() {
		l.mu.Lock()
		l.width = width
		l.height = height
		l.mu.Unlock()

		l.resize.each(func(fn func(int, int)) {
			fn(width, height)
		})
	})
}

// PointerMove delivers a pointer sample to subscribers on the loop goroutine.
func (l *Loop) PointerMove(x, y float64) {
	l.Post(func() {
		l.pointer.each(func(fn func(float64, float64)) {
			fn(x, y)
		})
	})
}

// Run drives the loop until ctx is cancelled. Each frame drains pending work,
// runs the frame callbacks in registration order and then calls present, if
// non-nil, so it observes everything drawn during the frame.
func (l *Loop) Run(ctx context.Context, present func()) {
	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()
	defer l.doneOnce.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
			l.drain()
		case <-ticker.C:
			l.drain()
			l.frame.each(func(fn func()) {
				fn()
			})
			if present != nil {
				present()
			}
		}
	}
}

// drain runs queued work, including work queued while draining.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		queue := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(queue) == 0 {
			return
		}
		for _, fn := range queue {
			fn()
		}
	}
}

type loopTimer struct {
	stop chan struct{}
	once sync.Once
}

func (t *loopTimer) Cancel() {
	t.once.Do(func() {
		close(t.stop)
	})
}

func (t *loopTimer) cancelled() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

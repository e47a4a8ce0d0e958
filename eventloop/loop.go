// Package eventloop integrates futures with a single-threaded cooperative
// scheduler. Bind adapts a Future into a loop-affine Future without keeping
// a goroutine blocked on it; Loop is a minimal scheduler for programs that
// do not already have one.
package eventloop

import (
	"context"
	"log"
	"sync"

	"github.com/saltfishpr/futures/routine"
)

// Scheduler posts work onto a cooperative loop. Schedule must be safe to
// call from any goroutine and must never invoke fn directly on the calling
// goroutine; delivery is a message-passing handoff to the loop goroutine.
type Scheduler interface {
	Schedule(fn func())
}

// Loop is a single-threaded run queue. Functions posted with Schedule run
// in FIFO order on the goroutine that called Run. The zero value is not
// usable; create a Loop with New.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Schedule posts fn to the loop. It is safe for concurrent use and never
// blocks beyond the queue mutex.
func (l *Loop) Schedule(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes posted functions on the calling goroutine until ctx is
// done, then drains what was already queued and returns. A panicking
// function is isolated and logged; it does not stop the loop.
func (l *Loop) Run(ctx context.Context) {
	for {
		l.drain()
		select {
		case <-l.wake:
		case <-ctx.Done():
			l.drain()
			return
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		q := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(q) == 0 {
			return
		}
		for _, fn := range q {
			routine.RunSafe(fn, func(r interface{}) {
				log.Printf("eventloop: task panic: %v", routine.NewRecovered(2, r).AsError())
			})
		}
	}
}

package event

import (
	"sync"
	"time"
)

// WaitResult reports how a call to [Event.Wait] returned.
type WaitResult int

const (
	// Signaled means the event was set.
	Signaled WaitResult = iota
	// Interrupted means the Interruptor fired before the event was set.
	// The event is not consumed; the caller may re-enter Wait with the
	// same deadline after checking Interruptor.Pending.
	Interrupted
	// TimedOut means the deadline elapsed before the event was set.
	TimedOut
)

func (r WaitResult) String() string {
	switch r {
	case Signaled:
		return "signaled"
	case Interrupted:
		return "interrupted"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Event is a one-shot binary event. The zero value is an unset Event ready
// for use. An Event must not be copied after first use.
//
// Set and Wait may be called from different goroutines. A Set that
// happens-before a Wait call is always observed: Wait never blocks once the
// event is set.
type Event struct {
	once sync.Once
	mu   sync.Mutex
	done chan struct{}
	set  bool
}

func (e *Event) lazyInit() {
	e.once.Do(func() {
		e.done = make(chan struct{})
	})
}

// Set puts the event in the set state and wakes the waiter. It is
// idempotent, callable from any goroutine, and never blocks.
func (e *Event) Set() {
	e.lazyInit()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set {
		return
	}
	e.set = true
	close(e.done)
}

// IsSet reports whether the event has been set.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

// Wait blocks until the event is set, deadline elapses, or intr fires.
//
// A zero deadline means wait forever. A deadline in the past performs a
// single non-blocking poll and reports TimedOut if the event is unset.
// intr may be nil, in which case the wait is uninterruptible.
//
// Wait parks the calling goroutine; it never spins. On Interrupted the
// event is left as-is, so the caller can consult intr.Pending and re-enter
// Wait without losing a concurrent Set.
func (e *Event) Wait(deadline time.Time, intr Interruptor) WaitResult {
	e.lazyInit()

	var intrCh <-chan struct{}
	if intr != nil {
		intrCh = intr.Done()
	}

	if deadline.IsZero() {
		select {
		case <-e.done:
			return Signaled
		case <-intrCh:
			return Interrupted
		}
	}

	// 截止时间已过：只轮询一次，不阻塞。
	d := time.Until(deadline)
	if d <= 0 {
		select {
		case <-e.done:
			return Signaled
		default:
			return TimedOut
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-e.done:
		return Signaled
	case <-intrCh:
		return Interrupted
	case <-timer.C:
		return TimedOut
	}
}

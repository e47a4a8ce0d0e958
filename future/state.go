package future

import (
	"log"
	"sync"

	"github.com/saltfishpr/futures/routine"
)

// CallbackID identifies a registered completion callback. The zero value is
// never a live registration.
type CallbackID uint64

type doneCallback[T any] struct {
	id CallbackID
	fn func(*Future[T])
}

// cancelNode is a node in the intrusive ring of cancel callbacks. The ring
// has a sentinel head stored in the state; empty means head.next == head.
// Nodes are owned by the waiting or bridging operation that registered them
// and are always unlinked before that operation returns.
type cancelNode struct {
	prev, next *cancelNode
	fn         func()
}

// unlink removes n from its ring. Idempotent. Caller holds the state mutex.
func (n *cancelNode) unlink() {
	if n.next == nil {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = nil
	n.prev = nil
}

// state is the completion state shared by a Promise and its Future. All
// fields are guarded by mu; callbacks are always invoked with mu released.
type state[T any] struct {
	mu sync.Mutex

	done      bool
	cancelled bool
	hasResult bool
	val       T
	err       error

	forceRequested bool
	forceFn        func()

	nextID     CallbackID
	callbacks  []doneCallback[T]
	cancelHead cancelNode
	unregister func()

	future *Future[T]
}

func newState[T any]() *state[T] {
	s := &state[T]{}
	s.cancelHead.next = &s.cancelHead
	s.cancelHead.prev = &s.cancelHead
	s.future = &Future[T]{state: s}
	return s
}

// set stores the result. The first call wins; it reports false if a result
// was already stored. A result arriving after cancellation is still
// accepted (the producer may finish normally while racing with a cancel)
// but completion callbacks are not fired a second time.
func (s *state[T]) set(val T, err error) bool {
	s.mu.Lock()
	if s.hasResult {
		s.mu.Unlock()
		return false
	}
	s.val = val
	s.err = err
	s.hasResult = true
	var cbs []doneCallback[T]
	fire := !s.done
	if fire {
		s.done = true
		cbs = s.takeCallbacksLocked()
	}
	s.mu.Unlock()
	if fire {
		s.runCallbacks(cbs)
	}
	return true
}

// cancel transitions a pending state to done with the cancelled flag set,
// firing cancel callbacks and then completion callbacks. It reports whether
// the cancellation took effect.
func (s *state[T]) cancel() bool {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return false
	}
	s.done = true
	s.cancelled = true
	var cancelFns []func()
	for n := s.cancelHead.next; n != &s.cancelHead; n = n.next {
		cancelFns = append(cancelFns, n.fn)
	}
	cbs := s.takeCallbacksLocked()
	s.mu.Unlock()
	for _, fn := range cancelFns {
		invokeIsolated(fn)
	}
	s.runCallbacks(cbs)
	return true
}

func (s *state[T]) force() {
	s.mu.Lock()
	if s.done || s.forceRequested {
		s.mu.Unlock()
		return
	}
	s.forceRequested = true
	fn := s.forceFn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *state[T]) isDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *state[T]) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *state[T]) isFree() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.hasResult
}

// addDoneCallback registers fn to run when the state becomes done. If the
// state is already done, fn runs immediately on the calling goroutine and
// the returned id is zero (there is nothing to remove).
func (s *state[T]) addDoneCallback(fn func(*Future[T])) CallbackID {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		s.invoke(fn)
		return 0
	}
	s.nextID++
	id := s.nextID
	s.callbacks = append(s.callbacks, doneCallback[T]{id: id, fn: fn})
	s.mu.Unlock()
	return id
}

// removeDoneCallback unregisters the callback with the given id, reporting
// how many entries were removed (zero or one). Removing the last callback
// releases the upstream registration hookup, if any.
func (s *state[T]) removeDoneCallback(id CallbackID) int {
	s.mu.Lock()
	removed := 0
	kept := s.callbacks[:0]
	for _, cb := range s.callbacks {
		if cb.id == id {
			removed++
			continue
		}
		kept = append(kept, cb)
	}
	s.callbacks = kept
	var unregister func()
	if removed > 0 && len(s.callbacks) == 0 {
		unregister = s.unregister
		s.unregister = nil
	}
	s.mu.Unlock()
	if unregister != nil {
		unregister()
	}
	return removed
}

// addCancelCallback links a node into the cancel ring. If the state is
// already cancelled, fn runs immediately and a detached node is returned;
// if the state is done without cancellation, fn will never run.
func (s *state[T]) addCancelCallback(fn func()) *cancelNode {
	n := &cancelNode{fn: fn}
	s.mu.Lock()
	if s.done {
		cancelled := s.cancelled
		s.mu.Unlock()
		if cancelled {
			invokeIsolated(fn)
		}
		return n
	}
	n.prev = s.cancelHead.prev
	n.next = &s.cancelHead
	n.prev.next = n
	s.cancelHead.prev = n
	s.mu.Unlock()
	return n
}

func (s *state[T]) removeCancelCallback(n *cancelNode) {
	s.mu.Lock()
	n.unlink()
	s.mu.Unlock()
}

// peek decodes the settled state. Caller must know the state is done.
func (s *state[T]) peek() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		var zero T
		return zero, ErrCancelled
	}
	return s.val, s.err
}

func (s *state[T]) takeCallbacksLocked() []doneCallback[T] {
	cbs := s.callbacks
	s.callbacks = nil
	return cbs
}

// runCallbacks fires completion callbacks in registration order, outside
// the mutex. A panicking callback is isolated and reported; it does not
// abort the remaining callbacks.
func (s *state[T]) runCallbacks(cbs []doneCallback[T]) {
	for _, cb := range cbs {
		s.invoke(cb.fn)
	}
}

func (s *state[T]) invoke(fn func(*Future[T])) {
	invokeIsolated(func() { fn(s.future) })
}

func invokeIsolated(fn func()) {
	routine.RunSafe(fn, func(r interface{}) {
		reportUnraisable(routine.NewRecovered(2, r).AsError())
	})
}

var (
	unraisableMu      sync.RWMutex
	unraisableHandler = func(err error) {
		log.Printf("future: callback panic: %v", err)
	}
)

// SetUnraisableHandler replaces the handler that receives errors recovered
// from panicking completion and cancel callbacks. The handler must not be
// nil. The default handler writes to the standard logger.
func SetUnraisableHandler(h func(error)) {
	if h == nil {
		panic("unraisable handler is nil")
	}
	unraisableMu.Lock()
	unraisableHandler = h
	unraisableMu.Unlock()
}

func reportUnraisable(err error) {
	unraisableMu.RLock()
	h := unraisableHandler
	unraisableMu.RUnlock()
	h(err)
}

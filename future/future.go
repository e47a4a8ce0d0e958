// Package future provides a Promise-Future pair for consuming asynchronous
// results in three compatible ways: blocking with a timeout or deadline,
// blocking interruptibly (so a stuck wait can still react to a context
// cancellation or a process signal), and non-blocking via completion
// callbacks, including hand-off into a single-threaded cooperative loop
// (see the eventloop package).
package future

// Promise is the producer handle of a Promise-Future pair. It stores a
// value or an error that is later acquired through the paired Future.
// A Promise is meant to be resolved exactly once.
//
// The operation that stores a result synchronizes-with (as defined in Go's
// memory model) the return of any call waiting on the shared state, such as
// Future.Result.
//
// A Promise must not be copied after first use.
type Promise[T any] struct {
	state *state[T]
}

// SetResult marks the linked Future as successfully completed with val.
// It panics if the Promise already holds a result; use TrySetResult when
// producers may race.
func (p *Promise[T]) SetResult(val T) {
	if !p.state.set(val, nil) {
		panic("promise already satisfied")
	}
}

// SetError marks the linked Future as unsuccessfully completed with err.
// It panics if the Promise already holds a result; use TrySetError when
// producers may race.
func (p *Promise[T]) SetError(err error) {
	var zero T
	if !p.state.set(zero, err) {
		panic("promise already satisfied")
	}
}

// TrySetResult stores val if no result was stored yet, reporting whether it
// won. A result is accepted even after the Future was cancelled: the
// cancellation flag and the stored result are independent, and consumers
// that observed the cancellation keep decoding ErrCancelled.
func (p *Promise[T]) TrySetResult(val T) bool {
	return p.state.set(val, nil)
}

// TrySetError stores err if no result was stored yet, reporting whether it
// won.
func (p *Promise[T]) TrySetError(err error) bool {
	var zero T
	return p.state.set(zero, err)
}

// Future returns the Future linked to this Promise.
func (p *Promise[T]) Future() *Future[T] {
	return p.state.future
}

// Free reports whether no result has been stored yet.
func (p *Promise[T]) Free() bool {
	return p.state.isFree()
}

// Future is the consumer handle for an asynchronous result.
//
// A Future can be consumed by blocking on Result or Err, by registering a
// completion callback with AddDoneCallback, or by bridging it into a
// cooperative loop with eventloop.Bind. All three can be mixed freely on
// the same Future from multiple goroutines.
//
// A Future must not be copied after first use.
type Future[T any] struct {
	state *state[T]
}

// Done reports whether the Future has completed or been cancelled.
func (f *Future[T]) Done() bool {
	return f.state.isDone()
}

// Cancelled reports whether the Future has been cancelled.
func (f *Future[T]) Cancelled() bool {
	return f.state.isCancelled()
}

// Force requests that the producer begin work. It is idempotent and
// returns immediately; it is called automatically by Result and Err, but
// must be called explicitly when only AddDoneCallback is used.
func (f *Future[T]) Force() {
	f.state.force()
}

// Cancel requests cancellation. If the Future is still pending it becomes
// done in the cancelled state: cancel callbacks fire first, then completion
// callbacks, and Cancel reports true. Cancellation is advisory — a running
// producer is not preempted, and a result it stores afterwards is still
// accepted — but consumers of a cancelled Future always observe
// ErrCancelled. If the Future is already done, Cancel is a no-op and
// reports false.
func (f *Future[T]) Cancel() bool {
	return f.state.cancel()
}

// AddDoneCallback registers cb to run exactly once when the Future becomes
// done, in registration order relative to other callbacks. If the Future is
// already done, cb runs immediately on the calling goroutine and the zero
// CallbackID is returned.
//
// cb may run on whichever goroutine completes or cancels the Future and
// must not block. A panic inside cb is isolated and reported through the
// unraisable handler.
func (f *Future[T]) AddDoneCallback(cb func(*Future[T])) CallbackID {
	return f.state.addDoneCallback(cb)
}

// RemoveDoneCallback unregisters a callback previously registered with
// AddDoneCallback, reporting how many entries were removed. A callback
// removed before completion is guaranteed never to fire.
func (f *Future[T]) RemoveDoneCallback(id CallbackID) int {
	return f.state.removeDoneCallback(id)
}

// OnCancel registers fn to run if the Future is cancelled before it
// completes, and returns a stop function that unregisters it in O(1).
// If the Future is already cancelled, fn runs immediately. Producers use
// this to observe advisory cancellation.
func (f *Future[T]) OnCancel(fn func()) (stop func()) {
	n := f.state.addCancelCallback(fn)
	return func() { f.state.removeCancelCallback(n) }
}

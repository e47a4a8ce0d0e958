package future

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/saltfishpr/futures/routine"
)

var (
	// ErrPanic wraps a panic recovered from a submitted producer function.
	ErrPanic = errors.New("async panic")
	// ErrTimeout is returned by Result and Err when the configured timeout
	// or deadline elapses before the Future completes.
	ErrTimeout = errors.New("future timeout")
	// ErrCancelled is observed by consumers of a cancelled Future.
	ErrCancelled = errors.New("future cancelled")
)

type pairConfig struct {
	forceFn    func()
	unregister func()
}

// PairOption configures a Promise-Future pair created by NewPair.
type PairOption func(*pairConfig)

// WithForceFunc registers fn to be called once, outside the state lock, the
// first time the Future is forced. Producers use it to defer starting work
// until a consumer asks for the result.
func WithForceFunc(fn func()) PairOption {
	return func(c *pairConfig) {
		c.forceFn = fn
	}
}

// WithRegistration attaches an upstream listener hookup to the pair.
// unregister is invoked when the last completion callback is removed, so
// upstream subscriptions are not leaked by listeners that lost interest.
func WithRegistration(unregister func()) PairOption {
	return func(c *pairConfig) {
		c.unregister = unregister
	}
}

// NewPair creates a linked Promise and Future sharing one completion state.
// A pair created without WithForceFunc has no producer hookup of its own;
// cancelling its Future settles it immediately with ErrCancelled.
func NewPair[T any](opts ...PairOption) (*Promise[T], *Future[T]) {
	var cfg pairConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	s := newState[T]()
	s.forceFn = cfg.forceFn
	s.unregister = cfg.unregister
	return &Promise[T]{state: s}, s.future
}

// Done returns an already-completed Future holding val.
func Done[T any](val T) *Future[T] {
	return Done2(val, nil)
}

// Done2 returns an already-completed Future holding val and err.
func Done2[T any](val T, err error) *Future[T] {
	s := newState[T]()
	s.set(val, err)
	return s.future
}

// Await blocks until f is done or ctx is cancelled. It is shorthand for
// f.Result(WithContext(ctx)).
func Await[T any](ctx context.Context, f *Future[T]) (T, error) {
	return f.Result(WithContext(ctx))
}

// Then returns a Future for cb applied to f's outcome. The derived Future
// is forced by forcing f; its subscription on f is released automatically
// if the derived Future's last completion callback is removed.
func Then[T any, R any](f *Future[T], cb func(T, error) (R, error)) *Future[R] {
	p, derived := NewPair[R](WithForceFunc(f.Force))
	id := f.AddDoneCallback(func(src *Future[T]) {
		val, err := src.state.peek()
		rval, rerr := cb(val, err)
		if rerr != nil {
			p.TrySetError(rerr)
		} else {
			p.TrySetResult(rval)
		}
	})
	if id != 0 {
		derived.state.mu.Lock()
		if !derived.state.done {
			derived.state.unregister = func() { f.RemoveDoneCallback(id) }
		}
		derived.state.mu.Unlock()
	}
	return derived
}

// AllOf returns a Future that completes with all values once every input
// completes, or with the first error.
func AllOf[T any](fs ...*Future[T]) *Future[[]T] {
	if len(fs) == 0 {
		return Done[[]T](nil)
	}

	p, all := NewPair[[]T](WithForceFunc(func() {
		for _, f := range fs {
			f.Force()
		}
	}))
	var failed uint32
	c := int32(len(fs))
	results := make([]T, len(fs))
	for i, f := range fs {
		i := i
		f.AddDoneCallback(func(src *Future[T]) {
			val, err := src.state.peek()
			if err != nil {
				if atomic.CompareAndSwapUint32(&failed, 0, 1) {
					p.TrySetError(err)
				}
			} else {
				results[i] = val
				if atomic.AddInt32(&c, -1) == 0 {
					p.TrySetResult(results)
				}
			}
		})
	}
	return all
}

// Async runs f on the default executor and returns a Future for its result.
func Async[T any](f func() (T, error)) *Future[T] {
	return Submit(executor, f)
}

// CtxAsync runs f on the default executor. The context passed to f is
// cancelled when the returned Future is cancelled.
func CtxAsync[T any](ctx context.Context, f func(ctx context.Context) (T, error)) *Future[T] {
	return CtxSubmit(ctx, executor, f)
}

// Submit runs f on e immediately and returns a Future for its result.
func Submit[T any](e Executor, f func() (T, error)) *Future[T] {
	d := Deferred(e, func(context.Context) (T, error) { return f() })
	d.Force()
	return d
}

// CtxSubmit runs f on e immediately. The context passed to f derives from
// ctx and is additionally cancelled when the returned Future is cancelled,
// which is how advisory cancellation reaches the producer.
func CtxSubmit[T any](ctx context.Context, e Executor, f func(ctx context.Context) (T, error)) *Future[T] {
	s := newState[T]()
	p := &Promise[T]{state: s}
	s.forceFn = func() {
		e.Submit(func() { produce(ctx, p, f) })
	}
	s.future.Force()
	return s.future
}

// Deferred is like CtxSubmit but lazy: f is not submitted to e until the
// returned Future is forced, by Force or by a first blocking consumer.
func Deferred[T any](e Executor, f func(ctx context.Context) (T, error)) *Future[T] {
	s := newState[T]()
	p := &Promise[T]{state: s}
	s.forceFn = func() {
		e.Submit(func() { produce(context.Background(), p, f) })
	}
	return s.future
}

// produce runs a producer function, translating Future cancellation into
// context cancellation and a panic into an ErrPanic result. It resolves
// with TrySet because a racing Cancel may have settled the consumer view
// already; the result is still accepted.
func produce[T any](ctx context.Context, p *Promise[T], f func(ctx context.Context) (T, error)) {
	ctx, cancel := context.WithCancel(ctx)
	stop := p.Future().OnCancel(cancel)
	defer stop()
	defer cancel()

	var val T
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrPanic, routine.NewRecovered(2, r).AsError())
			}
		}()
		val, err = f(ctx)
	}()
	if err != nil {
		p.TrySetError(err)
	} else {
		p.TrySetResult(val)
	}
}

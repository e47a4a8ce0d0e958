package future

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/saltfishpr/futures/event"
)

type waitOptions struct {
	deadline   time.Time
	timeout    time.Duration
	hasTimeout bool
	intr       event.Interruptor
}

// WaitOption configures a blocking call to Result or Err.
type WaitOption func(*waitOptions)

// WithTimeout bounds the wait to at most d from now. A non-positive d makes
// the call a single non-blocking poll.
func WithTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.timeout = d
		o.hasTimeout = true
	}
}

// WithDeadline bounds the wait to the absolute time t.
func WithDeadline(t time.Time) WaitOption {
	return func(o *waitOptions) {
		o.deadline = t
	}
}

// WithInterruptor makes the wait abort with the interruptor's pending error
// when an asynchronous interrupt is delivered.
func WithInterruptor(intr event.Interruptor) WaitOption {
	return func(o *waitOptions) {
		o.intr = intr
	}
}

// WithContext makes the wait interruptible by ctx cancellation; the wait
// then fails with ctx.Err.
func WithContext(ctx context.Context) WaitOption {
	return WithInterruptor(event.ContextInterruptor(ctx))
}

// waitDeadline picks the effective absolute deadline: the earlier of the
// explicit deadline and now+timeout. Zero means wait forever.
func (o *waitOptions) waitDeadline() time.Time {
	d := o.deadline
	if o.hasTimeout {
		t := time.Now().Add(o.timeout)
		if d.IsZero() || t.Before(d) {
			d = t
		}
	}
	return d
}

// Result forces the Future, blocks until it is done, and returns the
// stored value or error. A cancelled Future yields ErrCancelled regardless
// of any stored value. The wait itself can fail with ErrTimeout once the
// configured timeout or deadline elapses, or with the interruptor's error
// when an interrupt is delivered; use errors.Is to tell wait failures from
// a stored producer error.
func (f *Future[T]) Result(opts ...WaitOption) (T, error) {
	o := applyWaitOptions(opts)
	if err := f.wait(o.waitDeadline(), o.intr); err != nil {
		var zero T
		return zero, err
	}
	return f.state.peek()
}

// Err forces the Future, blocks until it is done, and returns the stored
// error, nil if the Future completed successfully, or ErrCancelled if it
// was cancelled. Like Result, the wait itself can fail with ErrTimeout or
// an interrupt error.
func (f *Future[T]) Err(opts ...WaitOption) error {
	o := applyWaitOptions(opts)
	if err := f.wait(o.waitDeadline(), o.intr); err != nil {
		return err
	}
	_, err := f.state.peek()
	return err
}

func applyWaitOptions(opts []WaitOption) *waitOptions {
	o := &waitOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// wait blocks until the Future is done, the deadline elapses, or intr
// delivers a genuine interrupt. Both callback registrations are scoped to
// this call: they are removed on every exit path, because the event and
// its capturing closures are stack-local.
func (f *Future[T]) wait(deadline time.Time, intr event.Interruptor) error {
	f.Force()
	s := f.state
	if s.isDone() {
		return nil
	}

	var ev event.Event
	node := s.addCancelCallback(ev.Set)
	defer s.removeCancelCallback(node)
	id := s.addDoneCallback(func(*Future[T]) { ev.Set() })
	defer s.removeDoneCallback(id)

	for {
		switch ev.Wait(deadline, intr) {
		case event.Signaled:
			return nil
		case event.TimedOut:
			return errors.WithStack(ErrTimeout)
		case event.Interrupted:
			if err := intr.Pending(); err != nil {
				return err
			}
			// 虚假唤醒：以相同的截止时间重新进入等待。
		}
	}
}

package event

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/pkg/errors"
)

// ErrInterrupted indicates that a blocking wait was abandoned because an
// asynchronous interrupt was delivered.
var ErrInterrupted = errors.New("event: interrupted")

// Interruptor is a source of asynchronous interrupts for [Event.Wait].
//
// Done returns a channel that becomes receivable when an interrupt may be
// pending. The channel is allowed to fire spuriously; Pending is the
// authoritative, consuming check. Pending returns a non-nil error to
// propagate when an interrupt is genuinely pending, and nil when the wakeup
// was spurious.
type Interruptor interface {
	Done() <-chan struct{}
	Pending() error
}

type ctxInterruptor struct {
	ctx context.Context
}

// ContextInterruptor adapts ctx into an Interruptor: the wait is
// interrupted when ctx is cancelled, and Pending reports ctx.Err.
func ContextInterruptor(ctx context.Context) Interruptor {
	return ctxInterruptor{ctx: ctx}
}

func (c ctxInterruptor) Done() <-chan struct{} { return c.ctx.Done() }

func (c ctxInterruptor) Pending() error {
	if err := c.ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// SignalInterruptor interrupts waits when the process receives one of the
// subscribed operating system signals. It must be released with Close.
type SignalInterruptor struct {
	sigCh  chan os.Signal
	doneCh chan struct{}
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	pending os.Signal
}

// NewSignalInterruptor subscribes to the given signals, defaulting to
// os.Interrupt when none are given.
func NewSignalInterruptor(sig ...os.Signal) *SignalInterruptor {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt}
	}
	si := &SignalInterruptor{
		sigCh:  make(chan os.Signal, 1),
		doneCh: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	signal.Notify(si.sigCh, sig...)
	go si.pump()
	return si
}

func (si *SignalInterruptor) pump() {
	for {
		select {
		case s := <-si.sigCh:
			si.mu.Lock()
			si.pending = s
			si.mu.Unlock()
			select {
			case si.doneCh <- struct{}{}:
			default:
			}
		case <-si.closed:
			return
		}
	}
}

func (si *SignalInterruptor) Done() <-chan struct{} { return si.doneCh }

// Pending consumes and reports the most recent unhandled signal, wrapped in
// ErrInterrupted. It returns nil if no signal is pending.
func (si *SignalInterruptor) Pending() error {
	si.mu.Lock()
	s := si.pending
	si.pending = nil
	si.mu.Unlock()
	if s == nil {
		return nil
	}
	return errors.WithMessagef(ErrInterrupted, "signal %s", s)
}

// Close unsubscribes from signal delivery and stops the background pump.
func (si *SignalInterruptor) Close() {
	si.once.Do(func() {
		signal.Stop(si.sigCh)
		close(si.closed)
	})
}

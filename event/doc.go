// Package event provides a one-shot, interrupt-aware wait primitive.
//
// An Event is a binary flag that starts unset. Set switches it to the set
// state and wakes any waiter; Wait blocks until the event is set, a deadline
// elapses, or an external asynchronous interrupt is observed.
//
// The interrupt side is modeled as an explicit Interruptor rather than an
// ambient process-global flag, so waiters can be tested against a fake
// interrupt source. ContextInterruptor adapts a context.Context, which is
// the usual interrupt source in Go programs; NewSignalInterruptor adapts
// operating system signals for programs that want a blocking wait to react
// to Ctrl-C.
package event

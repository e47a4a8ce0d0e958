package eventloop

import (
	"github.com/saltfishpr/futures/future"
)

// Bind returns a Future whose completion is delivered on s, linked to src.
//
// When src becomes done — possibly on an arbitrary producer goroutine — a
// delivery function is scheduled onto the loop: it inspects src and, unless
// the returned Future was already settled by the loop in the meantime,
// marks it cancelled, failed, or completed to match. Cancelling the
// returned Future (for example when the surrounding cooperative task is
// torn down) propagates upstream by cancelling src; this back-propagation
// is a no-op if src is already done.
//
// Forcing the returned Future forces src. Callbacks registered on the
// returned Future therefore run on the loop goroutine, never on the
// producer's.
func Bind[T any](s Scheduler, src *future.Future[T]) *future.Future[T] {
	p, aw := future.NewPair[T](future.WithForceFunc(src.Force))
	src.AddDoneCallback(func(sf *future.Future[T]) {
		s.Schedule(func() {
			if aw.Done() {
				return
			}
			if sf.Cancelled() {
				aw.Cancel()
				return
			}
			val, err := sf.Result()
			if err != nil {
				p.TrySetError(err)
			} else {
				p.TrySetResult(val)
			}
		})
	})
	aw.AddDoneCallback(func(*future.Future[T]) {
		src.Cancel()
	})
	return aw
}

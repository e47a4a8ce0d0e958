package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltfishpr/futures/future"
)

func TestBindDeliversResult(t *testing.T) {
	l := New()
	stop := startLoop(l)
	defer stop()

	p, src := future.NewPair[int]()
	aw := Bind[int](l, src)

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.SetResult(5)
	}()

	val, err := aw.Result(future.WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5, val)
}

func TestBindDeliversError(t *testing.T) {
	l := New()
	stop := startLoop(l)
	defer stop()

	p, src := future.NewPair[int]()
	aw := Bind[int](l, src)

	p.SetError(assert.AnError)
	assert.ErrorIs(t, aw.Err(future.WithTimeout(time.Second)), assert.AnError)
}

func TestBindDeliveryIsHandedOffToLoop(t *testing.T) {
	l := New()

	p, src := future.NewPair[int]()
	aw := Bind[int](l, src)

	delivered := make(chan struct{})
	aw.AddDoneCallback(func(*future.Future[int]) { close(delivered) })

	// 环还没运行：完成只入队，不会在生产者协程上直接投递。
	p.SetResult(1)
	select {
	case <-delivered:
		t.Fatal("delivered without a running loop")
	case <-time.After(20 * time.Millisecond):
	}

	stop := startLoop(l)
	defer stop()
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("completion was not delivered")
	}
}

func TestBindCancelPropagatesUpstream(t *testing.T) {
	l := New()
	stop := startLoop(l)
	defer stop()

	_, src := future.NewPair[int]()
	aw := Bind[int](l, src)

	require.True(t, aw.Cancel())
	assert.True(t, src.Cancelled())
	assert.ErrorIs(t, aw.Err(), future.ErrCancelled)
}

func TestBindCancelAfterSourceDoneIsNoop(t *testing.T) {
	l := New()
	stop := startLoop(l)
	defer stop()

	p, src := future.NewPair[int]()
	aw := Bind[int](l, src)
	p.SetResult(2)

	val, err := aw.Result(future.WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, val)
	assert.False(t, src.Cancelled())
}

func TestBindSourceCancellation(t *testing.T) {
	l := New()
	stop := startLoop(l)
	defer stop()

	_, src := future.NewPair[int]()
	aw := Bind[int](l, src)

	src.Cancel()
	assert.ErrorIs(t, aw.Err(future.WithTimeout(time.Second)), future.ErrCancelled)
	assert.True(t, aw.Cancelled())
}

func TestBindForcesSource(t *testing.T) {
	l := New()
	stop := startLoop(l)
	defer stop()

	forced := make(chan struct{})
	_, src := future.NewPair[int](future.WithForceFunc(func() { close(forced) }))
	aw := Bind[int](l, src)

	aw.Force()
	select {
	case <-forced:
	default:
		t.Fatal("source was not forced")
	}
}

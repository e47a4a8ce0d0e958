package future

import "github.com/saltfishpr/futures/future/executors"

// Executor 定义了执行异步生产者任务的抽象。
//
// 默认使用标准 goroutine（executors.GoExecutor{}）执行任务，可以通过
// SetExecutor 替换为池化实现（例如 executors.NewPoolExecutor）来限制并发。
//
// 注意：阻塞型任务配合池化执行器可能导致排队，替换前请先压测。
type Executor interface {
	Submit(func())
}

type ExecutorFunc func(func())

func (e ExecutorFunc) Submit(f func()) {
	e(f)
}

var executor Executor = executors.GoExecutor{}

// SetExecutor 覆盖默认执行器。传入 nil 会 panic。
func SetExecutor(e Executor) {
	if e == nil {
		panic("executor is nil")
	}
	executor = e
}

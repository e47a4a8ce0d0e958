// Package executors 提供 future.Executor 的常用实现。
package executors

// GoExecutor 每个任务启动一个新的 goroutine。
type GoExecutor struct{}

func (GoExecutor) Submit(f func()) {
	go f()
}

// PoolExecutor 以信号量限制并发执行的任务数量。
type PoolExecutor struct {
	sem chan struct{}
}

func NewPoolExecutor(maxWorkers int) *PoolExecutor {
	return &PoolExecutor{
		sem: make(chan struct{}, maxWorkers),
	}
}

// Submit 在有空闲额度前阻塞调用者。
func (p *PoolExecutor) Submit(f func()) {
	p.sem <- struct{}{}
	go func() {
		defer func() { <-p.sem }()
		f()
	}()
}

package routine

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// Recovered 保存一次 panic 的值和发生位置的调用栈。
type Recovered struct {
	Value   interface{}
	Callers []uintptr
}

// NewRecovered 捕获当前调用栈构造 Recovered。skip 为跳过的栈帧数，
// 0 表示从 NewRecovered 的调用者开始。
func NewRecovered(skip int, value interface{}) *Recovered {
	var callers [32]uintptr
	n := runtime.Callers(skip+1, callers[:])
	return &Recovered{
		Value:   value,
		Callers: callers[:n],
	}
}

// AsError 将 Recovered 包装为 error，nil 接收者返回 nil。
func (p *Recovered) AsError() error {
	if p == nil {
		return nil
	}
	return &RecoveredError{p}
}

// RecoveredError 是实现了 error 和 errors.StackTrace 的 panic 包装。
type RecoveredError struct {
	*Recovered
}

func (e *RecoveredError) Error() string {
	return fmt.Sprintf("panic: %v\nstacktrace:%+v", e.Value, e.StackTrace())
}

func (e *RecoveredError) StackTrace() errors.StackTrace {
	if e == nil {
		return nil
	}
	frames := make([]errors.Frame, len(e.Callers))
	for i, pc := range e.Callers {
		frames[i] = errors.Frame(pc)
	}
	return frames
}

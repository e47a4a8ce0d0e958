package routine

// RunSafe 同步执行 fn，自动捕获并恢复 panic。
//
// 如果 fn 发生 panic，依次调用 cleanup 函数（如果提供），panic 值作为参数
// 传入。panic 不会向上传播，调用者可以继续执行。
func RunSafe(fn func(), cleanup ...func(r interface{})) {
	defer Recover(cleanup...)

	fn()
}

// GoSafe 在新的 goroutine 中异步执行 fn，自动捕获并恢复 panic。
//
// panic 不会导致程序崩溃，也不会向上传播。
func GoSafe(fn func(), cleanup ...func(r interface{})) {
	go RunSafe(fn, cleanup...)
}

// Recover 恢复当前 goroutine 的 panic，必须通过 defer 调用。
func Recover(cleanups ...func(r interface{})) {
	if r := recover(); r != nil {
		for _, cleanup := range cleanups {
			cleanup(r)
		}
	}
}

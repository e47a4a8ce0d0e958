// Package routine 提供安全的函数执行和 panic 恢复工具。
//
// 主要功能：
//   - RunSafe/GoSafe: 自动捕获 panic 的同步/异步函数执行
//   - Recover: panic 恢复，配合 cleanup 回调使用
//   - Recovered/RecoveredError: 携带调用栈的 panic 错误表示
//
// future 包用它隔离完成回调和取消回调中的 panic：单个回调出错不会中断
// 其余回调，也不会破坏共享状态。
package routine

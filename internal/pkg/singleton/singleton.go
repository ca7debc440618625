// Package singleton 保证同一数据库只有一个服务进程
package singleton

import "errors"

// ErrAlreadyRunning 已有实例持有锁
var ErrAlreadyRunning = errors.New("已有实例在运行")

// Lock 进程锁，Release 后可重新获取
type Lock interface {
	Release() error
}

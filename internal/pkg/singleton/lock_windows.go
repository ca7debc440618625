//go:build windows

package singleton

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type mutexLock struct {
	h windows.Handle
}

// Acquire 使用 Local\ 命名互斥量，范围限制在当前会话；dir 在 Windows 下不使用
func Acquire(dir, name string) (Lock, error) {
	_ = dir
	h, err := windows.CreateMutex(nil, false, windows.StringToUTF16Ptr(`Local\`+name+`SingletonMutex`))
	if err != nil {
		if err == windows.ERROR_ALREADY_EXISTS {
			if h != 0 {
				_ = windows.CloseHandle(h)
			}
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("创建互斥量失败: %w", err)
	}
	return &mutexLock{h: h}, nil
}

func (l *mutexLock) Release() error {
	if l.h == 0 {
		return nil
	}
	err := windows.CloseHandle(l.h)
	l.h = 0
	return err
}

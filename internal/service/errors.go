package service

import "errors"

var (
	ErrNotFound        = errors.New("记录不存在")
	ErrInvalidInput    = errors.New("参数无效")
	ErrNoActiveWorkout = errors.New("没有进行中的训练")
	ErrNothingToUndo   = errors.New("没有可撤销的组")
)

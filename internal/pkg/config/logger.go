package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOptions 日志输出
type LoggerOptions struct {
	Level     string
	Path      string // 为空时只写 stdout
	Component string
	Quiet     bool // CLI 下不写 stdout，避免打乱命令输出
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogger 设置全局 slog；指定 Path 时用 lumberjack 滚动写文件
func SetupLogger(opts LoggerOptions) io.Closer {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if opts.Quiet {
		w = io.Discard
	}
	if opts.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    20, // MB
			MaxBackups: 5,
			MaxAge:     30, // 天
			LocalTime:  true,
			Compress:   true,
		}
		closer = lj
		if opts.Quiet {
			w = lj
		} else {
			w = io.MultiWriter(os.Stdout, lj)
		}
	}

	logger := slog.New(slog.NewTextHandler(w, handlerOpts))
	if opts.Component != "" {
		logger = logger.With("component", opts.Component)
	}
	slog.SetDefault(logger)
	return closer
}

// ParseLevel 未知级别按 info 处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yuqie6/TrivialFit/internal/pkg/singleton"
	"github.com/yuqie6/TrivialFit/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "配置文件路径")
	listen := flag.String("listen", "", "监听地址（覆盖配置）")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := server.Run(ctx, server.Options{
		ConfigPath: *cfgPath,
		ListenAddr: *listen,
		Ready: func(baseURL string) {
			slog.Info("TrivialFit 服务已启动", "url", baseURL)
		},
	})
	if err != nil {
		// 已有实例在运行时静默退出
		if errors.Is(err, singleton.ErrAlreadyRunning) {
			return
		}
		slog.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
	slog.Info("TrivialFit 服务已停止")
}

// Package server 组装并运行本地服务进程：单实例锁、核心依赖、HTTP API 与配置热加载
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/yuqie6/TrivialFit/internal/bootstrap"
	"github.com/yuqie6/TrivialFit/internal/httpapi"
	"github.com/yuqie6/TrivialFit/internal/pkg/config"
	"github.com/yuqie6/TrivialFit/internal/pkg/singleton"
)

// LockName 服务进程持有的单实例锁名；导入备份前 CLI 也会尝试获取
const LockName = "trivialfit-server"

// Options 服务启动配置
type Options struct {
	ConfigPath string
	ListenAddr string // 覆盖配置中的 server.listen_addr
	Ready      func(baseURL string)
}

// Run 阻塞直到 ctx 结束
func Run(ctx context.Context, opts Options) error {
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			cfgPath = p
			if err := config.EnsureFile(cfgPath); err != nil {
				slog.Warn("写入默认配置失败", "path", cfgPath, "error", err)
			}
		}
	}

	core, err := bootstrap.NewCore(cfgPath, &bootstrap.CoreOptions{Component: "server"})
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer core.Close()

	// 同一个数据库只允许一个服务进程
	lock, err := singleton.Acquire(filepath.Dir(core.Cfg.Storage.DBPath), LockName)
	if err != nil {
		if errors.Is(err, singleton.ErrAlreadyRunning) {
			return fmt.Errorf("服务已在运行: %w", err)
		}
		return err
	}
	defer lock.Release()

	if _, err := config.Watch(cfgPath, core.ApplyConfig); err != nil {
		slog.Warn("配置热加载不可用", "error", err)
	}

	listen := strings.TrimSpace(opts.ListenAddr)
	if listen == "" {
		listen = core.Cfg.Server.ListenAddr
	}

	srv, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: listen, ConfigPath: cfgPath})
	if err != nil {
		return fmt.Errorf("启动本地 API 失败: %w", err)
	}
	slog.Info("TrivialFit 服务已启动", "name", core.Cfg.App.Name, "base_url", srv.BaseURL())
	if opts.Ready != nil {
		opts.Ready(srv.BaseURL())
	}

	<-ctx.Done()
	slog.Info("正在关闭...")
	core.Services.RestTimer.Skip()
	return nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuqie6/TrivialFit/internal/chart"
	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/observability"
	"github.com/yuqie6/TrivialFit/internal/pkg/config"
	"github.com/yuqie6/TrivialFit/internal/pkg/singleton"
	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/server"
	"github.com/yuqie6/TrivialFit/internal/service"
)

// statsCmd 统计
func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "训练统计",
	}

	heatmap := &cobra.Command{
		Use:   "heatmap",
		Short: "按日组数热力图",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := core.Services.Stats.Contribution(ctxOrBackground(cmd))
			if err != nil {
				return err
			}
			fmt.Print(chart.RenderContribution(g))
			fmt.Printf("\n共 %d 组，%d 个训练日\n", g.TotalSets, g.ActiveDays)
			return nil
		},
	}

	var width int
	exercises := &cobra.Command{
		Use:   "exercises",
		Short: fmt.Sprintf("最近 %d 个月各动作的重量趋势", service.StatsWindowMonths),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := core.Services.Stats.ExerciseCharts(ctxOrBackground(cmd), nil)
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Println("最近没有记录")
				return nil
			}
			for _, d := range days {
				fmt.Printf("📊 %s\n", d.DisplayName)
				for _, ex := range d.Exercises {
					fmt.Printf("\n  %s（%d 次）\n", ex.Name, ex.Sessions)
					fmt.Print(chart.RenderBars(ex.Chart, width))
				}
				fmt.Println()
			}
			return nil
		},
	}
	exercises.Flags().IntVar(&width, "width", 40, "柱状图宽度（字符）")

	cmd.AddCommand(heatmap, exercises)
	return cmd
}

// settingsCmd 设置
func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "查看或修改设置",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := core.Services.Settings.RestDuration(ctxOrBackground(cmd))
			if err != nil {
				return err
			}
			fmt.Printf("⏱️  组间休息: %s\n", d)
			fmt.Printf("📅 训练日: %v\n", core.Cfg.Workout.Days)
			fmt.Printf("💾 数据库: %s\n", core.Cfg.Storage.DBPath)
			return nil
		},
	}

	rest := &cobra.Command{
		Use:   "rest <minutes> <seconds>",
		Short: "设置组间休息时长",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m, s int
			if _, err := fmt.Sscan(args[0], &m); err != nil {
				return fmt.Errorf("无效的分钟: %s", args[0])
			}
			if _, err := fmt.Sscan(args[1], &s); err != nil {
				return fmt.Errorf("无效的秒数: %s", args[1])
			}
			d, err := core.Services.Settings.SetRestDuration(ctxOrBackground(cmd), m, s)
			if err != nil {
				return err
			}
			fmt.Printf("✅ 组间休息已设为 %s\n", d)
			return nil
		},
	}

	cmd.AddCommand(rest)
	return cmd
}

// timerCmd 前台休息倒计时，Ctrl+C 跳过
func timerCmd() *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "开始组间休息倒计时",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(ctxOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d := time.Duration(seconds) * time.Second
			if seconds <= 0 {
				var err error
				if d, err = core.Services.Settings.RestDuration(ctx); err != nil {
					return err
				}
			}

			events := core.Hub.Subscribe(ctx, 8)
			timer := core.Services.RestTimer
			done, err := timer.Start(ctx, d)
			if err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					timer.Skip()
					fmt.Println("\n⏭️  已跳过")
					return nil
				case <-done:
					fmt.Println("\r🔔 休息结束        ")
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					if ev.Type == eventbus.TypeRestTimerTick {
						st := timer.Status()
						fmt.Printf("\r⏱️  %s (%d%%)   ", st.Display, st.ProgressPct)
					}
				}
			}
		},
	}
	cmd.Flags().IntVarP(&seconds, "seconds", "s", 0, "时长（秒），默认使用设置中的休息时长")
	return cmd
}

func exportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:         "export",
		Short:       "导出数据库备份",
		Annotations: map[string]string{annotationSafeMode: "1"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = core.Cfg.Storage.ExportDir
			}
			path, err := core.Services.Settings.Export(ctxOrBackground(cmd), dir)
			if err != nil {
				return fmt.Errorf("导出失败: %w", err)
			}
			fmt.Printf("✅ 已导出到 %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "导出目录")
	return cmd
}

// importCmd 用备份文件替换当前数据库；数据库必须处于关闭状态
func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "import <file>",
		Short:       "从备份文件恢复数据库（会覆盖现有数据）",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationNoCore: "1"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			dbPath := cfg.Storage.DBPath

			lock, err := singleton.Acquire(filepath.Dir(dbPath), server.LockName)
			if err != nil {
				return fmt.Errorf("服务正在使用数据库，请先停止 trivialfit serve: %w", err)
			}
			defer lock.Release()

			if err := repository.ImportDatabase(args[0], dbPath); err != nil {
				return fmt.Errorf("导入失败: %w", err)
			}

			db, err := repository.NewDatabase(dbPath)
			if err != nil {
				return fmt.Errorf("打开导入的数据库失败: %w", err)
			}
			defer db.Close()
			if db.SafeMode {
				return fmt.Errorf("导入的数据库无法迁移: %v", db.MigrationError)
			}
			fmt.Printf("✅ 已导入 %s（schema v%d）\n", args[0], db.SchemaVersion)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "status",
		Short:       "查看数据与训练状态",
		Annotations: map[string]string{annotationSafeMode: "1"},
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := observability.BuildStatus(ctxOrBackground(cmd), core, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", st.App.Name, st.App.Version)
			fmt.Printf("💾 %s (schema v%d)\n", st.Storage.DBPath, st.Storage.SchemaVersion)
			if st.App.SafeMode {
				fmt.Printf("⚠️  安全模式: %s\n", st.Storage.SafeModeReason)
			}
			fmt.Printf("   动作 %d / 训练 %d / 组 %d\n", st.Storage.Exercises, st.Storage.Sessions, st.Storage.Sets)
			if st.Workout.InProgress {
				fmt.Printf("🏋️ 进行中: %s 第 %d 个动作\n", st.Workout.Day, st.Workout.ExerciseIndex+1)
			}
			if len(st.RecentErrors) > 0 {
				fmt.Println("⚠️  最近错误:")
				for _, e := range st.RecentErrors {
					fmt.Printf("   %s %s\n", e.Time, e.Message)
				}
			}
			return nil
		},
	}
}

// serveCmd 前台运行本地 HTTP 服务
func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "启动本地 HTTP API",
		Annotations: map[string]string{annotationNoCore: "1"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(ctxOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, server.Options{
				ConfigPath: cfgFile,
				ListenAddr: listen,
				Ready: func(baseURL string) {
					fmt.Printf("🚀 服务已启动: %s\n", baseURL)
				},
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "监听地址（覆盖配置）")
	return cmd
}

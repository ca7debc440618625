package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuqie6/TrivialFit/internal/bootstrap"
	"github.com/yuqie6/TrivialFit/internal/pkg/buildinfo"
	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/service"
)

const (
	// 不需要打开数据库的命令（import 要求数据库处于关闭状态）
	annotationNoCore = "no-core"
	// 数据库处于安全模式时仍可执行的只读命令
	annotationSafeMode = "safe-mode"
)

var (
	cfgFile string
	verbose bool
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "trivialfit",
		Short:   "TrivialFit - 单人训练记录",
		Long:    `TrivialFit 按训练日编排动作，引导逐组记录，并提供历史与统计视图。数据保存在本地 SQLite。`,
		Version: buildinfo.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoCore] != "" {
				return nil
			}
			var err error
			core, err = bootstrap.NewCore(cfgFile, &bootstrap.CoreOptions{Component: "cli", QuietLog: !verbose})
			if err != nil {
				return fmt.Errorf("初始化失败: %w", err)
			}
			if cmd.Annotations[annotationSafeMode] == "" {
				if err := core.RequireWritable(); err != nil {
					return fmt.Errorf("%w（可先运行 trivialfit export 备份，再用 trivialfit status 查看原因）", err)
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "同时输出日志到终端")

	rootCmd.AddCommand(daysCmd())
	rootCmd.AddCommand(exercisesCmd())
	rootCmd.AddCommand(variationsCmd())
	rootCmd.AddCommand(workoutCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(timerCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(serveCmd())

	err := rootCmd.Execute()
	if core != nil {
		_ = core.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// daysCmd 首页：训练日列表
func daysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "days",
		Short: "查看训练日与本周完成情况",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := core.Services.Calendar.View(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("📅 本周（%s 起）\n\n", view.WeekStart.Format("2006-01-02"))
			for _, d := range view.Days {
				mark := "  "
				if d.IsToday {
					mark = "👉"
				}
				done := ""
				if d.CompletedThisWeek {
					done = " ✅"
				}
				fmt.Printf("%s %-10s %d 个动作%s\n", mark, d.DisplayName, d.ExerciseCount, done)
			}
			return nil
		},
	}
}

func parseDayArg(raw string) (schema.DayOfWeek, error) {
	day, err := schema.ParseDayOfWeek(raw)
	if err != nil {
		return "", fmt.Errorf("无法识别的训练日 %q（可用 MON..SUN 或全称）", raw)
	}
	return day, nil
}

func ctxOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// explain 把服务层错误转换成面向用户的提示
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrNoActiveWorkout):
		return fmt.Errorf("没有进行中的训练，先运行 trivialfit workout start <day>")
	case errors.Is(err, service.ErrNothingToUndo):
		return fmt.Errorf("没有可撤销的组")
	default:
		return err
	}
}

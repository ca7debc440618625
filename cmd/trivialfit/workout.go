package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuqie6/TrivialFit/internal/service"
)

// workoutCmd 引导式训练；每次调用都从持久化的进度续接
func workoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "开始或继续一次训练",
	}

	start := &cobra.Command{
		Use:   "start <day>",
		Short: "开始训练日的新训练",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			view, err := core.Services.Workout.Start(ctxOrBackground(cmd), day)
			if err != nil {
				return err
			}
			printWorkout(view)
			return nil
		},
	}

	resume := &cobra.Command{
		Use:   "resume",
		Short: "继续上次中断的训练",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOrBackground(cmd)
			st, err := core.Services.Workout.SavedState(ctx)
			if err != nil {
				return err
			}
			if st == nil {
				fmt.Println("没有可继续的训练")
				return nil
			}
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.View(ctx)
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "查看当前动作与进度",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.View(ctx)
			})
		},
	}

	var logWeight string
	var logReps int
	logSet := &cobra.Command{
		Use:   "log",
		Short: "记录一组（重量留空表示自重）",
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := parseOptionalWeight(logWeight)
			if err != nil {
				return err
			}
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				if logReps > 0 {
					if _, err := f.SetReps(ctx, logReps); err != nil {
						return nil, err
					}
				}
				return f.LogSet(ctx, weight)
			})
		},
	}
	logSet.Flags().StringVarP(&logWeight, "weight", "w", "", "重量 (kg)")
	logSet.Flags().IntVarP(&logReps, "reps", "r", 0, "次数，不填沿用当前值")

	var dropReps int
	dropdown := &cobra.Command{
		Use:   "dropdown",
		Short: "记录递减组（不带重量）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				if dropReps > 0 {
					if _, err := f.SetReps(ctx, dropReps); err != nil {
						return nil, err
					}
				}
				return f.LogDropdown(ctx)
			})
		},
	}
	dropdown.Flags().IntVarP(&dropReps, "reps", "r", 0, "次数，不填沿用当前值")

	reps := &cobra.Command{
		Use:   "reps <n|+|->",
		Short: "设置或增减次数",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				switch args[0] {
				case "+":
					return f.IncrementReps(ctx)
				case "-":
					return f.DecrementReps(ctx)
				}
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return nil, fmt.Errorf("无效的次数: %s", args[0])
				}
				return f.SetReps(ctx, n)
			})
		},
	}

	undo := &cobra.Command{
		Use:   "undo",
		Short: "撤销本次记录的最后一组",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.UndoLastSet(ctx)
			})
		},
	}

	next := &cobra.Command{
		Use:   "next",
		Short: "下一个动作（最后一个时结束训练）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.Next(ctx)
			})
		},
	}

	prev := &cobra.Command{
		Use:   "prev",
		Short: "上一个动作",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.Previous(ctx)
			})
		},
	}

	goTo := &cobra.Command{
		Use:   "goto <position>",
		Short: "跳到指定动作（从 1 开始）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil || pos < 1 {
				return fmt.Errorf("无效的位置: %s", args[0])
			}
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.GoTo(ctx, pos-1)
			})
		},
	}

	note := &cobra.Command{
		Use:   "note [text...]",
		Short: "设置当前动作的备注（留空清除）",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.SetNote(ctx, text)
			})
		},
	}

	weight := &cobra.Command{
		Use:   "weight <kg>",
		Short: "修改本次所有非递减组的重量",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("无效的重量: %s", args[0])
			}
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				return f.UpdateWeight(ctx, w)
			})
		},
	}

	var addVariation bool
	variation := &cobra.Command{
		Use:   "variation [id|name]",
		Short: "选择变式（不带参数清除，--add 新建并选中）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkout(cmd, func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error) {
				if len(args) == 0 {
					return f.SelectVariation(ctx, nil)
				}
				if addVariation {
					return f.AddVariation(ctx, args[0])
				}
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("无效的变式 id: %s", args[0])
				}
				return f.SelectVariation(ctx, &id)
			})
		},
	}
	variation.Flags().BoolVar(&addVariation, "add", false, "按名称新建变式")

	finish := &cobra.Command{
		Use:   "finish",
		Short: "结束训练",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOrBackground(cmd)
			f := core.Services.Workout
			if _, err := f.ResumeSaved(ctx); err != nil {
				return explain(err)
			}
			if err := f.Finish(ctx); err != nil {
				return explain(err)
			}
			fmt.Println("🎉 训练完成")
			return nil
		},
	}

	cmd.AddCommand(start, resume, status, logSet, dropdown, reps, undo, next, prev, goTo, note, weight, variation, finish)
	return cmd
}

// withWorkout 续接持久化的训练后执行操作并打印结果
func withWorkout(cmd *cobra.Command, op func(ctx context.Context, f *service.WorkoutFlow) (*service.WorkoutView, error)) error {
	ctx := ctxOrBackground(cmd)
	f := core.Services.Workout
	if _, err := f.ResumeSaved(ctx); err != nil {
		return explain(err)
	}
	view, err := op(ctx, f)
	if err != nil {
		return explain(err)
	}
	printWorkout(view)
	return nil
}

func parseOptionalWeight(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("无效的重量: %s", raw)
	}
	return &w, nil
}

func printWorkout(v *service.WorkoutView) {
	if v == nil {
		return
	}
	if v.Finished {
		fmt.Println("🎉 训练完成")
		return
	}
	if v.Exercise == nil {
		fmt.Println("没有进行中的训练")
		return
	}

	fmt.Printf("🏋️ %s  [%s]  %s\n", v.Day.DisplayName(), v.Progress(), v.Exercise.Name)

	var bar strings.Builder
	for _, s := range v.Statuses {
		switch {
		case s.Current:
			bar.WriteString("◉")
		case s.HasSets:
			bar.WriteString("●")
		default:
			bar.WriteString("○")
		}
	}
	fmt.Println("   " + bar.String())

	if v.Variation != nil {
		fmt.Printf("   变式: %s\n", v.Variation.Name)
	}
	if v.Note != "" {
		fmt.Printf("   备注: %s\n", v.Note)
	}
	fmt.Printf("   本次: %s\n", v.Summary)

	last := "-"
	if v.LastWeight != nil {
		last = service.FormatWeight(*v.LastWeight) + "kg"
	}
	if v.LastReps != nil {
		last += fmt.Sprintf(" × %d", *v.LastReps)
	}
	fmt.Printf("   上次: %s    当前次数: %d\n", last, v.Reps)

	if len(v.History) > 0 {
		fmt.Println("   历史:")
		for _, h := range v.History {
			fmt.Printf("     %s\n", h.Line())
		}
	}
	if v.CanUndo {
		fmt.Println("   （可用 workout undo 撤销最后一组）")
	}
}

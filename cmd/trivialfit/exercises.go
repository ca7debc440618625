package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yuqie6/TrivialFit/internal/service"
)

// exercisesCmd 训练日动作编排
func exercisesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "管理训练日的动作",
	}

	list := &cobra.Command{
		Use:   "list <day>",
		Short: "列出训练日的动作",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			exs, err := core.Services.Exercises.List(ctxOrBackground(cmd), day)
			if err != nil {
				return err
			}
			if len(exs) == 0 {
				fmt.Printf("%s 还没有动作\n", day.DisplayName())
				return nil
			}
			fmt.Printf("🏋️ %s\n\n", day.DisplayName())
			for i, ex := range exs {
				fmt.Printf("  %d. %s  (id=%d)\n", i+1, ex.Name, ex.ID)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <day> <name>",
		Short: "添加动作到训练日末尾",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			ex, err := core.Services.Exercises.Add(ctxOrBackground(cmd), day, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已添加 %s 到 %s（第 %d 个）\n", ex.Name, day.DisplayName(), ex.OrderIndex+1)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "删除动作及其全部记录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("无效的 id: %s", args[0])
			}
			if err := core.Services.Exercises.Delete(ctxOrBackground(cmd), id); err != nil {
				return err
			}
			fmt.Println("🗑️  已删除")
			return nil
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <id> <position>",
		Short: "移动动作到新位置（从 1 开始）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("无效的 id: %s", args[0])
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil || pos < 1 {
				return fmt.Errorf("无效的位置: %s", args[1])
			}
			exs, err := core.Services.Exercises.Move(ctxOrBackground(cmd), id, pos-1)
			if err != nil {
				return err
			}
			for i, ex := range exs {
				fmt.Printf("  %d. %s\n", i+1, ex.Name)
			}
			return nil
		},
	}

	var renameID int64
	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "重命名动作（默认所有同名动作）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := core.Services.History.Rename(ctxOrBackground(cmd), renameID, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已重命名 %d 个动作\n", n)
			return nil
		},
	}
	rename.Flags().Int64Var(&renameID, "id", 0, "只重命名指定 id 的动作")

	var purgeID int64
	purge := &cobra.Command{
		Use:   "purge <name>",
		Short: "按名称删除动作（默认所有同名动作）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := core.Services.History.Delete(ctxOrBackground(cmd), purgeID, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("🗑️  已删除 %d 个动作\n", n)
			return nil
		},
	}
	purge.Flags().Int64Var(&purgeID, "id", 0, "只删除指定 id 的动作")

	cmd.AddCommand(list, add, rm, reorder, rename, purge)
	return cmd
}

// variationsCmd 动作变式
func variationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variations",
		Short: "管理动作变式",
	}

	list := &cobra.Command{
		Use:   "list <exercise-id>",
		Short: "列出动作的变式",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("无效的 id: %s", args[0])
			}
			vs, err := core.Services.Tracker.VariationsForExercise(ctxOrBackground(cmd), id)
			if err != nil {
				return err
			}
			if len(vs) == 0 {
				fmt.Println("暂无变式")
				return nil
			}
			for _, v := range vs {
				fmt.Printf("  %s  (id=%d)\n", v.Name, v.ID)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <exercise-id> <name>",
		Short: "为动作新增变式",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("无效的 id: %s", args[0])
			}
			v, err := core.Services.Tracker.AddVariation(ctxOrBackground(cmd), id, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已添加变式 %s (id=%d)\n", v.Name, v.ID)
			return nil
		},
	}

	cmd.AddCommand(list, add)
	return cmd
}

// historyCmd 按名称查看历史
func historyCmd() *cobra.Command {
	var deleteID int64
	var date string
	cmd := &cobra.Command{
		Use:   "history <name>",
		Short: "查看动作的全部历史（跨训练日）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOrBackground(cmd)
			if deleteID > 0 {
				if err := core.Services.History.DeleteLog(ctx, deleteID); err != nil {
					return err
				}
				fmt.Println("🗑️  已删除记录")
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("需要动作名称")
			}
			var entries []service.HistoryEntry
			var err error
			if date != "" {
				entries, err = core.Services.History.ForNameOnDate(ctx, args[0], date)
			} else {
				entries, err = core.Services.History.ForName(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Printf("📜 %s\n\n", args[0])
			if len(entries) == 0 {
				fmt.Println("暂无记录")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("  [%d] %-9s %s\n", e.LogID, e.DayOfWeek.DisplayName(), e.Line())
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&deleteID, "delete", 0, "删除指定记录 id")
	cmd.Flags().StringVar(&date, "date", "", "只看某一天的记录（YYYY-MM-DD）")
	return cmd
}

package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
)

// StatsRepository 统计聚合查询
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// DailySetCount 单个会话的组数
type DailySetCount struct {
	Date     int64 `json:"date"`
	SetCount int   `json:"set_count"`
}

// ExerciseStat 单条动作记录的重量汇总
type ExerciseStat struct {
	ExerciseID   int64   `json:"exercise_id"`
	ExerciseName string  `json:"exercise_name"`
	DayName      string  `json:"day_name"`
	OrderIndex   int     `json:"order_index"`
	Date         int64   `json:"date"`
	TotalWeight  float64 `json:"total_weight"`
}

// DailySetCounts 每个会话的组数（本地日期聚合由调用方完成）
func (r *StatsRepository) DailySetCounts(ctx context.Context) ([]DailySetCount, error) {
	var rows []DailySetCount
	if err := r.db.WithContext(ctx).Raw(`
		SELECT ws.date AS date, COUNT(sl.id) AS set_count
		FROM workout_sessions ws
		JOIN exercise_logs el ON el.session_id = ws.id
		JOIN set_logs sl ON sl.exercise_log_id = el.id
		GROUP BY ws.id, ws.date
		ORDER BY ws.date ASC`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("统计每日组数失败: %w", err)
	}
	return rows, nil
}

// DaysWithCompletedExercisesSince since 之后至少记录过一组的训练日
func (r *StatsRepository) DaysWithCompletedExercisesSince(ctx context.Context, sinceMs int64) ([]schema.DayOfWeek, error) {
	var days []schema.DayOfWeek
	if err := r.db.WithContext(ctx).
		Model(&schema.WorkoutSession{}).
		Distinct().
		Joins("JOIN exercise_logs el ON el.session_id = workout_sessions.id").
		Joins("JOIN set_logs sl ON sl.exercise_log_id = el.id").
		Where("workout_sessions.date >= ?", sinceMs).
		Pluck("workout_sessions.day_of_week", &days).Error; err != nil {
		return nil, fmt.Errorf("查询本周已完成训练日失败: %w", err)
	}
	return days, nil
}

// ExerciseStats since 之后每条动作记录的重量合计
func (r *StatsRepository) ExerciseStats(ctx context.Context, sinceMs int64) ([]ExerciseStat, error) {
	var rows []ExerciseStat
	if err := r.db.WithContext(ctx).Raw(`
		SELECT e.id AS exercise_id,
		       e.name AS exercise_name,
		       e.day_of_week AS day_name,
		       e.order_index AS order_index,
		       el.completed_at AS date,
		       COALESCE(SUM(sl.weight), 0) AS total_weight
		FROM exercise_logs el
		JOIN exercises e ON e.id = el.exercise_id
		JOIN set_logs sl ON sl.exercise_log_id = el.id
		WHERE el.completed_at >= ?
		GROUP BY el.id
		ORDER BY el.completed_at ASC`, sinceMs).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询动作统计失败: %w", err)
	}
	return rows, nil
}

// Totals 各表行数
type Totals struct {
	Exercises int64 `json:"exercises"`
	Sessions  int64 `json:"sessions"`
	Sets      int64 `json:"sets"`
}

// Totals 状态页用的总量
func (r *StatsRepository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	db := r.db.WithContext(ctx)
	if err := db.Model(&schema.Exercise{}).Count(&t.Exercises).Error; err != nil {
		return t, fmt.Errorf("统计动作数失败: %w", err)
	}
	if err := db.Model(&schema.WorkoutSession{}).Count(&t.Sessions).Error; err != nil {
		return t, fmt.Errorf("统计会话数失败: %w", err)
	}
	if err := db.Model(&schema.SetLog{}).Count(&t.Sets).Error; err != nil {
		return t, fmt.Errorf("统计组数失败: %w", err)
	}
	return t, nil
}

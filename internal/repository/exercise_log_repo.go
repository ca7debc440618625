package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
)

// ExerciseLogRepository 动作记录仓储
type ExerciseLogRepository struct {
	db *gorm.DB
}

// NewExerciseLogRepository 创建动作记录仓储
func NewExerciseLogRepository(db *gorm.DB) *ExerciseLogRepository {
	return &ExerciseLogRepository{db: db}
}

// Create 新建记录
func (r *ExerciseLogRepository) Create(ctx context.Context, log *schema.ExerciseLog) error {
	if log == nil {
		return fmt.Errorf("exercise log is nil")
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("创建动作记录失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 查询
func (r *ExerciseLogRepository) GetByID(ctx context.Context, id int64) (*schema.ExerciseLog, error) {
	var log schema.ExerciseLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询动作记录失败: %w", err)
	}
	return &log, nil
}

// GetBySessionAndExercise 会话内某动作的记录
func (r *ExerciseLogRepository) GetBySessionAndExercise(ctx context.Context, sessionID, exerciseID int64) (*schema.ExerciseLog, error) {
	var log schema.ExerciseLog
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND exercise_id = ?", sessionID, exerciseID).
		Order("id ASC").
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询会话动作记录失败: %w", err)
	}
	return &log, nil
}

// ListBySession 会话内全部记录（按完成时间升序）
func (r *ExerciseLogRepository) ListBySession(ctx context.Context, sessionID int64) ([]schema.ExerciseLog, error) {
	var logs []schema.ExerciseLog
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("completed_at ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("查询会话记录失败: %w", err)
	}
	return logs, nil
}

// ListRecentByExercise 动作最近的记录（按完成时间倒序）
func (r *ExerciseLogRepository) ListRecentByExercise(ctx context.Context, exerciseID int64, limit int) ([]schema.ExerciseLog, error) {
	if limit <= 0 {
		limit = 3
	}
	var logs []schema.ExerciseLog
	if err := r.db.WithContext(ctx).
		Where("exercise_id = ?", exerciseID).
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("查询动作历史失败: %w", err)
	}
	return logs, nil
}

// ListByExercises 多个动作的全部记录（按完成时间倒序）
func (r *ExerciseLogRepository) ListByExercises(ctx context.Context, exerciseIDs []int64) ([]schema.ExerciseLog, error) {
	if len(exerciseIDs) == 0 {
		return nil, nil
	}
	var logs []schema.ExerciseLog
	if err := r.db.WithContext(ctx).
		Where("exercise_id IN ?", exerciseIDs).
		Order("completed_at DESC, id DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("查询动作历史失败: %w", err)
	}
	return logs, nil
}

// UpdateNote 更新备注；nil 表示清空
func (r *ExerciseLogRepository) UpdateNote(ctx context.Context, id int64, note *string) error {
	if err := r.db.WithContext(ctx).
		Model(&schema.ExerciseLog{}).
		Where("id = ?", id).
		Update("note", note).Error; err != nil {
		return fmt.Errorf("更新备注失败: %w", err)
	}
	return nil
}

// UpdateVariation 更新变式；nil 表示取消
func (r *ExerciseLogRepository) UpdateVariation(ctx context.Context, id int64, variationID *int64) error {
	if err := r.db.WithContext(ctx).
		Model(&schema.ExerciseLog{}).
		Where("id = ?", id).
		Update("variation_id", variationID).Error; err != nil {
		return fmt.Errorf("更新变式失败: %w", err)
	}
	return nil
}

// Delete 删除记录（组级联删除）
func (r *ExerciseLogRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&schema.ExerciseLog{}, id).Error; err != nil {
		return fmt.Errorf("删除动作记录失败: %w", err)
	}
	return nil
}

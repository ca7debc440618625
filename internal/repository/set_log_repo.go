package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
)

// SetLogRepository 组记录仓储
type SetLogRepository struct {
	db *gorm.DB
}

// NewSetLogRepository 创建组记录仓储
func NewSetLogRepository(db *gorm.DB) *SetLogRepository {
	return &SetLogRepository{db: db}
}

// Create 新增一组
func (r *SetLogRepository) Create(ctx context.Context, set *schema.SetLog) error {
	if set == nil {
		return fmt.Errorf("set log is nil")
	}
	if err := r.db.WithContext(ctx).Create(set).Error; err != nil {
		return fmt.Errorf("记录组失败: %w", err)
	}
	return nil
}

// ListByExerciseLog 记录下的全部组（按组号升序，递减组按插入顺序排在对应位置）
func (r *SetLogRepository) ListByExerciseLog(ctx context.Context, exerciseLogID int64) ([]schema.SetLog, error) {
	var sets []schema.SetLog
	if err := r.db.WithContext(ctx).
		Where("exercise_log_id = ?", exerciseLogID).
		Order("set_number ASC, id ASC").
		Find(&sets).Error; err != nil {
		return nil, fmt.Errorf("查询组记录失败: %w", err)
	}
	return sets, nil
}

// ListByExerciseLogs 批量查询组记录，按记录 ID 分组
func (r *SetLogRepository) ListByExerciseLogs(ctx context.Context, exerciseLogIDs []int64) (map[int64][]schema.SetLog, error) {
	out := make(map[int64][]schema.SetLog, len(exerciseLogIDs))
	if len(exerciseLogIDs) == 0 {
		return out, nil
	}
	var sets []schema.SetLog
	if err := r.db.WithContext(ctx).
		Where("exercise_log_id IN ?", exerciseLogIDs).
		Order("set_number ASC, id ASC").
		Find(&sets).Error; err != nil {
		return nil, fmt.Errorf("批量查询组记录失败: %w", err)
	}
	for _, s := range sets {
		out[s.ExerciseLogID] = append(out[s.ExerciseLogID], s)
	}
	return out, nil
}

// MaxSetNumber 正式组的最大组号；没有正式组时返回 0
func (r *SetLogRepository) MaxSetNumber(ctx context.Context, exerciseLogID int64) (int, error) {
	var maxNum sql.NullInt64
	row := r.db.WithContext(ctx).
		Model(&schema.SetLog{}).
		Where("exercise_log_id = ? AND is_dropdown = ?", exerciseLogID, false).
		Select("MAX(set_number)").
		Row()
	if err := row.Scan(&maxNum); err != nil {
		return 0, fmt.Errorf("查询最大组号失败: %w", err)
	}
	if !maxNum.Valid {
		return 0, nil
	}
	return int(maxNum.Int64), nil
}

// CountByExerciseLog 统计记录下的组数
func (r *SetLogRepository) CountByExerciseLog(ctx context.Context, exerciseLogID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&schema.SetLog{}).
		Where("exercise_log_id = ?", exerciseLogID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计组数失败: %w", err)
	}
	return count, nil
}

// DeleteByID 删除一组（撤销）
func (r *SetLogRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&schema.SetLog{}, id).Error; err != nil {
		return fmt.Errorf("删除组失败: %w", err)
	}
	return nil
}

// UpdateWeight 修改记录下所有正式组的重量，递减组不受影响
func (r *SetLogRepository) UpdateWeight(ctx context.Context, exerciseLogID int64, weight float64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&schema.SetLog{}).
		Where("exercise_log_id = ? AND is_dropdown = ?", exerciseLogID, false).
		Update("weight", weight)
	if res.Error != nil {
		return 0, fmt.Errorf("更新重量失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

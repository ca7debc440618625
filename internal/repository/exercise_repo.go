package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
)

// ExerciseRepository 动作仓储
type ExerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository 创建动作仓储
func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// ListByDay 按训练日查询动作（按排序号升序）
func (r *ExerciseRepository) ListByDay(ctx context.Context, day schema.DayOfWeek) ([]schema.Exercise, error) {
	var exercises []schema.Exercise
	if err := r.db.WithContext(ctx).
		Where("day_of_week = ?", day).
		Order("order_index ASC, id ASC").
		Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("查询训练日动作失败: %w", err)
	}
	return exercises, nil
}

// CountByDay 统计各训练日的动作数量
func (r *ExerciseRepository) CountByDay(ctx context.Context) (map[schema.DayOfWeek]int, error) {
	type row struct {
		DayOfWeek schema.DayOfWeek
		Total     int
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&schema.Exercise{}).
		Select("day_of_week, COUNT(*) AS total").
		Group("day_of_week").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("统计训练日动作失败: %w", err)
	}
	out := make(map[schema.DayOfWeek]int, len(rows))
	for _, r := range rows {
		out[r.DayOfWeek] = r.Total
	}
	return out, nil
}

// GetByID 按 ID 查询
func (r *ExerciseRepository) GetByID(ctx context.Context, id int64) (*schema.Exercise, error) {
	var exercise schema.Exercise
	if err := r.db.WithContext(ctx).First(&exercise, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询动作失败: %w", err)
	}
	return &exercise, nil
}

// ListByName 查询同名动作（可能分布在多个训练日）
func (r *ExerciseRepository) ListByName(ctx context.Context, name string) ([]schema.Exercise, error) {
	var exercises []schema.Exercise
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id ASC").
		Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("按名称查询动作失败: %w", err)
	}
	return exercises, nil
}

// MaxOrderIndex 训练日内最大排序号；没有动作时 ok=false
func (r *ExerciseRepository) MaxOrderIndex(ctx context.Context, day schema.DayOfWeek) (int, bool, error) {
	var maxIdx sql.NullInt64
	row := r.db.WithContext(ctx).
		Model(&schema.Exercise{}).
		Where("day_of_week = ?", day).
		Select("MAX(order_index)").
		Row()
	if err := row.Scan(&maxIdx); err != nil {
		return 0, false, fmt.Errorf("查询最大排序号失败: %w", err)
	}
	if !maxIdx.Valid {
		return 0, false, nil
	}
	return int(maxIdx.Int64), true, nil
}

// Create 新增动作
func (r *ExerciseRepository) Create(ctx context.Context, exercise *schema.Exercise) error {
	if exercise == nil {
		return fmt.Errorf("exercise is nil")
	}
	if err := r.db.WithContext(ctx).Create(exercise).Error; err != nil {
		return fmt.Errorf("创建动作失败: %w", err)
	}
	return nil
}

// Update 更新名称/训练日/排序号
func (r *ExerciseRepository) Update(ctx context.Context, exercise *schema.Exercise) error {
	if exercise == nil || exercise.ID == 0 {
		return fmt.Errorf("exercise 缺少 ID")
	}
	if err := r.db.WithContext(ctx).
		Model(&schema.Exercise{}).
		Where("id = ?", exercise.ID).
		Updates(map[string]any{
			"name":        exercise.Name,
			"day_of_week": exercise.DayOfWeek,
			"order_index": exercise.OrderIndex,
		}).Error; err != nil {
		return fmt.Errorf("更新动作失败: %w", err)
	}
	return nil
}

// RenameByName 批量重命名同名动作，返回影响行数
func (r *ExerciseRepository) RenameByName(ctx context.Context, oldName, newName string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&schema.Exercise{}).
		Where("name = ?", oldName).
		Update("name", newName)
	if res.Error != nil {
		return 0, fmt.Errorf("批量重命名动作失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete 删除动作（日志/组/变式由外键级联删除）
func (r *ExerciseRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&schema.Exercise{}, id).Error; err != nil {
		return fmt.Errorf("删除动作失败: %w", err)
	}
	return nil
}

// DeleteByName 删除所有同名动作，返回影响行数
func (r *ExerciseRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&schema.Exercise{})
	if res.Error != nil {
		return 0, fmt.Errorf("按名称删除动作失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateOrderIndex 更新单个动作排序号
func (r *ExerciseRepository) UpdateOrderIndex(ctx context.Context, id int64, orderIndex int) error {
	if err := r.db.WithContext(ctx).
		Model(&schema.Exercise{}).
		Where("id = ?", id).
		Update("order_index", orderIndex).Error; err != nil {
		return fmt.Errorf("更新排序号失败: %w", err)
	}
	return nil
}

// SaveOrder 按列表位置重写排序号（事务）；不属于 day 的 id 不会被改动
func (r *ExerciseRepository) SaveOrder(ctx context.Context, day schema.DayOfWeek, ids []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&schema.Exercise{}).
				Where("id = ? AND day_of_week = ?", id, day).
				Update("order_index", i).Error; err != nil {
				return fmt.Errorf("保存排序失败: %w", err)
			}
		}
		return nil
	})
}

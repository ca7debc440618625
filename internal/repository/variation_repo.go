package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VariationRepository 动作变式仓储
type VariationRepository struct {
	db *gorm.DB
}

// NewVariationRepository 创建变式仓储
func NewVariationRepository(db *gorm.DB) *VariationRepository {
	return &VariationRepository{db: db}
}

// ListByExercise 动作的全部变式（按名称升序）
func (r *VariationRepository) ListByExercise(ctx context.Context, exerciseID int64) ([]schema.ExerciseVariation, error) {
	var variations []schema.ExerciseVariation
	if err := r.db.WithContext(ctx).
		Where("exercise_id = ?", exerciseID).
		Order("name ASC").
		Find(&variations).Error; err != nil {
		return nil, fmt.Errorf("查询变式失败: %w", err)
	}
	return variations, nil
}

// GetByID 按 ID 查询
func (r *VariationRepository) GetByID(ctx context.Context, id int64) (*schema.ExerciseVariation, error) {
	var v schema.ExerciseVariation
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询变式失败: %w", err)
	}
	return &v, nil
}

// GetByIDs 批量查询变式
func (r *VariationRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]schema.ExerciseVariation, error) {
	out := make(map[int64]schema.ExerciseVariation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var variations []schema.ExerciseVariation
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variations).Error; err != nil {
		return nil, fmt.Errorf("批量查询变式失败: %w", err)
	}
	for _, v := range variations {
		out[v.ID] = v
	}
	return out, nil
}

// Create 新增变式；ID 冲突时覆盖
func (r *VariationRepository) Create(ctx context.Context, v *schema.ExerciseVariation) error {
	if v == nil {
		return fmt.Errorf("variation is nil")
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"exercise_id", "name"}),
		}).
		Create(v).Error; err != nil {
		return fmt.Errorf("创建变式失败: %w", err)
	}
	return nil
}

// Delete 删除变式（记录上的 variation_id 由外键置空）
func (r *VariationRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&schema.ExerciseVariation{}, id).Error; err != nil {
		return fmt.Errorf("删除变式失败: %w", err)
	}
	return nil
}

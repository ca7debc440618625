package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
)

// WorkoutSessionRepository 训练会话仓储
type WorkoutSessionRepository struct {
	db *gorm.DB
}

// NewWorkoutSessionRepository 创建训练会话仓储
func NewWorkoutSessionRepository(db *gorm.DB) *WorkoutSessionRepository {
	return &WorkoutSessionRepository{db: db}
}

// Create 新建会话
func (r *WorkoutSessionRepository) Create(ctx context.Context, session *schema.WorkoutSession) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("创建训练会话失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 查询
func (r *WorkoutSessionRepository) GetByID(ctx context.Context, id int64) (*schema.WorkoutSession, error) {
	var session schema.WorkoutSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询训练会话失败: %w", err)
	}
	return &session, nil
}

// ListRecentByDay 训练日最近的会话（按日期倒序）
func (r *WorkoutSessionRepository) ListRecentByDay(ctx context.Context, day schema.DayOfWeek, limit int) ([]schema.WorkoutSession, error) {
	if limit <= 0 {
		limit = 3
	}
	var sessions []schema.WorkoutSession
	if err := r.db.WithContext(ctx).
		Where("day_of_week = ?", day).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("查询最近训练会话失败: %w", err)
	}
	return sessions, nil
}

// GetMostRecent 全局最近一次会话
func (r *WorkoutSessionRepository) GetMostRecent(ctx context.Context) (*schema.WorkoutSession, error) {
	var session schema.WorkoutSession
	if err := r.db.WithContext(ctx).Order("date DESC, id DESC").First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询最近训练会话失败: %w", err)
	}
	return &session, nil
}

// Delete 删除会话（日志与组级联删除）
func (r *WorkoutSessionRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&schema.WorkoutSession{}, id).Error; err != nil {
		return fmt.Errorf("删除训练会话失败: %w", err)
	}
	return nil
}

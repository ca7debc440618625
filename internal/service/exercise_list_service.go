package service

import (
	"context"
	"log/slog"

	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

// ExerciseListService 训练日动作编排
type ExerciseListService struct {
	tracker *Tracker
	hub     *eventbus.Hub
}

// NewExerciseListService 创建动作编排服务
func NewExerciseListService(tracker *Tracker, hub *eventbus.Hub) *ExerciseListService {
	return &ExerciseListService{tracker: tracker, hub: hub}
}

// List 训练日动作
func (s *ExerciseListService) List(ctx context.Context, day schema.DayOfWeek) ([]schema.Exercise, error) {
	return s.tracker.ExercisesForDay(ctx, day)
}

// Add 追加动作到训练日末尾
func (s *ExerciseListService) Add(ctx context.Context, day schema.DayOfWeek, name string) (*schema.Exercise, error) {
	ex, err := s.tracker.AddExercise(ctx, name, day)
	if err != nil {
		return nil, err
	}
	slog.Info("新增动作", "day", day, "name", ex.Name, "order_index", ex.OrderIndex)
	s.publish(day)
	return ex, nil
}

// Delete 删除动作及其历史
func (s *ExerciseListService) Delete(ctx context.Context, id int64) error {
	ex, err := s.tracker.Exercise(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tracker.DeleteExercise(ctx, id); err != nil {
		return err
	}
	slog.Info("删除动作", "day", ex.DayOfWeek, "name", ex.Name)
	s.publish(ex.DayOfWeek)
	return nil
}

// Move 把动作移动到新位置并重写整个训练日的排序
func (s *ExerciseListService) Move(ctx context.Context, id int64, newIndex int) ([]schema.Exercise, error) {
	ex, err := s.tracker.Exercise(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.tracker.ExercisesForDay(ctx, ex.DayOfWeek)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(list))
	for _, e := range list {
		if e.ID != id {
			ids = append(ids, e.ID)
		}
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(ids) {
		newIndex = len(ids)
	}
	ids = append(ids[:newIndex], append([]int64{id}, ids[newIndex:]...)...)
	return s.SaveOrder(ctx, ex.DayOfWeek, ids)
}

// SaveOrder 按给定顺序保存；排序号即列表位置
func (s *ExerciseListService) SaveOrder(ctx context.Context, day schema.DayOfWeek, ids []int64) ([]schema.Exercise, error) {
	if err := s.tracker.SaveOrder(ctx, day, ids); err != nil {
		return nil, err
	}
	s.publish(day)
	return s.tracker.ExercisesForDay(ctx, day)
}

func (s *ExerciseListService) publish(day schema.DayOfWeek) {
	s.hub.Publish(eventbus.Event{Type: eventbus.TypeExercisesChanged, Data: map[string]any{"day": string(day)}})
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

// DefaultWorkoutDays 默认展示的训练日
var DefaultWorkoutDays = []schema.DayOfWeek{schema.Monday, schema.Wednesday, schema.Thursday, schema.Saturday}

// CalendarDay 首页的一个训练日
type CalendarDay struct {
	Day               schema.DayOfWeek `json:"day"`
	DisplayName       string           `json:"display_name"`
	ExerciseCount     int              `json:"exercise_count"`
	CompletedThisWeek bool             `json:"completed_this_week"`
	IsToday           bool             `json:"is_today"`
}

// CalendarView 首页
type CalendarView struct {
	Days       []CalendarDay `json:"days"`
	TodayIndex int           `json:"today_index"`
	WeekStart  time.Time     `json:"week_start"`
}

// CalendarService 训练日列表与本周完成情况
type CalendarService struct {
	mu      sync.RWMutex
	tracker *Tracker
	stats   StatsRepository
	days    []schema.DayOfWeek
}

// NewCalendarService 创建首页服务；days 为空时使用默认训练日
func NewCalendarService(tracker *Tracker, stats StatsRepository, days []schema.DayOfWeek) *CalendarService {
	s := &CalendarService{tracker: tracker, stats: stats}
	s.SetDays(days)
	return s
}

// SetDays 更新训练日（配置热加载）
func (s *CalendarService) SetDays(days []schema.DayOfWeek) {
	valid := make([]schema.DayOfWeek, 0, len(days))
	seen := make(map[schema.DayOfWeek]struct{}, len(days))
	for _, d := range days {
		if !d.Valid() {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		valid = append(valid, DefaultWorkoutDays...)
	}
	s.mu.Lock()
	s.days = valid
	s.mu.Unlock()
}

// Days 当前训练日
func (s *CalendarService) Days() []schema.DayOfWeek {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schema.DayOfWeek(nil), s.days...)
}

// View 首页数据；今天不是训练日时 TodayIndex 为 0
func (s *CalendarService) View(ctx context.Context) (*CalendarView, error) {
	days := s.Days()
	now := s.tracker.Now()
	weekStart := repository.StartOfWeek(now)

	completed, err := s.stats.DaysWithCompletedExercisesSince(ctx, weekStart.UnixMilli())
	if err != nil {
		return nil, err
	}
	done := make(map[schema.DayOfWeek]bool, len(completed))
	for _, d := range completed {
		done[d] = true
	}
	counts, err := s.tracker.ExerciseCounts(ctx)
	if err != nil {
		return nil, err
	}

	today := schema.FromWeekday(now.Weekday())
	view := &CalendarView{WeekStart: weekStart, Days: make([]CalendarDay, 0, len(days))}
	for i, d := range days {
		isToday := d == today
		if isToday {
			view.TodayIndex = i
		}
		view.Days = append(view.Days, CalendarDay{
			Day:               d,
			DisplayName:       d.DisplayName(),
			ExerciseCount:     counts[d],
			CompletedThisWeek: done[d],
			IsToday:           isToday,
		})
	}
	return view, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yuqie6/TrivialFit/internal/schema"
)

// TrackerConfig 训练仓储门面配置
type TrackerConfig struct {
	DayStartHour int
	Now          func() time.Time
}

// Tracker 训练数据门面：封装编号/排序/凌晨归属等领域规则
type Tracker struct {
	exercises  ExerciseRepository
	sessions   WorkoutSessionRepository
	logs       ExerciseLogRepository
	sets       SetLogRepository
	variations VariationRepository

	dayStartHour int
	now          func() time.Time
}

// NewTracker 创建训练门面
func NewTracker(
	exercises ExerciseRepository,
	sessions WorkoutSessionRepository,
	logs ExerciseLogRepository,
	sets SetLogRepository,
	variations VariationRepository,
	cfg *TrackerConfig,
) *Tracker {
	t := &Tracker{
		exercises:    exercises,
		sessions:     sessions,
		logs:         logs,
		sets:         sets,
		variations:   variations,
		dayStartHour: DefaultDayStartHour,
		now:          time.Now,
	}
	if cfg != nil {
		if cfg.DayStartHour >= 0 && cfg.DayStartHour < 24 {
			t.dayStartHour = cfg.DayStartHour
		}
		t.now = nowOrDefault(cfg.Now)
	}
	return t
}

// Now 当前时间（可注入）
func (t *Tracker) Now() time.Time {
	return t.now()
}

// AdjustedNow 训练归属时间
func (t *Tracker) AdjustedNow() time.Time {
	return AdjustedTime(t.now(), t.dayStartHour)
}

// ========== 动作 ==========

// ExercisesForDay 训练日动作列表
func (t *Tracker) ExercisesForDay(ctx context.Context, day schema.DayOfWeek) ([]schema.Exercise, error) {
	return t.exercises.ListByDay(ctx, day)
}

// ExerciseCounts 各训练日动作数
func (t *Tracker) ExerciseCounts(ctx context.Context) (map[schema.DayOfWeek]int, error) {
	return t.exercises.CountByDay(ctx)
}

// Exercise 按 ID 查询动作，不存在返回 ErrNotFound
func (t *Tracker) Exercise(ctx context.Context, id int64) (*schema.Exercise, error) {
	ex, err := t.exercises.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ex == nil {
		return nil, fmt.Errorf("动作 %d: %w", id, ErrNotFound)
	}
	return ex, nil
}

// ExercisesByName 同名动作
func (t *Tracker) ExercisesByName(ctx context.Context, name string) ([]schema.Exercise, error) {
	return t.exercises.ListByName(ctx, strings.TrimSpace(name))
}

// AddExercise 追加到训练日末尾：排序号 = 当前最大值 + 1，首个为 0
func (t *Tracker) AddExercise(ctx context.Context, name string, day schema.DayOfWeek) (*schema.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("动作名称不能为空: %w", ErrInvalidInput)
	}
	if !day.Valid() {
		return nil, fmt.Errorf("未知的训练日 %q: %w", day, ErrInvalidInput)
	}

	maxIdx, ok, err := t.exercises.MaxOrderIndex(ctx, day)
	if err != nil {
		return nil, err
	}
	next := 0
	if ok {
		next = maxIdx + 1
	}

	ex := &schema.Exercise{Name: name, DayOfWeek: day, OrderIndex: next}
	if err := t.exercises.Create(ctx, ex); err != nil {
		return nil, err
	}
	return ex, nil
}

// UpdateExercise 更新动作
func (t *Tracker) UpdateExercise(ctx context.Context, ex *schema.Exercise) error {
	if ex == nil {
		return fmt.Errorf("exercise is nil: %w", ErrInvalidInput)
	}
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return fmt.Errorf("动作名称不能为空: %w", ErrInvalidInput)
	}
	return t.exercises.Update(ctx, ex)
}

// RenameExercises 同名动作批量改名
func (t *Tracker) RenameExercises(ctx context.Context, oldName, newName string) (int64, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return 0, fmt.Errorf("动作名称不能为空: %w", ErrInvalidInput)
	}
	return t.exercises.RenameByName(ctx, strings.TrimSpace(oldName), newName)
}

// DeleteExercise 删除动作（级联删除其全部历史）
func (t *Tracker) DeleteExercise(ctx context.Context, id int64) error {
	return t.exercises.Delete(ctx, id)
}

// DeleteExercisesByName 删除全部同名动作
func (t *Tracker) DeleteExercisesByName(ctx context.Context, name string) (int64, error) {
	return t.exercises.DeleteByName(ctx, strings.TrimSpace(name))
}

// ReorderExercise 直接设置单个动作的排序号
func (t *Tracker) ReorderExercise(ctx context.Context, id int64, newIndex int) error {
	if newIndex < 0 {
		return fmt.Errorf("排序号不能为负: %w", ErrInvalidInput)
	}
	return t.exercises.UpdateOrderIndex(ctx, id, newIndex)
}

// SaveOrder 按列表位置重写 day 下动作的排序号
func (t *Tracker) SaveOrder(ctx context.Context, day schema.DayOfWeek, ids []int64) error {
	return t.exercises.SaveOrder(ctx, day, ids)
}

// ========== 会话 / 记录 ==========

// StartWorkoutSession 新建训练会话，日期取训练归属时间
func (t *Tracker) StartWorkoutSession(ctx context.Context, day schema.DayOfWeek) (*schema.WorkoutSession, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("未知的训练日 %q: %w", day, ErrInvalidInput)
	}
	session := &schema.WorkoutSession{Date: t.AdjustedNow().UnixMilli(), DayOfWeek: day}
	if err := t.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Session 按 ID 查询会话；不存在返回 nil, nil
func (t *Tracker) Session(ctx context.Context, id int64) (*schema.WorkoutSession, error) {
	return t.sessions.GetByID(ctx, id)
}

// RecentSessionsForDay 训练日最近 limit 次会话
func (t *Tracker) RecentSessionsForDay(ctx context.Context, day schema.DayOfWeek, limit int) ([]schema.WorkoutSession, error) {
	return t.sessions.ListRecentByDay(ctx, day, limit)
}

// MostRecentSession 最近一次会话
func (t *Tracker) MostRecentSession(ctx context.Context) (*schema.WorkoutSession, error) {
	return t.sessions.GetMostRecent(ctx)
}

// FindExerciseLog 会话内已有的动作记录；没有返回 nil, nil
func (t *Tracker) FindExerciseLog(ctx context.Context, sessionID, exerciseID int64) (*schema.ExerciseLog, error) {
	return t.logs.GetBySessionAndExercise(ctx, sessionID, exerciseID)
}

// GetOrCreateExerciseLog 幂等获取会话内的动作记录
func (t *Tracker) GetOrCreateExerciseLog(ctx context.Context, sessionID, exerciseID int64) (*schema.ExerciseLog, error) {
	existing, err := t.logs.GetBySessionAndExercise(ctx, sessionID, exerciseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	log := &schema.ExerciseLog{
		SessionID:   sessionID,
		ExerciseID:  exerciseID,
		CompletedAt: t.AdjustedNow().UnixMilli(),
	}
	if err := t.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// LogsForSession 会话内的记录
func (t *Tracker) LogsForSession(ctx context.Context, sessionID int64) ([]schema.ExerciseLog, error) {
	return t.logs.ListBySession(ctx, sessionID)
}

// RecentLogsForExercise 动作最近 limit 条记录
func (t *Tracker) RecentLogsForExercise(ctx context.Context, exerciseID int64, limit int) ([]schema.ExerciseLog, error) {
	return t.logs.ListRecentByExercise(ctx, exerciseID, limit)
}

// LogsForExercises 多个动作的全部记录
func (t *Tracker) LogsForExercises(ctx context.Context, exerciseIDs []int64) ([]schema.ExerciseLog, error) {
	return t.logs.ListByExercises(ctx, exerciseIDs)
}

// UpdateExerciseNote 备注去首尾空白，空串存 NULL
func (t *Tracker) UpdateExerciseNote(ctx context.Context, logID int64, note string) error {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return t.logs.UpdateNote(ctx, logID, nil)
	}
	return t.logs.UpdateNote(ctx, logID, &trimmed)
}

// UpdateExerciseVariation 设置/取消记录的变式
func (t *Tracker) UpdateExerciseVariation(ctx context.Context, logID int64, variationID *int64) error {
	return t.logs.UpdateVariation(ctx, logID, variationID)
}

// DeleteExerciseLog 删除一条记录
func (t *Tracker) DeleteExerciseLog(ctx context.Context, logID int64) error {
	return t.logs.Delete(ctx, logID)
}

// ========== 组 ==========

// LogSet 记录一组：递减组组号为 0 且不占序号，正式组组号 = 最大正式组号 + 1
func (t *Tracker) LogSet(ctx context.Context, logID int64, weight *float64, reps int, dropdown bool) (*schema.SetLog, error) {
	if reps < 1 {
		return nil, fmt.Errorf("次数必须 >= 1: %w", ErrInvalidInput)
	}
	if weight != nil && *weight < 0 {
		return nil, fmt.Errorf("重量不能为负: %w", ErrInvalidInput)
	}

	set := &schema.SetLog{ExerciseLogID: logID, Reps: reps, IsDropdown: dropdown}
	if dropdown {
		set.SetNumber = 0
	} else {
		maxNum, err := t.sets.MaxSetNumber(ctx, logID)
		if err != nil {
			return nil, err
		}
		set.SetNumber = maxNum + 1
		set.Weight = weight
	}

	if err := t.sets.Create(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// SetsForExerciseLog 记录下的组
func (t *Tracker) SetsForExerciseLog(ctx context.Context, logID int64) ([]schema.SetLog, error) {
	return t.sets.ListByExerciseLog(ctx, logID)
}

// SetsForExerciseLogs 批量查询组
func (t *Tracker) SetsForExerciseLogs(ctx context.Context, logIDs []int64) (map[int64][]schema.SetLog, error) {
	return t.sets.ListByExerciseLogs(ctx, logIDs)
}

// DeleteSetLog 删除一组
func (t *Tracker) DeleteSetLog(ctx context.Context, setID int64) error {
	return t.sets.DeleteByID(ctx, setID)
}

// UpdateSetsWeight 修改记录内正式组的重量
func (t *Tracker) UpdateSetsWeight(ctx context.Context, logID int64, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("重量不能为负: %w", ErrInvalidInput)
	}
	_, err := t.sets.UpdateWeight(ctx, logID, weight)
	return err
}

// ========== 变式 ==========

// VariationsForExercise 动作变式
func (t *Tracker) VariationsForExercise(ctx context.Context, exerciseID int64) ([]schema.ExerciseVariation, error) {
	return t.variations.ListByExercise(ctx, exerciseID)
}

// Variation 按 ID 查询变式；不存在返回 nil, nil
func (t *Tracker) Variation(ctx context.Context, id int64) (*schema.ExerciseVariation, error) {
	return t.variations.GetByID(ctx, id)
}

// VariationsByIDs 批量查询变式
func (t *Tracker) VariationsByIDs(ctx context.Context, ids []int64) (map[int64]schema.ExerciseVariation, error) {
	return t.variations.GetByIDs(ctx, ids)
}

// AddVariation 新增变式
func (t *Tracker) AddVariation(ctx context.Context, exerciseID int64, name string) (*schema.ExerciseVariation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("变式名称不能为空: %w", ErrInvalidInput)
	}
	if _, err := t.Exercise(ctx, exerciseID); err != nil {
		return nil, err
	}
	v := &schema.ExerciseVariation{ExerciseID: exerciseID, Name: name}
	if err := t.variations.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

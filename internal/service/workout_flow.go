package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

// 续接标记；session_id 缺失或为 -1 表示没有进行中的训练
const (
	workoutStatePrefix    = "workout_state."
	workoutStateSessionID = workoutStatePrefix + "session_id"
	workoutStateDay       = workoutStatePrefix + "day"
	workoutStateIndex     = workoutStatePrefix + "exercise_index"
	workoutStateReps      = workoutStatePrefix + "reps"
	workoutStateLastSetID = workoutStatePrefix + "last_set_id"
	noSessionID           = -1
	defaultRepsWhenUnset  = 10
	defaultHistoryEntries = 3
)

// WorkoutState 可续接的训练进度
type WorkoutState struct {
	SessionID     int64            `json:"session_id"`
	Day           schema.DayOfWeek `json:"day"`
	ExerciseIndex int              `json:"exercise_index"`
}

// ExerciseStatus 进度条上的单个动作
type ExerciseStatus struct {
	Index      int    `json:"index"`
	ExerciseID int64  `json:"exercise_id"`
	Name       string `json:"name"`
	HasSets    bool   `json:"has_sets"`
	Current    bool   `json:"current"`
}

// WorkoutView 当前训练页面的完整状态
type WorkoutView struct {
	SessionID  int64                      `json:"session_id"`
	Day        schema.DayOfWeek           `json:"day"`
	Finished   bool                       `json:"finished"`
	Exercise   *schema.Exercise           `json:"exercise,omitempty"`
	Index      int                        `json:"index"`
	Total      int                        `json:"total"`
	IsFirst    bool                       `json:"is_first"`
	IsLast     bool                       `json:"is_last"`
	Statuses   []ExerciseStatus           `json:"statuses"`
	History    []HistoryEntry             `json:"history"`
	LastWeight *float64                   `json:"last_weight,omitempty"`
	LastReps   *int                       `json:"last_reps,omitempty"`
	TodaySets  []schema.SetLog            `json:"today_sets"`
	Summary    string                     `json:"summary"`
	Note       string                     `json:"note"`
	Variation  *schema.ExerciseVariation  `json:"variation,omitempty"`
	Variations []schema.ExerciseVariation `json:"variations"`
	Reps       int                        `json:"reps"`
	CanUndo    bool                       `json:"can_undo"`
}

// Progress "2/5" 形式的进度
func (v *WorkoutView) Progress() string {
	if v == nil || v.Total == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", v.Index+1, v.Total)
}

// WorkoutFlowConfig 训练流程配置
type WorkoutFlowConfig struct {
	DefaultReps  int
	HistoryLimit int
}

// WorkoutFlow 引导式训练：逐个动作记录组，并把进度写入键值标记以便中断后续接
type WorkoutFlow struct {
	mu sync.Mutex

	tracker *Tracker
	state   StateRepository
	hub     *eventbus.Hub

	defaultReps  int
	historyLimit int

	active    bool
	finished  bool
	sessionID int64
	day       schema.DayOfWeek
	exercises []schema.Exercise
	index     int
	reps      int
	lastSetID int64
}

// NewWorkoutFlow 创建训练流程
func NewWorkoutFlow(tracker *Tracker, state StateRepository, hub *eventbus.Hub, cfg *WorkoutFlowConfig) *WorkoutFlow {
	f := &WorkoutFlow{
		tracker:      tracker,
		state:        state,
		hub:          hub,
		defaultReps:  defaultRepsWhenUnset,
		historyLimit: defaultHistoryEntries,
	}
	if cfg != nil {
		if cfg.DefaultReps > 0 {
			f.defaultReps = cfg.DefaultReps
		}
		if cfg.HistoryLimit > 0 {
			f.historyLimit = cfg.HistoryLimit
		}
	}
	f.reps = f.defaultReps
	return f
}

// Start 开始训练日；没有动作时直接结束且不建会话
func (f *WorkoutFlow) Start(ctx context.Context, day schema.DayOfWeek) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	exercises, err := f.tracker.ExercisesForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	f.reset()
	f.active = true
	f.day = day
	f.exercises = exercises
	if len(exercises) == 0 {
		f.finished = true
		slog.Info("训练日没有动作，直接结束", "day", day)
		return f.viewLocked(ctx)
	}

	session, err := f.tracker.StartWorkoutSession(ctx, day)
	if err != nil {
		return nil, err
	}
	f.sessionID = session.ID
	if err := f.state.DeletePrefix(ctx, workoutStatePrefix); err != nil {
		return nil, err
	}
	if err := f.persistLocked(ctx); err != nil {
		return nil, err
	}
	slog.Info("开始训练", "day", day, "session_id", session.ID, "exercises", len(exercises))
	f.publishLocked(eventbus.TypeWorkoutUpdated)
	return f.viewLocked(ctx)
}

// Resume 按给定进度续接，索引越界时夹到合法范围
func (f *WorkoutFlow) Resume(ctx context.Context, st WorkoutState) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.resumeLocked(ctx, st, false); err != nil {
		return nil, err
	}
	if err := f.state.Delete(ctx, workoutStateLastSetID); err != nil {
		return nil, err
	}
	return f.viewLocked(ctx)
}

// ResumeSaved 从键值标记续接；没有标记或会话已不存在时返回 ErrNoActiveWorkout
func (f *WorkoutFlow) ResumeSaved(ctx context.Context) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := f.savedStateLocked(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNoActiveWorkout
	}

	// 同一进程内已经是这个会话时保留撤销/次数等内存状态
	if f.active && !f.finished && f.sessionID == st.SessionID {
		return f.viewLocked(ctx)
	}

	if err := f.resumeLocked(ctx, *st, true); err != nil {
		return nil, err
	}
	return f.viewLocked(ctx)
}

// SavedState 读取续接标记；没有进行中的训练返回 nil, nil
func (f *WorkoutFlow) SavedState(ctx context.Context) (*WorkoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.savedStateLocked(ctx)
}

// View 当前页面状态
func (f *WorkoutFlow) View(ctx context.Context) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return nil, ErrNoActiveWorkout
	}
	return f.viewLocked(ctx)
}

// SetReps 设置待记录的次数（最小 1）
func (f *WorkoutFlow) SetReps(ctx context.Context, reps int) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	if reps < 1 {
		reps = 1
	}
	f.reps = reps
	if err := f.state.Set(ctx, workoutStateReps, strconv.Itoa(reps)); err != nil {
		return nil, err
	}
	return f.viewLocked(ctx)
}

// IncrementReps 次数 +1
func (f *WorkoutFlow) IncrementReps(ctx context.Context) (*WorkoutView, error) {
	f.mu.Lock()
	reps := f.reps + 1
	f.mu.Unlock()
	return f.SetReps(ctx, reps)
}

// DecrementReps 次数 -1，不低于 1
func (f *WorkoutFlow) DecrementReps(ctx context.Context) (*WorkoutView, error) {
	f.mu.Lock()
	reps := f.reps - 1
	f.mu.Unlock()
	return f.SetReps(ctx, reps)
}

// LogSet 以当前次数记录一组正式组
func (f *WorkoutFlow) LogSet(ctx context.Context, weight *float64) (*WorkoutView, error) {
	return f.logSet(ctx, weight, false)
}

// LogDropdown 以当前次数记录一组递减组
func (f *WorkoutFlow) LogDropdown(ctx context.Context) (*WorkoutView, error) {
	return f.logSet(ctx, nil, true)
}

func (f *WorkoutFlow) logSet(ctx context.Context, weight *float64, dropdown bool) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}

	log, err := f.tracker.GetOrCreateExerciseLog(ctx, f.sessionID, f.exercises[f.index].ID)
	if err != nil {
		return nil, err
	}
	set, err := f.tracker.LogSet(ctx, log.ID, weight, f.reps, dropdown)
	if err != nil {
		return nil, err
	}
	f.lastSetID = set.ID
	if err := f.state.Set(ctx, workoutStateLastSetID, strconv.FormatInt(set.ID, 10)); err != nil {
		return nil, err
	}
	slog.Debug("记录一组", "exercise", f.exercises[f.index].Name, "set", set.SetNumber, "reps", set.Reps, "dropdown", dropdown)
	f.publishLocked(eventbus.TypeWorkoutUpdated)
	return f.viewLocked(ctx)
}

// UndoLastSet 撤销当前动作最后记录的一组
func (f *WorkoutFlow) UndoLastSet(ctx context.Context) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	if f.lastSetID == 0 {
		return nil, ErrNothingToUndo
	}
	if err := f.tracker.DeleteSetLog(ctx, f.lastSetID); err != nil {
		return nil, err
	}
	f.lastSetID = 0
	if err := f.state.Delete(ctx, workoutStateLastSetID); err != nil {
		return nil, err
	}
	f.publishLocked(eventbus.TypeWorkoutUpdated)
	return f.viewLocked(ctx)
}

// Next 下一个动作；已是最后一个时结束训练
func (f *WorkoutFlow) Next(ctx context.Context) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	if f.index >= len(f.exercises)-1 {
		if err := f.finishLocked(ctx); err != nil {
			return nil, err
		}
		return f.viewLocked(ctx)
	}
	return f.moveLocked(ctx, f.index+1)
}

// Previous 上一个动作；已是第一个时不变
func (f *WorkoutFlow) Previous(ctx context.Context) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	if f.index == 0 {
		return f.viewLocked(ctx)
	}
	return f.moveLocked(ctx, f.index-1)
}

// GoTo 跳转到指定动作；越界忽略
func (f *WorkoutFlow) GoTo(ctx context.Context, index int) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(f.exercises) || index == f.index {
		return f.viewLocked(ctx)
	}
	return f.moveLocked(ctx, index)
}

// SetNote 设置当前动作备注，空串清空
func (f *WorkoutFlow) SetNote(ctx context.Context, note string) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	log, err := f.tracker.GetOrCreateExerciseLog(ctx, f.sessionID, f.exercises[f.index].ID)
	if err != nil {
		return nil, err
	}
	if err := f.tracker.UpdateExerciseNote(ctx, log.ID, note); err != nil {
		return nil, err
	}
	f.publishLocked(eventbus.TypeWorkoutUpdated)
	return f.viewLocked(ctx)
}

// UpdateWeight 修改今天已记录正式组的重量；还没有记录时不做任何事
func (f *WorkoutFlow) UpdateWeight(ctx context.Context, weight float64) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	log, err := f.tracker.FindExerciseLog(ctx, f.sessionID, f.exercises[f.index].ID)
	if err != nil {
		return nil, err
	}
	if log != nil {
		if err := f.tracker.UpdateSetsWeight(ctx, log.ID, weight); err != nil {
			return nil, err
		}
		f.publishLocked(eventbus.TypeWorkoutUpdated)
	}
	return f.viewLocked(ctx)
}

// SelectVariation 选择/取消当前动作的变式
func (f *WorkoutFlow) SelectVariation(ctx context.Context, variationID *int64) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	if err := f.selectVariationLocked(ctx, variationID); err != nil {
		return nil, err
	}
	return f.viewLocked(ctx)
}

// AddVariation 为当前动作新增变式并选中
func (f *WorkoutFlow) AddVariation(ctx context.Context, name string) (*WorkoutView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireCurrentLocked(); err != nil {
		return nil, err
	}
	v, err := f.tracker.AddVariation(ctx, f.exercises[f.index].ID, name)
	if err != nil {
		return nil, err
	}
	if err := f.selectVariationLocked(ctx, &v.ID); err != nil {
		return nil, err
	}
	return f.viewLocked(ctx)
}

// Finish 结束训练并清除续接标记
func (f *WorkoutFlow) Finish(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finishLocked(ctx)
}

// ========== internal ==========

func (f *WorkoutFlow) reset() {
	f.active = false
	f.finished = false
	f.sessionID = 0
	f.day = ""
	f.exercises = nil
	f.index = 0
	f.reps = f.defaultReps
	f.lastSetID = 0
}

func (f *WorkoutFlow) requireCurrentLocked() error {
	if !f.active || f.finished || len(f.exercises) == 0 {
		return ErrNoActiveWorkout
	}
	return nil
}

// resumeLocked 重建内存状态并回写标记；withExtras 时先取回次数与可撤销的组，回写不能覆盖它们
func (f *WorkoutFlow) resumeLocked(ctx context.Context, st WorkoutState, withExtras bool) error {
	exercises, err := f.tracker.ExercisesForDay(ctx, st.Day)
	if err != nil {
		return err
	}

	f.reset()
	if withExtras {
		if err := f.restoreExtrasLocked(ctx); err != nil {
			return err
		}
	}
	f.active = true
	f.sessionID = st.SessionID
	f.day = st.Day
	f.exercises = exercises
	if len(exercises) == 0 {
		f.finished = true
		return nil
	}
	f.index = clampIndex(st.ExerciseIndex, len(exercises))
	slog.Info("续接训练", "day", st.Day, "session_id", st.SessionID, "index", f.index)
	return f.persistLocked(ctx)
}

func (f *WorkoutFlow) restoreExtrasLocked(ctx context.Context) error {
	if v, ok, err := f.state.Get(ctx, workoutStateReps); err != nil {
		return err
	} else if ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.reps = n
		}
	}
	if v, ok, err := f.state.Get(ctx, workoutStateLastSetID); err != nil {
		return err
	} else if ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			f.lastSetID = id
		}
	}
	return nil
}

func (f *WorkoutFlow) savedStateLocked(ctx context.Context) (*WorkoutState, error) {
	raw, ok, err := f.state.Get(ctx, workoutStateSessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	sessionID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || sessionID == noSessionID || sessionID <= 0 {
		return nil, nil
	}

	session, err := f.tracker.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		// 会话可能随导入/删除消失，旧标记没有意义
		slog.Warn("续接标记指向的会话不存在，已清除", "session_id", sessionID)
		if err := f.state.DeletePrefix(ctx, workoutStatePrefix); err != nil {
			return nil, err
		}
		return nil, nil
	}

	st := &WorkoutState{SessionID: sessionID, Day: session.DayOfWeek}
	if v, ok, err := f.state.Get(ctx, workoutStateDay); err != nil {
		return nil, err
	} else if ok {
		if day, err := schema.ParseDayOfWeek(v); err == nil {
			st.Day = day
		}
	}
	if v, ok, err := f.state.Get(ctx, workoutStateIndex); err != nil {
		return nil, err
	} else if ok {
		if idx, err := strconv.Atoi(v); err == nil {
			st.ExerciseIndex = idx
		}
	}
	return st, nil
}

func (f *WorkoutFlow) persistLocked(ctx context.Context) error {
	return f.state.SetMany(ctx, map[string]string{
		workoutStateSessionID: strconv.FormatInt(f.sessionID, 10),
		workoutStateDay:       string(f.day),
		workoutStateIndex:     strconv.Itoa(f.index),
		workoutStateReps:      strconv.Itoa(f.reps),
	})
}

func (f *WorkoutFlow) moveLocked(ctx context.Context, index int) (*WorkoutView, error) {
	f.index = index
	f.lastSetID = 0
	if err := f.state.Delete(ctx, workoutStateLastSetID); err != nil {
		return nil, err
	}
	if err := f.persistLocked(ctx); err != nil {
		return nil, err
	}
	f.publishLocked(eventbus.TypeWorkoutUpdated)
	return f.viewLocked(ctx)
}

func (f *WorkoutFlow) finishLocked(ctx context.Context) error {
	if err := f.state.DeletePrefix(ctx, workoutStatePrefix); err != nil {
		return err
	}
	if f.active && !f.finished {
		slog.Info("训练结束", "day", f.day, "session_id", f.sessionID)
	}
	f.finished = true
	f.lastSetID = 0
	f.publishLocked(eventbus.TypeWorkoutFinished)
	return nil
}

func (f *WorkoutFlow) selectVariationLocked(ctx context.Context, variationID *int64) error {
	if variationID != nil {
		v, err := f.tracker.Variation(ctx, *variationID)
		if err != nil {
			return err
		}
		if v == nil || v.ExerciseID != f.exercises[f.index].ID {
			return fmt.Errorf("变式 %d: %w", *variationID, ErrNotFound)
		}
	}
	log, err := f.tracker.GetOrCreateExerciseLog(ctx, f.sessionID, f.exercises[f.index].ID)
	if err != nil {
		return err
	}
	if err := f.tracker.UpdateExerciseVariation(ctx, log.ID, variationID); err != nil {
		return err
	}
	f.publishLocked(eventbus.TypeWorkoutUpdated)
	return nil
}

func (f *WorkoutFlow) publishLocked(typ string) {
	f.hub.Publish(eventbus.Event{Type: typ, Data: map[string]any{
		"session_id": f.sessionID,
		"day":        string(f.day),
		"index":      f.index,
		"finished":   f.finished,
	}})
}

func (f *WorkoutFlow) viewLocked(ctx context.Context) (*WorkoutView, error) {
	view := &WorkoutView{
		SessionID:  f.sessionID,
		Day:        f.day,
		Finished:   f.finished,
		Index:      f.index,
		Total:      len(f.exercises),
		Reps:       f.reps,
		Statuses:   []ExerciseStatus{},
		History:    []HistoryEntry{},
		TodaySets:  []schema.SetLog{},
		Variations: []schema.ExerciseVariation{},
	}
	if f.finished || len(f.exercises) == 0 {
		return view, nil
	}

	current := f.exercises[f.index]
	view.Exercise = &current
	view.IsFirst = f.index == 0
	view.IsLast = f.index == len(f.exercises)-1
	view.CanUndo = f.lastSetID != 0

	statuses, err := f.statusesLocked(ctx)
	if err != nil {
		return nil, err
	}
	view.Statuses = statuses

	history, err := f.historyLocked(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	view.History = history
	view.LastWeight, view.LastReps = lastWeightAndReps(history)

	log, err := f.tracker.FindExerciseLog(ctx, f.sessionID, current.ID)
	if err != nil {
		return nil, err
	}
	if log != nil {
		sets, err := f.tracker.SetsForExerciseLog(ctx, log.ID)
		if err != nil {
			return nil, err
		}
		view.TodaySets = sets
		if log.Note != nil {
			view.Note = *log.Note
		}
		if log.VariationID != nil {
			v, err := f.tracker.Variation(ctx, *log.VariationID)
			if err != nil {
				return nil, err
			}
			view.Variation = v
		}
	}
	if len(view.TodaySets) > 0 {
		view.Summary = FormatSetsSummary(view.TodaySets)
	}

	variations, err := f.tracker.VariationsForExercise(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	view.Variations = variations
	return view, nil
}

func (f *WorkoutFlow) statusesLocked(ctx context.Context) ([]ExerciseStatus, error) {
	logs, err := f.tracker.LogsForSession(ctx, f.sessionID)
	if err != nil {
		return nil, err
	}
	logIDs := make([]int64, 0, len(logs))
	logByExercise := make(map[int64]int64, len(logs))
	for _, l := range logs {
		logIDs = append(logIDs, l.ID)
		if _, ok := logByExercise[l.ExerciseID]; !ok {
			logByExercise[l.ExerciseID] = l.ID
		}
	}
	sets, err := f.tracker.SetsForExerciseLogs(ctx, logIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ExerciseStatus, 0, len(f.exercises))
	for i, ex := range f.exercises {
		logID, ok := logByExercise[ex.ID]
		out = append(out, ExerciseStatus{
			Index:      i,
			ExerciseID: ex.ID,
			Name:       ex.Name,
			HasSets:    ok && len(sets[logID]) > 0,
			Current:    i == f.index,
		})
	}
	return out, nil
}

// historyLocked 最近几次（不含本次会话）的记录
func (f *WorkoutFlow) historyLocked(ctx context.Context, exerciseID int64) ([]HistoryEntry, error) {
	logs, err := f.tracker.RecentLogsForExercise(ctx, exerciseID, f.historyLimit+1)
	if err != nil {
		return nil, err
	}
	previous := make([]schema.ExerciseLog, 0, len(logs))
	for _, l := range logs {
		if l.SessionID == f.sessionID {
			continue
		}
		previous = append(previous, l)
	}
	if len(previous) > f.historyLimit {
		previous = previous[:f.historyLimit]
	}
	return buildHistoryEntries(ctx, f.tracker, previous)
}

// lastWeightAndReps 取最近一次记录的第一组正式组
func lastWeightAndReps(history []HistoryEntry) (*float64, *int) {
	if len(history) == 0 {
		return nil, nil
	}
	for _, s := range history[0].Sets {
		if s.IsDropdown {
			continue
		}
		reps := s.Reps
		var weight *float64
		if s.Weight != nil {
			w := *s.Weight
			weight = &w
		}
		return weight, &reps
	}
	return nil, nil
}

func clampIndex(idx, n int) int {
	if n <= 0 || idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

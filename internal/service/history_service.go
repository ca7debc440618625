package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

// HistoryEntry 一次动作记录的展示数据
type HistoryEntry struct {
	LogID         int64            `json:"log_id"`
	SessionID     int64            `json:"session_id"`
	ExerciseID    int64            `json:"exercise_id"`
	DayOfWeek     schema.DayOfWeek `json:"day_of_week"`
	Date          int64            `json:"date"`
	DateLabel     string           `json:"date_label"`
	Sets          []schema.SetLog  `json:"sets"`
	Note          string           `json:"note,omitempty"`
	VariationID   *int64           `json:"variation_id,omitempty"`
	VariationName string           `json:"variation_name,omitempty"`
	Summary       string           `json:"summary"`
}

// Line 单行展示，如 "Jan 2: Incline 60kg × 10, 8 (felt heavy)"
func (e HistoryEntry) Line() string {
	var b strings.Builder
	b.WriteString(e.DateLabel)
	b.WriteString(": ")
	b.WriteString(e.Summary)
	if e.Note != "" {
		b.WriteString(" (")
		b.WriteString(e.Note)
		b.WriteString(")")
	}
	return b.String()
}

// HistoryService 按动作名称浏览历史
type HistoryService struct {
	tracker *Tracker
}

// NewHistoryService 创建历史服务
func NewHistoryService(tracker *Tracker) *HistoryService {
	return &HistoryService{tracker: tracker}
}

// ForName 同名动作（跨训练日）的全部记录，最新在前
func (s *HistoryService) ForName(ctx context.Context, name string) ([]HistoryEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("动作名称不能为空: %w", ErrInvalidInput)
	}
	exercises, err := s.tracker.ExercisesByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("动作 %q: %w", name, ErrNotFound)
	}

	ids := make([]int64, 0, len(exercises))
	days := make(map[int64]schema.DayOfWeek, len(exercises))
	for _, ex := range exercises {
		ids = append(ids, ex.ID)
		days[ex.ID] = ex.DayOfWeek
	}

	logs, err := s.tracker.LogsForExercises(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries, err := buildHistoryEntries(ctx, s.tracker, logs)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].DayOfWeek = days[entries[i].ExerciseID]
	}
	return entries, nil
}

// ForNameOnDate 只保留记录时间落在 date 当天的条目，date 为 YYYY-MM-DD
func (s *HistoryService) ForNameOnDate(ctx context.Context, name, date string) ([]HistoryEntry, error) {
	startMs, endMs, err := repository.DayRange(strings.TrimSpace(date))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	entries, err := s.ForName(ctx, name)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Date >= startMs && e.Date <= endMs {
			out = append(out, e)
		}
	}
	return out, nil
}

// DeleteLog 删除一条历史记录
func (s *HistoryService) DeleteLog(ctx context.Context, logID int64) error {
	return s.tracker.DeleteExerciseLog(ctx, logID)
}

// Rename exerciseID 非 0 时只改这一个动作，否则改全部同名动作
func (s *HistoryService) Rename(ctx context.Context, exerciseID int64, oldName, newName string) (int64, error) {
	if exerciseID == 0 {
		return s.tracker.RenameExercises(ctx, oldName, newName)
	}
	ex, err := s.tracker.Exercise(ctx, exerciseID)
	if err != nil {
		return 0, err
	}
	ex.Name = newName
	if err := s.tracker.UpdateExercise(ctx, ex); err != nil {
		return 0, err
	}
	return 1, nil
}

// Delete exerciseID 非 0 时只删这一个动作，否则删全部同名动作
func (s *HistoryService) Delete(ctx context.Context, exerciseID int64, name string) (int64, error) {
	if exerciseID == 0 {
		return s.tracker.DeleteExercisesByName(ctx, name)
	}
	if err := s.tracker.DeleteExercise(ctx, exerciseID); err != nil {
		return 0, err
	}
	return 1, nil
}

func buildHistoryEntries(ctx context.Context, tracker *Tracker, logs []schema.ExerciseLog) ([]HistoryEntry, error) {
	if len(logs) == 0 {
		return []HistoryEntry{}, nil
	}

	logIDs := make([]int64, 0, len(logs))
	var variationIDs []int64
	for _, l := range logs {
		logIDs = append(logIDs, l.ID)
		if l.VariationID != nil {
			variationIDs = append(variationIDs, *l.VariationID)
		}
	}

	setsByLog, err := tracker.SetsForExerciseLogs(ctx, logIDs)
	if err != nil {
		return nil, err
	}
	variations, err := tracker.VariationsByIDs(ctx, variationIDs)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(logs))
	for _, l := range logs {
		sets := setsByLog[l.ID]
		if sets == nil {
			sets = []schema.SetLog{}
		}
		entry := HistoryEntry{
			LogID:       l.ID,
			SessionID:   l.SessionID,
			ExerciseID:  l.ExerciseID,
			Date:        l.CompletedAt,
			DateLabel:   FormatHistoryDate(l.CompletedAt),
			Sets:        sets,
			VariationID: l.VariationID,
			Summary:     FormatSetsSummary(sets),
		}
		if l.Note != nil {
			entry.Note = *l.Note
		}
		if l.VariationID != nil {
			if v, ok := variations[*l.VariationID]; ok {
				entry.VariationName = v.Name
				entry.Summary = v.Name + " " + entry.Summary
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

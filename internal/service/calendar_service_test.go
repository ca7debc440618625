package service

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/TrivialFit/internal/schema"
)

func TestCalendarViewMarksTodayAndCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.clock.t = time.Date(2025, 3, 6, 10, 0, 0, 0, time.Local) // 周四
	env.addExercises(t, schema.Monday, "Bench", "Row")
	env.addExercises(t, schema.Thursday, "Squat")

	stats := &fakeStats{completed: []schema.DayOfWeek{schema.Monday}}
	cal := NewCalendarService(env.tracker, stats, nil)

	view, err := cal.View(ctx)
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
	if len(view.Days) != len(DefaultWorkoutDays) {
		t.Fatalf("days=%d", len(view.Days))
	}
	if view.TodayIndex != 2 || !view.Days[2].IsToday {
		t.Fatalf("today index=%d", view.TodayIndex)
	}
	if !view.Days[0].CompletedThisWeek || view.Days[2].CompletedThisWeek {
		t.Fatalf("completion flags=%+v", view.Days)
	}
	if view.Days[0].ExerciseCount != 2 || view.Days[1].ExerciseCount != 0 {
		t.Fatalf("counts=%+v", view.Days)
	}

	wantWeek := time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)
	if !view.WeekStart.Equal(wantWeek) || stats.sinceMs != wantWeek.UnixMilli() {
		t.Fatalf("week start=%v", view.WeekStart)
	}
}

func TestCalendarSetDaysFiltersInvalid(t *testing.T) {
	env := newTestEnv(t)
	cal := NewCalendarService(env.tracker, &fakeStats{}, nil)

	cal.SetDays([]schema.DayOfWeek{schema.Friday, "NOPE", schema.Friday, schema.Tuesday})
	got := cal.Days()
	if len(got) != 2 || got[0] != schema.Friday || got[1] != schema.Tuesday {
		t.Fatalf("days=%v", got)
	}

	cal.SetDays(nil)
	if len(cal.Days()) != len(DefaultWorkoutDays) {
		t.Fatalf("empty days should fall back to defaults")
	}
}

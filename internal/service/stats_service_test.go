package service

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

type fakeStats struct {
	daily     []repository.DailySetCount
	completed []schema.DayOfWeek
	exercises []repository.ExerciseStat
	sinceMs   int64
}

func (f *fakeStats) DailySetCounts(ctx context.Context) ([]repository.DailySetCount, error) {
	return f.daily, nil
}

func (f *fakeStats) DaysWithCompletedExercisesSince(ctx context.Context, sinceMs int64) ([]schema.DayOfWeek, error) {
	f.sinceMs = sinceMs
	return f.completed, nil
}

func (f *fakeStats) ExerciseStats(ctx context.Context, sinceMs int64) ([]repository.ExerciseStat, error) {
	f.sinceMs = sinceMs
	return f.exercises, nil
}

func TestStatsDailySetCountsMergesSessions(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	morning := time.Date(2025, 3, 8, 9, 0, 0, 0, time.Local).UnixMilli()
	evening := time.Date(2025, 3, 8, 19, 0, 0, 0, time.Local).UnixMilli()
	stats := &fakeStats{daily: []repository.DailySetCount{{Date: morning, SetCount: 4}, {Date: evening, SetCount: 3}}}

	svc := NewStatsService(stats, func() time.Time { return now })
	counts, err := svc.DailySetCounts(context.Background())
	if err != nil {
		t.Fatalf("DailySetCounts error: %v", err)
	}
	if counts["2025-03-08"] != 7 {
		t.Fatalf("counts=%v", counts)
	}

	graph, err := svc.Contribution(context.Background())
	if err != nil {
		t.Fatalf("Contribution error: %v", err)
	}
	cell, ok := graph.Cell(time.Date(2025, 3, 8, 0, 0, 0, 0, time.Local))
	if !ok || cell.Count != 7 {
		t.Fatalf("cell=%+v ok=%v", cell, ok)
	}
	if graph.TotalSets != 7 || graph.ActiveDays != 1 {
		t.Fatalf("totals=%d/%d", graph.TotalSets, graph.ActiveDays)
	}
}

func TestStatsExerciseChartsGrouping(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	d1 := time.Date(2025, 3, 3, 18, 0, 0, 0, time.Local).UnixMilli()
	d2 := time.Date(2025, 3, 5, 18, 0, 0, 0, time.Local).UnixMilli()
	stats := &fakeStats{exercises: []repository.ExerciseStat{
		{ExerciseID: 2, ExerciseName: "Row", DayName: "MONDAY", OrderIndex: 1, Date: d1, TotalWeight: 150},
		{ExerciseID: 1, ExerciseName: "Bench", DayName: "MONDAY", OrderIndex: 0, Date: d1, TotalWeight: 180},
		{ExerciseID: 3, ExerciseName: "Squat", DayName: "WEDNESDAY", OrderIndex: 0, Date: d2, TotalWeight: 300},
		{ExerciseID: 4, ExerciseName: "Legacy", DayName: "LEGDAY", OrderIndex: 0, Date: d2, TotalWeight: 10},
		{ExerciseID: 1, ExerciseName: "Bench", DayName: "MONDAY", OrderIndex: 0, Date: d2, TotalWeight: 190},
	}}

	svc := NewStatsService(stats, func() time.Time { return now })
	days, err := svc.ExerciseCharts(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExerciseCharts error: %v", err)
	}

	wantSince := time.Date(2024, 12, 10, 0, 0, 0, 0, time.Local).UnixMilli()
	if stats.sinceMs != wantSince {
		t.Fatalf("since=%v, want %v", time.UnixMilli(stats.sinceMs), time.UnixMilli(wantSince))
	}

	if len(days) != 3 || days[0].Day != "MONDAY" || days[1].Day != "WEDNESDAY" || days[2].Day != "LEGDAY" {
		t.Fatalf("day order=%+v", days)
	}
	mon := days[0]
	if len(mon.Exercises) != 2 || mon.Exercises[0].Name != "Bench" || mon.Exercises[1].Name != "Row" {
		t.Fatalf("exercise order=%+v", mon.Exercises)
	}
	if mon.Exercises[0].Sessions != 2 {
		t.Fatalf("bench sessions=%d, want 2", mon.Exercises[0].Sessions)
	}
	if mon.Exercises[0].Chart == nil || len(mon.Exercises[0].Chart.Bars) == 0 {
		t.Fatalf("bench chart should have bars")
	}
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/testutil"
	"gorm.io/gorm"
)

type statsFixture struct {
	bench *schema.Exercise
	squat *schema.Exercise
}

func seedStats(t *testing.T, db *gorm.DB, base time.Time) statsFixture {
	t.Helper()
	ctx := context.Background()
	exercises := NewExerciseRepository(db)
	sessions := NewWorkoutSessionRepository(db)
	logs := NewExerciseLogRepository(db)
	sets := NewSetLogRepository(db)

	f := statsFixture{
		bench: &schema.Exercise{Name: "Bench", DayOfWeek: schema.Monday, OrderIndex: 0},
		squat: &schema.Exercise{Name: "Squat", DayOfWeek: schema.Saturday, OrderIndex: 0},
	}
	_ = exercises.Create(ctx, f.bench)
	_ = exercises.Create(ctx, f.squat)

	mon := &schema.WorkoutSession{Date: base.UnixMilli(), DayOfWeek: schema.Monday}
	sat := &schema.WorkoutSession{Date: base.AddDate(0, 0, 5).UnixMilli(), DayOfWeek: schema.Saturday}
	empty := &schema.WorkoutSession{Date: base.AddDate(0, 0, 2).UnixMilli(), DayOfWeek: schema.Wednesday}
	for _, s := range []*schema.WorkoutSession{mon, sat, empty} {
		if err := sessions.Create(ctx, s); err != nil {
			t.Fatalf("Create session error: %v", err)
		}
	}

	benchLog := &schema.ExerciseLog{SessionID: mon.ID, ExerciseID: f.bench.ID, CompletedAt: mon.Date}
	squatLog := &schema.ExerciseLog{SessionID: sat.ID, ExerciseID: f.squat.ID, CompletedAt: sat.Date}
	idleLog := &schema.ExerciseLog{SessionID: empty.ID, ExerciseID: f.bench.ID, CompletedAt: empty.Date}
	for _, l := range []*schema.ExerciseLog{benchLog, squatLog, idleLog} {
		if err := logs.Create(ctx, l); err != nil {
			t.Fatalf("Create log error: %v", err)
		}
	}

	w60, w80 := 60.0, 80.0
	_ = sets.Create(ctx, &schema.SetLog{ExerciseLogID: benchLog.ID, SetNumber: 1, Weight: &w60, Reps: 10})
	_ = sets.Create(ctx, &schema.SetLog{ExerciseLogID: benchLog.ID, SetNumber: 2, Weight: &w60, Reps: 8})
	_ = sets.Create(ctx, &schema.SetLog{ExerciseLogID: benchLog.ID, SetNumber: 0, Reps: 6, IsDropdown: true})
	_ = sets.Create(ctx, &schema.SetLog{ExerciseLogID: squatLog.ID, SetNumber: 1, Weight: &w80, Reps: 5})
	return f
}

func TestStatsRepositoryDailySetCounts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	base := time.Date(2025, 3, 3, 18, 0, 0, 0, time.Local)
	seedStats(t, db, base)

	rows, err := NewStatsRepository(db).DailySetCounts(context.Background())
	if err != nil {
		t.Fatalf("DailySetCounts error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%+v, want 2 sessions with sets", rows)
	}
	if rows[0].Date != base.UnixMilli() || rows[0].SetCount != 3 {
		t.Fatalf("first row=%+v, want 3 sets on base date", rows[0])
	}
	if rows[1].SetCount != 1 {
		t.Fatalf("second row=%+v, want 1 set", rows[1])
	}
}

func TestStatsRepositoryDaysWithCompletedExercisesSince(t *testing.T) {
	db := testutil.OpenTestDB(t)
	base := time.Date(2025, 3, 3, 18, 0, 0, 0, time.Local)
	seedStats(t, db, base)
	repo := NewStatsRepository(db)

	days, err := repo.DaysWithCompletedExercisesSince(context.Background(), base.AddDate(0, 0, -1).UnixMilli())
	if err != nil {
		t.Fatalf("DaysWithCompletedExercisesSince error: %v", err)
	}
	got := map[schema.DayOfWeek]bool{}
	for _, d := range days {
		got[d] = true
	}
	if len(days) != 2 || !got[schema.Monday] || !got[schema.Saturday] {
		t.Fatalf("days=%v, want MONDAY and SATURDAY only", days)
	}

	days, _ = repo.DaysWithCompletedExercisesSince(context.Background(), base.AddDate(0, 0, 1).UnixMilli())
	if len(days) != 1 || days[0] != schema.Saturday {
		t.Fatalf("days=%v, want SATURDAY", days)
	}
}

func TestStatsRepositoryExerciseStats(t *testing.T) {
	db := testutil.OpenTestDB(t)
	base := time.Date(2025, 3, 3, 18, 0, 0, 0, time.Local)
	f := seedStats(t, db, base)

	rows, err := NewStatsRepository(db).ExerciseStats(context.Background(), base.AddDate(0, -3, 0).UnixMilli())
	if err != nil {
		t.Fatalf("ExerciseStats error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%+v, want 2", rows)
	}
	if rows[0].ExerciseID != f.bench.ID || rows[0].TotalWeight != 120 || rows[0].DayName != "MONDAY" {
		t.Fatalf("bench row=%+v, want total 120 on MONDAY", rows[0])
	}
	if rows[1].ExerciseName != "Squat" || rows[1].TotalWeight != 80 {
		t.Fatalf("squat row=%+v", rows[1])
	}
}

func TestStatsRepositoryTotals(t *testing.T) {
	db := testutil.OpenTestDB(t)
	seedStats(t, db, time.Date(2025, 3, 3, 18, 0, 0, 0, time.Local))

	got, err := NewStatsRepository(db).Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals error: %v", err)
	}
	if got.Exercises != 2 || got.Sessions != 3 || got.Sets != 4 {
		t.Fatalf("totals=%+v", got)
	}
}

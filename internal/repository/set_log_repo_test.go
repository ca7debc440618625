package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/testutil"
	"gorm.io/gorm"
)

func seedLog(t *testing.T, db *gorm.DB) *schema.ExerciseLog {
	t.Helper()
	ctx := context.Background()
	ex := &schema.Exercise{Name: "Bench", DayOfWeek: schema.Monday}
	if err := NewExerciseRepository(db).Create(ctx, ex); err != nil {
		t.Fatalf("Create exercise error: %v", err)
	}
	session := &schema.WorkoutSession{Date: 1_700_000_000_000, DayOfWeek: schema.Monday}
	if err := NewWorkoutSessionRepository(db).Create(ctx, session); err != nil {
		t.Fatalf("Create session error: %v", err)
	}
	log := &schema.ExerciseLog{SessionID: session.ID, ExerciseID: ex.ID, CompletedAt: session.Date}
	if err := NewExerciseLogRepository(db).Create(ctx, log); err != nil {
		t.Fatalf("Create log error: %v", err)
	}
	return log
}

func TestSetLogRepositoryMaxSetNumberIgnoresDropdowns(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSetLogRepository(db)
	ctx := context.Background()
	log := seedLog(t, db)

	maxNum, err := repo.MaxSetNumber(ctx, log.ID)
	if err != nil || maxNum != 0 {
		t.Fatalf("MaxSetNumber=%d err=%v, want 0", maxNum, err)
	}

	w := 50.0
	_ = repo.Create(ctx, &schema.SetLog{ExerciseLogID: log.ID, SetNumber: 1, Weight: &w, Reps: 10})
	_ = repo.Create(ctx, &schema.SetLog{ExerciseLogID: log.ID, SetNumber: 2, Weight: &w, Reps: 8})
	_ = repo.Create(ctx, &schema.SetLog{ExerciseLogID: log.ID, SetNumber: 0, Reps: 12, IsDropdown: true})

	maxNum, err = repo.MaxSetNumber(ctx, log.ID)
	if err != nil || maxNum != 2 {
		t.Fatalf("MaxSetNumber=%d err=%v, want 2", maxNum, err)
	}

	sets, err := repo.ListByExerciseLog(ctx, log.ID)
	if err != nil {
		t.Fatalf("ListByExerciseLog error: %v", err)
	}
	if len(sets) != 3 || !sets[0].IsDropdown || sets[1].SetNumber != 1 {
		t.Fatalf("sets=%+v", sets)
	}
}

func TestSetLogRepositoryUpdateWeightSkipsDropdowns(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSetLogRepository(db)
	ctx := context.Background()
	log := seedLog(t, db)

	w := 40.0
	_ = repo.Create(ctx, &schema.SetLog{ExerciseLogID: log.ID, SetNumber: 1, Weight: &w, Reps: 10})
	_ = repo.Create(ctx, &schema.SetLog{ExerciseLogID: log.ID, SetNumber: 0, Reps: 6, IsDropdown: true})

	n, err := repo.UpdateWeight(ctx, log.ID, 45)
	if err != nil || n != 1 {
		t.Fatalf("UpdateWeight n=%d err=%v, want 1", n, err)
	}
	byLog, err := repo.ListByExerciseLogs(ctx, []int64{log.ID})
	if err != nil {
		t.Fatalf("ListByExerciseLogs error: %v", err)
	}
	for _, s := range byLog[log.ID] {
		if s.IsDropdown && s.Weight != nil {
			t.Fatalf("dropdown weight should stay empty: %+v", s)
		}
		if !s.IsDropdown && (s.Weight == nil || *s.Weight != 45) {
			t.Fatalf("regular weight not updated: %+v", s)
		}
	}
}

func TestSetLogRepositoryDeleteByID(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSetLogRepository(db)
	ctx := context.Background()
	log := seedLog(t, db)

	set := &schema.SetLog{ExerciseLogID: log.ID, SetNumber: 1, Reps: 5}
	if err := repo.Create(ctx, set); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.DeleteByID(ctx, set.ID); err != nil {
		t.Fatalf("DeleteByID error: %v", err)
	}
	if n, _ := repo.CountByExerciseLog(ctx, log.ID); n != 0 {
		t.Fatalf("count=%d, want 0", n)
	}
}

func TestExerciseLogRepositoryQueries(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewExerciseLogRepository(db)
	ctx := context.Background()
	first := seedLog(t, db)

	second := &schema.ExerciseLog{SessionID: first.SessionID, ExerciseID: first.ExerciseID, CompletedAt: first.CompletedAt + 1000}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	recent, err := repo.ListRecentByExercise(ctx, first.ExerciseID, 1)
	if err != nil || len(recent) != 1 || recent[0].ID != second.ID {
		t.Fatalf("ListRecentByExercise=%+v err=%v", recent, err)
	}
	bySession, _ := repo.ListBySession(ctx, first.SessionID)
	if len(bySession) != 2 || bySession[0].ID != first.ID {
		t.Fatalf("ListBySession=%+v", bySession)
	}
	got, _ := repo.GetBySessionAndExercise(ctx, first.SessionID, first.ExerciseID)
	if got == nil || got.ID != first.ID {
		t.Fatalf("GetBySessionAndExercise=%+v", got)
	}
	if none, _ := repo.GetBySessionAndExercise(ctx, first.SessionID, 999); none != nil {
		t.Fatalf("expected nil for unknown exercise")
	}

	note := "felt heavy"
	if err := repo.UpdateNote(ctx, first.ID, &note); err != nil {
		t.Fatalf("UpdateNote error: %v", err)
	}
	got, _ = repo.GetByID(ctx, first.ID)
	if got.Note == nil || *got.Note != note {
		t.Fatalf("note=%v", got.Note)
	}
	if err := repo.UpdateNote(ctx, first.ID, nil); err != nil {
		t.Fatalf("UpdateNote(nil) error: %v", err)
	}
	got, _ = repo.GetByID(ctx, first.ID)
	if got.Note != nil {
		t.Fatalf("note should be cleared, got %q", *got.Note)
	}
}

func TestVariationDeleteNullsLogReference(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	logs := NewExerciseLogRepository(db)
	variations := NewVariationRepository(db)
	log := seedLog(t, db)

	narrow := &schema.ExerciseVariation{ExerciseID: log.ExerciseID, Name: "Narrow"}
	wide := &schema.ExerciseVariation{ExerciseID: log.ExerciseID, Name: "Close grip"}
	_ = variations.Create(ctx, narrow)
	_ = variations.Create(ctx, wide)

	list, _ := variations.ListByExercise(ctx, log.ExerciseID)
	if len(list) != 2 || list[0].Name != "Close grip" {
		t.Fatalf("variations=%+v, want sorted by name", list)
	}

	if err := logs.UpdateVariation(ctx, log.ID, &narrow.ID); err != nil {
		t.Fatalf("UpdateVariation error: %v", err)
	}
	if err := variations.Delete(ctx, narrow.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	got, _ := logs.GetByID(ctx, log.ID)
	if got == nil || got.VariationID != nil {
		t.Fatalf("variation_id should be NULL after delete, got %+v", got)
	}
}

package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/testutil"
)

func TestExerciseRepositoryListByDayOrdered(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()

	for i, name := range []string{"Squat", "Bench", "Row"} {
		ex := &schema.Exercise{Name: name, DayOfWeek: schema.Monday, OrderIndex: 2 - i}
		if err := repo.Create(ctx, ex); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	if err := repo.Create(ctx, &schema.Exercise{Name: "Deadlift", DayOfWeek: schema.Saturday}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.ListByDay(ctx, schema.Monday)
	if err != nil {
		t.Fatalf("ListByDay error: %v", err)
	}
	if len(got) != 3 || got[0].Name != "Row" || got[2].Name != "Squat" {
		t.Fatalf("got=%+v, want Row..Squat", got)
	}

	maxIdx, ok, err := repo.MaxOrderIndex(ctx, schema.Monday)
	if err != nil || !ok || maxIdx != 2 {
		t.Fatalf("MaxOrderIndex=%d ok=%v err=%v, want 2", maxIdx, ok, err)
	}
	if _, ok, _ := repo.MaxOrderIndex(ctx, schema.Friday); ok {
		t.Fatalf("MaxOrderIndex on empty day should report ok=false")
	}

	counts, err := repo.CountByDay(ctx)
	if err != nil {
		t.Fatalf("CountByDay error: %v", err)
	}
	if counts[schema.Monday] != 3 || counts[schema.Saturday] != 1 {
		t.Fatalf("counts=%v", counts)
	}
}

func TestExerciseRepositorySaveOrder(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()

	a := &schema.Exercise{Name: "A", DayOfWeek: schema.Monday, OrderIndex: 0}
	b := &schema.Exercise{Name: "B", DayOfWeek: schema.Monday, OrderIndex: 1}
	c := &schema.Exercise{Name: "C", DayOfWeek: schema.Monday, OrderIndex: 2}
	other := &schema.Exercise{Name: "Other", DayOfWeek: schema.Friday, OrderIndex: 5}
	for _, ex := range []*schema.Exercise{a, b, c, other} {
		if err := repo.Create(ctx, ex); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	if err := repo.SaveOrder(ctx, schema.Monday, []int64{c.ID, a.ID, other.ID, b.ID}); err != nil {
		t.Fatalf("SaveOrder error: %v", err)
	}
	got, _ := repo.ListByDay(ctx, schema.Monday)
	if got[0].ID != c.ID || got[1].ID != a.ID || got[2].ID != b.ID {
		t.Fatalf("order=%+v", got)
	}
	if got[0].OrderIndex != 0 || got[1].OrderIndex != 1 || got[2].OrderIndex != 3 {
		t.Fatalf("indices not rewritten: %+v", got)
	}

	// 其他训练日的动作保持原排序号
	stored, err := repo.GetByID(ctx, other.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if stored.OrderIndex != 5 {
		t.Fatalf("foreign day order_index=%d, want 5", stored.OrderIndex)
	}
}

func TestExerciseRepositoryDeleteCascades(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	exercises := NewExerciseRepository(db)
	sessions := NewWorkoutSessionRepository(db)
	logs := NewExerciseLogRepository(db)
	sets := NewSetLogRepository(db)
	variations := NewVariationRepository(db)

	ex := &schema.Exercise{Name: "Bench", DayOfWeek: schema.Monday}
	if err := exercises.Create(ctx, ex); err != nil {
		t.Fatalf("Create exercise error: %v", err)
	}
	session := &schema.WorkoutSession{Date: 1_700_000_000_000, DayOfWeek: schema.Monday}
	if err := sessions.Create(ctx, session); err != nil {
		t.Fatalf("Create session error: %v", err)
	}
	v := &schema.ExerciseVariation{ExerciseID: ex.ID, Name: "Incline"}
	if err := variations.Create(ctx, v); err != nil {
		t.Fatalf("Create variation error: %v", err)
	}
	log := &schema.ExerciseLog{SessionID: session.ID, ExerciseID: ex.ID, VariationID: &v.ID, CompletedAt: session.Date}
	if err := logs.Create(ctx, log); err != nil {
		t.Fatalf("Create log error: %v", err)
	}
	w := 60.0
	if err := sets.Create(ctx, &schema.SetLog{ExerciseLogID: log.ID, SetNumber: 1, Weight: &w, Reps: 10}); err != nil {
		t.Fatalf("Create set error: %v", err)
	}

	if err := exercises.Delete(ctx, ex.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	gotLog, err := logs.GetByID(ctx, log.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if gotLog != nil {
		t.Fatalf("exercise log should be cascaded, got %+v", gotLog)
	}
	n, _ := sets.CountByExerciseLog(ctx, log.ID)
	if n != 0 {
		t.Fatalf("sets should be cascaded, count=%d", n)
	}
	gotVar, _ := variations.GetByID(ctx, v.ID)
	if gotVar != nil {
		t.Fatalf("variation should be cascaded")
	}
	gotSession, _ := sessions.GetByID(ctx, session.ID)
	if gotSession == nil {
		t.Fatalf("session must survive exercise deletion")
	}
}

func TestExerciseRepositoryRenameAndDeleteByName(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewExerciseRepository(db)
	ctx := context.Background()

	for _, day := range []schema.DayOfWeek{schema.Monday, schema.Thursday} {
		if err := repo.Create(ctx, &schema.Exercise{Name: "Curl", DayOfWeek: day}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	n, err := repo.RenameByName(ctx, "Curl", "Hammer Curl")
	if err != nil || n != 2 {
		t.Fatalf("RenameByName n=%d err=%v, want 2", n, err)
	}
	same, _ := repo.ListByName(ctx, "Hammer Curl")
	if len(same) != 2 {
		t.Fatalf("ListByName len=%d, want 2", len(same))
	}

	n, err = repo.DeleteByName(ctx, "Hammer Curl")
	if err != nil || n != 2 {
		t.Fatalf("DeleteByName n=%d err=%v, want 2", n, err)
	}
	if got, _ := repo.GetByID(ctx, same[0].ID); got != nil {
		t.Fatalf("exercise should be deleted")
	}
}

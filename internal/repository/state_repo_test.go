package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/TrivialFit/internal/testutil"
)

func TestStateRepositorySetGetDelete(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStateRepository(db)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get missing ok=%v err=%v", ok, err)
	}

	if err := repo.SetMany(ctx, map[string]string{
		"workout_state.session_id":     "7",
		"workout_state.exercise_index": "2",
		"app_settings.rest":            "90",
		"workoutXstate.session_id":     "9",
	}); err != nil {
		t.Fatalf("SetMany error: %v", err)
	}
	if err := repo.Set(ctx, "workout_state.exercise_index", "3"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	v, ok, err := repo.Get(ctx, "workout_state.exercise_index")
	if err != nil || !ok || v != "3" {
		t.Fatalf("Get=%q ok=%v err=%v, want 3", v, ok, err)
	}

	if err := repo.DeletePrefix(ctx, "workout_state."); err != nil {
		t.Fatalf("DeletePrefix error: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "workout_state.session_id"); ok {
		t.Fatalf("workout_state keys should be removed")
	}
	if _, ok, _ := repo.Get(ctx, "app_settings.rest"); !ok {
		t.Fatalf("other namespaces must survive")
	}
	// _ 按字面匹配
	if _, ok, _ := repo.Get(ctx, "workoutXstate.session_id"); !ok {
		t.Fatalf("workoutXstate key must not match the workout_state. prefix")
	}

	if err := repo.Delete(ctx, "app_settings.rest"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "app_settings.rest"); ok {
		t.Fatalf("key should be deleted")
	}
}

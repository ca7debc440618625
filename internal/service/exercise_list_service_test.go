package service

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

func TestExerciseListMove(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := env.hub.Subscribe(ctx, 16)

	list := NewExerciseListService(env.tracker, env.hub)
	a, _ := list.Add(ctx, schema.Monday, "A")
	_, _ = list.Add(ctx, schema.Monday, "B")
	_, _ = list.Add(ctx, schema.Monday, "C")

	got, err := list.Move(ctx, a.ID, 2)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	names := ""
	for i, ex := range got {
		names += ex.Name
		if ex.OrderIndex != i {
			t.Fatalf("%s order=%d, want %d", ex.Name, ex.OrderIndex, i)
		}
	}
	if names != "BCA" {
		t.Fatalf("order=%s, want BCA", names)
	}

	if err := list.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	got, _ = list.List(ctx, schema.Monday)
	if len(got) != 2 {
		t.Fatalf("len=%d after delete", len(got))
	}

	select {
	case evt := <-events:
		if evt.Type != eventbus.TypeExercisesChanged {
			t.Fatalf("event=%s", evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected exercises.changed event")
	}
}

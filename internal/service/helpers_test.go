package service

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/testutil"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

type testEnv struct {
	tracker *Tracker
	state   *repository.StateRepository
	stats   *repository.StatsRepository
	hub     *eventbus.Hub
	clock   *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenTestDB(t)
	clock := &fakeClock{t: time.Date(2025, 3, 3, 18, 0, 0, 0, time.Local)} // 周一
	tracker := NewTracker(
		repository.NewExerciseRepository(db),
		repository.NewWorkoutSessionRepository(db),
		repository.NewExerciseLogRepository(db),
		repository.NewSetLogRepository(db),
		repository.NewVariationRepository(db),
		&TrackerConfig{DayStartHour: DefaultDayStartHour, Now: clock.Now},
	)
	return &testEnv{
		tracker: tracker,
		state:   repository.NewStateRepository(db),
		stats:   repository.NewStatsRepository(db),
		hub:     eventbus.NewHub(),
		clock:   clock,
	}
}

func (e *testEnv) addExercises(t *testing.T, day schema.DayOfWeek, names ...string) []*schema.Exercise {
	t.Helper()
	out := make([]*schema.Exercise, 0, len(names))
	for _, n := range names {
		ex, err := e.tracker.AddExercise(context.Background(), n, day)
		if err != nil {
			t.Fatalf("AddExercise(%s) error: %v", n, err)
		}
		out = append(out, ex)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

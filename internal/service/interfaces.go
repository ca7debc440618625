package service

import (
	"context"

	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

// 仓储的最小接口集合（ISP）

type ExerciseRepository interface {
	ListByDay(ctx context.Context, day schema.DayOfWeek) ([]schema.Exercise, error)
	CountByDay(ctx context.Context) (map[schema.DayOfWeek]int, error)
	GetByID(ctx context.Context, id int64) (*schema.Exercise, error)
	ListByName(ctx context.Context, name string) ([]schema.Exercise, error)
	MaxOrderIndex(ctx context.Context, day schema.DayOfWeek) (int, bool, error)
	Create(ctx context.Context, exercise *schema.Exercise) error
	Update(ctx context.Context, exercise *schema.Exercise) error
	RenameByName(ctx context.Context, oldName, newName string) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteByName(ctx context.Context, name string) (int64, error)
	UpdateOrderIndex(ctx context.Context, id int64, orderIndex int) error
	SaveOrder(ctx context.Context, day schema.DayOfWeek, ids []int64) error
}

type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *schema.WorkoutSession) error
	GetByID(ctx context.Context, id int64) (*schema.WorkoutSession, error)
	ListRecentByDay(ctx context.Context, day schema.DayOfWeek, limit int) ([]schema.WorkoutSession, error)
	GetMostRecent(ctx context.Context) (*schema.WorkoutSession, error)
}

type ExerciseLogRepository interface {
	Create(ctx context.Context, log *schema.ExerciseLog) error
	GetByID(ctx context.Context, id int64) (*schema.ExerciseLog, error)
	GetBySessionAndExercise(ctx context.Context, sessionID, exerciseID int64) (*schema.ExerciseLog, error)
	ListBySession(ctx context.Context, sessionID int64) ([]schema.ExerciseLog, error)
	ListRecentByExercise(ctx context.Context, exerciseID int64, limit int) ([]schema.ExerciseLog, error)
	ListByExercises(ctx context.Context, exerciseIDs []int64) ([]schema.ExerciseLog, error)
	UpdateNote(ctx context.Context, id int64, note *string) error
	UpdateVariation(ctx context.Context, id int64, variationID *int64) error
	Delete(ctx context.Context, id int64) error
}

type SetLogRepository interface {
	Create(ctx context.Context, set *schema.SetLog) error
	ListByExerciseLog(ctx context.Context, exerciseLogID int64) ([]schema.SetLog, error)
	ListByExerciseLogs(ctx context.Context, exerciseLogIDs []int64) (map[int64][]schema.SetLog, error)
	MaxSetNumber(ctx context.Context, exerciseLogID int64) (int, error)
	DeleteByID(ctx context.Context, id int64) error
	UpdateWeight(ctx context.Context, exerciseLogID int64, weight float64) (int64, error)
}

type VariationRepository interface {
	ListByExercise(ctx context.Context, exerciseID int64) ([]schema.ExerciseVariation, error)
	GetByID(ctx context.Context, id int64) (*schema.ExerciseVariation, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]schema.ExerciseVariation, error)
	Create(ctx context.Context, v *schema.ExerciseVariation) error
}

type StateRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type StatsRepository interface {
	DailySetCounts(ctx context.Context) ([]repository.DailySetCount, error)
	DaysWithCompletedExercisesSince(ctx context.Context, sinceMs int64) ([]schema.DayOfWeek, error)
	ExerciseStats(ctx context.Context, sinceMs int64) ([]repository.ExerciseStat, error)
}

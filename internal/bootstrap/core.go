package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/pkg/config"
	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/service"
)

// ErrSafeMode 迁移失败后数据库只读，仅允许查看状态与导出备份
var ErrSafeMode = errors.New("数据库处于安全模式，已禁用写入操作")

// Core 持有 CLI 与服务进程共享的核心依赖
type Core struct {
	Cfg       *config.Config
	DB        *repository.Database
	LogCloser io.Closer
	Hub       *eventbus.Hub

	Repos struct {
		Exercise    *repository.ExerciseRepository
		Session     *repository.WorkoutSessionRepository
		ExerciseLog *repository.ExerciseLogRepository
		SetLog      *repository.SetLogRepository
		Variation   *repository.VariationRepository
		State       *repository.StateRepository
		Stats       *repository.StatsRepository
	}

	Services struct {
		Tracker   *service.Tracker
		Workout   *service.WorkoutFlow
		Calendar  *service.CalendarService
		Exercises *service.ExerciseListService
		History   *service.HistoryService
		Stats     *service.StatsService
		Settings  *service.SettingsService
		RestTimer *service.RestTimer
	}
}

// CoreOptions 启动选项
type CoreOptions struct {
	Component string
	QuietLog  bool // CLI 输出不混入日志
}

// NewCore 加载配置、打开数据库并组装服务
func NewCore(cfgPath string, opts *CoreOptions) (*Core, error) {
	if opts == nil {
		opts = &CoreOptions{}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	component := opts.Component
	if component == "" {
		component = filepath.Base(os.Args[0])
	}
	logCloser := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: component,
		Quiet:     opts.QuietLog,
	})

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	if db.SafeMode {
		// 安全模式：核心照常组装，写操作由调用方通过 RequireWritable 拦截
		slog.Warn("数据库处于安全模式，仅允许查看状态与导出", "reason", db.MigrationError)
	}

	c := NewCoreWithDB(cfg, db.DB, db)
	c.DB = db
	c.LogCloser = logCloser
	return c, nil
}

// InSafeMode 数据库迁移失败时为 true
func (c *Core) InSafeMode() bool {
	return c != nil && c.DB != nil && c.DB.SafeMode
}

// RequireWritable 安全模式下返回包装了原因的 ErrSafeMode
func (c *Core) RequireWritable() error {
	if !c.InSafeMode() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSafeMode, c.DB.MigrationError)
}

// NewCoreWithDB 基于已打开的连接组装仓储与服务；exporter 可为 nil
func NewCoreWithDB(cfg *config.Config, db *gorm.DB, exporter service.Exporter) *Core {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Core{Cfg: cfg, Hub: eventbus.NewHub()}

	// Repos
	c.Repos.Exercise = repository.NewExerciseRepository(db)
	c.Repos.Session = repository.NewWorkoutSessionRepository(db)
	c.Repos.ExerciseLog = repository.NewExerciseLogRepository(db)
	c.Repos.SetLog = repository.NewSetLogRepository(db)
	c.Repos.Variation = repository.NewVariationRepository(db)
	c.Repos.State = repository.NewStateRepository(db)
	c.Repos.Stats = repository.NewStatsRepository(db)

	// Services
	c.Services.Tracker = service.NewTracker(
		c.Repos.Exercise,
		c.Repos.Session,
		c.Repos.ExerciseLog,
		c.Repos.SetLog,
		c.Repos.Variation,
		&service.TrackerConfig{DayStartHour: cfg.Workout.DayStartHour},
	)
	c.Services.Workout = service.NewWorkoutFlow(c.Services.Tracker, c.Repos.State, c.Hub, &service.WorkoutFlowConfig{
		DefaultReps:  cfg.Workout.DefaultReps,
		HistoryLimit: cfg.Workout.HistoryLimit,
	})
	c.Services.Calendar = service.NewCalendarService(c.Services.Tracker, c.Repos.Stats, cfg.WorkoutDays())
	c.Services.Exercises = service.NewExerciseListService(c.Services.Tracker, c.Hub)
	c.Services.History = service.NewHistoryService(c.Services.Tracker)
	c.Services.Stats = service.NewStatsService(c.Repos.Stats, c.Services.Tracker.Now)
	c.Services.Settings = service.NewSettingsService(c.Repos.State, exporter, c.Hub, cfg.RestDuration())
	c.Services.RestTimer = service.NewRestTimer(c.Hub, cfg.TimerTick())
	return c
}

// ApplyConfig 热加载时更新可在线生效的配置项
func (c *Core) ApplyConfig(cfg *config.Config) {
	if c == nil || cfg == nil {
		return
	}
	c.Services.Calendar.SetDays(cfg.WorkoutDays())
	c.Services.Settings.SetDefaultRest(cfg.RestDuration())
	c.Cfg = cfg
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	var dbErr error
	if c.DB != nil {
		dbErr = c.DB.Close()
	}
	if c.LogCloser != nil {
		_ = c.LogCloser.Close()
	}
	return dbErr
}

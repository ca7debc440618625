package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yuqie6/TrivialFit/internal/schema"
)

// EnvPrefix 环境变量前缀，如 TRIVIALFIT_STORAGE_DB_PATH
const EnvPrefix = "TRIVIALFIT"

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Workout WorkoutConfig `mapstructure:"workout"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Server  ServerConfig  `mapstructure:"server"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	ExportDir string `mapstructure:"export_dir"`
}

// WorkoutConfig 训练配置
type WorkoutConfig struct {
	Days         []string `mapstructure:"days"`
	DefaultReps  int      `mapstructure:"default_reps"`
	DayStartHour int      `mapstructure:"day_start_hour"`
	HistoryLimit int      `mapstructure:"history_limit"`
}

// TimerConfig 休息计时配置
type TimerConfig struct {
	RestDurationSec int `mapstructure:"rest_duration_sec"`
	TickMs          int `mapstructure:"tick_ms"`
}

// ServerConfig 本地 HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// WorkoutDays 解析训练日，无法识别的名称会被跳过
func (c *Config) WorkoutDays() []schema.DayOfWeek {
	out := make([]schema.DayOfWeek, 0, len(c.Workout.Days))
	for _, raw := range c.Workout.Days {
		d, err := schema.ParseDayOfWeek(raw)
		if err != nil {
			slog.Warn("忽略无法识别的训练日", "value", raw)
			continue
		}
		out = append(out, d)
	}
	return out
}

// RestDuration 默认休息时长
func (c *Config) RestDuration() time.Duration {
	return time.Duration(c.Timer.RestDurationSec) * time.Second
}

// TimerTick 计时推送间隔
func (c *Config) TimerTick() time.Duration {
	return time.Duration(c.Timer.TickMs) * time.Millisecond
}

// Default 默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)
	if cfg.App.LogPath != "" {
		cfg.App.LogPath = resolvePath(cfg.App.LogPath)
	}
	normalize(&cfg)
	return &cfg, nil
}

// normalize 把越界值拉回默认
func normalize(cfg *Config) {
	if cfg.Workout.DefaultReps < 1 {
		cfg.Workout.DefaultReps = 10
	}
	if cfg.Workout.DayStartHour < 0 || cfg.Workout.DayStartHour > 23 {
		cfg.Workout.DayStartHour = 4
	}
	if cfg.Workout.HistoryLimit < 1 {
		cfg.Workout.HistoryLimit = 3
	}
	if cfg.Timer.RestDurationSec < 0 || cfg.Timer.RestDurationSec > 10*60+59 {
		cfg.Timer.RestDurationSec = 120
	}
	if cfg.Timer.TickMs <= 0 {
		cfg.Timer.TickMs = 1000
	}
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "trivialfit")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")

	// Storage
	v.SetDefault("storage.db_path", "./data/fitness_tracker.db")
	v.SetDefault("storage.export_dir", ".")

	// Workout
	v.SetDefault("workout.days", []string{"MONDAY", "WEDNESDAY", "THURSDAY", "SATURDAY"})
	v.SetDefault("workout.default_reps", 10)
	v.SetDefault("workout.day_start_hour", 4)
	v.SetDefault("workout.history_limit", 3)

	// Timer
	v.SetDefault("timer.rest_duration_sec", 120)
	v.SetDefault("timer.tick_ms", 1000)

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:7420")
}

// resolvePath 解析相对路径为绝对路径（相对可执行文件目录）
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}

	exe, err := os.Executable()
	if err != nil {
		return path
	}
	return filepath.Join(filepath.Dir(exe), path)
}

// Watcher 配置文件热加载
type Watcher struct {
	mu  sync.Mutex
	v   *viper.Viper
	cur *Config
}

// Watch 监听配置文件变化；解析失败时保留旧配置，只回调成功的新配置
func Watch(configPath string, onChange func(*Config)) (*Watcher, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	w := &Watcher{v: v, cur: cfg}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(v)
		if err != nil {
			slog.Warn("配置热加载失败，保留旧配置", "path", e.Name, "error", err)
			return
		}
		w.mu.Lock()
		w.cur = next
		w.mu.Unlock()
		slog.Info("配置已重新加载", "path", e.Name)
		if onChange != nil {
			onChange(next)
		}
	})
	if used := v.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			v.WatchConfig()
		}
	}
	return w, nil
}

// Current 最近一次成功加载的配置
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cur
}

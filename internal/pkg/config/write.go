package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath 可执行文件旁的 config/config.yaml
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

// EnsureFile 配置文件不存在时写入默认配置
func EnsureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("检查配置文件失败: %w", err)
	}
	return WriteFile(path, Default())
}

func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
			"log_path":  cfg.App.LogPath,
		},
		"storage": map[string]any{
			"db_path":    cfg.Storage.DBPath,
			"export_dir": cfg.Storage.ExportDir,
		},
		"workout": map[string]any{
			"days":           cfg.Workout.Days,
			"default_reps":   cfg.Workout.DefaultReps,
			"day_start_hour": cfg.Workout.DayStartHour,
			"history_limit":  cfg.Workout.HistoryLimit,
		},
		"timer": map[string]any{
			"rest_duration_sec": cfg.Timer.RestDurationSec,
			"tick_ms":           cfg.Timer.TickMs,
		},
		"server": map[string]any{
			"listen_addr": cfg.Server.ListenAddr,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

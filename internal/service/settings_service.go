package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/repository"
)

const (
	settingsRestDurationKey = "app_settings.rest_duration_seconds"

	// DefaultRestDuration 组间休息默认两分钟
	DefaultRestDuration = 120 * time.Second
	MaxRestMinutes      = 10
)

// Exporter 数据库导出能力
type Exporter interface {
	ExportTo(ctx context.Context, dst string) error
}

// SettingsService 应用设置：休息时长与数据库导出
type SettingsService struct {
	mu          sync.RWMutex
	state       StateRepository
	exporter    Exporter
	hub         *eventbus.Hub
	defaultRest time.Duration
	now         func() time.Time
}

// NewSettingsService 创建设置服务
func NewSettingsService(state StateRepository, exporter Exporter, hub *eventbus.Hub, defaultRest time.Duration) *SettingsService {
	s := &SettingsService{state: state, exporter: exporter, hub: hub, now: time.Now}
	s.SetDefaultRest(defaultRest)
	return s
}

// SetDefaultRest 更新配置层给出的默认休息时长（热加载）
func (s *SettingsService) SetDefaultRest(d time.Duration) {
	if !validRest(d) {
		d = DefaultRestDuration
	}
	s.mu.Lock()
	s.defaultRest = d
	s.mu.Unlock()
}

// validRest 与分钟/秒选择器的取值范围一致：0..10:59
func validRest(d time.Duration) bool {
	return d >= 0 && d <= MaxRestMinutes*time.Minute+59*time.Second
}

// RestDuration 当前休息时长；未设置时取默认值
func (s *SettingsService) RestDuration(ctx context.Context) (time.Duration, error) {
	raw, ok, err := s.state.Get(ctx, settingsRestDurationKey)
	if err != nil {
		return 0, err
	}
	if ok {
		if sec, err := strconv.Atoi(raw); err == nil && validRest(time.Duration(sec)*time.Second) {
			return time.Duration(sec) * time.Second, nil
		}
		slog.Warn("休息时长设置无效，使用默认值", "value", raw)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultRest, nil
}

// SetRestDuration 分钟 0..10，秒 0..59
func (s *SettingsService) SetRestDuration(ctx context.Context, minutes, seconds int) (time.Duration, error) {
	if minutes < 0 || minutes > MaxRestMinutes {
		return 0, fmt.Errorf("分钟需在 0..%d: %w", MaxRestMinutes, ErrInvalidInput)
	}
	if seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("秒需在 0..59: %w", ErrInvalidInput)
	}
	total := minutes*60 + seconds
	if err := s.state.Set(ctx, settingsRestDurationKey, strconv.Itoa(total)); err != nil {
		return 0, err
	}
	d := time.Duration(total) * time.Second
	slog.Info("休息时长已更新", "duration", FormatDuration(d))
	s.hub.Publish(eventbus.Event{Type: eventbus.TypeSettingsChanged, Data: map[string]any{"rest_duration_seconds": total}})
	return d, nil
}

// Export 导出数据库到 dir，文件名带时间戳
func (s *SettingsService) Export(ctx context.Context, dir string) (string, error) {
	if s.exporter == nil {
		return "", fmt.Errorf("数据库导出不可用")
	}
	if dir == "" {
		dir = "."
	}
	dst := filepath.Join(dir, repository.BackupFileName(s.now()))
	if err := s.exporter.ExportTo(ctx, dst); err != nil {
		return "", err
	}
	return dst, nil
}

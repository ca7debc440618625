package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yuqie6/TrivialFit/internal/pkg/config"
	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/testutil"
)

func TestNewCoreOpensDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "fit.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := config.WriteFile(cfgPath, cfg); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	core, err := NewCore(cfgPath, &CoreOptions{Component: "test", QuietLog: true})
	if err != nil {
		t.Fatalf("NewCore error: %v", err)
	}
	defer core.Close()

	ex, err := core.Services.Exercises.Add(context.Background(), schema.Monday, "Bench")
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if ex.ID == 0 {
		t.Fatalf("exercise not persisted")
	}
	if core.DB.Path() != cfg.Storage.DBPath {
		t.Fatalf("db path=%s", core.DB.Path())
	}
}

func TestApplyConfig(t *testing.T) {
	core := NewCoreWithDB(nil, testutil.OpenTestDB(t), nil)

	next := config.Default()
	next.Workout.Days = []string{"FRIDAY"}
	next.Timer.RestDurationSec = 45
	core.ApplyConfig(next)

	days := core.Services.Calendar.Days()
	if len(days) != 1 || days[0] != schema.Friday {
		t.Fatalf("days=%v", days)
	}
	d, err := core.Services.Settings.RestDuration(context.Background())
	if err != nil || d != 45*time.Second {
		t.Fatalf("rest=%v err=%v", d, err)
	}
}

func TestNewCoreKeepsRunningInSafeMode(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "fit.db")
	cfg.Storage.ExportDir = filepath.Join(dir, "backup")
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := config.WriteFile(cfgPath, cfg); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	// 模拟由更新版本写过的数据库
	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	if err := db.DB.Model(&schema.SchemaMeta{}).Where("id = ?", 1).Update("schema_version", 99).Error; err != nil {
		t.Fatalf("bump schema_version error: %v", err)
	}
	_ = db.Close()

	core, err := NewCore(cfgPath, &CoreOptions{Component: "test", QuietLog: true})
	if err != nil {
		t.Fatalf("NewCore in safe mode error: %v", err)
	}
	defer core.Close()

	if !core.InSafeMode() {
		t.Fatalf("expected safe mode")
	}
	if err := core.RequireWritable(); !errors.Is(err, ErrSafeMode) {
		t.Fatalf("RequireWritable err=%v, want ErrSafeMode", err)
	}

	path, err := core.Services.Settings.Export(context.Background(), cfg.Storage.ExportDir)
	if err != nil {
		t.Fatalf("Export in safe mode error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
}

func TestRequireWritableOnHealthyCore(t *testing.T) {
	core := NewCoreWithDB(nil, testutil.OpenTestDB(t), nil)
	if core.InSafeMode() {
		t.Fatalf("unexpected safe mode")
	}
	if err := core.RequireWritable(); err != nil {
		t.Fatalf("RequireWritable error: %v", err)
	}
}

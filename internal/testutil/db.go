package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB 打开内存 SQLite 并自动迁移所有表
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// 内存库每个连接都是独立的库，固定单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	if err := db.AutoMigrate(
		&schema.SchemaMeta{},
		&schema.Exercise{},
		&schema.WorkoutSession{},
		&schema.ExerciseVariation{},
		&schema.ExerciseLog{},
		&schema.SetLog{},
		&schema.KVEntry{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

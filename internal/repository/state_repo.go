package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/yuqie6/TrivialFit/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateRepository 键值标记仓储
type StateRepository struct {
	db *gorm.DB
}

// NewStateRepository 创建键值仓储
func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get 读取键值；不存在时 ok=false
func (r *StateRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry schema.KVEntry
	if err := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("读取键值失败: %w", err)
	}
	return entry.Value, true, nil
}

// Set 写入单个键值
func (r *StateRepository) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

// SetMany 批量写入，已存在的键覆盖
func (r *StateRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now()
	entries := make([]schema.KVEntry, 0, len(values))
	for k, v := range values {
		entries = append(entries, schema.KVEntry{Key: k, Value: v, UpdatedAt: now})
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entries).Error; err != nil {
		return fmt.Errorf("写入键值失败: %w", err)
	}
	return nil
}

// Delete 删除指定键
func (r *StateRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("entry_key IN ?", keys).Delete(&schema.KVEntry{}).Error; err != nil {
		return fmt.Errorf("删除键值失败: %w", err)
	}
	return nil
}

// DeletePrefix 删除某个命名空间下的全部键；按字面前缀匹配，_ 与 % 不是通配符
func (r *StateRepository) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix 不能为空")
	}
	n := utf8.RuneCountInString(prefix)
	if err := r.db.WithContext(ctx).Where("substr(entry_key, 1, ?) = ?", n, prefix).Delete(&schema.KVEntry{}).Error; err != nil {
		return fmt.Errorf("删除键值失败: %w", err)
	}
	return nil
}

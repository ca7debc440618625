package schema

import "time"

// KVEntry 键值标记（训练续接状态、应用设置）
type KVEntry struct {
	Key       string    `gorm:"primaryKey;column:entry_key;size:128"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

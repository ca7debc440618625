package schema

// WorkoutSession 一次训练（一天一个训练日）
type WorkoutSession struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date      int64     `gorm:"not null;index" json:"date"` // 毫秒时间戳（已按凌晨归属调整）
	DayOfWeek DayOfWeek `gorm:"type:text;not null;index" json:"day_of_week"`

	Logs []ExerciseLog `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (WorkoutSession) TableName() string {
	return "workout_sessions"
}

// ExerciseLog 某次训练中某个动作的记录
type ExerciseLog struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID   int64   `gorm:"not null;index" json:"session_id"`
	ExerciseID  int64   `gorm:"not null;index" json:"exercise_id"`
	VariationID *int64  `gorm:"index" json:"variation_id,omitempty"`
	CompletedAt int64   `gorm:"not null;index" json:"completed_at"` // 毫秒时间戳
	Note        *string `json:"note,omitempty"`

	Sets []SetLog `gorm:"foreignKey:ExerciseLogID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ExerciseLog) TableName() string {
	return "exercise_logs"
}

// SetLog 单组记录；递减组 SetNumber 固定为 0 且不计重量
type SetLog struct {
	ID            int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ExerciseLogID int64    `gorm:"not null;index" json:"exercise_log_id"`
	SetNumber     int      `gorm:"not null" json:"set_number"`
	Weight        *float64 `json:"weight,omitempty"`
	Reps          int      `gorm:"not null" json:"reps"`
	IsDropdown    bool     `gorm:"not null;default:false" json:"is_dropdown"`
}

func (SetLog) TableName() string {
	return "set_logs"
}

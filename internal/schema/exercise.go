package schema

// Exercise 某个训练日下的动作
type Exercise struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	DayOfWeek  DayOfWeek `gorm:"type:text;not null;index:idx_exercise_day_order,priority:1" json:"day_of_week"`
	OrderIndex int       `gorm:"not null;default:0;index:idx_exercise_day_order,priority:2" json:"order_index"`

	// 仅用于声明外键约束，不参与读写
	Logs       []ExerciseLog       `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE" json:"-"`
	Variations []ExerciseVariation `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Exercise) TableName() string {
	return "exercises"
}

// ExerciseVariation 动作变式（如 "窄握"、"上斜"）
type ExerciseVariation struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ExerciseID int64  `gorm:"not null;index" json:"exercise_id"`
	Name       string `gorm:"not null" json:"name"`

	Logs []ExerciseLog `gorm:"foreignKey:VariationID;constraint:OnDelete:SET NULL" json:"-"`
}

func (ExerciseVariation) TableName() string {
	return "exercise_variations"
}

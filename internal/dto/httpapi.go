package dto

// 注意：本包承载 HTTP API 的请求/响应契约，保持字段稳定。
// 不要在这里放 GORM/持久化细节；持久化 schema 见 internal/schema，业务逻辑在 internal/service。

type StartWorkoutRequestDTO struct {
	Day string `json:"day"`
}

type ResumeWorkoutRequestDTO struct {
	SessionID     int64  `json:"session_id"`
	Day           string `json:"day"`
	ExerciseIndex int    `json:"exercise_index"`
}

type LogSetRequestDTO struct {
	Weight   *float64 `json:"weight,omitempty"`
	Reps     *int     `json:"reps,omitempty"` // 为空时使用当前次数
	Dropdown bool     `json:"dropdown"`
}

type RepsRequestDTO struct {
	Reps  *int `json:"reps,omitempty"`
	Delta int  `json:"delta"` // reps 为空时按增量调整
}

type GoToRequestDTO struct {
	Index int `json:"index"`
}

type NoteRequestDTO struct {
	Note string `json:"note"`
}

type WeightRequestDTO struct {
	Weight float64 `json:"weight"`
}

type SelectVariationRequestDTO struct {
	VariationID *int64 `json:"variation_id"` // null 取消选择
}

type AddVariationRequestDTO struct {
	ExerciseID int64  `json:"exercise_id,omitempty"` // 训练中可省略，默认当前动作
	Name       string `json:"name"`
}

type AddExerciseRequestDTO struct {
	Day  string `json:"day"`
	Name string `json:"name"`
}

type MoveExerciseRequestDTO struct {
	ID       int64 `json:"id"`
	NewIndex int   `json:"new_index"`
}

type SaveOrderRequestDTO struct {
	Day string  `json:"day"`
	IDs []int64 `json:"ids"`
}

type RenameExerciseRequestDTO struct {
	ExerciseID int64  `json:"exercise_id,omitempty"` // 0 表示改全部同名动作
	OldName    string `json:"old_name"`
	NewName    string `json:"new_name"`
}

type DeleteExerciseRequestDTO struct {
	ExerciseID int64  `json:"exercise_id,omitempty"` // 0 表示删全部同名动作
	Name       string `json:"name"`
}

type DeleteByIDRequestDTO struct {
	ID int64 `json:"id"`
}

type SettingsDTO struct {
	RestDurationSeconds int      `json:"rest_duration_seconds"`
	RestDisplay         string   `json:"rest_display"`
	WorkoutDays         []string `json:"workout_days"`
}

type SaveSettingsRequestDTO struct {
	RestMinutes int `json:"rest_minutes"`
	RestSeconds int `json:"rest_seconds"`
}

type StartTimerRequestDTO struct {
	Seconds int `json:"seconds,omitempty"` // 0 使用设置中的休息时长
}

type ExportRequestDTO struct {
	Dir string `json:"dir,omitempty"`
}

type ExportResponseDTO struct {
	Path string `json:"path"`
}

type CountResponseDTO struct {
	Affected int64 `json:"affected"`
}

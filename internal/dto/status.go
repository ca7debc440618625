package dto

type StatusDTO struct {
	App          AppStatusDTO     `json:"app"`
	Storage      StorageStatusDTO `json:"storage"`
	Workout      WorkoutStatusDTO `json:"workout"`
	Events       EventsStatusDTO  `json:"events"`
	RecentErrors []RecentErrorDTO `json:"recent_errors"`
}

type AppStatusDTO struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	StartedAt string `json:"started_at"`
	UptimeSec int64  `json:"uptime_sec"`
	SafeMode  bool   `json:"safe_mode"`
}

type StorageStatusDTO struct {
	DBPath         string `json:"db_path"`
	SchemaVersion  int    `json:"schema_version"`
	SafeModeReason string `json:"safe_mode_reason,omitempty"`
	Exercises      int64  `json:"exercises"`
	Sessions       int64  `json:"sessions"`
	Sets           int64  `json:"sets"`
}

type WorkoutStatusDTO struct {
	InProgress    bool   `json:"in_progress"`
	SessionID     int64  `json:"session_id,omitempty"`
	Day           string `json:"day,omitempty"`
	ExerciseIndex int    `json:"exercise_index,omitempty"`
	TimerRunning  bool   `json:"timer_running"`
	TimerDisplay  string `json:"timer_display,omitempty"`
}

type EventsStatusDTO struct {
	Subscribers int `json:"subscribers"`
}

type RecentErrorDTO struct {
	Time    string `json:"time,omitempty"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

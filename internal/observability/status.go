package observability

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/yuqie6/TrivialFit/internal/bootstrap"
	"github.com/yuqie6/TrivialFit/internal/dto"
	"github.com/yuqie6/TrivialFit/internal/pkg/buildinfo"
)

var ErrNotReady = errors.New("core not ready")

// BuildStatus /api/status 快照；统计查询失败不影响其余字段
func BuildStatus(ctx context.Context, core *bootstrap.Core, startedAt time.Time) (*dto.StatusDTO, error) {
	if core == nil || core.Cfg == nil {
		return nil, ErrNotReady
	}
	cfg := core.Cfg
	now := time.Now()

	status := &dto.StatusDTO{
		App: dto.AppStatusDTO{
			Name:      cfg.App.Name,
			Version:   buildinfo.Version,
			Commit:    buildinfo.Commit,
			StartedAt: startedAt.Format(time.RFC3339),
			UptimeSec: int64(now.Sub(startedAt).Seconds()),
		},
		Events: dto.EventsStatusDTO{Subscribers: core.Hub.Subscribers()},
	}

	if core.DB != nil {
		status.App.SafeMode = core.DB.SafeMode
		status.Storage.DBPath = core.DB.Path()
		status.Storage.SchemaVersion = core.DB.SchemaVersion
		status.Storage.SafeModeReason = core.DB.MigrationError
	}
	if core.Repos.Stats != nil {
		if totals, err := core.Repos.Stats.Totals(ctx); err == nil {
			status.Storage.Exercises = totals.Exercises
			status.Storage.Sessions = totals.Sessions
			status.Storage.Sets = totals.Sets
		}
	}

	if core.Services.Workout != nil {
		if st, err := core.Services.Workout.SavedState(ctx); err == nil && st != nil {
			status.Workout.InProgress = true
			status.Workout.SessionID = st.SessionID
			status.Workout.Day = string(st.Day)
			status.Workout.ExerciseIndex = st.ExerciseIndex
		}
	}
	if core.Services.RestTimer != nil {
		ts := core.Services.RestTimer.Status()
		status.Workout.TimerRunning = ts.Running
		if ts.Running {
			status.Workout.TimerDisplay = ts.Display
		}
	}

	status.RecentErrors = ReadRecentErrors(cfg.App.LogPath, 20)
	if status.RecentErrors == nil {
		status.RecentErrors = []dto.RecentErrorDTO{}
	}
	return status, nil
}

var (
	reLogTime  = regexp.MustCompile(`\btime=([^ ]+)`)
	reLogLevel = regexp.MustCompile(`\blevel=([^ ]+)`)
	reLogMsg   = regexp.MustCompile(`\bmsg=("(?:[^"\\]|\\.)*"|[^ ]+)`)
)

func parseLogLine(line string) dto.RecentErrorDTO {
	e := dto.RecentErrorDTO{Raw: line, Message: line}
	if m := reLogTime.FindStringSubmatch(line); len(m) == 2 {
		e.Time = m[1]
	}
	if m := reLogLevel.FindStringSubmatch(line); len(m) == 2 {
		e.Level = strings.Trim(m[1], "\"")
	}
	if m := reLogMsg.FindStringSubmatch(line); len(m) == 2 {
		msg := strings.TrimSpace(m[1])
		msg = strings.TrimPrefix(msg, "\"")
		msg = strings.TrimSuffix(msg, "\"")
		e.Message = msg
	}
	return e
}

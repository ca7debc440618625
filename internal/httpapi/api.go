package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yuqie6/TrivialFit/internal/bootstrap"
	"github.com/yuqie6/TrivialFit/internal/dto"
	"github.com/yuqie6/TrivialFit/internal/eventbus"
	"github.com/yuqie6/TrivialFit/internal/observability"
	"github.com/yuqie6/TrivialFit/internal/service"
)

type apiServer struct {
	ctx       context.Context
	core      *bootstrap.Core
	hub       *eventbus.Hub
	cfgPath   string
	startTime time.Time
}

func newAPI(ctx context.Context, core *bootstrap.Core, hub *eventbus.Hub, cfgPath string) *apiServer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &apiServer{
		ctx:       ctx,
		core:      core,
		hub:       hub,
		cfgPath:   cfgPath,
		startTime: time.Now(),
	}
}

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", a.wrapGET(a.getStatus))
	mux.HandleFunc("/api/diagnostics", a.wrapGET(a.getDiagnostics))

	mux.HandleFunc("/api/days", a.wrapGET(a.getDays))

	mux.HandleFunc("/api/exercises", a.wrapGET(a.listExercises))
	mux.HandleFunc("/api/exercises/add", a.wrapWrite(a.addExercise))
	mux.HandleFunc("/api/exercises/delete", a.wrapWrite(a.deleteExercise))
	mux.HandleFunc("/api/exercises/move", a.wrapWrite(a.moveExercise))
	mux.HandleFunc("/api/exercises/order", a.wrapWrite(a.saveOrder))
	mux.HandleFunc("/api/exercises/rename", a.wrapWrite(a.renameExercises))
	mux.HandleFunc("/api/exercises/delete-by-name", a.wrapWrite(a.deleteExercisesByName))

	mux.HandleFunc("/api/variations", a.wrapGET(a.listVariations))
	mux.HandleFunc("/api/variations/add", a.wrapWrite(a.addVariation))

	mux.HandleFunc("/api/workout", a.wrapGET(a.getWorkout))
	mux.HandleFunc("/api/workout/saved", a.wrapGET(a.getSavedWorkout))
	mux.HandleFunc("/api/workout/start", a.wrapWrite(a.startWorkout))
	mux.HandleFunc("/api/workout/resume", a.wrapWrite(a.resumeWorkout))
	mux.HandleFunc("/api/workout/reps", a.wrapWrite(a.setReps))
	mux.HandleFunc("/api/workout/log", a.wrapWrite(a.logSet))
	mux.HandleFunc("/api/workout/undo", a.wrapWrite(a.undoSet))
	mux.HandleFunc("/api/workout/next", a.wrapWrite(a.nextExercise))
	mux.HandleFunc("/api/workout/prev", a.wrapWrite(a.prevExercise))
	mux.HandleFunc("/api/workout/goto", a.wrapWrite(a.gotoExercise))
	mux.HandleFunc("/api/workout/note", a.wrapWrite(a.setNote))
	mux.HandleFunc("/api/workout/weight", a.wrapWrite(a.updateWeight))
	mux.HandleFunc("/api/workout/variation", a.wrapWrite(a.selectVariation))
	mux.HandleFunc("/api/workout/finish", a.wrapWrite(a.finishWorkout))

	mux.HandleFunc("/api/history", a.wrapGET(a.getHistory))
	mux.HandleFunc("/api/history/delete", a.wrapWrite(a.deleteHistoryLog))

	mux.HandleFunc("/api/stats/contribution", a.wrapGET(a.getContribution))
	mux.HandleFunc("/api/stats/exercises", a.wrapGET(a.getExerciseCharts))

	mux.HandleFunc("/api/settings", a.wrapAny(a.settings))

	mux.HandleFunc("/api/timer", a.wrapGET(a.getTimer))
	mux.HandleFunc("/api/timer/start", a.wrapPOST(a.startTimer))
	mux.HandleFunc("/api/timer/skip", a.wrapPOST(a.skipTimer))

	mux.HandleFunc("/api/export", a.wrapPOST(a.exportDatabase))
}

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

// wrapWrite 写库接口：安全模式下直接拒绝
func (a *apiServer) wrapWrite(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return a.wrapPOST(func(w http.ResponseWriter, r *http.Request) {
		if !a.requireWritableDB(w) {
			return
		}
		fn(w, r)
	})
}

func (a *apiServer) requireWritableDB(w http.ResponseWriter) bool {
	if err := a.core.RequireWritable(); err != nil {
		writeServiceError(w, err)
		return false
	}
	return true
}

func (a *apiServer) wrapAny(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r)
	}
}

// ========== 状态 ==========

func (a *apiServer) getStatus(w http.ResponseWriter, r *http.Request) {
	status, err := observability.BuildStatus(r.Context(), a.core, a.startTime)
	writeResult(w, status, err)
}

func (a *apiServer) getDiagnostics(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("trivialfit-diagnostics-%s.zip", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := observability.WriteDiagnosticsZip(r.Context(), w, a.core, a.cfgPath, a.startTime); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ========== 首页 / 动作编排 ==========

func (a *apiServer) getDays(w http.ResponseWriter, r *http.Request) {
	view, err := a.core.Services.Calendar.View(r.Context())
	writeResult(w, view, err)
}

func (a *apiServer) listExercises(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r.URL.Query().Get("day"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	list, err := a.core.Services.Exercises.List(r.Context(), day)
	writeResult(w, list, err)
}

func (a *apiServer) addExercise(w http.ResponseWriter, r *http.Request) {
	var req dto.AddExerciseRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	day, err := parseDay(req.Day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	ex, err := a.core.Services.Exercises.Add(r.Context(), day, req.Name)
	writeResult(w, ex, err)
}

func (a *apiServer) deleteExercise(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteByIDRequestDTO
	if err := readJSON(r, &req); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	err := a.core.Services.Exercises.Delete(r.Context(), req.ID)
	writeResult(w, map[string]any{"ok": true}, err)
}

func (a *apiServer) moveExercise(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveExerciseRequestDTO
	if err := readJSON(r, &req); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	list, err := a.core.Services.Exercises.Move(r.Context(), req.ID, req.NewIndex)
	writeResult(w, list, err)
}

func (a *apiServer) saveOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveOrderRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	day, err := parseDay(req.Day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	list, err := a.core.Services.Exercises.SaveOrder(r.Context(), day, req.IDs)
	writeResult(w, list, err)
}

func (a *apiServer) renameExercises(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameExerciseRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	n, err := a.core.Services.History.Rename(r.Context(), req.ExerciseID, req.OldName, req.NewName)
	writeResult(w, dto.CountResponseDTO{Affected: n}, err)
}

func (a *apiServer) deleteExercisesByName(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteExerciseRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	n, err := a.core.Services.History.Delete(r.Context(), req.ExerciseID, req.Name)
	writeResult(w, dto.CountResponseDTO{Affected: n}, err)
}

func (a *apiServer) listVariations(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r.URL.Query().Get("exercise_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exercise_id")
		return
	}
	list, err := a.core.Services.Tracker.VariationsForExercise(r.Context(), id)
	writeResult(w, list, err)
}

func (a *apiServer) addVariation(w http.ResponseWriter, r *http.Request) {
	var req dto.AddVariationRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ExerciseID == 0 {
		// 训练中：新增并选中
		view, err := a.core.Services.Workout.AddVariation(r.Context(), req.Name)
		writeResult(w, view, err)
		return
	}
	v, err := a.core.Services.Tracker.AddVariation(r.Context(), req.ExerciseID, req.Name)
	writeResult(w, v, err)
}

// ========== 训练流程 ==========

func (a *apiServer) getWorkout(w http.ResponseWriter, r *http.Request) {
	view, err := a.core.Services.Workout.View(r.Context())
	writeResult(w, view, err)
}

func (a *apiServer) getSavedWorkout(w http.ResponseWriter, r *http.Request) {
	st, err := a.core.Services.Workout.SavedState(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"in_progress": st != nil, "state": st})
}

func (a *apiServer) startWorkout(w http.ResponseWriter, r *http.Request) {
	var req dto.StartWorkoutRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	day, err := parseDay(req.Day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	view, err := a.core.Services.Workout.Start(r.Context(), day)
	writeResult(w, view, err)
}

func (a *apiServer) resumeWorkout(w http.ResponseWriter, r *http.Request) {
	var req dto.ResumeWorkoutRequestDTO
	if err := readOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == 0 {
		view, err := a.core.Services.Workout.ResumeSaved(r.Context())
		writeResult(w, view, err)
		return
	}
	day, err := parseDay(req.Day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	view, err := a.core.Services.Workout.Resume(r.Context(), service.WorkoutState{
		SessionID:     req.SessionID,
		Day:           day,
		ExerciseIndex: req.ExerciseIndex,
	})
	writeResult(w, view, err)
}

func (a *apiServer) setReps(w http.ResponseWriter, r *http.Request) {
	var req dto.RepsRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	flow := a.core.Services.Workout
	var (
		view *service.WorkoutView
		err  error
	)
	switch {
	case req.Reps != nil:
		view, err = flow.SetReps(r.Context(), *req.Reps)
	case req.Delta > 0:
		view, err = flow.IncrementReps(r.Context())
	case req.Delta < 0:
		view, err = flow.DecrementReps(r.Context())
	default:
		view, err = flow.View(r.Context())
	}
	writeResult(w, view, err)
}

func (a *apiServer) logSet(w http.ResponseWriter, r *http.Request) {
	var req dto.LogSetRequestDTO
	if err := readOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	flow := a.core.Services.Workout
	if req.Reps != nil {
		if _, err := flow.SetReps(r.Context(), *req.Reps); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	var (
		view *service.WorkoutView
		err  error
	)
	if req.Dropdown {
		view, err = flow.LogDropdown(r.Context())
	} else {
		view, err = flow.LogSet(r.Context(), req.Weight)
	}
	writeResult(w, view, err)
}

func (a *apiServer) undoSet(w http.ResponseWriter, r *http.Request) {
	view, err := a.core.Services.Workout.UndoLastSet(r.Context())
	writeResult(w, view, err)
}

func (a *apiServer) nextExercise(w http.ResponseWriter, r *http.Request) {
	view, err := a.core.Services.Workout.Next(r.Context())
	writeResult(w, view, err)
}

func (a *apiServer) prevExercise(w http.ResponseWriter, r *http.Request) {
	view, err := a.core.Services.Workout.Previous(r.Context())
	writeResult(w, view, err)
}

func (a *apiServer) gotoExercise(w http.ResponseWriter, r *http.Request) {
	var req dto.GoToRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	view, err := a.core.Services.Workout.GoTo(r.Context(), req.Index)
	writeResult(w, view, err)
}

func (a *apiServer) setNote(w http.ResponseWriter, r *http.Request) {
	var req dto.NoteRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	view, err := a.core.Services.Workout.SetNote(r.Context(), req.Note)
	writeResult(w, view, err)
}

func (a *apiServer) updateWeight(w http.ResponseWriter, r *http.Request) {
	var req dto.WeightRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	view, err := a.core.Services.Workout.UpdateWeight(r.Context(), req.Weight)
	writeResult(w, view, err)
}

func (a *apiServer) selectVariation(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectVariationRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	view, err := a.core.Services.Workout.SelectVariation(r.Context(), req.VariationID)
	writeResult(w, view, err)
}

func (a *apiServer) finishWorkout(w http.ResponseWriter, r *http.Request) {
	err := a.core.Services.Workout.Finish(r.Context())
	writeResult(w, map[string]any{"ok": true}, err)
}

// ========== 历史 / 统计 ==========

func (a *apiServer) getHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if date := q.Get("date"); date != "" {
		entries, err := a.core.Services.History.ForNameOnDate(r.Context(), q.Get("name"), date)
		writeResult(w, entries, err)
		return
	}
	entries, err := a.core.Services.History.ForName(r.Context(), q.Get("name"))
	writeResult(w, entries, err)
}

func (a *apiServer) deleteHistoryLog(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteByIDRequestDTO
	if err := readJSON(r, &req); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	err := a.core.Services.History.DeleteLog(r.Context(), req.ID)
	writeResult(w, map[string]any{"ok": true}, err)
}

func (a *apiServer) getContribution(w http.ResponseWriter, r *http.Request) {
	graph, err := a.core.Services.Stats.Contribution(r.Context())
	writeResult(w, graph, err)
}

func (a *apiServer) getExerciseCharts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size := &service.ChartSize{
		Width:  parseFloatParam(q.Get("width"), 320),
		Height: parseFloatParam(q.Get("height"), 160),
	}
	days, err := a.core.Services.Stats.ExerciseCharts(r.Context(), size)
	writeResult(w, days, err)
}

// ========== 设置 / 计时 / 导出 ==========

func (a *apiServer) settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getSettings(w, r)
	case http.MethodPost:
		if !a.requireWritableDB(w) {
			return
		}
		a.saveSettings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) getSettings(w http.ResponseWriter, r *http.Request) {
	d, err := a.core.Services.Settings.RestDuration(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.settingsDTO(d))
}

func (a *apiServer) saveSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveSettingsRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := a.core.Services.Settings.SetRestDuration(r.Context(), req.RestMinutes, req.RestSeconds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.settingsDTO(d))
}

func (a *apiServer) settingsDTO(d time.Duration) dto.SettingsDTO {
	days := a.core.Services.Calendar.Days()
	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, string(day))
	}
	return dto.SettingsDTO{
		RestDurationSeconds: int(d / time.Second),
		RestDisplay:         service.FormatDuration(d),
		WorkoutDays:         names,
	}
}

func (a *apiServer) getTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.core.Services.RestTimer.Status())
}

func (a *apiServer) startTimer(w http.ResponseWriter, r *http.Request) {
	var req dto.StartTimerRequestDTO
	if err := readOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	d := time.Duration(req.Seconds) * time.Second
	if req.Seconds <= 0 {
		var err error
		if d, err = a.core.Services.Settings.RestDuration(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	// 计时跨越请求生命周期，挂在服务 ctx 上
	if _, err := a.core.Services.RestTimer.Start(a.ctx, d); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.core.Services.RestTimer.Status())
}

func (a *apiServer) skipTimer(w http.ResponseWriter, r *http.Request) {
	skipped := a.core.Services.RestTimer.Skip()
	writeJSON(w, http.StatusOK, map[string]any{"skipped": skipped, "status": a.core.Services.RestTimer.Status()})
}

func (a *apiServer) exportDatabase(w http.ResponseWriter, r *http.Request) {
	var req dto.ExportRequestDTO
	if err := readOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	dir := req.Dir
	if dir == "" {
		dir = a.core.Cfg.Storage.ExportDir
	}
	path, err := a.core.Services.Settings.Export(r.Context(), dir)
	writeResult(w, dto.ExportResponseDTO{Path: path}, err)
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuqie6/TrivialFit/internal/bootstrap"
	"github.com/yuqie6/TrivialFit/internal/dto"
	"github.com/yuqie6/TrivialFit/internal/pkg/config"
	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/service"
	"github.com/yuqie6/TrivialFit/internal/testutil"
)

type testServer struct {
	core *bootstrap.Core
	h    http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cfg := config.Default()
	cfg.Timer.TickMs = 10
	core := bootstrap.NewCoreWithDB(cfg, testutil.OpenTestDB(t), nil)
	return &testServer{core: core, h: NewHandler(ctx, core, Options{})}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)

	rec = s.do(t, http.MethodPost, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/days", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExerciseEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/exercises/add", dto.AddExerciseRequestDTO{Day: "mon", Name: "Bench"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bench := decode[schema.Exercise](t, rec)
	assert.Equal(t, 0, bench.OrderIndex)

	rec = s.do(t, http.MethodPost, "/api/exercises/add", dto.AddExerciseRequestDTO{Day: "MONDAY", Name: "Row"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/exercises/add", dto.AddExerciseRequestDTO{Day: "FUNDAY", Name: "Row"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/exercises/move", dto.MoveExerciseRequestDTO{ID: bench.ID, NewIndex: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]schema.Exercise](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Row", list[0].Name)
	assert.Equal(t, "Bench", list[1].Name)

	rec = s.do(t, http.MethodGet, "/api/exercises?day=MONDAY", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]schema.Exercise](t, rec), 2)

	rec = s.do(t, http.MethodPost, "/api/exercises/delete", dto.DeleteByIDRequestDTO{ID: 9999})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/exercises/rename", dto.RenameExerciseRequestDTO{OldName: "Bench", NewName: "Bench Press"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[dto.CountResponseDTO](t, rec).Affected)

	rec = s.do(t, http.MethodGet, "/api/days", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[service.CalendarView](t, rec)
	require.NotEmpty(t, view.Days)
	assert.Equal(t, schema.Monday, view.Days[0].Day)
	assert.Equal(t, 2, view.Days[0].ExerciseCount)
}

func TestWorkoutFlowEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.core.Services.Exercises.Add(ctx, schema.Saturday, "Squat")
	require.NoError(t, err)
	_, err = s.core.Services.Exercises.Add(ctx, schema.Saturday, "Lunge")
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/workout", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/workout/start", dto.StartWorkoutRequestDTO{Day: "SATURDAY"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[service.WorkoutView](t, rec)
	assert.Equal(t, "Squat", view.Exercise.Name)
	assert.Equal(t, 10, view.Reps)

	rec = s.do(t, http.MethodPost, "/api/workout/undo", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	w := 100.0
	reps := 5
	rec = s.do(t, http.MethodPost, "/api/workout/log", dto.LogSetRequestDTO{Weight: &w, Reps: &reps})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[service.WorkoutView](t, rec)
	require.Len(t, view.TodaySets, 1)
	assert.Equal(t, "100kg × 5", view.Summary)
	assert.True(t, view.CanUndo)

	rec = s.do(t, http.MethodPost, "/api/workout/reps", dto.RepsRequestDTO{Delta: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decode[service.WorkoutView](t, rec).Reps)

	rec = s.do(t, http.MethodPost, "/api/workout/log", dto.LogSetRequestDTO{Dropdown: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100kg × 5 + 6", decode[service.WorkoutView](t, rec).Summary)

	rec = s.do(t, http.MethodPost, "/api/workout/note", dto.NoteRequestDTO{Note: "belt"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "belt", decode[service.WorkoutView](t, rec).Note)

	rec = s.do(t, http.MethodGet, "/api/workout/saved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"in_progress":true`)

	rec = s.do(t, http.MethodPost, "/api/workout/goto", dto.GoToRequestDTO{Index: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[service.WorkoutView](t, rec)
	assert.Equal(t, "Lunge", view.Exercise.Name)
	require.Len(t, view.Statuses, 2)
	assert.True(t, view.Statuses[0].HasSets)

	rec = s.do(t, http.MethodPost, "/api/workout/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[service.WorkoutView](t, rec).Finished)

	rec = s.do(t, http.MethodPost, "/api/workout/resume", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/history?name=Squat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]service.HistoryEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "belt", entries[0].Note)

	rec = s.do(t, http.MethodGet, "/api/history?name=Squat&date=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/history?name=Nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/stats/contribution", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_sets":2`)

	rec = s.do(t, http.MethodGet, "/api/stats/exercises?width=200&height=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"SATURDAY"`)

	rec = s.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[dto.StatusDTO](t, rec)
	assert.Equal(t, int64(2), status.Storage.Sets)
	assert.False(t, status.Workout.InProgress)
}

func TestSettingsAndTimer(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 120, decode[dto.SettingsDTO](t, rec).RestDurationSeconds)

	rec = s.do(t, http.MethodPost, "/api/settings", dto.SaveSettingsRequestDTO{RestMinutes: 12})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/settings", dto.SaveSettingsRequestDTO{RestMinutes: 1, RestSeconds: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[dto.SettingsDTO](t, rec)
	assert.Equal(t, 65, settings.RestDurationSeconds)
	assert.Equal(t, "1:05", settings.RestDisplay)

	rec = s.do(t, http.MethodPost, "/api/timer/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[service.RestTimerStatus](t, rec)
	assert.True(t, st.Running)
	assert.Equal(t, 65*time.Second, st.Total)

	rec = s.do(t, http.MethodPost, "/api/timer/skip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"skipped":true`)

	rec = s.do(t, http.MethodPost, "/api/export", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSafeModeRejectsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	db := testutil.OpenTestDB(t)
	core := bootstrap.NewCoreWithDB(config.Default(), db, nil)
	core.DB = &repository.Database{DB: db, SafeMode: true, MigrationError: "schema too new"}
	s := &testServer{core: core, h: NewHandler(ctx, core, Options{})}

	rec := s.do(t, http.MethodPost, "/api/exercises/add", dto.AddExerciseRequestDTO{Day: "MONDAY", Name: "Bench"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "schema too new")

	rec = s.do(t, http.MethodPost, "/api/workout/start", dto.StartWorkoutRequestDTO{Day: "MONDAY"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/settings", dto.SaveSettingsRequestDTO{RestMinutes: 1})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/exercises?day=MONDAY", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[dto.StatusDTO](t, rec)
	assert.True(t, st.App.SafeMode)
	assert.Equal(t, "schema too new", st.Storage.SafeModeReason)
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/exercises/add", strings.NewReader(`{"day":"MONDAY","name":"x","extra":1}`))
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSSEStreamsHubEvents(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	require.Contains(t, string(buf[:n]), "event: ready")

	require.Eventually(t, func() bool { return s.core.Hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	_, err = s.core.Services.Exercises.Add(context.Background(), schema.Monday, "Bench")
	require.NoError(t, err)

	var got strings.Builder
	for !strings.Contains(got.String(), "exercises.changed") {
		n, err := resp.Body.Read(buf)
		require.NoError(t, err)
		got.Write(buf[:n])
	}
}

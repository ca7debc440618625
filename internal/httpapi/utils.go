package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuqie6/TrivialFit/internal/bootstrap"
	"github.com/yuqie6/TrivialFit/internal/schema"
	"github.com/yuqie6/TrivialFit/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeServiceError 把服务层哨兵错误映射为 HTTP 状态码
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoActiveWorkout), errors.Is(err, service.ErrNothingToUndo):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bootstrap.ErrSafeMode):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("请求处理失败", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeResult err 为空时输出 v
func writeResult(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func readJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// readOptionalJSON 空 body 视为零值请求
func readOptionalJSON(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := readJSON(r, out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parseInt64Param(value string) (int64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("参数为空")
	}
	return strconv.ParseInt(v, 10, 64)
}

func parseFloatParam(value string, fallback float64) float64 {
	v := strings.TrimSpace(value)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func parseDay(raw string) (schema.DayOfWeek, error) {
	day, err := schema.ParseDayOfWeek(raw)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, service.ErrInvalidInput)
	}
	return day, nil
}

package repository

import (
	"fmt"
	"time"
)

// DayRange 将 YYYY-MM-DD 解析为本地日区间的毫秒时间戳 [start, end]（闭区间）。
func DayRange(date string) (startMs int64, endMs int64, err error) {
	loc := time.Local
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return 0, 0, fmt.Errorf("解析日期失败: %w", err)
	}
	start := t.UnixMilli()
	end := t.AddDate(0, 0, 1).UnixMilli() - 1
	return start, end, nil
}

// StartOfDay 当天 00:00（保留时区）
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek 本周一 00:00
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

package service

import "time"

// DefaultDayStartHour 凌晨 4 点前的训练记到前一天
const DefaultDayStartHour = 4

// AdjustedTime 训练归属时间：本地时间早于 dayStartHour 时回拨一天
func AdjustedTime(t time.Time, dayStartHour int) time.Time {
	if t.Hour() < dayStartHour {
		return t.AddDate(0, 0, -1)
	}
	return t
}

func nowOrDefault(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return time.Now
}

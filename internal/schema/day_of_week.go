package schema

import (
	"fmt"
	"strings"
	"time"
)

// DayOfWeek 训练日，按名称（MONDAY..SUNDAY）落库
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// AllDays 周一开始的自然顺序
var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Ordinal 返回周一为 0 的序号；未知值返回 -1
func (d DayOfWeek) Ordinal() int {
	for i, day := range AllDays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid 是否为已知的星期
func (d DayOfWeek) Valid() bool {
	return d.Ordinal() >= 0
}

// DisplayName 首字母大写的展示名，如 "Monday"
func (d DayOfWeek) DisplayName() string {
	s := strings.ToLower(string(d))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Weekday 转换为 time.Weekday
func (d DayOfWeek) Weekday() time.Weekday {
	idx := d.Ordinal()
	if idx < 0 {
		return time.Sunday
	}
	return time.Weekday((idx + 1) % 7)
}

// FromWeekday 由 time.Weekday 构造
func FromWeekday(w time.Weekday) DayOfWeek {
	return AllDays[(int(w)+6)%7]
}

// ParseDayOfWeek 解析星期名，大小写不敏感，支持 mon/tue 等三字母缩写
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return "", fmt.Errorf("星期不能为空")
	}
	for _, day := range AllDays {
		if string(day) == v || (len(v) == 3 && strings.HasPrefix(string(day), v)) {
			return day, nil
		}
	}
	return "", fmt.Errorf("未知的星期: %s", s)
}

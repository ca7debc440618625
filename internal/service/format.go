package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yuqie6/TrivialFit/internal/schema"
)

// FormatWeight 整数重量不带小数，否则保留一位
func FormatWeight(w float64) string {
	if w == float64(int64(w)) {
		return strconv.FormatInt(int64(w), 10)
	}
	return strconv.FormatFloat(w, 'f', 1, 64)
}

// FormatSetsSummary 生成 "60kg × 10, 8 + 6, 4" 形式的摘要；重量取第一组正式组，该组没有重量时用 "/"
func FormatSetsSummary(sets []schema.SetLog) string {
	if len(sets) == 0 {
		return "No sets logged"
	}

	var regular, dropdown []string
	var weight *float64
	for _, s := range sets {
		if s.IsDropdown {
			dropdown = append(dropdown, strconv.Itoa(s.Reps))
			continue
		}
		if len(regular) == 0 {
			weight = s.Weight
		}
		regular = append(regular, strconv.Itoa(s.Reps))
	}

	weightText := "/"
	if weight != nil {
		weightText = FormatWeight(*weight) + "kg"
	}

	var b strings.Builder
	b.WriteString(weightText)
	b.WriteString(" × ")
	if len(regular) > 0 {
		b.WriteString(strings.Join(regular, ", "))
	}
	if len(dropdown) > 0 {
		if len(regular) > 0 {
			b.WriteString(" ")
		}
		b.WriteString("+ ")
		b.WriteString(strings.Join(dropdown, ", "))
	}
	return b.String()
}

// FormatHistoryDate 历史条目日期，如 "Jan 2"
func FormatHistoryDate(ms int64) string {
	return time.UnixMilli(ms).Format("Jan 2")
}

// FormatDuration m:ss
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

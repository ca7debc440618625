package chart

import (
	"sort"
	"time"
)

// Level 热力图颜色档位
type Level int

const (
	LevelEmpty Level = iota
	Level1
	Level2
	Level3
	Level4
)

// LevelFor 组数到档位：0 / <=3 / <=6 / <=10 / 更多
func LevelFor(count int) Level {
	switch {
	case count <= 0:
		return LevelEmpty
	case count <= 3:
		return Level1
	case count <= 6:
		return Level2
	case count <= 10:
		return Level3
	default:
		return Level4
	}
}

// ContributionOptions 布局尺寸
type ContributionOptions struct {
	BoxSize       float64
	Spacing       float64
	HeaderHeight  float64
	ViewportWidth float64
}

// DefaultContributionOptions 默认尺寸
func DefaultContributionOptions() ContributionOptions {
	return ContributionOptions{BoxSize: 12, Spacing: 3, HeaderHeight: 20, ViewportWidth: 360}
}

// ContributionCell 单日方块
type ContributionCell struct {
	Date    time.Time `json:"date"`
	Count   int       `json:"count"`
	Level   Level     `json:"level"`
	IsToday bool      `json:"is_today"`
	Row     int       `json:"row"` // 0 = 周一
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
}

// WeekColumn 周一开头的一列，只包含本月的日期
type WeekColumn struct {
	WeekStart time.Time          `json:"week_start"`
	X         float64            `json:"x"`
	Cells     []ContributionCell `json:"cells"`
}

// MonthBlock 一个月的若干列
type MonthBlock struct {
	Year    int          `json:"year"`
	Month   time.Month   `json:"month"`
	Label   string       `json:"label"`
	X       float64      `json:"x"`
	Columns []WeekColumn `json:"columns"`
}

// ContributionGraph 热力图布局
type ContributionGraph struct {
	Start          time.Time    `json:"start"`
	End            time.Time    `json:"end"`
	Months         []MonthBlock `json:"months"`
	Width          float64      `json:"width"`
	Height         float64      `json:"height"`
	InitialScrollX float64      `json:"initial_scroll_x"`
	TotalSets      int          `json:"total_sets"`
	ActiveDays     int          `json:"active_days"`
}

// MonthLabel 一月带年份（"Jan 2025"），其余只显示月份缩写
func MonthLabel(year int, month time.Month) string {
	short := month.String()[:3]
	if month == time.January {
		return short + " " + itoa(year)
	}
	return short
}

// ContributionRange 数据最早日期的上个月 1 号到最晚日期的下个月末；无数据时以 today 为准
func ContributionRange(counts map[string]int, today time.Time) (time.Time, time.Time) {
	loc := today.Location()
	var keys []string
	for k, v := range counts {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	minDate, maxDate := startOfDay(today), startOfDay(today)
	if len(keys) > 0 {
		sort.Strings(keys)
		if t, err := time.ParseInLocation("2006-01-02", keys[0], loc); err == nil {
			minDate = t
		}
		if t, err := time.ParseInLocation("2006-01-02", keys[len(keys)-1], loc); err == nil {
			maxDate = t
		}
	}
	start := firstOfMonth(minDate).AddDate(0, -1, 0)
	end := lastOfMonth(firstOfMonth(maxDate).AddDate(0, 1, 0))
	return start, end
}

// BuildContribution 计算热力图布局；counts 以 DateKey 为键
func BuildContribution(counts map[string]int, today time.Time, opts ContributionOptions) *ContributionGraph {
	if opts.BoxSize <= 0 {
		opts = DefaultContributionOptions()
	}
	today = startOfDay(today)
	start, end := ContributionRange(counts, today)
	step := opts.BoxSize + opts.Spacing

	g := &ContributionGraph{
		Start:  start,
		End:    end,
		Height: opts.HeaderHeight + 7*step,
		Months: []MonthBlock{},
	}

	todayX := -1.0
	x := 0.0
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		block := MonthBlock{Year: m.Year(), Month: m.Month(), Label: MonthLabel(m.Year(), m.Month()), X: x}
		monthEnd := lastOfMonth(m)
		for ws := mondayOf(m); !ws.After(monthEnd); ws = ws.AddDate(0, 0, 7) {
			col := WeekColumn{WeekStart: ws, X: x}
			for row := 0; row < 7; row++ {
				d := ws.AddDate(0, 0, row)
				if d.Month() != m.Month() || d.Year() != m.Year() {
					continue
				}
				count := counts[DateKey(d)]
				cell := ContributionCell{
					Date:    d,
					Count:   count,
					Level:   LevelFor(count),
					IsToday: d.Equal(today),
					Row:     row,
					X:       x,
					Y:       opts.HeaderHeight + float64(row)*step,
				}
				if cell.IsToday {
					todayX = x
				}
				if count > 0 {
					g.TotalSets += count
					g.ActiveDays++
				}
				col.Cells = append(col.Cells, cell)
			}
			block.Columns = append(block.Columns, col)
			x += step
		}
		g.Months = append(g.Months, block)
		x += opts.BoxSize // 月间隔
	}
	if len(g.Months) > 0 {
		x -= opts.BoxSize
	}
	g.Width = x

	if todayX >= 0 && opts.ViewportWidth > 0 {
		scroll := todayX - opts.ViewportWidth/2 + opts.BoxSize/2
		maxScroll := g.Width - opts.ViewportWidth
		if maxScroll < 0 {
			maxScroll = 0
		}
		if scroll < 0 {
			scroll = 0
		}
		if scroll > maxScroll {
			scroll = maxScroll
		}
		g.InitialScrollX = scroll
	}
	return g
}

// Cell 查询某天的方块
func (g *ContributionGraph) Cell(date time.Time) (ContributionCell, bool) {
	key := DateKey(date)
	for _, m := range g.Months {
		for _, c := range m.Columns {
			for _, cell := range c.Cells {
				if DateKey(cell.Date) == key {
					return cell, true
				}
			}
		}
	}
	return ContributionCell{}, false
}

package chart

import (
	"math"
	"sort"
	"strconv"
	"time"
)

const (
	barPadding     = 20.0
	barLeftPadding = 40.0
	barFillRatio   = 0.8
)

// Point 某天的数值
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// BarOptions 柱状图参数；ShowMissing 时 Start..End 每天一根柱
type BarOptions struct {
	Width       float64
	Height      float64
	ShowMissing bool
	Start       time.Time
	End         time.Time
}

// Bar 单根柱
type Bar struct {
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
	Missing    bool      `json:"missing"`
	Fraction   float64   `json:"fraction"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	W          float64   `json:"w"`
	H          float64   `json:"h"`
	Label      string    `json:"label"`
	MonthLabel string    `json:"month_label,omitempty"`
}

// BarChart 柱状图布局
type BarChart struct {
	MinY     float64   `json:"min_y"`
	MaxY     float64   `json:"max_y"`
	YRange   float64   `json:"y_range"`
	YTicks   []float64 `json:"y_ticks"`
	Bars     []Bar     `json:"bars"`
	Selected int       `json:"selected"`

	barSpace float64
}

// YAxis 纵轴范围：min*0.9 向下取整，max*1.1 向上取整；无数据为 0..10
func YAxis(values []float64) (minY, maxY, yRange float64) {
	if len(values) == 0 {
		return 0, 10, 10
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	minY = 0
	if lo > 0 {
		minY = math.Floor(snap(lo * 0.9))
	}
	maxY = math.Ceil(snap(hi * 1.1))
	if maxY == minY {
		maxY++
	}
	yRange = math.Max(maxY-minY, 1)
	return minY, maxY, yRange
}

// snap 抹掉浮点乘法的尾差，100*1.1 取整后应为 110 而不是 111
func snap(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// FormatValue 整数不带小数，否则一位小数
func FormatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// BuildBarChart data 以 DateKey 为键，只保留 > 0 的值
func BuildBarChart(data map[string]float64, loc *time.Location, opts BarOptions) *BarChart {
	if loc == nil {
		loc = time.Local
	}
	points := make([]Point, 0, len(data))
	for k, v := range data {
		if v <= 0 {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", k, loc)
		if err != nil {
			continue
		}
		points = append(points, Point{Date: t, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	values := make([]float64, 0, len(points))
	for _, p := range points {
		values = append(values, p.Value)
	}
	c := &BarChart{Selected: -1, Bars: []Bar{}}
	c.MinY, c.MaxY, c.YRange = YAxis(values)
	c.YTicks = []float64{c.MinY, c.MinY + c.YRange/2, c.MaxY}

	var bars []Bar
	if opts.ShowMissing {
		start, end := opts.Start, opts.End
		if start.IsZero() && len(points) > 0 {
			start = points[0].Date
		}
		if end.IsZero() && len(points) > 0 {
			end = points[len(points)-1].Date
		}
		if !start.IsZero() && !end.IsZero() {
			byDate := make(map[string]float64, len(points))
			for _, p := range points {
				byDate[DateKey(p.Date)] = p.Value
			}
			for d := startOfDay(start.In(loc)); !d.After(startOfDay(end.In(loc))); d = d.AddDate(0, 0, 1) {
				v, ok := byDate[DateKey(d)]
				bar := Bar{Date: d, Value: v, Missing: !ok}
				if d.Day() == 1 {
					bar.MonthLabel = d.Month().String()[:3]
				}
				bars = append(bars, bar)
			}
		}
	} else {
		for _, p := range points {
			bars = append(bars, Bar{Date: p.Date, Value: p.Value})
		}
	}

	c.layout(bars, opts)
	return c
}

func (c *BarChart) layout(bars []Bar, opts BarOptions) {
	if len(bars) == 0 {
		return
	}
	chartW := opts.Width - barLeftPadding - barPadding
	chartH := opts.Height - 2*barPadding
	if chartW < 0 {
		chartW = 0
	}
	if chartH < 0 {
		chartH = 0
	}
	c.barSpace = chartW / float64(len(bars))
	barW := c.barSpace * barFillRatio

	for i := range bars {
		b := &bars[i]
		b.Label = FormatValue(b.Value)
		if !b.Missing {
			b.Fraction = math.Max(0, math.Min(1, (b.Value-c.MinY)/c.YRange))
		}
		b.W = barW
		b.H = b.Fraction * chartH
		b.X = barLeftPadding + float64(i)*c.barSpace + (c.barSpace-barW)/2
		b.Y = barPadding + chartH - b.H
	}
	c.Bars = bars
}

// HitTest 点击柱子切换选中；返回当前选中下标（-1 表示无）
func (c *BarChart) HitTest(x float64) int {
	if c.barSpace <= 0 || x < barLeftPadding {
		return c.Selected
	}
	idx := int((x - barLeftPadding) / c.barSpace)
	if idx < 0 || idx >= len(c.Bars) || c.Bars[idx].Missing {
		return c.Selected
	}
	if c.Selected == idx {
		c.Selected = -1
	} else {
		c.Selected = idx
	}
	return c.Selected
}

// Present 非缺失的柱
func (c *BarChart) Present() []Bar {
	out := make([]Bar, 0, len(c.Bars))
	for _, b := range c.Bars {
		if !b.Missing {
			out = append(out, b)
		}
	}
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

package service

import (
	"context"
	"sort"
	"time"

	"github.com/yuqie6/TrivialFit/internal/chart"
	"github.com/yuqie6/TrivialFit/internal/repository"
	"github.com/yuqie6/TrivialFit/internal/schema"
)

// StatsWindowMonths 动作柱状图只看最近三个月
const StatsWindowMonths = 3

// ExerciseChart 单个动作的重量柱状图
type ExerciseChart struct {
	ExerciseID int64           `json:"exercise_id"`
	Name       string          `json:"name"`
	OrderIndex int             `json:"order_index"`
	Sessions   int             `json:"sessions"`
	Chart      *chart.BarChart `json:"chart"`
}

// DayCharts 某训练日下的全部动作图
type DayCharts struct {
	Day         string          `json:"day"`
	DisplayName string          `json:"display_name"`
	Exercises   []ExerciseChart `json:"exercises"`
}

// ChartSize 柱状图尺寸
type ChartSize struct {
	Width  float64
	Height float64
}

// StatsService 统计页：热力图 + 各动作重量趋势
type StatsService struct {
	stats   StatsRepository
	now     func() time.Time
	layout  chart.ContributionOptions
	barSize ChartSize
}

// NewStatsService 创建统计服务
func NewStatsService(stats StatsRepository, now func() time.Time) *StatsService {
	return &StatsService{
		stats:   stats,
		now:     nowOrDefault(now),
		layout:  chart.DefaultContributionOptions(),
		barSize: ChartSize{Width: 320, Height: 160},
	}
}

// DailySetCounts 按本地日期汇总组数
func (s *StatsService) DailySetCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.stats.DailySetCounts(ctx)
	if err != nil {
		return nil, err
	}
	loc := s.now().Location()
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[chart.DateKey(time.UnixMilli(r.Date).In(loc))] += r.SetCount
	}
	return counts, nil
}

// Contribution 热力图布局
func (s *StatsService) Contribution(ctx context.Context) (*chart.ContributionGraph, error) {
	counts, err := s.DailySetCounts(ctx)
	if err != nil {
		return nil, err
	}
	return chart.BuildContribution(counts, s.now(), s.layout), nil
}

// ExerciseCharts 近三个月按训练日分组的动作重量图；训练日按周一到周日排序，未知名称排最后
func (s *StatsService) ExerciseCharts(ctx context.Context, size *ChartSize) ([]DayCharts, error) {
	now := s.now()
	loc := now.Location()
	since := repository.StartOfDay(now).AddDate(0, -StatsWindowMonths, 0)
	rows, err := s.stats.ExerciseStats(ctx, since.UnixMilli())
	if err != nil {
		return nil, err
	}
	if size == nil {
		size = &s.barSize
	}

	type exAgg struct {
		id         int64
		name       string
		orderIndex int
		sessions   int
		data       map[string]float64
	}
	byDay := make(map[string]map[int64]*exAgg)
	for _, r := range rows {
		exs, ok := byDay[r.DayName]
		if !ok {
			exs = make(map[int64]*exAgg)
			byDay[r.DayName] = exs
		}
		agg, ok := exs[r.ExerciseID]
		if !ok {
			agg = &exAgg{id: r.ExerciseID, name: r.ExerciseName, orderIndex: r.OrderIndex, data: map[string]float64{}}
			exs[r.ExerciseID] = agg
		}
		agg.sessions++
		agg.data[chart.DateKey(time.UnixMilli(r.Date).In(loc))] += r.TotalWeight
	}

	dayNames := make([]string, 0, len(byDay))
	for name := range byDay {
		dayNames = append(dayNames, name)
	}
	sort.Slice(dayNames, func(i, j int) bool {
		oi, oj := schema.DayOfWeek(dayNames[i]).Ordinal(), schema.DayOfWeek(dayNames[j]).Ordinal()
		if oi < 0 {
			oi = len(schema.AllDays)
		}
		if oj < 0 {
			oj = len(schema.AllDays)
		}
		if oi != oj {
			return oi < oj
		}
		return dayNames[i] < dayNames[j]
	})

	opts := chart.BarOptions{Width: size.Width, Height: size.Height, ShowMissing: true, Start: since, End: now}
	out := make([]DayCharts, 0, len(dayNames))
	for _, name := range dayNames {
		aggs := make([]*exAgg, 0, len(byDay[name]))
		for _, a := range byDay[name] {
			aggs = append(aggs, a)
		}
		sort.Slice(aggs, func(i, j int) bool {
			if aggs[i].orderIndex != aggs[j].orderIndex {
				return aggs[i].orderIndex < aggs[j].orderIndex
			}
			return aggs[i].id < aggs[j].id
		})

		dc := DayCharts{Day: name, DisplayName: schema.DayOfWeek(name).DisplayName()}
		for _, a := range aggs {
			dc.Exercises = append(dc.Exercises, ExerciseChart{
				ExerciseID: a.id,
				Name:       a.name,
				OrderIndex: a.orderIndex,
				Sessions:   a.sessions,
				Chart:      chart.BuildBarChart(a.data, loc, opts),
			})
		}
		out = append(out, dc)
	}
	return out, nil
}

package chart

import (
	"fmt"
	"strings"
)

var levelGlyphs = map[Level]string{
	LevelEmpty: "·",
	Level1:     "░",
	Level2:     "▒",
	Level3:     "▓",
	Level4:     "█",
}

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// RenderContribution 终端文本形式的热力图，每列一周
func RenderContribution(g *ContributionGraph) string {
	if g == nil || len(g.Months) == 0 {
		return ""
	}

	var header strings.Builder
	rows := make([]strings.Builder, 7)
	header.WriteString("    ")
	for i := range rows {
		rows[i].WriteString(weekdayLabels[i] + " ")
	}

	for mi, m := range g.Months {
		if mi > 0 {
			header.WriteString(" ")
			for i := range rows {
				rows[i].WriteString(" ")
			}
		}
		label := m.Label
		width := len(m.Columns)
		if len(label) > width {
			label = label[:width]
		}
		header.WriteString(label + strings.Repeat(" ", width-len(label)))

		for _, col := range m.Columns {
			filled := make([]string, 7)
			for i := range filled {
				filled[i] = " "
			}
			for _, cell := range col.Cells {
				glyph := levelGlyphs[cell.Level]
				if cell.IsToday && cell.Count == 0 {
					glyph = "□"
				}
				filled[cell.Row] = glyph
			}
			for i := range rows {
				rows[i].WriteString(filled[i])
			}
		}
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(header.String(), " "))
	b.WriteString("\n")
	for i := range rows {
		b.WriteString(strings.TrimRight(rows[i].String(), " "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d sets over %d days\n", g.TotalSets, g.ActiveDays)
	return b.String()
}

// RenderBars 终端文本形式的柱状图，只输出有数据的柱
func RenderBars(c *BarChart, width int) string {
	if c == nil {
		return ""
	}
	present := c.Present()
	if len(present) == 0 {
		return "  (no data)\n"
	}
	if width <= 0 {
		width = 30
	}

	var b strings.Builder
	for _, bar := range present {
		n := int(bar.Fraction*float64(width) + 0.5)
		if n < 1 {
			n = 1
		}
		fmt.Fprintf(&b, "  %s %s %s\n", bar.Date.Format("Jan 02"), strings.Repeat("█", n), bar.Label)
	}
	fmt.Fprintf(&b, "  range %s..%s\n", FormatValue(c.MinY), FormatValue(c.MaxY))
	return b.String()
}

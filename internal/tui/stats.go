package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/stats"
)

func buildStatsTable(perCategory map[model.Category]model.CategoryStats, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Category", Width: 12},
		{Title: "Studied", Width: 8},
		{Title: "Correct", Width: 8},
		{Title: "Incorrect", Width: 10},
		{Title: "Accuracy", Width: 9},
	}
	rows := make([]table.Row, 0, len(perCategory))
	for _, r := range stats.SortedCategories(perCategory) {
		rows = append(rows, table.Row{
			string(r.Category),
			fmt.Sprintf("%d", r.Stats.Studied),
			fmt.Sprintf("%d", r.Stats.Correct),
			fmt.Sprintf("%d", r.Stats.Incorrect),
			fmt.Sprintf("%d%%", r.Stats.Accuracy()),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, minInt(height, len(rows)+1))),
	)
	t.SetWidth(width)
	t.SetStyles(statsTableStyles())
	return t
}

func statsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// sessionTrend renders moving-average session accuracy as a sparkline.
func sessionTrend(sessions []model.SessionAggregate, window int) string {
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		accs[i] = stats.SessionAccuracy(s)
	}
	return stats.Sparkline(stats.MovingAverage(accs, window))
}

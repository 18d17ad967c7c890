// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/flashdrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

const (
	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

// SessionAccuracy returns the accuracy of a stored session as a percentage.
func SessionAccuracy(s model.SessionAggregate) float64 {
	den := s.Correct + s.Incorrect
	if den <= 0 {
		return 0
	}
	return float64(s.Correct) / float64(den) * 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints lifetime totals and session counts.
func RenderSummary(w io.Writer, totals model.CategoryStats, sessions []model.SessionAggregate) error {
	if totals.Studied == 0 && len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No progress recorded yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Studied: %d\n", totals.Studied); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Correct: %d\n", totals.Correct); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Incorrect: %d\n", totals.Incorrect); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy: %d%%\n", totals.Accuracy()); err != nil {
		return err
	}
	if len(sessions) > 0 {
		best := 0.0
		for _, s := range sessions {
			if acc := SessionAccuracy(s); acc > best {
				best = acc
			}
		}
		if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(sessions)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Best Session: %.0f%%\n", best); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// CategoryRow is one line of the per-category table.
type CategoryRow struct {
	Category model.Category
	Stats    model.CategoryStats
}

// SortedCategories orders categories by lowest accuracy, then by name.
func SortedCategories(perCategory map[model.Category]model.CategoryStats) []CategoryRow {
	rows := make([]CategoryRow, 0, len(perCategory))
	for cat, st := range perCategory {
		rows = append(rows, CategoryRow{Category: cat, Stats: st})
	}
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := rows[i].Stats.Accuracy(), rows[j].Stats.Accuracy()
		if ai == aj {
			return rows[i].Category < rows[j].Category
		}
		return ai < aj
	})
	return rows
}

// RenderCategoryTable prints per-category counters, weakest first.
func RenderCategoryTable(w io.Writer, perCategory map[model.Category]model.CategoryStats) error {
	if len(perCategory) == 0 {
		_, err := fmt.Fprintln(w, "No category stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Category"); err != nil {
		return err
	}
	headers := []string{"Category", "Studied", "Correct", "Incorrect", "Accuracy"}
	rows := SortedCategories(perCategory)
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			string(r.Category),
			fmt.Sprintf("%d", r.Stats.Studied),
			fmt.Sprintf("%d", r.Stats.Correct),
			fmt.Sprintf("%d", r.Stats.Incorrect),
			fmt.Sprintf("%d%%", r.Stats.Accuracy()),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCurve prints a sparkline of moving-average session accuracy. Only
// the most recent sessions that fit in width are drawn.
func RenderCurve(w io.Writer, sessions []model.SessionAggregate, window, width int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		accs[i] = SessionAccuracy(s)
	}
	accs = MovingAverage(accs, window)
	if width > 0 && len(accs) > width {
		accs = accs[len(accs)-width:]
	}
	latest := accs[len(accs)-1]

	if _, err := fmt.Fprintf(w, "Accuracy Curve (window %d)\n", window); err != nil {
		return err
	}
	line := Sparkline(accs)
	if useColor {
		line = accuracyColor(latest) + line + colorReset
	}
	if _, err := fmt.Fprintf(w, "|%s|\n", line); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Latest: %.0f%%\n\n", latest); err != nil {
		return err
	}
	return nil
}

func accuracyColor(acc float64) string {
	switch {
	case acc >= 80:
		return colorGreen
	case acc >= 50:
		return colorYellow
	default:
		return colorRed
	}
}

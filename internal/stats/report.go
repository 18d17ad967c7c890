package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/flashdrill/internal/model"
)

// HistoryLister reads stored drill sessions.
type HistoryLister interface {
	ListSessions(ctx context.Context, f model.HistoryFilter) ([]model.SessionAggregate, error)
}

// ProgressReader exposes the persisted per-category counters.
type ProgressReader interface {
	Snapshot() map[model.Category]model.CategoryStats
	Totals() model.CategoryStats
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Totals      model.CategoryStats
	PerCategory map[model.Category]model.CategoryStats
	Sessions    []model.SessionAggregate
	Weakest     []model.Category
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, history HistoryLister, progress ProgressReader, f model.HistoryFilter, weakTop int) (Report, error) {
	sessions, err := history.ListSessions(ctx, f)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	perCategory := progress.Snapshot()
	return Report{
		Totals:      progress.Totals(),
		PerCategory: perCategory,
		Sessions:    sessions,
		Weakest:     WeakestCategories(perCategory, weakTop),
	}, nil
}

// RenderOptions controls terminal-dependent output.
type RenderOptions struct {
	CurveWindow int
	Width       int
	Color       bool
}

// Render writes the full stats report.
func Render(w io.Writer, r Report, opts RenderOptions) error {
	if err := RenderSummary(w, r.Totals, r.Sessions); err != nil {
		return err
	}
	if len(r.PerCategory) > 0 {
		if err := RenderCategoryTable(w, r.PerCategory); err != nil {
			return err
		}
	}
	if len(r.Weakest) > 0 {
		names := make([]string, len(r.Weakest))
		for i, c := range r.Weakest {
			names[i] = string(c)
		}
		if _, err := fmt.Fprintf(w, "Weakest: %s\n\n", strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	width := opts.Width
	if width > 2 {
		width -= 2
	}
	return RenderCurve(w, r.Sessions, opts.CurveWindow, width, opts.Color)
}

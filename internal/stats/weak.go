package stats

import (
	"github.com/verte-zerg/flashdrill/internal/model"
)

// WeakestCategories returns up to top studied categories with the lowest
// accuracy. A non-positive top returns all of them.
func WeakestCategories(perCategory map[model.Category]model.CategoryStats, top int) []model.Category {
	rows := SortedCategories(perCategory)
	out := make([]model.Category, 0, len(rows))
	for _, r := range rows {
		if r.Stats.Correct+r.Stats.Incorrect == 0 {
			continue
		}
		out = append(out, r.Category)
		if top > 0 && len(out) == top {
			break
		}
	}
	return out
}

package dataset

import (
	"strings"

	"github.com/verte-zerg/flashdrill/internal/model"
)

// normalizeItem trims fields and drops blank, duplicate, or answer-equal distractors.
func normalizeItem(it model.Item) model.Item {
	it.Category = model.Category(strings.TrimSpace(string(it.Category)))
	it.Prompt = strings.TrimSpace(it.Prompt)
	it.Answer = strings.TrimSpace(it.Answer)
	kept := make([]string, 0, len(it.Distractors))
	seen := map[string]struct{}{it.Answer: {}}
	for _, d := range it.Distractors {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		kept = append(kept, d)
	}
	it.Distractors = kept
	return it
}

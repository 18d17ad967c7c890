// Package progress keeps persisted per-category answer counters.
package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/verte-zerg/flashdrill/internal/logger"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/store"
)

// Store maps categories to counters. Counters only grow, except on Reset.
type Store struct {
	mu    sync.Mutex
	kv    store.KV
	log   *slog.Logger
	stats map[model.Category]model.CategoryStats
}

// New returns an empty store backed by kv. Call Load to read the snapshot.
func New(kv store.KV, log *slog.Logger) *Store {
	return &Store{
		kv:    kv,
		log:   logger.OrDefault(log),
		stats: map[model.Category]model.CategoryStats{},
	}
}

// Load replaces the in-memory mapping with the persisted one. Missing or
// malformed input yields an empty mapping.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = map[model.Category]model.CategoryStats{}

	raw, ok, err := s.kv.Read(ctx, store.KeyProgress)
	if err != nil {
		s.log.Warn("failed to read progress", "key", store.KeyProgress, "error", err)
		return
	}
	if !ok || raw == "" {
		return
	}
	var decoded map[model.Category]model.CategoryStats
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.log.Warn("discarding corrupt progress", "key", store.KeyProgress, "error", err)
		return
	}
	for cat, cs := range decoded {
		if cs.Studied < 0 || cs.Correct < 0 || cs.Incorrect < 0 {
			s.log.Warn("skipping negative progress counters", "key", store.KeyProgress, "category", cat)
			continue
		}
		s.stats[cat] = cs
	}
}

// Record adds one answer with the given outcome to category.
func (s *Store) Record(ctx context.Context, category model.Category, outcome model.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.stats[category]
	cs.Studied++
	if outcome == model.OutcomeCorrect {
		cs.Correct++
	} else {
		cs.Incorrect++
	}
	s.stats[category] = cs
	s.persist(ctx)
}

// Reset drops every category and removes the persisted record.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = map[model.Category]model.CategoryStats{}
	if err := s.kv.Remove(ctx, store.KeyProgress); err != nil {
		s.log.Warn("failed to remove progress", "key", store.KeyProgress, "error", err)
	}
}

// Category returns the counters for one category (zero when absent).
func (s *Store) Category(category model.Category) model.CategoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[category]
}

// Snapshot returns a copy of the full mapping.
func (s *Store) Snapshot() map[model.Category]model.CategoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.Category]model.CategoryStats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// Categories returns the recorded categories sorted by name.
func (s *Store) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Category, 0, len(s.stats))
	for k := range s.stats {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Totals sums the counters across all categories.
func (s *Store) Totals() model.CategoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total model.CategoryStats
	for _, cs := range s.stats {
		total.Studied += cs.Studied
		total.Correct += cs.Correct
		total.Incorrect += cs.Incorrect
	}
	return total
}

// Accuracy returns overall accuracy across all categories.
func (s *Store) Accuracy() int {
	return s.Totals().Accuracy()
}

func (s *Store) persist(ctx context.Context) {
	payload, err := json.Marshal(s.stats)
	if err != nil {
		s.log.Warn("failed to encode progress", "error", err)
		return
	}
	if err := s.kv.Write(ctx, store.KeyProgress, string(payload)); err != nil {
		s.log.Warn("failed to persist progress", "key", store.KeyProgress, "error", err)
	}
}

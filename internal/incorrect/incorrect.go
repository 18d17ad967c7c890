// Package incorrect keeps the persisted redo queue of missed items.
package incorrect

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/verte-zerg/flashdrill/internal/logger"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/store"
)

// Store is a set of missed items keyed by identity. Every mutation persists
// the full snapshot; write failures are logged and otherwise ignored.
type Store struct {
	mu    sync.Mutex
	kv    store.KV
	log   *slog.Logger
	items []model.Item
}

// New returns an empty store backed by kv. Call Load to read the snapshot.
func New(kv store.KV, log *slog.Logger) *Store {
	return &Store{kv: kv, log: logger.OrDefault(log)}
}

// Load replaces the in-memory set with the persisted snapshot. A missing or
// corrupt record yields an empty set.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.read(ctx)
}

func (s *Store) read(ctx context.Context) []model.Item {
	raw, ok, err := s.kv.Read(ctx, store.KeyIncorrectItems)
	if err != nil {
		s.log.Warn("failed to read incorrect items", "key", store.KeyIncorrectItems, "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var decoded []model.Item
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.log.Warn("discarding corrupt incorrect items", "key", store.KeyIncorrectItems, "error", err)
		return nil
	}
	items := make([]model.Item, 0, len(decoded))
	for _, it := range decoded {
		if it.Prompt == "" || it.Category == "" {
			s.log.Warn("skipping malformed incorrect item", "key", store.KeyIncorrectItems, "prompt", it.Prompt)
			continue
		}
		if indexOf(items, it.Key()) >= 0 {
			continue
		}
		items = append(items, it)
	}
	return items
}

// Items returns a copy of the current set in insertion order.
func (s *Store) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// HasItems reports whether a redo session has anything to drill.
func (s *Store) HasItems() bool {
	return s.Len() > 0
}

// Contains reports whether an item with key is stored.
func (s *Store) Contains(key model.ItemKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.items, key) >= 0
}

// Add inserts item unless an entry with the same identity exists.
func (s *Store) Add(ctx context.Context, item model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.items, item.Key()) >= 0 {
		return
	}
	s.items = append(s.items, item)
	s.persist(ctx)
}

// Remove deletes the entry matching item's identity, if any.
func (s *Store) Remove(ctx context.Context, item model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.items, item.Key())
	if idx < 0 {
		return
	}
	next := make([]model.Item, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	s.items = next
	s.persist(ctx)
}

// ReplaceAll overwrites the set with items, keeping the first of any duplicates.
func (s *Store) ReplaceAll(ctx context.Context, items []model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.Item, 0, len(items))
	for _, it := range items {
		if indexOf(next, it.Key()) >= 0 {
			continue
		}
		next = append(next, it)
	}
	s.items = next
	s.persist(ctx)
}

// Clear empties the set and removes the persisted record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.kv.Remove(ctx, store.KeyIncorrectItems); err != nil {
		s.log.Warn("failed to remove incorrect items", "key", store.KeyIncorrectItems, "error", err)
	}
}

func (s *Store) persist(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []model.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("failed to encode incorrect items", "error", err)
		return
	}
	if err := s.kv.Write(ctx, store.KeyIncorrectItems, string(payload)); err != nil {
		s.log.Warn("failed to persist incorrect items", "key", store.KeyIncorrectItems, "error", err)
	}
}

func indexOf(items []model.Item, key model.ItemKey) int {
	for i, it := range items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

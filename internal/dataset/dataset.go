// Package dataset provides the immutable vocabulary table.
package dataset

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/flashdrill/internal/model"
)

var (
	// ErrInvalidDeck is returned when a deck file fails validation.
	ErrInvalidDeck = errors.New("invalid deck")
)

var validate = validator.New()

// Dataset is a read-only table of items grouped by category.
type Dataset struct {
	items      []model.Item
	categories []model.Category
	byCategory map[model.Category][]model.Item
}

type deckFile struct {
	Items []model.Item `yaml:"items"`
}

// New validates items and builds a Dataset. Identities must be unique.
func New(items []model.Item) (*Dataset, error) {
	d := &Dataset{byCategory: map[model.Category][]model.Item{}}
	seen := map[model.ItemKey]struct{}{}
	for i, it := range items {
		it = normalizeItem(it)
		if err := validate.Struct(it); err != nil {
			return nil, fmt.Errorf("%w: item %d (%q): %v", ErrInvalidDeck, i, it.Prompt, err)
		}
		if _, dup := seen[it.Key()]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q in category %q", ErrInvalidDeck, it.Prompt, it.Category)
		}
		seen[it.Key()] = struct{}{}
		if _, ok := d.byCategory[it.Category]; !ok {
			d.categories = append(d.categories, it.Category)
		}
		d.byCategory[it.Category] = append(d.byCategory[it.Category], it)
		d.items = append(d.items, it)
	}
	return d, nil
}

// LoadFile reads a YAML deck of the form `items: [{category, prompt, answer, distractors}]`.
func LoadFile(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var deck deckFile
	if err := yaml.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}
	if len(deck.Items) == 0 {
		return nil, fmt.Errorf("%w: deck is empty", ErrInvalidDeck)
	}
	return New(deck.Items)
}

// Load returns the deck at path, or the built-in table when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}

// ItemsByCategory returns a copy of the items in category, in table order.
func (d *Dataset) ItemsByCategory(category model.Category) []model.Item {
	src := d.byCategory[category]
	out := make([]model.Item, len(src))
	copy(out, src)
	return out
}

// Categories returns categories in first-appearance order.
func (d *Dataset) Categories() []model.Category {
	out := make([]model.Category, len(d.categories))
	copy(out, d.categories)
	return out
}

// Len returns the number of items in the table.
func (d *Dataset) Len() int {
	return len(d.items)
}

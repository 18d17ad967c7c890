package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/flashdrill/internal/model"
)

func TestBuiltinCategories(t *testing.T) {
	d := Builtin()
	assert.Equal(t, []model.Category{"animals", "food", "verbs"}, d.Categories())
	assert.Len(t, d.ItemsByCategory("animals"), 5)
	assert.Equal(t, 15, d.Len())
	assert.Empty(t, d.ItemsByCategory("colors"))
}

func TestItemsByCategoryReturnsCopy(t *testing.T) {
	d := Builtin()
	items := d.ItemsByCategory("food")
	items[0].Prompt = "changed"
	assert.Equal(t, "la manzana", d.ItemsByCategory("food")[0].Prompt)
}

func TestNewRejectsInvalidItems(t *testing.T) {
	_, err := New([]model.Item{{Category: "x", Prompt: "", Answer: "a", Distractors: []string{"b"}}})
	assert.ErrorIs(t, err, ErrInvalidDeck)

	_, err = New([]model.Item{{Category: "x", Prompt: "p", Answer: "a", Distractors: []string{"a", " "}}})
	assert.ErrorIs(t, err, ErrInvalidDeck, "only the answer as distractor leaves none")

	dup := model.Item{Category: "x", Prompt: "p", Answer: "a", Distractors: []string{"b"}}
	_, err = New([]model.Item{dup, dup})
	assert.ErrorIs(t, err, ErrInvalidDeck)
}

func TestNormalizeDropsAnswerAndDuplicateDistractors(t *testing.T) {
	d, err := New([]model.Item{{Category: " x ", Prompt: " p ", Answer: "a", Distractors: []string{"b", "a", "b", "c"}}})
	require.NoError(t, err)
	items := d.ItemsByCategory("x")
	require.Len(t, items, 1)
	assert.Equal(t, "p", items[0].Prompt)
	assert.Equal(t, []string{"b", "c"}, items[0].Distractors)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	content := `items:
  - category: colors
    prompt: rojo
    answer: red
    distractors: [blue, green]
  - category: colors
    prompt: azul
    answer: blue
    distractors: [red]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []model.Category{"colors"}, d.Categories())
	assert.Equal(t, "red", d.ItemsByCategory("colors")[0].Answer)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("items: [[["), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidDeck)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("items: []\n"), 0o644))
	_, err = LoadFile(empty)
	assert.ErrorIs(t, err, ErrInvalidDeck)
}

func TestLoadEmptyPathUsesBuiltin(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Len())
}

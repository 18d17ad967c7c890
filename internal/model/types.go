// Package model defines shared data structures.
package model

import "time"

// Category names a group of vocabulary items.
type Category string

// Item is one vocabulary entry. Identity is the (Category, Prompt) pair.
type Item struct {
	Category    Category `json:"category" yaml:"category" validate:"required"`
	Prompt      string   `json:"prompt" yaml:"prompt" validate:"required"`
	Answer      string   `json:"answer" yaml:"answer" validate:"required"`
	Distractors []string `json:"distractors" yaml:"distractors" validate:"min=1,dive,required"`
}

// ItemKey is the identity of an Item within the dataset.
type ItemKey struct {
	Category Category
	Prompt   string
}

// Key returns the identity key used for dedup and removal.
func (it Item) Key() ItemKey {
	return ItemKey{Category: it.Category, Prompt: it.Prompt}
}

// Outcome is the scored result of a single answer.
type Outcome int

const (
	OutcomeCorrect Outcome = iota
	OutcomeIncorrect
)

// OutcomeOf maps a boolean score to an Outcome.
func OutcomeOf(correct bool) Outcome {
	if correct {
		return OutcomeCorrect
	}
	return OutcomeIncorrect
}

// Tally counts answers scored in one session or quiz run.
type Tally struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Total returns the number of scored answers.
func (t Tally) Total() int {
	return t.Correct + t.Incorrect
}

// Add returns a copy of t with one more answer of the given outcome.
func (t Tally) Add(o Outcome) Tally {
	if o == OutcomeCorrect {
		t.Correct++
	} else {
		t.Incorrect++
	}
	return t
}

// Accuracy returns round(100*correct/(correct+incorrect)), or 0 when nothing was scored.
func (t Tally) Accuracy() int {
	return Accuracy(t.Correct, t.Incorrect)
}

// Accuracy computes a rounded percentage, defined as 0 for an empty denominator.
func Accuracy(correct, incorrect int) int {
	den := correct + incorrect
	if den <= 0 {
		return 0
	}
	return int(float64(correct)*100/float64(den) + 0.5)
}

// CategoryStats holds persisted per-category counters.
type CategoryStats struct {
	Studied   int `json:"studied"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Accuracy returns the rounded accuracy for the category.
func (c CategoryStats) Accuracy() int {
	return Accuracy(c.Correct, c.Incorrect)
}

// Mode identifies the kind of drill a session runs.
type Mode string

const (
	ModeStudy     Mode = "study"
	ModeRedo      Mode = "redo"
	ModeQuizMC    Mode = "multiple-choice"
	ModeQuizBlank Mode = "fill-blank"
)

// Config defines resolved application settings.
type Config struct {
	AdvanceDelay     time.Duration `validate:"gt=0,lte=5s"`
	RedoAdvanceDelay time.Duration `validate:"gt=0,lte=5s"`
	Seed             *int64
	DatasetPath      string
	DBPath           string `validate:"required"`
	LogLevel         string `validate:"oneof=debug info warn error"`
	LogFile          string
}

// SessionSummary captures a completed drill for the history table.
type SessionSummary struct {
	ID        string
	Mode      Mode
	Category  Category
	StartedAt time.Time
	EndedAt   time.Time
	Tally     Tally
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	ID        string
	Mode      Mode
	Category  Category
	EndedAt   time.Time
	Correct   int
	Incorrect int
}

// HistoryFilter narrows the sessions returned from history.
type HistoryFilter struct {
	Category Category
	Since    *time.Time
	Last     int
}

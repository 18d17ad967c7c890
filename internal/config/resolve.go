package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/flashdrill/internal/model"
)

// ErrInvalidConfig reports a resolved configuration that failed validation.
var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultAdvanceDelay     = time.Second
	DefaultRedoAdvanceDelay = 300 * time.Millisecond
	DefaultLogLevel         = "warn"
)

// Flag names shared by the CLI and the file merge.
const (
	FlagAdvanceDelay     = "advance-delay"
	FlagRedoAdvanceDelay = "redo-advance-delay"
	FlagSeed             = "seed"
	FlagDataset          = "dataset"
	FlagDB               = "db"
	FlagLogLevel         = "log-level"
	FlagLogFile          = "log-file"
)

var validate = validator.New()

// Defaults returns the settings used when neither flags nor file set a value.
func Defaults() model.Config {
	return model.Config{
		AdvanceDelay:     DefaultAdvanceDelay,
		RedoAdvanceDelay: DefaultRedoAdvanceDelay,
		DBPath:           DefaultDBPath(),
		LogLevel:         DefaultLogLevel,
	}
}

// Apply copies values set in fc into cfg unless changed reports that the
// matching flag was given on the command line.
func Apply(fc FileConfig, cfg *model.Config, changed func(name string) bool) {
	if changed == nil {
		changed = func(string) bool { return false }
	}
	if v := fc.Session.AdvanceDelay; v != nil && !changed(FlagAdvanceDelay) {
		cfg.AdvanceDelay = v.Duration
	}
	if v := fc.Session.RedoAdvanceDelay; v != nil && !changed(FlagRedoAdvanceDelay) {
		cfg.RedoAdvanceDelay = v.Duration
	}
	if v := fc.Session.Seed; v != nil && !changed(FlagSeed) {
		seed := *v
		cfg.Seed = &seed
	}
	applyString(changed, FlagDataset, &cfg.DatasetPath, fc.Storage.Dataset)
	applyString(changed, FlagDB, &cfg.DBPath, fc.Storage.DB)
	applyString(changed, FlagLogLevel, &cfg.LogLevel, fc.Log.Level)
	applyString(changed, FlagLogFile, &cfg.LogFile, fc.Log.File)
}

func applyString(changed func(string) bool, name string, target, value *string) {
	if value == nil {
		return
	}
	if changed(name) {
		return
	}
	*target = *value
}

// Validate checks cfg against its struct constraints.
func Validate(cfg model.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.StructField() {
	case "AdvanceDelay":
		return "--" + FlagAdvanceDelay + " must be greater than 0 and at most 5s"
	case "RedoAdvanceDelay":
		return "--" + FlagRedoAdvanceDelay + " must be greater than 0 and at most 5s"
	case "DBPath":
		return "--" + FlagDB + " must not be empty"
	case "LogLevel":
		return "--" + FlagLogLevel + " must be one of debug, info, warn, error"
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}

// Template returns the commented file written by `flashdrill config`.
func Template() string {
	return fmt.Sprintf(`# flashdrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# advance-delay = %q        # Pause after scoring before the next card (max 5s)
# redo-advance-delay = %q # Pause between redo cards
# seed = 42                   # Fixed shuffle seed for reproducible decks

[storage]
# dataset = "~/decks/spanish.yaml" # YAML deck; built-in deck when unset
# db = %q

[log]
# level = %q               # debug, info, warn or error
# file = "/tmp/flashdrill.log"
`,
		DefaultAdvanceDelay.String(),
		DefaultRedoAdvanceDelay.String(),
		DefaultDBPath(),
		DefaultLogLevel,
	)
}

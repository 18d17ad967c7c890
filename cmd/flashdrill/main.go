// Package main provides the CLI entrypoint for flashdrill.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/flashdrill/internal/config"
	"github.com/verte-zerg/flashdrill/internal/dataset"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/stats"
	"github.com/verte-zerg/flashdrill/internal/tui"
)

const (
	defaultCurveWindow = 5
	defaultWeakTop     = 3
)

type rootFlags struct {
	advanceDelay     time.Duration
	redoAdvanceDelay time.Duration
	seed             int64
	dataset          string
	db               string
	logLevel         string
	logFile          string
}

var flags rootFlags

var (
	studyCategory string
	quizCategory  string
	quizType      string
	missedClear   bool

	statsCategory    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsReset       bool
	statsColor       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flashdrill",
		Short:         "TUI vocabulary flashcard trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runMenuCmd,
	}

	defaults := config.Defaults()
	pf := rootCmd.PersistentFlags()
	pf.DurationVar(&flags.advanceDelay, config.FlagAdvanceDelay, defaults.AdvanceDelay, "pause after scoring before the next card")
	pf.DurationVar(&flags.redoAdvanceDelay, config.FlagRedoAdvanceDelay, defaults.RedoAdvanceDelay, "pause between redo cards")
	pf.Int64Var(&flags.seed, config.FlagSeed, 0, "shuffle seed for a reproducible deck order")
	pf.StringVar(&flags.dataset, config.FlagDataset, "", "path to a YAML deck (default: built-in deck)")
	pf.StringVar(&flags.db, config.FlagDB, defaults.DBPath, "path to the SQLite database")
	pf.StringVar(&flags.logLevel, config.FlagLogLevel, defaults.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFile, config.FlagLogFile, "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newStudyCmd())
	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newRedoCmd())
	rootCmd.AddCommand(newMissedCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolveConfig merges defaults, the config file and explicit flags.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := model.Config{
		AdvanceDelay:     flags.advanceDelay,
		RedoAdvanceDelay: flags.redoAdvanceDelay,
		DatasetPath:      flags.dataset,
		DBPath:           flags.db,
		LogLevel:         flags.logLevel,
		LogFile:          flags.logFile,
	}
	if cmd.Flags().Changed(config.FlagSeed) {
		seed := flags.seed
		cfg.Seed = &seed
	}
	config.Apply(fileCfg, &cfg, cmd.Flags().Changed)
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runMenuCmd(cmd *cobra.Command, _ []string) error {
	return runTUI(cmd, tui.Start{})
}

func newStudyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Flip through a category's cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if studyCategory == "" {
				return runTUI(cmd, tui.Start{})
			}
			return runTUI(cmd, tui.Start{Mode: model.ModeStudy, Category: model.Category(studyCategory)})
		},
	}
	cmd.Flags().StringVar(&studyCategory, "category", "", "category to study (default: open the menu)")
	return cmd
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz a category with multiple choice or fill-in answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := parseQuizType(quizType)
			if err != nil {
				return err
			}
			if quizCategory == "" {
				return fmt.Errorf("--category is required")
			}
			return runTUI(cmd, tui.Start{Mode: mode, Category: model.Category(quizCategory)})
		},
	}
	cmd.Flags().StringVar(&quizCategory, "category", "", "category to quiz")
	cmd.Flags().StringVar(&quizType, "type", string(model.ModeQuizMC), "quiz type (multiple-choice, fill-blank)")
	return cmd
}

func parseQuizType(v string) (model.Mode, error) {
	switch model.Mode(strings.ToLower(strings.TrimSpace(v))) {
	case model.ModeQuizMC, "mc":
		return model.ModeQuizMC, nil
	case model.ModeQuizBlank, "blank":
		return model.ModeQuizBlank, nil
	default:
		return "", fmt.Errorf("unknown quiz type %q (want multiple-choice or fill-blank)", v)
	}
}

func newRedoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Drill the cards you previously missed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, tui.Start{Mode: model.ModeRedo})
		},
	}
}

func runTUI(cmd *cobra.Command, start tui.Start) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if start.Mode == model.ModeRedo && !a.missed.HasItems() {
		logErrln("No missed cards to redo.")
		return nil
	}

	m := tui.NewModel(tui.Deps{
		Deck:     a.deck,
		Missed:   a.missed,
		Progress: a.progress,
		History:  a.store,
		Config:   cfg,
		Logger:   a.log,
	}, start)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newMissedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missed",
		Short: "List or clear the cards queued for redo",
		Args:  cobra.NoArgs,
		RunE:  runMissedCmd,
	}
	cmd.Flags().BoolVar(&missedClear, "clear", false, "clear all wrong cards")
	return cmd
}

func runMissedCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	if missedClear {
		n := a.missed.Len()
		a.missed.Clear(context.Background())
		_, err := fmt.Fprintf(out, "Cleared %d missed cards.\n", n)
		return err
	}
	items := a.missed.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No missed cards.")
		return err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", it.Category, it.Prompt, it.Answer); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress and session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsCategory, "category", "", "limit session history to a category")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsReset, "reset", false, "reset progress counters and session history")
	cmd.Flags().BoolVar(&statsColor, "color", false, "force coloured output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	if statsReset {
		a.progress.Reset(ctx)
		if err := a.store.DeleteSessions(ctx); err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		_, err := fmt.Fprintln(out, "Progress reset.")
		return err
	}

	report, err := stats.BuildReport(ctx, a.store, a.progress, model.HistoryFilter{
		Category: model.Category(statsCategory),
		Since:    sinceTime,
		Last:     statsLast,
	}, defaultWeakTop)
	if err != nil {
		return err
	}
	width := 0
	if f, ok := out.(*os.File); ok {
		width = stats.TerminalWidth(f)
	}
	return stats.Render(out, report, stats.RenderOptions{
		CurveWindow: statsCurveWindow,
		Width:       width,
		Color:       stats.ShouldUseColor(out, statsColor),
	})
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List deck categories",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesCmd,
	}
}

func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	deck, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	for _, c := range deck.Categories() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", c, len(deck.ItemsByCategory(c))); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return errors.New("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

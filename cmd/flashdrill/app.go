package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/verte-zerg/flashdrill/internal/dataset"
	"github.com/verte-zerg/flashdrill/internal/incorrect"
	"github.com/verte-zerg/flashdrill/internal/logger"
	"github.com/verte-zerg/flashdrill/internal/model"
	"github.com/verte-zerg/flashdrill/internal/progress"
	"github.com/verte-zerg/flashdrill/internal/store"
)

// app holds the opened stores shared by every command.
type app struct {
	log      *slog.Logger
	logFile  *os.File
	store    *store.Store
	deck     *dataset.Dataset
	missed   *incorrect.Store
	progress *progress.Store
}

func openApp(cfg model.Config) (*app, error) {
	a := &app{}
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.logFile = f
		w = f
	}
	a.log = logger.Setup(cfg.LogLevel, w)

	deck, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	a.deck = deck

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st

	ctx := context.Background()
	a.missed = incorrect.New(st, a.log)
	a.missed.Load(ctx)
	a.progress = progress.New(st, a.log)
	a.progress.Load(ctx)
	a.log.Debug("stores loaded", "db", cfg.DBPath, "missed", a.missed.Len(), "categories", len(deck.Categories()), "items", deck.Len())
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); cerr != nil {
			// Best-effort log file close.
			_ = cerr
		}
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/export"
	"github.com/joseph-ayodele/order-extractor/internal/pipeline"
	"github.com/joseph-ayodele/order-extractor/internal/profiles"
	"github.com/joseph-ayodele/order-extractor/internal/repository"
	"github.com/joseph-ayodele/order-extractor/internal/textextract"
)

// app is what a command needs to process documents.
type app struct {
	registry *profiles.Registry
	text     *textextract.Extractor
	db       *repository.DB
	proc     *pipeline.Processor
}

type appOptions struct {
	history bool   // record runs in the database
	outDir  string // "" writes no workbooks
}

func newApp(ctx context.Context, o appOptions) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := profiles.NewRegistry(logger)
	if _, err := registry.LoadDir(cfg.Profiles.Dir); err != nil {
		// broken files are logged by the registry; the valid ones are usable
		logger.Warn("some profiles failed to load", "dir", cfg.Profiles.Dir, "error", err)
	}

	text := textextract.NewExtractor(textextract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Backend:       cfg.Extract.Backend,
		Mode:          textextract.Mode(cfg.Extract.TextMode),
		LineTolerance: cfg.Extract.LineTolerance,
		MaxPages:      cfg.Extract.MaxPages,
		Timeout:       cfg.Extract.Timeout,
	}, logger)

	opts := []pipeline.Option{
		pipeline.WithDefaultProfile(cfg.Profiles.Default),
		pipeline.WithEngineOptions(
			engine.WithEANThreshold(cfg.Engine.EANThreshold),
			engine.WithLineTolerance(cfg.Extract.LineTolerance),
		),
	}
	if o.outDir != "" {
		opts = append(opts, pipeline.WithOutput(export.NewService(logger), o.outDir))
	}

	a := &app{registry: registry, text: text}
	if o.history {
		db, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
			db.Close()
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		opts = append(opts, pipeline.WithRuns(repository.NewRunRepository(db, logger)))
	}

	a.proc = pipeline.NewProcessor(logger, text, registry, opts...)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// Command orderd watches an inbox directory, extracts every purchase order that lands in it
// and serves the run history over gRPC.
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/order-extractor/internal/async"
	"github.com/joseph-ayodele/order-extractor/internal/common"
	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/export"
	"github.com/joseph-ayodele/order-extractor/internal/ingest"
	"github.com/joseph-ayodele/order-extractor/internal/pipeline"
	"github.com/joseph-ayodele/order-extractor/internal/profiles"
	repo "github.com/joseph-ayodele/order-extractor/internal/repository"
	svc "github.com/joseph-ayodele/order-extractor/internal/server"
	"github.com/joseph-ayodele/order-extractor/internal/textextract"
)

func main() {
	// messages with variables but no time/level; the supervisor adds both
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	registry := profiles.NewRegistry(logger)
	if n, err := registry.LoadDir(cfg.Profiles.Dir); err != nil {
		logger.Warn("some profiles failed to load", "dir", cfg.Profiles.Dir, "loaded", n, "error", err)
	}
	if _, err := registry.Get(cfg.Profiles.Default); err != nil {
		logger.Error("default profile is not registered", "profile", cfg.Profiles.Default, "error", err)
		os.Exit(2)
	}

	text := textextract.NewExtractor(textextract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Backend:       cfg.Extract.Backend,
		Mode:          textextract.Mode(cfg.Extract.TextMode),
		LineTolerance: cfg.Extract.LineTolerance,
		MaxPages:      cfg.Extract.MaxPages,
		Timeout:       cfg.Extract.Timeout,
	}, logger)

	runsRepo := repo.NewRunRepository(db, logger)
	processor := pipeline.NewProcessor(logger, text, registry,
		pipeline.WithRuns(runsRepo),
		pipeline.WithCache(cfg.Cache.TTL, cfg.Cache.Cleanup),
		pipeline.WithDefaultProfile(cfg.Profiles.Default),
		pipeline.WithOutput(export.NewService(logger), cfg.Ingest.OutputDir),
		pipeline.WithEngineOptions(
			engine.WithEANThreshold(cfg.Engine.EANThreshold),
			engine.WithLineTolerance(cfg.Extract.LineTolerance),
		),
	)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		async.WithOnDone(func(job async.Job, out *pipeline.Outcome, err error) {
			if err == nil && out.Empty() {
				logger.Warn("no tables found in document", "path", job.Path, "profile", out.Profile, "output", out.OutputPath)
			}
		}),
	)

	if err := os.MkdirAll(cfg.Ingest.InboxDir, 0o755); err != nil {
		logger.Error("failed to create inbox", "dir", cfg.Ingest.InboxDir, "error", err)
		os.Exit(1)
	}
	paths, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Ingest.InboxDir},
		InitialScan: cfg.Ingest.InitialScan,
		Debounce:    cfg.Ingest.Debounce,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to watch inbox", "dir", cfg.Ingest.InboxDir, "error", err)
		os.Exit(1)
	}
	go func() {
		for err := range watchErrs {
			logger.Error("inbox watcher error", "error", err)
		}
	}()
	go func() {
		for p := range paths {
			job := async.Job{Path: p, Profile: cfg.Profiles.Default, TraceID: uuid.NewString()}
			if err := queue.Enqueue(ctx, job); err != nil {
				logger.Warn("document not queued", "path", p, "error", err)
			}
		}
	}()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := svc.NewGRPCServer(svc.Options{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}, logger)
	svc.RegisterExtractorServer(grpcServer, svc.NewExtractorService(processor, registry, svc.History{
		Runs:     runsRepo,
		Orders:   repo.NewOrderRepository(db, logger),
		Products: repo.NewProductRepository(db, logger),
	}, logger))
	healthServer := svc.RegisterHealth(grpcServer)

	logger.Info("orderd listening",
		"addr", addr,
		"inbox", cfg.Ingest.InboxDir,
		"output", cfg.Ingest.OutputDir,
		"profile", cfg.Profiles.Default,
	)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.ProcessTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}

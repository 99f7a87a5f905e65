// Package pipeline runs one document through text extraction, a profile scan, persistence
// and workbook export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/order-extractor/constants"
	"github.com/joseph-ayodele/order-extractor/internal/common"
	"github.com/joseph-ayodele/order-extractor/internal/engine"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
	"github.com/joseph-ayodele/order-extractor/internal/export"
	"github.com/joseph-ayodele/order-extractor/internal/generic"
	"github.com/joseph-ayodele/order-extractor/internal/ingest"
	"github.com/joseph-ayodele/order-extractor/internal/profiles"
	"github.com/joseph-ayodele/order-extractor/internal/repository"
	"github.com/joseph-ayodele/order-extractor/internal/textextract"
)

// TextSource produces the lines or words of a document.
type TextSource interface {
	Lines(ctx context.Context, path string, mode textextract.Mode) (*textextract.Document, error)
	Words(ctx context.Context, path string) (*textextract.Document, error)
}

// Request names one document and the profile to read it with.
type Request struct {
	Path    string
	Profile string           // name or alias; empty selects the default profile
	Mode    textextract.Mode // line mode for line profiles; empty uses the extractor default
	Force   bool             // skip the result memo
}

// Outcome is everything produced for one document.
type Outcome struct {
	Run        *entity.Run
	Profile    string
	Kind       profiles.Kind
	Method     string
	Orders     []entity.Order
	Products   []entity.ProductRecord
	Coercions  []engine.Coercion
	Tables     *generic.Result // generic profile only
	Lines      []string        // normalized lines, the diagnostic dump
	Sheets     []export.Sheet
	OutputPath string // workbook written for this run, "" when no output dir is set
	Cached     bool
}

// Empty reports that the profile found no structured data.
func (o *Outcome) Empty() bool {
	return len(o.Orders) == 0 && len(o.Products) == 0
}

// clone copies the run and the record slices, so the copy and the memo entry never share
// anything a caller may write to.
func (o *Outcome) clone() *Outcome {
	c := *o
	if o.Run != nil {
		run := *o.Run
		if o.Run.FinishedAt != nil {
			at := *o.Run.FinishedAt
			run.FinishedAt = &at
		}
		if o.Run.ErrorMessage != nil {
			msg := *o.Run.ErrorMessage
			run.ErrorMessage = &msg
		}
		c.Run = &run
	}
	c.Orders = slices.Clone(o.Orders)
	c.Products = slices.Clone(o.Products)
	c.Coercions = slices.Clone(o.Coercions)
	c.Lines = slices.Clone(o.Lines)
	c.Sheets = slices.Clone(o.Sheets)
	return &c
}

type Option func(*Processor)

// WithRuns persists every run with its orders and products.
func WithRuns(runs repository.RunRepository) Option {
	return func(p *Processor) { p.runs = runs }
}

// WithCache memoizes outcomes by content hash and profile.
func WithCache(ttl, cleanup time.Duration) Option {
	return func(p *Processor) {
		if ttl > 0 {
			p.memo = cache.New(ttl, cleanup)
		}
	}
}

// WithEngineOptions is applied to every engine the processor builds.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(p *Processor) { p.engineOpts = append(p.engineOpts, opts...) }
}

// WithDefaultProfile is used for requests that do not name a profile.
func WithDefaultProfile(name string) Option {
	return func(p *Processor) {
		if name != "" {
			p.defaultProfile = name
		}
	}
}

// WithOutput writes a workbook per processed document into dir.
func WithOutput(exporter *export.Service, dir string) Option {
	return func(p *Processor) {
		p.exporter = exporter
		p.outputDir = dir
	}
}

// Processor coordinates text extraction, the profile scan and persistence.
type Processor struct {
	logger         *slog.Logger
	text           TextSource
	registry       *profiles.Registry
	runs           repository.RunRepository
	memo           *cache.Cache
	exporter       *export.Service
	outputDir      string
	engineOpts     []engine.Option
	defaultProfile string

	mu      sync.Mutex
	engines map[*engine.Profile]*engine.Engine
}

func NewProcessor(logger *slog.Logger, text TextSource, registry *profiles.Registry, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:         logger,
		text:           text,
		registry:       registry,
		defaultProfile: profiles.RedeBiz,
		engines:        make(map[*engine.Profile]*engine.Engine),
	}
	for _, o := range opts {
		o(p)
	}
	if p.exporter == nil && p.outputDir != "" {
		p.exporter = export.NewService(logger)
	}
	return p
}

// Process runs one document. Text extraction failures are returned as they come from the
// extractor and recorded on the run as FAILED. A request without a profile uses the one
// stored with common.WithProfile, then the processor default.
func (p *Processor) Process(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	name := req.Profile
	if name == "" {
		name = common.ProfileFromContext(ctx)
	}
	if name == "" {
		name = p.defaultProfile
	}
	entry, err := p.registry.Get(name)
	if err != nil {
		return nil, common.NewAppError("UNKNOWN_PROFILE", name, fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}

	path, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, common.WrapError(err, "abs path")
	}
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupported, filepath.Base(path))
	}
	hash, size, err := ingest.HashFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.NewAppError("NOT_FOUND", path, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "hash document")
	}

	logger := common.LoggerFromContext(ctx, p.logger).With("path", path, "profile", entry.Name)
	key := hash + "|" + entry.Name + "|" + string(req.Mode)
	if !req.Force && p.memo != nil {
		if v, ok := p.memo.Get(key); ok {
			out := v.(*Outcome).clone()
			out.Cached = true
			logger.Info("pipeline.process.cached", "run_id", out.Run.ID)
			return out, nil
		}
	}

	run := &entity.Run{
		ID:          uuid.New(),
		SourcePath:  path,
		ContentHash: hash,
		Format:      format,
		Profile:     entry.Name,
		StartedAt:   time.Now().UTC(),
		Status:      constants.RunStatusRunning,
	}
	if p.runs != nil {
		if err := p.runs.Start(ctx, run); err != nil {
			return nil, err
		}
	}
	logger = logger.With("run_id", run.ID)
	logger.Debug("pipeline.process.start", "bytes", size)

	out, err := p.scan(ctx, entry, path, req.Mode)
	if err != nil {
		logger.Error("pipeline.process.failed", "error", err)
		p.fail(ctx, run, err, logger)
		return nil, err
	}
	out.Run = run
	out.Profile = entry.Name
	out.Kind = entry.Kind

	if p.runs != nil {
		if err := p.runs.Complete(ctx, run, out.Orders, out.Products); err != nil {
			return nil, err
		}
	} else {
		finishRun(run, len(out.Orders), len(out.Products))
	}

	if p.exporter != nil && p.outputDir != "" {
		written, err := p.exporter.WriteFile(p.outputDir, path, out.Sheets)
		if err != nil {
			logger.Error("pipeline.export.failed", "error", err)
			return nil, err
		}
		out.OutputPath = written
	}

	if p.memo != nil {
		p.memo.Set(key, out.clone(), cache.DefaultExpiration)
	}
	if out.Empty() {
		logger.Warn("pipeline.process.empty", "lines", len(out.Lines))
	}
	logger.Info("pipeline.process.ok",
		"status", run.Status,
		"orders", len(out.Orders),
		"products", len(out.Products),
		"coercions", len(out.Coercions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (p *Processor) fail(ctx context.Context, run *entity.Run, cause error, logger *slog.Logger) {
	if p.runs == nil {
		return
	}
	// record the failure even when the request context is already gone
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.runs.Fail(ctx, run, cause.Error()); err != nil {
		logger.Error("pipeline.run.fail_update", "error", err)
	}
}

// finishRun sets the terminal state of a run that is not persisted.
func finishRun(run *entity.Run, orders, products int) {
	now := time.Now().UTC()
	run.Status = constants.RunStatusSucceeded
	if orders == 0 && products == 0 {
		run.Status = constants.RunStatusEmpty
	}
	run.OrderCount = orders
	run.ProductCount = products
	run.FinishedAt = &now
}

// engineFor returns a compiled engine for the profile, building it on first use.
func (p *Processor) engineFor(prof *engine.Profile) (*engine.Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.engines[prof]; ok {
		return e, nil
	}
	opts := append([]engine.Option{engine.WithLogger(p.logger)}, p.engineOpts...)
	e, err := engine.New(prof, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile profile %q: %w", prof.Name, err)
	}
	p.engines[prof] = e
	return e, nil
}

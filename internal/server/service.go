// Package server exposes the extraction pipeline and the run history over gRPC.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/order-extractor/internal/common"
	"github.com/joseph-ayodele/order-extractor/internal/pipeline"
	"github.com/joseph-ayodele/order-extractor/internal/profiles"
	"github.com/joseph-ayodele/order-extractor/internal/repository"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500

	maxPathLength    = 4096
	maxProfileLength = 64
)

// Processor runs one document.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Outcome, error)
}

// ExtractorService implements ExtractorServer.
type ExtractorService struct {
	proc     Processor
	registry *profiles.Registry
	runs     repository.RunRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// History groups the repositories behind GetRun and ListRuns. A zero History disables both.
type History struct {
	Runs     repository.RunRepository
	Orders   repository.OrderRepository
	Products repository.ProductRepository
}

func NewExtractorService(proc Processor, registry *profiles.Registry, history History, logger *slog.Logger) *ExtractorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractorService{
		proc:     proc,
		registry: registry,
		runs:     history.Runs,
		orders:   history.Orders,
		products: history.Products,
		logger:   logger,
	}
}

// Extract runs one document on the server's filesystem.
func (s *ExtractorService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	path := strings.TrimSpace(stringField(req, "path"))
	profile := strings.TrimSpace(stringField(req, "profile"))
	v := common.NewValidator().
		Field("path", path, common.Required, common.MaxLength(maxPathLength)).
		Field("profile", profile, common.MaxLength(maxProfileLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		logger.Error("invalid extract request", "error", v.ErrorMessage())
		return nil, err
	}

	out, err := s.proc.Process(common.WithProfile(ctx, profile), pipeline.Request{
		Path:    path,
		Profile: profile,
		Force:   boolField(req, "force"),
	})
	if err != nil {
		logger.Error("extract failed", "path", path, "profile", profile, "error", err)
		return nil, common.ToStatus(err)
	}

	resp := map[string]any{
		"run_id":      out.Run.ID.String(),
		"status":      string(out.Run.Status),
		"profile":     out.Profile,
		"method":      out.Method,
		"cached":      out.Cached,
		"output_path": out.OutputPath,
		"coercions":   len(out.Coercions),
		"orders":      orderValues(out.Orders),
		"products":    productValues(out.Products),
	}
	// empty results carry the normalized text so callers can see what the profile was fed
	if out.Empty() || boolField(req, "include_lines") {
		resp["lines"] = stringValues(out.Lines)
	}
	logger.Info("extract served", "path", path, "run_id", out.Run.ID, "status", out.Run.Status)
	return newStruct(resp)
}

// ListProfiles lists the selectable profiles.
func (s *ExtractorService) ListProfiles(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	entries := s.registry.List()
	return newStruct(map[string]any{"profiles": profileValues(entries)})
}

// GetRun returns one run with its orders and products.
func (s *ExtractorService) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.runs == nil {
		return nil, status.Error(codes.FailedPrecondition, "run history is disabled")
	}
	logger := common.LoggerFromContext(ctx, s.logger)
	raw := strings.TrimSpace(stringField(req, "run_id"))
	v := common.NewValidator().Field("run_id", raw, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		logger.Error("invalid run_id", "run_id", raw, "error", v.ErrorMessage())
		return nil, err
	}
	id := uuid.MustParse(raw)

	run, err := s.runs.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NotFoundError("run " + id.String() + " not found")
	}
	if err != nil {
		return nil, common.ToStatus(err)
	}
	resp := map[string]any{"run": runValue(run)}
	if s.orders != nil {
		orders, err := s.orders.ListByRun(ctx, id)
		if err != nil {
			logger.Error("failed to list run orders", "run_id", id, "error", err)
			return nil, common.ToStatus(err)
		}
		resp["orders"] = orderValues(orders)
	}
	if s.products != nil {
		products, err := s.products.ListByRun(ctx, id)
		if err != nil {
			logger.Error("failed to list run products", "run_id", id, "error", err)
			return nil, common.ToStatus(err)
		}
		resp["products"] = productValues(products)
	}
	return newStruct(resp)
}

// ListRuns returns the most recent runs, newest first.
func (s *ExtractorService) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.runs == nil {
		return nil, status.Error(codes.FailedPrecondition, "run history is disabled")
	}
	limit := int(numberField(req, "limit"))
	switch {
	case limit < 0:
		return nil, common.InvalidArgumentErrorf("limit must not be negative, got %d", limit)
	case limit == 0:
		limit = defaultRunLimit
	case limit > maxRunLimit:
		limit = maxRunLimit
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("failed to list runs", "error", err)
		return nil, common.ToStatus(err)
	}
	out := make([]any, 0, len(runs))
	for i := range runs {
		out = append(out, runValue(&runs[i]))
	}
	return newStruct(map[string]any{"runs": out})
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return st, nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func boolField(req *structpb.Struct, name string) bool {
	return req.GetFields()[name].GetBoolValue()
}

func numberField(req *structpb.Struct, name string) float64 {
	return req.GetFields()[name].GetNumberValue()
}

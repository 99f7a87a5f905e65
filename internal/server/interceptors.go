package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/order-extractor/internal/common"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-request-id"

// RequestID takes the caller's x-request-id or assigns a new one, and stores it together with
// a request-scoped logger in the context.
func RequestID(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		ctx = common.WithRequestID(ctx, id)
		ctx = common.WithLogger(ctx, logger.With("request_id", id, "method", info.FullMethod))
		return handler(ctx, req)
	}
}

// RateLimit rejects calls over the limiter's budget with ResourceExhausted.
func RateLimit(limiter *rate.Limiter, logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded", "method", info.FullMethod, "request_id", common.RequestIDFromContext(ctx))
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

// Logging logs every call with its status code and duration.
func Logging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		common.LoggerFromContext(ctx, logger).Info("grpc.call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// Options configures NewGRPCServer.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewGRPCServer builds a grpc.Server with the request id, logging and rate limit interceptors.
// A non-positive rate disables limiting.
func NewGRPCServer(opts Options, logger *slog.Logger) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{RequestID(logger), Logging(logger)}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		chain = append(chain, RateLimit(rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst), logger))
	}
	return grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
}

package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/order-extractor/constants"
	"github.com/joseph-ayodele/order-extractor/internal/common"
	"github.com/joseph-ayodele/order-extractor/internal/entity"
	"github.com/joseph-ayodele/order-extractor/internal/pipeline"
	"github.com/joseph-ayodele/order-extractor/internal/profiles"
	"github.com/joseph-ayodele/order-extractor/internal/repository"
)

type stubProcessor struct {
	mu        sync.Mutex
	out       *pipeline.Outcome
	err       error
	got       pipeline.Request
	requestID string
}

func (s *stubProcessor) Process(ctx context.Context, req pipeline.Request) (*pipeline.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = req
	s.requestID = common.RequestIDFromContext(ctx)
	return s.out, s.err
}

func (s *stubProcessor) last() (pipeline.Request, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.got, s.requestID
}

func dial(t *testing.T, svc ExtractorServer, opts Options) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer(opts, nil)
	RegisterExtractorServer(s, svc)
	RegisterHealth(s)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func sampleOutcome() *pipeline.Outcome {
	now := time.Now().UTC()
	return &pipeline.Outcome{
		Run: &entity.Run{
			ID:           uuid.New(),
			Status:       constants.RunStatusSucceeded,
			OrderCount:   1,
			ProductCount: 1,
			StartedAt:    now,
			FinishedAt:   &now,
		},
		Profile: profiles.RedeBiz,
		Method:  "text",
		Orders:  []entity.Order{{Number: "12345", Supplier: "ACME LTDA"}},
		Products: []entity.ProductRecord{{
			OrderNumber:  "12345",
			SupplierCode: 100200,
			UnitPrice:    12.5,
			Quantity:     3,
			Unit:         "CX",
			Description:  "BISCOITO RECHEADO",
			EAN:          7891234567890,
		}},
		Lines: []string{"PEDIDO DE COMPRAS 12345"},
	}
}

func TestExtract(t *testing.T) {
	proc := &stubProcessor{out: sampleOutcome()}
	client := NewExtractorClient(dial(t, NewExtractorService(proc, profiles.NewRegistry(nil), History{}, nil), Options{}))

	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDHeader, "req-1")
	var header metadata.MD
	resp, err := client.Extract(ctx, mustStruct(t, map[string]any{
		"path":    " /inbox/pedido.pdf ",
		"profile": "totvs",
		"force":   true,
	}), grpc.Header(&header))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got, reqID := proc.last()
	if diff := cmp.Diff(pipeline.Request{Path: "/inbox/pedido.pdf", Profile: "totvs", Force: true}, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if reqID != "req-1" {
		t.Errorf("expected request id %q, got %q", "req-1", reqID)
	}
	if v := header.Get(RequestIDHeader); len(v) != 1 || v[0] != "req-1" {
		t.Errorf("expected response header %q, got %v", "req-1", v)
	}

	m := resp.AsMap()
	if m["status"] != string(constants.RunStatusSucceeded) {
		t.Errorf("expected status %q, got %v", constants.RunStatusSucceeded, m["status"])
	}
	if _, ok := m["lines"]; ok {
		t.Error("expected no lines for a non-empty result")
	}
	orders := m["orders"].([]any)
	if len(orders) != 1 || orders[0].(map[string]any)["order_number"] != "12345" {
		t.Errorf("unexpected orders: %v", orders)
	}
	product := m["products"].([]any)[0].(map[string]any)
	want := map[string]any{
		"order_number":  "12345",
		"supplier_code": "100200",
		"unit_price":    12.5,
		"quantity":      float64(3),
		"unit":          "CX",
		"description":   "BISCOITO RECHEADO",
		"ean":           "7891234567890",
	}
	if diff := cmp.Diff(want, product); diff != "" {
		t.Errorf("product mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractEmptyIncludesLines(t *testing.T) {
	out := sampleOutcome()
	out.Orders, out.Products = nil, nil
	out.Run.Status = constants.RunStatusEmpty
	client := NewExtractorClient(dial(t, NewExtractorService(&stubProcessor{out: out}, profiles.NewRegistry(nil), History{}, nil), Options{}))

	resp, err := client.Extract(context.Background(), mustStruct(t, map[string]any{"path": "a.txt"}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff([]any{"PEDIDO DE COMPRAS 12345"}, resp.AsMap()["lines"]); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		req  map[string]any
		err  error
		want codes.Code
		msg  string
	}{
		{"missing path", map[string]any{}, nil, codes.InvalidArgument, "field 'path'"},
		{"blank path", map[string]any{"path": "   "}, nil, codes.InvalidArgument, "is required"},
		{"path too long", map[string]any{"path": strings.Repeat("a", maxPathLength+1)}, nil, codes.InvalidArgument, "must be at most 4096 characters"},
		{"profile too long", map[string]any{"path": "x.pdf", "profile": strings.Repeat("p", maxProfileLength+1)}, nil, codes.InvalidArgument, "field 'profile'"},
		{"not found", map[string]any{"path": "x.pdf"}, common.NewAppError("NOT_FOUND", "x.pdf", common.ErrNotFound), codes.NotFound, ""},
		{"unsupported", map[string]any{"path": "x.doc"}, common.ErrUnsupported, codes.InvalidArgument, ""},
		{"extractor", map[string]any{"path": "x.pdf"}, errors.New("pdftotext: exit status 1"), codes.Internal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &stubProcessor{err: tt.err}
			client := NewExtractorClient(dial(t, NewExtractorService(proc, profiles.NewRegistry(nil), History{}, nil), Options{}))
			_, err := client.Extract(context.Background(), mustStruct(t, tt.req))
			if got := status.Code(err); got != tt.want {
				t.Errorf("expected code %v, got %v (%v)", tt.want, got, err)
			}
			if msg := status.Convert(err).Message(); !strings.Contains(msg, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, msg)
			}
		})
	}
}

func TestListProfiles(t *testing.T) {
	client := NewExtractorClient(dial(t, NewExtractorService(&stubProcessor{}, profiles.NewRegistry(nil), History{}, nil), Options{}))
	resp, err := client.ListProfiles(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	var names []string
	for _, p := range resp.AsMap()["profiles"].([]any) {
		names = append(names, p.(map[string]any)["name"].(string))
	}
	sort.Strings(names)
	if diff := cmp.Diff([]string{profiles.Generic, profiles.Kamel, profiles.RedeBiz}, names); diff != "" {
		t.Errorf("profiles mismatch (-want +got):\n%s", diff)
	}
}

func seedHistory(t *testing.T) (History, *entity.Run) {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: "sqlite://:memory:"}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	h := History{
		Runs:     repository.NewRunRepository(db, nil),
		Orders:   repository.NewOrderRepository(db, nil),
		Products: repository.NewProductRepository(db, nil),
	}
	var last *entity.Run
	for _, src := range []string{"/inbox/a.pdf", "/inbox/b.pdf"} {
		run := &entity.Run{SourcePath: src, ContentHash: src, Format: constants.PDF, Profile: profiles.RedeBiz}
		if err := h.Runs.Start(ctx, run); err != nil {
			t.Fatalf("Start: %v", err)
		}
		out := sampleOutcome()
		if err := h.Runs.Complete(ctx, run, out.Orders, out.Products); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		last = run
	}
	return h, last
}

func TestGetRun(t *testing.T) {
	h, run := seedHistory(t)
	client := NewExtractorClient(dial(t, NewExtractorService(&stubProcessor{}, profiles.NewRegistry(nil), h, nil), Options{}))
	ctx := context.Background()

	resp, err := client.GetRun(ctx, mustStruct(t, map[string]any{"run_id": run.ID.String()}))
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	m := resp.AsMap()
	r := m["run"].(map[string]any)
	if r["id"] != run.ID.String() {
		t.Errorf("expected run id %q, got %v", run.ID, r["id"])
	}
	if r["status"] != string(constants.RunStatusSucceeded) {
		t.Errorf("expected status %q, got %v", constants.RunStatusSucceeded, r["status"])
	}
	if n := len(m["orders"].([]any)); n != 1 {
		t.Errorf("expected 1 order, got %d", n)
	}
	if n := len(m["products"].([]any)); n != 1 {
		t.Errorf("expected 1 product, got %d", n)
	}

	tests := []struct {
		name string
		id   string
		want codes.Code
		msg  string
	}{
		{"missing", "", codes.InvalidArgument, "is required"},
		{"malformed", "not-a-uuid", codes.InvalidArgument, "must be a valid UUID"},
		{"unknown", uuid.NewString(), codes.NotFound, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetRun(ctx, mustStruct(t, map[string]any{"run_id": tt.id}))
			if got := status.Code(err); got != tt.want {
				t.Errorf("expected code %v, got %v", tt.want, got)
			}
			if msg := status.Convert(err).Message(); !strings.Contains(msg, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, msg)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	h, _ := seedHistory(t)
	client := NewExtractorClient(dial(t, NewExtractorService(&stubProcessor{}, profiles.NewRegistry(nil), h, nil), Options{}))
	ctx := context.Background()

	resp, err := client.ListRuns(ctx, mustStruct(t, map[string]any{}))
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if n := len(resp.AsMap()["runs"].([]any)); n != 2 {
		t.Errorf("expected 2 runs, got %d", n)
	}

	resp, err = client.ListRuns(ctx, mustStruct(t, map[string]any{"limit": 1}))
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if n := len(resp.AsMap()["runs"].([]any)); n != 1 {
		t.Errorf("expected 1 run, got %d", n)
	}

	_, err = client.ListRuns(ctx, mustStruct(t, map[string]any{"limit": -1}))
	if got := status.Code(err); got != codes.InvalidArgument {
		t.Errorf("expected code %v, got %v", codes.InvalidArgument, got)
	}
	if msg := status.Convert(err).Message(); msg != "limit must not be negative, got -1" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestHistoryDisabled(t *testing.T) {
	client := NewExtractorClient(dial(t, NewExtractorService(&stubProcessor{}, profiles.NewRegistry(nil), History{}, nil), Options{}))
	_, err := client.ListRuns(context.Background(), &structpb.Struct{})
	if got := status.Code(err); got != codes.FailedPrecondition {
		t.Errorf("expected code %v, got %v", codes.FailedPrecondition, got)
	}
}

func TestRateLimit(t *testing.T) {
	conn := dial(t, NewExtractorService(&stubProcessor{}, profiles.NewRegistry(nil), History{}, nil),
		Options{RateLimitRPS: 0.001, RateLimitBurst: 1})
	client := NewExtractorClient(conn)
	ctx := context.Background()

	if _, err := client.ListProfiles(ctx, &structpb.Struct{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := client.ListProfiles(ctx, &structpb.Struct{})
	if got := status.Code(err); got != codes.ResourceExhausted {
		t.Errorf("expected code %v, got %v", codes.ResourceExhausted, got)
	}
}

func TestRateLimitLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	intercept := RateLimit(rate.NewLimiter(0, 0), logger)

	ctx := common.WithRequestID(context.Background(), "req-42")
	_, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: MethodListRuns}, func(context.Context, any) (any, error) {
		t.Fatal("handler must not run over the limit")
		return nil, nil
	})
	if got := status.Code(err); got != codes.ResourceExhausted {
		t.Errorf("expected code %v, got %v", codes.ResourceExhausted, got)
	}
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("expected request id in log, got %q", buf.String())
	}
}

func TestHealth(t *testing.T) {
	conn := dial(t, NewExtractorService(&stubProcessor{}, profiles.NewRegistry(nil), History{}, nil), Options{})
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.GetStatus())
	}
}

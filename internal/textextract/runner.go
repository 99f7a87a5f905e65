package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// stderr kept on a ToolError; poppler repeats one warning per broken object
const maxStderr = 512

// Runner executes one poppler invocation and returns what it wrote to stdout. Tests swap
// in a stub.
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
}

// ToolError is a poppler run that could not start or exited non-zero.
type ToolError struct {
	Tool     string
	ExitCode int // -1 when the process never ran
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// execRunner runs the poppler binaries installed on this machine.
type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	start := time.Now()
	name := filepath.Base(tool)
	logger := r.logger.With("tool", name)
	logger.Debug("textextract.run", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, tool, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	// a killed process reports "signal: killed"; the caller wants the deadline
	if err != nil && ctx.Err() != nil {
		logger.Warn("textextract.run.canceled", "elapsed_ms", elapsed, "error", ctx.Err())
		return nil, fmt.Errorf("%s: %w", name, ctx.Err())
	}
	if err != nil {
		te := &ToolError{Tool: name, ExitCode: -1, Stderr: clip(strings.TrimSpace(stderr.String()), maxStderr), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			te.ExitCode = exitErr.ExitCode()
		}
		logger.Error("textextract.run.failed",
			"exit_code", te.ExitCode,
			"elapsed_ms", elapsed,
			"stderr", te.Stderr,
			"error", err,
		)
		return nil, te
	}

	logger.Debug("textextract.run.ok", "elapsed_ms", elapsed, "stdout_bytes", stdout.Len())
	return stdout.Bytes(), nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

func TestNewLogger(t *testing.T) {
	for _, f := range []string{"", "text", "JSON"} {
		if _, err := newLogger(f, false); err != nil {
			t.Errorf("format %q: %v", f, err)
		}
	}
	if _, err := newLogger("xml", false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestVersionCommand(t *testing.T) {
	out := run(t, "version")
	if !strings.Contains(out, "order-extractor "+Version) {
		t.Errorf("expected version line, got %q", out)
	}
}

func TestProfilesCommand(t *testing.T) {
	t.Setenv("DEFAULT_PROFILE", "kamel")
	out := run(t, "profiles", "--profiles-dir", t.TempDir())
	for _, want := range []string{"redebiz", "kamel *", "generic", "mondelez"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "nota.txt")
	if err := os.WriteFile(src, []byte("nothing to see here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	out := run(t, "extract", src, "--no-history", "-o", outDir, "-p", "redebiz", "--profiles-dir", dir)
	if !strings.Contains(out, "no tables found") {
		t.Errorf("expected empty result message, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "nota_tabelas.xlsx")); err != nil {
		t.Errorf("expected workbook: %v", err)
	}
}

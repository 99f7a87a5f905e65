package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "abc")

	sum, size, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if sum != want {
		t.Errorf("expected %q, got %q", want, sum)
	}
	if size != 3 {
		t.Errorf("expected size 3, got %d", size)
	}

	if _, _, err := HashFile(filepath.Join(t.TempDir(), "missing.pdf")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestAllowedExt(t *testing.T) {
	tests := map[string]bool{
		".pdf":  true,
		"PDF":   true,
		".txt":  true,
		".xlsx": false,
		"":      false,
	}
	for ext, want := range tests {
		if got := AllowedExt(ext); got != want {
			t.Errorf("AllowedExt(%q): expected %v, got %v", ext, want, got)
		}
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "a.txt"), "PEDIDO")
	writeFile(t, filepath.Join(root, "notes.md"), "x")
	writeFile(t, filepath.Join(root, "sub", "c.PDF"), "%PDF")
	writeFile(t, filepath.Join(root, ".hidden", "d.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, ".e.pdf"), "%PDF")

	paths, _, stats, err := Discover(root, nil, true)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "c.PDF"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	if stats.Matched != 3 || stats.Failed != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	pdfOnly, _, _, err := Discover(root, []string{".pdf"}, false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(pdfOnly) != 4 {
		t.Errorf("expected 4 pdf files including hidden ones, got %q", pdfOnly)
	}
}

func TestDiscoverErrors(t *testing.T) {
	if _, _, _, err := Discover("  ", nil, true); err == nil {
		t.Error("expected error for empty root")
	}
	if _, _, _, err := Discover(filepath.Join(t.TempDir(), "nope"), nil, true); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "single.pdf")
	writeFile(t, file, "%PDF")
	paths, _, _, err := Discover(file, nil, true)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if diff := cmp.Diff([]string{file}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed")
		}
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
	return ""
}

func TestWatcherInitialScanAndEvents(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.pdf")
	writeFile(t, existing, "%PDF")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	if got := receive(t, events); got != existing {
		t.Errorf("expected initial %q, got %q", existing, got)
	}

	writeFile(t, filepath.Join(root, "ignored.xlsx"), "x")
	writeFile(t, filepath.Join(root, ".tmp.pdf"), "x")
	created := filepath.Join(root, "new.pdf")
	writeFile(t, created, "%PDF-1.4")

	if got := receive(t, events); got != created {
		t.Errorf("expected %q, got %q", created, got)
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel not closed after cancel")
		}
	}
}

func TestWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Error("expected error without roots")
	}
}

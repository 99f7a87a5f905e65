package profiles

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryResolvesAliases(t *testing.T) {
	r := NewRegistry(nil)
	tests := []struct {
		in       string
		wantName string
		wantKind Kind
	}{
		{"redebiz", RedeBiz, KindEngine},
		{"TOTVS", RedeBiz, KindEngine},
		{"Rede Biz", RedeBiz, KindEngine},
		{"rede biz - kamel", Kamel, KindEngine},
		{"mondelez", Kamel, KindEngine},
		{"pypdf2", Generic, KindGeneric},
		{" texto ", Generic, KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := r.Get(tt.in)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if e.Name != tt.wantName || e.Kind != tt.wantKind {
				t.Errorf("expected %s/%s, got %s/%s", tt.wantName, tt.wantKind, e.Name, e.Kind)
			}
		})
	}

	if _, err := r.Get("nope"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	var names []string
	for _, e := range NewRegistry(nil).List() {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{Generic, Kamel, RedeBiz}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("acme.yaml", acmeProfile)
	write("broken.yml", "name: broken\n")
	write("notes.txt", "ignored")

	r := NewRegistry(nil)
	n, err := r.LoadDir(dir)
	if n != 1 {
		t.Errorf("expected 1 loaded profile, got %d", n)
	}
	if err == nil {
		t.Error("expected error for broken profile")
	}
	e, err := r.Get("acme-foods")
	if err != nil {
		t.Fatalf("get alias: %v", err)
	}
	if e.Source != filepath.Join(dir, "acme.yaml") {
		t.Errorf("expected source %q, got %q", filepath.Join(dir, "acme.yaml"), e.Source)
	}

	if n, err := r.LoadDir(filepath.Join(dir, "missing")); n != 0 || err != nil {
		t.Errorf("expected missing dir to be ignored, got %d, %v", n, err)
	}
}

func TestRegistryReplaceDropsOldAliases(t *testing.T) {
	r := NewRegistry(nil)
	p := NewKamel()
	p.Aliases = []string{"kamel-v2"}
	if err := r.Register(Entry{Profile: p, Source: "test"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Get("mondelez"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("expected old alias to be gone, got %v", err)
	}
	if e, err := r.Get("kamel-v2"); err != nil || e.Source != "test" {
		t.Errorf("expected replaced entry, got %+v, %v", e, err)
	}
}

package profiles

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/joseph-ayodele/order-extractor/internal/engine"
)

// Kind separates profiles run by the line engine from the generic text extractor.
type Kind string

const (
	KindEngine  Kind = "engine"
	KindGeneric Kind = "generic"
)

// ErrUnknownProfile is returned by Get for names and aliases that are not registered.
var ErrUnknownProfile = errors.New("unknown profile")

// Entry is one selectable profile.
type Entry struct {
	Name        string
	Aliases     []string
	Description string
	Kind        Kind
	Input       engine.InputKind
	Source      string          // "builtin" or the file it was loaded from
	Profile     *engine.Profile // nil for KindGeneric
}

// Registry resolves profile names and aliases.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	aliases map[string]string
	logger  *slog.Logger
}

// NewRegistry returns a registry holding the built-in profiles.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		entries: make(map[string]*Entry),
		aliases: make(map[string]string),
		logger:  logger,
	}
	for _, p := range []*engine.Profile{NewRedeBiz(), NewKamel()} {
		if err := r.Register(Entry{Profile: p, Source: "builtin"}); err != nil {
			panic(err) // built-ins are static
		}
	}
	if err := r.Register(Entry{
		Name:        Generic,
		Aliases:     []string{"texto", "text", "pypdf2"},
		Description: "Generic key/value header and whitespace-split product table",
		Kind:        KindGeneric,
		Input:       engine.InputLines,
		Source:      "builtin",
	}); err != nil {
		panic(err)
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds or replaces a profile. Engine entries take name, aliases and input from the
// profile itself.
func (r *Registry) Register(e Entry) error {
	if e.Profile != nil {
		if err := e.Profile.Validate(); err != nil {
			return fmt.Errorf("profile %q: %w", e.Profile.Name, err)
		}
		e.Kind = KindEngine
		e.Name = e.Profile.Name
		e.Aliases = e.Profile.Aliases
		e.Description = e.Profile.Description
		e.Input = e.Profile.Input
	}
	name := key(e.Name)
	if name == "" {
		return errors.New("profile name is required")
	}
	if e.Kind == "" {
		e.Kind = KindGeneric
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[name]; ok {
		r.logger.Warn("profiles.replaced", "name", name, "old_source", old.Source, "new_source", e.Source)
		for _, a := range old.Aliases {
			delete(r.aliases, key(a))
		}
	}
	r.entries[name] = &e
	for _, a := range e.Aliases {
		if k := key(a); k != "" && k != name {
			r.aliases[k] = name
		}
	}
	return nil
}

// Get resolves a name or alias.
func (r *Registry) Get(name string) (*Entry, error) {
	k := key(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[k]; ok {
		return e, nil
	}
	if target, ok := r.aliases[k]; ok {
		return r.entries[target], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// List returns every entry sorted by name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadFile parses one profile file and registers it.
func (r *Registry) LoadFile(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := r.Register(Entry{Profile: p, Source: path}); err != nil {
		return nil, err
	}
	r.logger.Info("profiles.loaded", "name", p.Name, "path", path)
	return r.Get(p.Name)
}

// LoadDir registers every *.yaml / *.yml file in dir. A missing directory is not an error.
// Broken files are skipped and reported together.
func (r *Registry) LoadDir(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("profiles dir not found", "dir", dir)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read profiles dir: %w", err)
	}
	var loaded int
	var errs []error
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if _, err := r.LoadFile(filepath.Join(dir, de.Name())); err != nil {
			r.logger.Error("profiles.load.failed", "file", de.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}

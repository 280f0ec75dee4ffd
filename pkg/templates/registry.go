package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry holds the loaded task templates, indexed by name.
//
// Lookups are safe for concurrent use with Reload, so a file watcher can
// swap the template set while generation stages are running.
type Registry struct {
	dir    string
	logger *slog.Logger

	mu        sync.RWMutex
	templates map[string]*TaskTemplate
}

// NewRegistry creates a registry reading templates from dir. No templates
// are loaded until Reload is called; LoadDir does both.
func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:       dir,
		logger:    slog.Default().With("component", "templates.registry"),
		templates: make(map[string]*TaskTemplate),
	}
}

// LoadDir creates a registry and loads every template in dir.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry(dir)
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the template directory and atomically replaces the
// template set. On error the previous set is kept.
func (r *Registry) Reload() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to read template directory: %w", err)
	}

	loaded := make(map[string]*TaskTemplate)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(r.dir, name)
		tmpl, err := loadTemplateFile(path)
		if err != nil {
			return err
		}
		if _, exists := loaded[tmpl.Name]; exists {
			return fmt.Errorf("duplicate template name %q in %s", tmpl.Name, path)
		}
		loaded[tmpl.Name] = tmpl
	}

	r.mu.Lock()
	r.templates = loaded
	r.mu.Unlock()

	r.logger.Info("task templates loaded", "dir", r.dir, "count", len(loaded))
	return nil
}

func loadTemplateFile(path string) (*TaskTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var tmpl TaskTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	if tmpl.Name == "" {
		base := filepath.Base(path)
		tmpl.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template %s: %w", path, err)
	}
	return &tmpl, nil
}

// Get returns the template with the given name.
func (r *Registry) Get(name string) (*TaskTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.templates[name]
	return tmpl, ok
}

// Names returns the loaded template names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByCategory returns all templates in a category, sorted by name.
func (r *Registry) ByCategory(category string) []*TaskTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*TaskTemplate
	for _, tmpl := range r.templates {
		if tmpl.Category == category {
			matched = append(matched, tmpl)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return matched
}

// Len returns the number of loaded templates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.templates)
}

// Dir returns the directory the registry reads from.
func (r *Registry) Dir() string {
	return r.dir
}

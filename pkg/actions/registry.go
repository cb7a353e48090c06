package actions

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is a concurrency-safe collection of actions.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]*Action)}
}

// NewDefaultRegistry creates a registry with the built-in actions and,
// when dir is not empty, the custom actions in dir.
func NewDefaultRegistry(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadBuiltIn(); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := r.LoadCustomDir(dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadBuiltIn loads all embedded actions into the registry.
func (r *Registry) LoadBuiltIn() error {
	names, err := ListEmbedded()
	if err != nil {
		return err
	}

	for _, name := range names {
		a, err := LoadEmbedded(name)
		if err != nil {
			return fmt.Errorf("failed to load action %q: %w", name, err)
		}
		r.Register(a)
	}
	return nil
}

// LoadCustomDir loads actions from a directory. Custom actions replace
// built-ins of the same name.
func (r *Registry) LoadCustomDir(dir string) error {
	actions, err := LoadFromDirectory(dir)
	if err != nil {
		return err
	}
	for _, a := range actions {
		r.Register(a)
	}
	return nil
}

// Register adds or replaces an action.
func (r *Registry) Register(a *Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.Name] = a
}

// Unregister removes an action.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actions, name)
}

// Get retrieves an action by name.
func (r *Registry) Get(name string) (*Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return a, nil
}

// List returns all action names, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summaries returns the listing view of every action, sorted by name.
func (r *Registry) Summaries() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of registered actions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions)
}

// Categories groups action names by category.
func (r *Registry) Categories() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make(map[string][]string)
	for name, a := range r.actions {
		categories[a.Category] = append(categories[a.Category], name)
	}
	for cat := range categories {
		sort.Strings(categories[cat])
	}
	return categories
}

// Search finds actions whose name, category or description contains the
// query, case-insensitively.
func (r *Registry) Search(query string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var matches []string
	for name, a := range r.actions {
		if strings.Contains(strings.ToLower(name), q) ||
			strings.Contains(strings.ToLower(a.Category), q) ||
			strings.Contains(strings.ToLower(a.Description), q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}

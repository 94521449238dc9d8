package system

import "sync"

// Registry maps ruleset identifiers to their handlers and template paths.
// It is built once during startup and stays mutable for the process
// lifetime; there is no teardown. Construct with NewRegistry and inject it,
// or use the package-level extension API below.
type Registry struct {
	mu        sync.RWMutex
	handlers  map[string]Handler
	templates map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:  make(map[string]Handler),
		templates: make(map[string][]string),
	}
}

// Register inserts or overwrites the handler for a ruleset id. A nil
// handler is ignored; anything else is accepted as-is — missing optional
// capabilities surface at call time through the capability probes, not
// here.
func (r *Registry) Register(systemID string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[systemID] = h
}

// Handler looks up the handler for a ruleset id. Absence is an expected,
// user-visible condition, so the second return is a plain bool rather than
// an error.
func (r *Registry) Handler(systemID string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[systemID]
	return h, ok
}

// RegisterTemplatePaths records extra template paths a third-party adapter
// ships for its ruleset.
func (r *Registry) RegisterTemplatePaths(systemID string, paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[systemID] = append(r.templates[systemID], paths...)
}

// TemplatePaths returns the template paths registered for a ruleset id.
func (r *Registry) TemplatePaths(systemID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.templates[systemID]...)
}

// SystemIDs returns every registered ruleset id.
func (r *Registry) SystemIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	return ids
}

// defaultRegistry backs the public extension-point API used by third-party
// ruleset adapters.
var defaultRegistry = NewRegistry()

// GetSystemRegistry returns the process-wide registry instance.
func GetSystemRegistry() *Registry { return defaultRegistry }

// RegisterSystemHandler registers a handler on the process-wide registry.
func RegisterSystemHandler(systemID string, h Handler) {
	defaultRegistry.Register(systemID, h)
}

// GetSystemHandler resolves a handler from the process-wide registry.
func GetSystemHandler(systemID string) (Handler, bool) {
	return defaultRegistry.Handler(systemID)
}

// RegisterSystemTemplatePaths records template paths on the process-wide
// registry.
func RegisterSystemTemplatePaths(systemID string, paths []string) {
	defaultRegistry.RegisterTemplatePaths(systemID, paths)
}

package widgets

import (
	"context"
	"sync"
)

// Registry holds the active widgets by name. Widgets are registered at
// startup and torn down together on shutdown.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Widget
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{widgets: make(map[string]Widget)}
}

func (r *Registry) Register(w Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.widgets[w.Name()]; !exists {
		r.order = append(r.order, w.Name())
	}
	r.widgets[w.Name()] = w
}

func (r *Registry) Get(name string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[name]
	return w, ok
}

// All returns the widgets in registration order.
func (r *Registry) All() []Widget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Widget, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.widgets[name])
	}
	return out
}

func (r *Registry) StartAll(ctx context.Context) {
	for _, w := range r.All() {
		w.Start(ctx)
	}
}

// RedrawAll signals every widget to re-render its last dataset, used when a
// client-driven layout change invalidates the rendered output.
func (r *Registry) RedrawAll() {
	for _, w := range r.All() {
		w.Redraw()
	}
}

func (r *Registry) DisposeAll() {
	for _, w := range r.All() {
		w.Dispose()
	}
}

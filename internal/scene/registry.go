package scene

import (
	"context"
	"fmt"
	"slices"
)

// Options are passed to a factory when a pipeline is built.
type Options struct {
	Width  int
	Height int
}

// Factory builds an inactive pipeline. It runs off the controller
// goroutine and must not touch shared state.
type Factory func(ctx context.Context, opts Options) (Pipeline, error)

// Registry maps scene IDs to their factories.
type Registry struct {
	factories map[ID]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[ID]Factory)}
}

// Register adds or replaces the factory for id.
func (r *Registry) Register(id ID, f Factory) {
	r.factories[id] = f
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.factories[id]
	return ok
}

// IDs returns the registered IDs in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Build constructs the pipeline for id.
func (r *Registry) Build(ctx context.Context, id ID, opts Options) (Pipeline, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	p, err := f(ctx, opts)
	if err != nil {
		if p != nil {
			p.Disable()
		}
		return nil, err
	}
	return p, nil
}

package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dcshock/respipe/pipeline"
)

// Factory builds a step from its config entry. cfg is the enclosing pipeline,
// for pipeline-wide settings such as MaxDecompressedBytes.
type Factory[A any] func(ref StepRef, cfg *PipelineConfig) (pipeline.Step[A], error)

// Registry maps step names to factories. Safe for concurrent use.
type Registry[A any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[A]
}

// NewRegistry returns an empty step registry.
func NewRegistry[A any]() *Registry[A] {
	return &Registry[A]{factories: make(map[string]Factory[A])}
}

// Register adds a factory under the given name. Overwrites any existing registration.
func (r *Registry[A]) Register(name string, f Factory[A]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory[A])
	}
	r.factories[name] = f
}

// RegisterStep registers a fixed step under name; its config options are ignored
// apart from timeout.
func (r *Registry[A]) RegisterStep(name string, step pipeline.Step[A]) {
	r.Register(name, func(StepRef, *PipelineConfig) (pipeline.Step[A], error) {
		return step, nil
	})
}

// Get returns the factory for name, or nil and false if not found.
func (r *Registry[A]) Get(name string) (Factory[A], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// MustGet returns the factory for name, or panics if not found.
func (r *Registry[A]) MustGet(name string) Factory[A] {
	f, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("config: step %q not registered", name))
	}
	return f
}

// Names returns all registered step names, sorted.
func (r *Registry[A]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

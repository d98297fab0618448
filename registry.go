package dispatch

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Registry is the immutable set of resources and writers built from an
// Application. It is safe for concurrent use.
type Registry struct {
	resources []Resource
	byPath    map[string]int
	writers   []Writer

	strict bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStrictWriters makes NewRegistry fail when a method's declared return
// type has no writer. Interface return types are skipped since their
// writer depends on the runtime value.
func WithStrictWriters() RegistryOption {
	return func(r *Registry) {
		r.strict = true
	}
}

// NewRegistry validates app and freezes its resources and writers.
func NewRegistry(app Application, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		resources: slices.Clone(app.Resources()),
		writers:   slices.Clone(app.Writers()),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.byPath = make(map[string]int, len(r.resources))
	for i, res := range r.resources {
		if err := validateResource(res); err != nil {
			return nil, err
		}
		if _, dup := r.byPath[res.Path]; dup {
			return nil, fmt.Errorf("%w: duplicate resource path %q", ErrInvalidRegistration, res.Path)
		}
		r.byPath[res.Path] = i
		r.resources[i].Methods = slices.Clone(res.Methods)
	}

	for i, w := range r.writers {
		if w == nil {
			return nil, fmt.Errorf("%w: writer %d is nil", ErrInvalidRegistration, i)
		}
	}

	if r.strict {
		if err := r.checkWriters(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func validateResource(res Resource) error {
	if !strings.HasPrefix(res.Path, "/") {
		return fmt.Errorf("%w: resource path %q must start with /", ErrInvalidRegistration, res.Path)
	}
	if len(res.Methods) == 0 {
		return fmt.Errorf("%w: resource %q has no methods", ErrInvalidRegistration, res.Path)
	}
	seen := make(map[string]bool, len(res.Methods))
	for _, m := range res.Methods {
		if m.Verb == "" || m.invoke == nil {
			return fmt.Errorf("%w: resource %q has an unbound method", ErrInvalidRegistration, res.Path)
		}
		if seen[m.Verb] {
			return fmt.Errorf("%w: resource %q declares %s twice", ErrInvalidRegistration, res.Path, m.Verb)
		}
		seen[m.Verb] = true
	}
	return nil
}

func (r *Registry) checkWriters() error {
	for _, res := range r.resources {
		for _, m := range res.Methods {
			if m.Returns.Kind() == reflect.Interface {
				continue
			}
			if _, err := r.WriterFor(m.Returns, ""); err != nil {
				return fmt.Errorf("%w: %s %s returns %s: %w", ErrInvalidRegistration, m.Verb, res.Path, m.Returns, err)
			}
		}
	}
	return nil
}

// ListResources returns the registered resources in registration order.
func (r *Registry) ListResources() []Resource {
	out := make([]Resource, len(r.resources))
	for i, res := range r.resources {
		out[i] = Resource{Path: res.Path, Methods: slices.Clone(res.Methods)}
	}
	return out
}

// ListWriters returns the registered writers in registration order.
func (r *Registry) ListWriters() []Writer {
	return slices.Clone(r.writers)
}

// Lookup returns the resource registered at exactly path.
func (r *Registry) Lookup(path string) (Resource, bool) {
	i, ok := r.byPath[path]
	if !ok {
		return Resource{}, false
	}
	return r.resources[i], true
}

// WriterFor returns the first writer that accepts t for mediaType.
func (r *Registry) WriterFor(t reflect.Type, mediaType string) (Writer, error) {
	for _, w := range r.writers {
		if w.IsWriteable(t, mediaType) {
			return w, nil
		}
	}
	return nil, ErrNoWriterFound
}

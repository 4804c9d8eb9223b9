package typespec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrDuplicateSpec is returned when a type already has a registered spec.
	ErrDuplicateSpec = errors.New("spec already registered")
	// ErrNoType is returned for specs that do not name a type.
	ErrNoType = errors.New("spec has no type")
)

// Registry maps types to their declarative specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[reflect.Type]*Spec
	order []reflect.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[reflect.Type]*Spec)}
}

// Register adds specs. Registration stops at the first invalid or duplicate spec.
func (r *Registry) Register(specs ...*Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range specs {
		if s == nil || s.Type == nil {
			return ErrNoType
		}
		if _, exists := r.specs[s.Type]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateSpec, s.Type)
		}
		r.specs[s.Type] = s
		r.order = append(r.order, s.Type)
	}
	return nil
}

// MustRegister is like Register but panics on error. Intended for package init.
func (r *Registry) MustRegister(specs ...*Spec) *Registry {
	if err := r.Register(specs...); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the type spec registered for t or its element type.
func (r *Registry) Lookup(t reflect.Type) (*Spec, bool) {
	if r == nil {
		return nil, false
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[t]
	return s, ok
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]reflect.Type(nil), r.order...)
}

// Len returns the number of registered specs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}

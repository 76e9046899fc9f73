package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/saltbox/pkg/errors"
)

// Named is a thread-safe registry for storing and retrieving items by name
type Named[T any] interface {
	Register(name string, item T) error
	Get(name string) (T, error)
	List() []string
	Has(name string) bool
}

type named[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewNamed creates an empty Named registry
func NewNamed[T any]() Named[T] {
	return &named[T]{
		items: make(map[string]T),
	}
}

// Register adds an item; names are unique
func (r *named[T]) Register(name string, item T) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name)
	}

	r.items[name] = item
	return nil
}

// Get retrieves an item by name
func (r *named[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}

	return item, nil
}

// List returns all registered names in sorted order
func (r *named[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Has checks if an item is registered
func (r *named[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

// MustRegister registers an item and panics if registration fails.
// Meant for init() functions where a failure is a programming error.
func MustRegister[T any](reg Named[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}

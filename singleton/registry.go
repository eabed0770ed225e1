package singleton

import (
	"reflect"
	"slices"
	"sync"
)

// Default is the process-wide registry used by Instance.
var Default = NewRegistry()

// Registry holds at most one shared instance per type.
//
// It is intentionally:
// - type-keyed (one instance per T, no string keys)
// - append-only (no reset or replace)
// - safe for concurrent use
//
// Expected usage:
//
//	db := singleton.Of(reg, newDB)
type Registry struct {
	mu      sync.Mutex
	holders map[reflect.Type]any
	opts    options
}

// NewRegistry returns an empty registry. WithLogger is passed to every holder
// the registry creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{holders: map[reflect.Type]any{}, opts: buildOptions(opts)}
}

// Of returns r's shared instance of T, constructing it with ctor on first use.
//
// The first constructor supplied for T wins; later ones are ignored. A nil ctor
// falls back to new(T). Construction runs outside the registry lock, so ctor may
// itself call Of for other types. Calling Of for T from T's own constructor
// deadlocks.
//
// Of panics with an InitError if construction of T failed.
func Of[T any](r *Registry, ctor func() *T) *T {
	return holderFor(r, func() *Holder[T] { return New(ctor) }).Get()
}

// TryOf is Of for constructors that may fail.
func TryOf[T any](r *Registry, ctor func() (*T, error)) (*T, error) {
	return holderFor(r, func() *Holder[T] { return NewFallible(ctor) }).TryGet()
}

// Instance returns the Default registry's instance of T, built with new(T) if
// no constructor was supplied earlier.
func Instance[T any]() *T { return Of[T](Default, nil) }

// holderFor returns the holder registered for T, creating it with mk if absent.
func holderFor[T any](r *Registry, mk func() *Holder[T]) *Holder[T] {
	t := typeOf[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.holders == nil {
		r.holders = map[reflect.Type]any{}
	}
	if raw, ok := r.holders[t]; ok {
		return raw.(*Holder[T])
	}

	h := mk()
	h.opts.logger = r.opts.logger
	r.holders[t] = h
	return h
}

// Has reports whether a holder exists for t (constructed or not).
func (r *Registry) Has(t reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.holders[t]
	return ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holders)
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.holders))
	for t := range r.holders {
		names = append(names, t.String())
	}
	slices.Sort(names)
	return names
}

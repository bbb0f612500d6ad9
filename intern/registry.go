package intern

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry owns interner instances keyed by (value type, domain). It makes
// initialization order and lifetime explicit: an arena exists because some
// caller constructed it through a registry it owns, not because a package
// init ran. Types that share a domain key share the instance registered
// for them.
//
// Reflection is used only here, at construction time; the engine's hot
// paths stay statically dispatched.
type Registry struct {
	mu     sync.Mutex
	caches map[registryKey]any
}

type registryKey struct {
	typ    reflect.Type
	domain string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{caches: make(map[registryKey]any)}
}

// Global is the process-wide default registry, for callers that want the
// conventional one-cache-per-type-per-process layout without owning a
// Registry themselves.
var Global = NewRegistry()

// For returns the registry's interner for (V, domain), constructing and
// registering one on first use. The first caller's Options and Identity
// win; later callers for the same key get the existing instance and their
// arguments are ignored. Requesting an existing key with a different
// parameter view type is an error.
func For[V any, P any](r *Registry, domain string, id Identity[V, P], opt Options) (Interner[V, P], error) {
	key := registryKey{typ: reflect.TypeOf((*V)(nil)), domain: domain}

	r.mu.Lock()
	defer r.mu.Unlock()

	if got, ok := r.caches[key]; ok {
		it, ok := got.(Interner[V, P])
		if !ok {
			return nil, fmt.Errorf("intern: %v in domain %q is already registered with a different parameter view", key.typ.Elem(), domain)
		}
		return it, nil
	}

	it, err := New[V, P](id, opt)
	if err != nil {
		return nil, err
	}
	r.caches[key] = it
	return it, nil
}

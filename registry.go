package authorize

import (
	"sort"
	"sync"

	"github.com/supremind/authorize/types"
)

// guardRegistry accumulates merged guards per protected action.
// First registration and later merges are atomic under one lock; since
// Guard.Merge is associative and commutative, concurrent registrations
// converge on the same accumulated guard regardless of order.
type guardRegistry struct {
	mu     sync.Mutex
	guards map[string]Guard
}

func newGuardRegistry() *guardRegistry {
	return &guardRegistry{guards: make(map[string]Guard)}
}

func (r *guardRegistry) merge(name string, g Guard) Guard {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.guards[name]; ok {
		g = cur.Merge(g)
	}
	r.guards[name] = g
	return g
}

func (r *guardRegistry) lookup(name string) (Guard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.guards[name]
	return g, ok
}

// classRegistry holds the known resource classes. Keys are derived
// lazily on first use and rebuilt after new registrations, with
// double-checked locking so concurrent readers never observe a
// half-built map.
type classRegistry struct {
	mu         sync.RWMutex
	keyOf      types.KeyFunc
	prototypes []interface{}
	keys       map[string]interface{}
}

func newClassRegistry(keyOf types.KeyFunc) *classRegistry {
	return &classRegistry{keyOf: keyOf}
}

func (r *classRegistry) register(protos ...interface{}) {
	if len(protos) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prototypes = append(r.prototypes, protos...)
	r.keys = nil
}

func (r *classRegistry) classKeys() []string {
	r.mu.RLock()
	keys := r.keys
	r.mu.RUnlock()

	if keys == nil {
		r.mu.Lock()
		if r.keys == nil {
			r.keys = make(map[string]interface{}, len(r.prototypes))
			for _, p := range r.prototypes {
				r.keys[r.keyOf(p)] = p
			}
		}
		keys = r.keys
		r.mu.Unlock()
	}

	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package lens

import (
	"sync"

	"github.com/google/uuid"
)

// Namespace is an opaque per-server display-channel token isolating one
// server's annotations from another's.
type Namespace string

// Registry lazily allocates namespaces per server id. Tokens are created
// on first reference and reused for the process lifetime; there is no
// eviction (bounded by the number of distinct servers).
type Registry struct {
	mu       sync.Mutex
	byServer map[string]Namespace
}

// NewRegistry creates an empty namespace registry.
func NewRegistry() *Registry {
	return &Registry{byServer: make(map[string]Namespace)}
}

// Get returns the namespace for a server id, allocating it on first use.
func (r *Registry) Get(serverID string) Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ns, ok := r.byServer[serverID]; ok {
		return ns
	}

	ns := Namespace(uuid.NewString())
	r.byServer[serverID] = ns
	return ns
}

// All returns a copy of the serverID -> namespace mapping.
func (r *Registry) All() map[string]Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make(map[string]Namespace, len(r.byServer))
	for id, ns := range r.byServer {
		all[id] = ns
	}
	return all
}

// Len returns the number of allocated namespaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byServer)
}

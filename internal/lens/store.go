package lens

import (
	"sync"

	"github.com/dshills/codelens/internal/event"
)

// Store caches lenses per (document, server) and owns the document
// subscription lifecycle. A document's cache entry exists from its first
// Save until the document closes; closing drops the entry, cancels the
// subscriptions, and clears every displayed annotation for the document.
type Store struct {
	mu        sync.Mutex
	cache     map[string]map[string][]Lens // path -> serverID -> lenses
	subs      map[string][]event.Subscription
	host      Host
	annotator Annotator
	registry  *Registry
	bus       *event.Bus
	onUnload  func(path string)
}

// NewStore creates an empty lens store.
func NewStore(host Host, annotator Annotator, registry *Registry, bus *event.Bus) *Store {
	return &Store{
		cache:     make(map[string]map[string][]Lens),
		subs:      make(map[string][]event.Subscription),
		host:      host,
		annotator: annotator,
		registry:  registry,
		bus:       bus,
	}
}

// OnUnload registers a hook invoked after a document's entry is dropped.
// The refresh coordinator uses it to force-clear its in-flight mark.
func (s *Store) OnUnload(fn func(path string)) {
	s.mu.Lock()
	s.onUnload = fn
	s.mu.Unlock()
}

// Save replaces the stored lens list for (doc, server). The slice is
// copied; commands resolved later reach the cache through SetCommand.
//
// The first Save for a document subscribes to its change and close
// notifications.
func (s *Store) Save(doc Document, serverID string, lenses []Lens) {
	path := doc.Path()
	copied := make([]Lens, len(lenses))
	copy(copied, lenses)

	s.mu.Lock()
	defer s.mu.Unlock()

	byServer, ok := s.cache[path]
	if !ok {
		byServer = make(map[string][]Lens)
		s.cache[path] = byServer
		s.subscribe(path)
	}
	byServer[serverID] = copied
}

// SetCommand writes a resolved command into the cached lens at index.
// Resolve responses arrive on transport goroutines; this is the only
// mutation path into a cached slice, so readers are safe behind s.mu.
// The index guard covers a Save replacing the list between the resolve
// request and its response; a late command for a stale list is dropped.
func (s *Store) SetCommand(path, serverID string, index int, cmd *Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lenses := s.cache[path][serverID]
	if index < 0 || index >= len(lenses) {
		return
	}
	lenses[index].Command = cmd
}

// Get returns the concatenation of all servers' lens lists for doc. The
// order across servers is unspecified. Returns an empty slice, never nil,
// when nothing is cached.
func (s *Store) Get(doc Document) []Lens {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []Lens{}
	for _, lenses := range s.cache[doc.Path()] {
		result = append(result, lenses...)
	}
	return result
}

// PerServer returns a copy of the per-server lens lists for a document
// path. Used by the executor, which needs (server, lens) pairs.
func (s *Store) PerServer(path string) map[string][]Lens {
	s.mu.Lock()
	defer s.mu.Unlock()

	byServer := make(map[string][]Lens, len(s.cache[path]))
	for id, lenses := range s.cache[path] {
		copied := make([]Lens, len(lenses))
		copy(copied, lenses)
		byServer[id] = copied
	}
	return byServer
}

// Clear removes displayed annotations and empties cached lens slots.
// An empty serverID targets all known namespaces; an empty path targets
// all loaded documents. Clearing never errors when no cache entry exists:
// annotations may have been attached through direct Display calls.
func (s *Store) Clear(serverID, path string) {
	var paths []string
	if path != "" {
		paths = []string{path}
	} else {
		for _, doc := range s.host.Documents() {
			paths = append(paths, doc.Path())
		}
	}

	namespaces := make(map[string]Namespace)
	if serverID != "" {
		namespaces[serverID] = s.registry.Get(serverID)
	} else {
		namespaces = s.registry.All()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A server whose lenses were saved but never rendered has no
	// namespace yet; a global clear must still empty its cache slot.
	if serverID == "" {
		for _, p := range paths {
			for id := range s.cache[p] {
				if _, ok := namespaces[id]; !ok {
					namespaces[id] = s.registry.Get(id)
				}
			}
		}
	}

	for _, p := range paths {
		for id, ns := range namespaces {
			s.annotator.ClearAll(p, ns)
			if byServer, ok := s.cache[p]; ok {
				if _, cached := byServer[id]; cached {
					byServer[id] = []Lens{}
				}
			}
		}
	}
}

// subscribe registers change and close handlers for a document path.
// Caller holds s.mu.
func (s *Store) subscribe(path string) {
	changed := s.bus.Subscribe(event.TopicDocumentChanged, func(env event.Envelope) {
		change, ok := env.Payload.(event.DocumentChange)
		if !ok || change.Path != path {
			return
		}
		s.clearLines(path, change.StartLine, change.EndLine)
	})

	closed := s.bus.Subscribe(event.TopicDocumentClosed, func(env event.Envelope) {
		closeEv, ok := env.Payload.(event.DocumentClose)
		if !ok || closeEv.Path != path {
			return
		}
		s.drop(path)
	})

	s.subs[path] = []event.Subscription{changed, closed}
}

// clearLines removes displayed annotations on the edited lines so stale
// visual state never persists past an edit. The cache itself keeps the
// lenses; the next refresh replaces them.
func (s *Store) clearLines(path string, startLine, endLine int) {
	for _, ns := range s.registry.All() {
		for line := startLine; line <= endLine; line++ {
			s.annotator.ClearLine(path, ns, line)
		}
	}
}

// drop tears down a document: cache entry, subscriptions, annotations,
// and the refresh coordinator's in-flight mark via the unload hook.
func (s *Store) drop(path string) {
	s.mu.Lock()
	delete(s.cache, path)
	subs := s.subs[path]
	delete(s.subs, path)
	onUnload := s.onUnload
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	for _, ns := range s.registry.All() {
		s.annotator.ClearAll(path, ns)
	}
	if onUnload != nil {
		onUnload(path)
	}
}

// Cached reports whether a cache entry exists for the document path.
func (s *Store) Cached(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[path]
	return ok
}

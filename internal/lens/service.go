package lens

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/dshills/codelens/internal/event"
	"github.com/dshills/codelens/internal/logging"
)

// Service is the subsystem facade. It owns the connection registry and
// wires the store, renderer, resolver, refresh coordinator, and executor
// together. All state is held by the Service instance, so tests can
// construct a fresh one per case.
type Service struct {
	mu    sync.RWMutex
	conns map[string]Connection

	host      Host
	annotator Annotator
	ui        Interactor
	log       *logging.Logger
	defaults  DisplayOptions

	registry  *Registry
	store     *Store
	renderer  *Renderer
	resolver  *Resolver
	refresher *RefreshCoordinator
	executor  *Executor
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger used by the pipeline.
func WithLogger(log *logging.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithDisplayOptions sets the default display options used by Refresh
// when the call does not carry its own.
func WithDisplayOptions(opts DisplayOptions) Option {
	return func(s *Service) {
		s.defaults = opts
	}
}

// New creates a fully wired lens service. All four collaborator ports
// are required.
func New(host Host, annotator Annotator, ui Interactor, bus *event.Bus, opts ...Option) *Service {
	if host == nil {
		panic("lens: nil host")
	}
	if annotator == nil {
		panic("lens: nil annotator")
	}
	if ui == nil {
		panic("lens: nil interactor")
	}
	if bus == nil {
		panic("lens: nil event bus")
	}

	s := &Service{
		conns:     make(map[string]Connection),
		host:      host,
		annotator: annotator,
		ui:        ui,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registry = NewRegistry()
	s.store = NewStore(host, annotator, s.registry, bus)
	s.renderer = NewRenderer(annotator, s.registry)
	s.resolver = NewResolver(s.renderer, s.store, s.log)
	s.refresher = NewRefreshCoordinator(host, s.Connections, s.pipeline, s.log)
	s.store.OnUnload(s.refresher.ForceClear)
	s.executor = NewExecutor(s.store, host, ui, annotator, s.registry, s.Connection,
		func() { s.Refresh(RefreshOptions{}) }, s.log)

	return s
}

// Attach registers a server connection. Its namespace is allocated on
// first display and reused for the process lifetime.
func (s *Service) Attach(conn Connection) {
	s.mu.Lock()
	s.conns[conn.ID()] = conn
	s.mu.Unlock()
}

// Detach removes a server connection. Cached lenses and annotations for
// the server remain until cleared or refreshed.
func (s *Service) Detach(serverID string) {
	s.mu.Lock()
	delete(s.conns, serverID)
	s.mu.Unlock()
}

// Connection returns the live connection for a server id.
func (s *Service) Connection(serverID string) (Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conn, ok := s.conns[serverID]
	return conn, ok
}

// Connections returns the attached connections in stable ID order.
func (s *Service) Connections() []Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	conns := make([]Connection, 0, len(ids))
	for _, id := range ids {
		conns = append(conns, s.conns[id])
	}
	return conns
}

// Get returns all cached lenses for a document; empty slice, never nil.
func (s *Service) Get(doc Document) []Lens {
	return s.store.Get(doc)
}

// Save replaces the cached lens list for (doc, server).
func (s *Service) Save(doc Document, serverID string, lenses []Lens) {
	s.store.Save(doc, serverID, lenses)
}

// Clear removes cached lenses and displayed annotations. An empty
// serverID targets all known namespaces; an empty path all loaded
// documents.
func (s *Service) Clear(serverID, path string) {
	s.store.Clear(serverID, path)
}

// Display renders lenses for a document without touching the cache: the
// direct render path. Lines containing unresolved lenses are skipped by
// the renderer's all-or-nothing rule. An empty lens list clears the
// server's namespace for the document.
func (s *Service) Display(lenses []Lens, doc Document, serverID string, opts *DisplayOptions) {
	dopts := s.displayOptions(opts)

	if len(lenses) == 0 {
		if dopts.Sink == nil {
			s.annotator.ClearAll(doc.Path(), s.registry.Get(serverID))
		}
		return
	}

	for line, indices := range groupByLine(lenses) {
		lineLenses := make([]Lens, 0, len(indices))
		for _, idx := range indices {
			lineLenses = append(lineLenses, lenses[idx])
		}
		s.renderer.RenderLine(doc, serverID, line, lineLenses, dopts)
	}
}

// RefreshOptions scope a Refresh call.
type RefreshOptions struct {
	// Document restricts the refresh to one document path. Empty means
	// every loaded document.
	Document string

	// Display overrides the service display options for this pass.
	Display *DisplayOptions
}

// Refresh runs the list -> cache -> resolve -> render pipeline. A
// document whose previous refresh is still in flight is skipped.
func (s *Service) Refresh(opts RefreshOptions) {
	s.refresher.Refresh(opts.Document, s.displayOptions(opts.Display))
}

// Run executes the lens at the current cursor position, with
// disambiguation when several lenses cover the line.
func (s *Service) Run() {
	s.executor.Run()
}

// Refreshing reports whether a refresh is in flight for a document path.
func (s *Service) Refreshing(path string) bool {
	return s.refresher.InFlight(path)
}

// HandleListResponse bridges a raw list-lenses response into
// save + display + resolve. Hosts that receive responses through their
// own transport layer call this directly.
func (s *Service) HandleListResponse(doc Document, conn Connection, result json.RawMessage, err error) {
	if err != nil {
		s.log.Error("code lens list failed: server=%s doc=%s: %v", conn.ID(), doc.Path(), err)
		return
	}
	s.pipeline(doc, conn, result, s.defaults, func() {})
}

// pipeline is the shared success path: parse, cache, eagerly render
// already-resolved lines, then resolve the rest. done fires when the
// resolve pass settles (or immediately on a parse failure).
func (s *Service) pipeline(doc Document, conn Connection, result json.RawMessage, opts DisplayOptions, done func()) {
	lenses, err := ParseLensResult(result)
	if err != nil {
		s.log.Error("code lens list unparseable: server=%s doc=%s: %v", conn.ID(), doc.Path(), err)
		done()
		return
	}

	s.store.Save(doc, conn.ID(), lenses)
	s.Display(lenses, doc, conn.ID(), &opts)
	s.resolver.Resolve(doc, conn, lenses, opts, done)
}

// displayOptions picks the per-call display options or the defaults.
func (s *Service) displayOptions(opts *DisplayOptions) DisplayOptions {
	if opts != nil {
		return *opts
	}
	return s.defaults
}

package lens

import (
	"encoding/json"
	"sync"

	"github.com/dshills/codelens/internal/logging"
)

// listHandler bridges one server's raw list response into the
// save -> display -> resolve pipeline; done must be invoked when the
// pipeline has finished with this response.
type listHandler func(doc Document, conn Connection, result json.RawMessage, opts DisplayOptions, done func())

// RefreshCoordinator deduplicates concurrent refresh requests per
// document and drives the list -> resolve -> display pipeline. At most
// one refresh is in flight per document; a second request while one is
// in flight is dropped, not queued.
//
// There is no cancellation: a never-responding server blocks further
// refreshes of its document until a late response arrives or the
// document unloads (unload force-clears the mark via ForceClear).
type RefreshCoordinator struct {
	mu       sync.Mutex
	inflight map[string]struct{}

	host   Host
	conns  func() []Connection
	handle listHandler
	log    *logging.Logger
}

// NewRefreshCoordinator creates a coordinator. conns supplies the
// currently attached connections; handle processes each successful list
// response.
func NewRefreshCoordinator(host Host, conns func() []Connection, handle listHandler, log *logging.Logger) *RefreshCoordinator {
	if log == nil {
		log = logging.Nop()
	}
	return &RefreshCoordinator{
		inflight: make(map[string]struct{}),
		host:     host,
		conns:    conns,
		handle:   handle,
		log:      log,
	}
}

// Refresh starts the pipeline for every loaded document matching the
// path filter (empty filter = all loaded documents).
func (rc *RefreshCoordinator) Refresh(pathFilter string, opts DisplayOptions) {
	for _, doc := range rc.host.Documents() {
		if pathFilter != "" && doc.Path() != pathFilter {
			continue
		}
		if !doc.Loaded() {
			continue
		}
		rc.refreshDoc(doc, opts)
	}
}

// refreshDoc lists lenses for one document from every attached server.
func (rc *RefreshCoordinator) refreshDoc(doc Document, opts DisplayOptions) {
	path := doc.Path()

	rc.mu.Lock()
	if _, busy := rc.inflight[path]; busy {
		rc.mu.Unlock()
		return
	}
	rc.inflight[path] = struct{}{}
	rc.mu.Unlock()

	conns := rc.conns()
	if len(conns) == 0 {
		rc.ForceClear(path)
		return
	}

	params := CodeLensParams{
		TextDocument: TextDocumentIdentifier{URI: FilePathToURI(path)},
	}

	for _, conn := range conns {
		conn := conn
		conn.Request(MethodCodeLens, params, func(result json.RawMessage, err error) {
			if err != nil {
				// Other servers' cached lenses for this document are
				// deliberately left untouched.
				rc.ForceClear(path)
				rc.log.Error("code lens list failed: server=%s doc=%s: %v", conn.ID(), path, err)
				return
			}
			rc.handle(doc, conn, result, opts, func() {
				rc.ForceClear(path)
			})
		})
	}
}

// InFlight reports whether a refresh is currently in flight for a path.
func (rc *RefreshCoordinator) InFlight(path string) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	_, busy := rc.inflight[path]
	return busy
}

// ForceClear drops the in-flight mark for a path. Called on pipeline
// completion, on list errors, and as part of document unload teardown.
func (rc *RefreshCoordinator) ForceClear(path string) {
	rc.mu.Lock()
	delete(rc.inflight, path)
	rc.mu.Unlock()
}

package lens

import (
	"encoding/json"
	"sync"

	"github.com/dshills/codelens/internal/logging"
)

// Resolver resolves unresolved lenses line by line via fan-out/fan-in and
// invokes the renderer only once a line's full lens set has settled.
//
// The settle machinery is a pair of named counters: each line group counts
// down its pending lenses, and the pass counts down the total. A resolve
// response lacking a command leaves the lens unresolved for the pass; the
// line still settles, but the renderer's all-or-nothing rule means it is
// simply never rendered, so any prior annotation stays visible.
type Resolver struct {
	renderer *Renderer
	store    *Store
	log      *logging.Logger
}

// NewResolver creates a resolver that renders through renderer and
// writes resolved commands into store.
func NewResolver(renderer *Renderer, store *Store, log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{renderer: renderer, store: store, log: log}
}

// resolvePass tracks one Resolve call. All counter transitions happen
// under mu because resolve callbacks may arrive on transport goroutines.
type resolvePass struct {
	mu        sync.Mutex
	remaining int
	done      func()
}

// lineState tracks the fan-in for one line group.
type lineState struct {
	line    int
	indices []int
	pending int
}

// Resolve settles every lens in lenses, rendering each line as its group
// completes, and invokes done exactly once when the whole pass has
// settled. Commands obtained from resolve responses reach the cache
// through Store.SetCommand, so later Run calls see them; the caller's
// slice is never mutated.
func (r *Resolver) Resolve(doc Document, conn Connection, lenses []Lens, opts DisplayOptions, done func()) {
	if len(lenses) == 0 {
		if done != nil {
			done()
		}
		return
	}

	// Private working copy for rendering. Responses may arrive on
	// transport goroutines; the shared cache is only touched through the
	// store's own lock.
	work := make([]Lens, len(lenses))
	copy(work, lenses)

	pass := &resolvePass{remaining: len(work), done: done}

	for line, indices := range groupByLine(work) {
		group := &lineState{line: line, indices: indices, pending: len(indices)}

		for _, idx := range indices {
			if work[idx].Resolved() {
				r.settle(pass, group, doc, conn.ID(), work, opts)
				continue
			}

			idx := idx
			conn.Request(MethodCodeLensResolve, work[idx], func(result json.RawMessage, err error) {
				if err != nil {
					r.log.Debug("lens resolve failed: server=%s doc=%s line=%d: %v",
						conn.ID(), doc.Path(), line, err)
				} else if resolved, perr := ParseLens(result); perr != nil {
					r.log.Debug("lens resolve unparseable: server=%s doc=%s line=%d: %v",
						conn.ID(), doc.Path(), line, perr)
				} else if resolved != nil && resolved.Command != nil {
					pass.mu.Lock()
					work[idx].Command = resolved.Command
					pass.mu.Unlock()
					r.store.SetCommand(doc.Path(), conn.ID(), idx, resolved.Command)
				}
				r.settle(pass, group, doc, conn.ID(), work, opts)
			})
		}
	}
}

// settle records one lens settling. When a line group reaches zero it is
// rendered (if the document is still loaded and the line in bounds) and
// its size is drained from the pass total; the pass completion fires when
// the total reaches zero.
func (r *Resolver) settle(pass *resolvePass, group *lineState, doc Document, serverID string, lenses []Lens, opts DisplayOptions) {
	pass.mu.Lock()
	group.pending--
	lineSettled := group.pending == 0
	complete := false
	if lineSettled {
		pass.remaining -= len(group.indices)
		complete = pass.remaining == 0
	}
	pass.mu.Unlock()

	if lineSettled && doc.Loaded() && group.line < doc.LineCount() {
		lineLenses := make([]Lens, 0, len(group.indices))
		for _, idx := range group.indices {
			lineLenses = append(lineLenses, lenses[idx])
		}
		r.renderer.RenderLine(doc, serverID, group.line, lineLenses, opts)
	}

	if complete && pass.done != nil {
		pass.done()
	}
}

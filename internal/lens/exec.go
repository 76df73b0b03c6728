package lens

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dshills/codelens/internal/logging"
)

// Executor finds executable lenses at the cursor, disambiguates through
// the interactive UI, executes the chosen command, and triggers a
// follow-up refresh once the server has acted.
type Executor struct {
	store     *Store
	host      Host
	ui        Interactor
	annotator Annotator
	registry  *Registry
	conn      func(serverID string) (Connection, bool)
	refresh   func()
	log       *logging.Logger
}

// NewExecutor creates an executor. conn resolves a server id to its live
// connection; refresh triggers a full refresh after command dispatch.
func NewExecutor(store *Store, host Host, ui Interactor, annotator Annotator, registry *Registry, conn func(string) (Connection, bool), refresh func(), log *logging.Logger) *Executor {
	if log == nil {
		log = logging.Nop()
	}
	return &Executor{
		store:     store,
		host:      host,
		ui:        ui,
		annotator: annotator,
		registry:  registry,
		conn:      conn,
		refresh:   refresh,
		log:       log,
	}
}

// candidate pairs an executable lens with the server that supplied it.
type candidate struct {
	serverID string
	lens     Lens
}

// Run executes the lens at the current cursor position. With several
// executable lenses covering the cursor line, the user picks one through
// a single-choice selection; cancellation is a no-op.
func (e *Executor) Run() {
	doc, line, ok := e.host.Cursor()
	if !ok {
		e.ui.Notify("code lens: no active document")
		return
	}

	candidates := e.candidatesAt(doc.Path(), line)

	switch len(candidates) {
	case 0:
		e.ui.Notify("code lens: no executable lens on this line")
	case 1:
		e.execute(candidates[0].lens, doc, candidates[0].serverID)
	default:
		items := make([]string, len(candidates))
		for i, c := range candidates {
			items[i] = c.lens.Command.Title
		}
		e.ui.Select("Code lens:", items, func(index int) {
			if index < 0 || index >= len(candidates) {
				return
			}
			e.execute(candidates[index].lens, doc, candidates[index].serverID)
		})
	}
}

// candidatesAt collects (server, lens) pairs whose range covers the line
// and whose command is dispatchable. Lenses still awaiting resolution are
// excluded. Servers are visited in sorted order so selection menus are
// deterministic.
func (e *Executor) candidatesAt(path string, line int) []candidate {
	perServer := e.store.PerServer(path)

	serverIDs := make([]string, 0, len(perServer))
	for id := range perServer {
		serverIDs = append(serverIDs, id)
	}
	sort.Strings(serverIDs)

	var candidates []candidate
	for _, id := range serverIDs {
		for _, l := range perServer[id] {
			if l.Executable() && l.Range.CoversLine(line) {
				candidates = append(candidates, candidate{serverID: id, lens: l})
			}
		}
	}
	return candidates
}

// execute clears the lens line annotation, dispatches the command, and
// refreshes once the dispatch completes, since lens state may have
// changed server-side.
//
// A server id without a live connection is a caller sequencing bug, not
// a recoverable condition: candidates come from the cache, and the cache
// outliving its connection means teardown ordering is broken upstream.
func (e *Executor) execute(l Lens, doc Document, serverID string) {
	conn, ok := e.conn(serverID)
	if !ok || !conn.Alive() {
		panic(fmt.Sprintf("codelens: execute against dead server connection %q: %v", serverID, ErrNoConnection))
	}

	ns := e.registry.Get(serverID)
	e.annotator.ClearLine(doc.Path(), ns, l.Range.Start.Line)

	params := ExecuteCommandParams{
		Command:   l.Command.Command,
		Arguments: l.Command.Arguments,
	}
	conn.Request(MethodExecuteCommand, params, func(_ json.RawMessage, err error) {
		if err != nil {
			e.log.Error("code lens command failed: server=%s command=%s: %v",
				serverID, l.Command.Command, err)
		}
		e.refresh()
	})
}

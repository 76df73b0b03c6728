// Package lens manages the lifecycle of code lens annotations: per-document
// advisory commands supplied by language-intelligence servers, shown as
// virtual text, lazily resolved, and executable at the cursor.
//
// The package coordinates the list -> cache -> resolve -> render pipeline
// against documents that may be edited or unloaded at any time, while
// deduplicating concurrent refreshes and guaranteeing that a line is never
// displayed with a mix of resolved and unresolved lenses.
//
// # Architecture
//
// The package is organized around these components:
//
//   - Service: facade owning the wiring and the connection registry
//   - Store: per-(document, server) lens cache with subscription lifecycle
//   - Registry: stable per-server display namespace allocation
//   - Renderer: converts a fully resolved line into display chunks
//   - Resolver: fan-out/fan-in resolution gating per-line rendering
//   - RefreshCoordinator: per-document refresh deduplication
//   - Executor: cursor lookup, disambiguation, and command execution
//
// # Quick Start
//
//	bus := event.NewBus("host")
//	svc := lens.New(host, annotator, ui, bus)
//	svc.Attach(conn)
//
//	svc.Refresh(lens.RefreshOptions{})   // list, resolve, and render all docs
//	svc.Run()                            // execute the lens under the cursor
//
// # Ports
//
// All host capabilities are injected interfaces (Connection, Document, Host,
// Annotator, Interactor), so the coordination logic is unit-testable with
// fake documents, fake servers, and a fake UI. The transport, buffer model,
// and presentation primitives live entirely on the host side.
//
// # Concurrency
//
// Issuing a request never blocks; responses arrive as callbacks, possibly
// on transport goroutines. All shared state is mutex guarded. Ordering
// between different documents' or servers' callbacks is unspecified; within
// one document, at most one refresh is in flight at any instant (a second
// refresh during an in-flight one is dropped, not queued).
package lens

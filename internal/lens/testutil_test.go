package lens

import (
	"encoding/json"
	"sync"
	"testing"
)

// fakeDoc is a minimal Document for tests.
type fakeDoc struct {
	path      string
	loaded    bool
	lineCount int
	indent    map[int]string
}

func newFakeDoc(path string, lineCount int) *fakeDoc {
	return &fakeDoc{path: path, loaded: true, lineCount: lineCount, indent: make(map[int]string)}
}

func (d *fakeDoc) Path() string   { return d.path }
func (d *fakeDoc) Loaded() bool   { return d.loaded }
func (d *fakeDoc) LineCount() int { return d.lineCount }

func (d *fakeDoc) Indentation(line int) string { return d.indent[line] }

// fakeHost exposes a fixed document set and cursor.
type fakeHost struct {
	docs       []Document
	cursorDoc  Document
	cursorLine int
	hasCursor  bool
}

func (h *fakeHost) Documents() []Document { return h.docs }

func (h *fakeHost) Cursor() (Document, int, bool) {
	return h.cursorDoc, h.cursorLine, h.hasCursor
}

// fakeRequest is one captured Request call awaiting a response.
type fakeRequest struct {
	method string
	params any
	done   func(json.RawMessage, error)
}

// fakeConn records requests. Responses are delivered manually through
// the captured done callbacks, or via an autoRespond handler; with async
// set, auto responses run on their own goroutine like a real transport.
type fakeConn struct {
	mu          sync.Mutex
	id          string
	alive       bool
	async       bool
	requests    []*fakeRequest
	autoRespond map[string]func(params any) (json.RawMessage, error)
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, alive: true, autoRespond: make(map[string]func(any) (json.RawMessage, error))}
}

func (c *fakeConn) ID() string  { return c.id }
func (c *fakeConn) Alive() bool { return c.alive }

func (c *fakeConn) Request(method string, params any, done func(json.RawMessage, error)) {
	c.mu.Lock()
	c.requests = append(c.requests, &fakeRequest{method: method, params: params, done: done})
	responder := c.autoRespond[method]
	c.mu.Unlock()

	if responder != nil {
		if c.async {
			go func() { done(responder(params)) }()
		} else {
			done(responder(params))
		}
	}
}

// pending returns the captured requests for a method.
func (c *fakeConn) pending(method string) []*fakeRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result []*fakeRequest
	for _, req := range c.requests {
		if req.method == method {
			result = append(result, req)
		}
	}
	return result
}

func (c *fakeConn) requestCount(method string) int {
	return len(c.pending(method))
}

// annotatorCall records one Annotator invocation.
type annotatorCall struct {
	op     string // "attach", "clearLine", "clearAll"
	path   string
	ns     Namespace
	line   int
	chunks []Chunk
	above  bool
}

// fakeAnnotator records calls and tracks the resulting annotation state.
type fakeAnnotator struct {
	mu    sync.Mutex
	calls []annotatorCall
	state map[string]map[Namespace]map[int][]Chunk
}

func newFakeAnnotator() *fakeAnnotator {
	return &fakeAnnotator{state: make(map[string]map[Namespace]map[int][]Chunk)}
}

func (a *fakeAnnotator) Attach(path string, ns Namespace, line int, chunks []Chunk, above bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, annotatorCall{op: "attach", path: path, ns: ns, line: line, chunks: chunks, above: above})
	if a.state[path] == nil {
		a.state[path] = make(map[Namespace]map[int][]Chunk)
	}
	if a.state[path][ns] == nil {
		a.state[path][ns] = make(map[int][]Chunk)
	}
	a.state[path][ns][line] = chunks
}

func (a *fakeAnnotator) ClearLine(path string, ns Namespace, line int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, annotatorCall{op: "clearLine", path: path, ns: ns, line: line})
	if a.state[path] != nil && a.state[path][ns] != nil {
		delete(a.state[path][ns], line)
	}
}

func (a *fakeAnnotator) ClearAll(path string, ns Namespace) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, annotatorCall{op: "clearAll", path: path, ns: ns})
	if a.state[path] != nil {
		delete(a.state[path], ns)
	}
}

// at returns the chunks attached at (path, ns, line), or nil.
func (a *fakeAnnotator) at(path string, ns Namespace, line int) []Chunk {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state[path] == nil || a.state[path][ns] == nil {
		return nil
	}
	return a.state[path][ns][line]
}

// lineCount returns the number of annotated lines for (path, ns).
func (a *fakeAnnotator) lineCount(path string, ns Namespace) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state[path] == nil {
		return 0
	}
	return len(a.state[path][ns])
}

func (a *fakeAnnotator) attachCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 0
	for _, call := range a.calls {
		if call.op == "attach" {
			n++
		}
	}
	return n
}

// fakeUI records notifications and captures selections.
type fakeUI struct {
	notices      []string
	selectPrompt string
	selectItems  []string
	choose       func(int)
	autoChoose   *int
}

func (u *fakeUI) Notify(message string) {
	u.notices = append(u.notices, message)
}

func (u *fakeUI) Select(prompt string, items []string, choose func(int)) {
	u.selectPrompt = prompt
	u.selectItems = items
	u.choose = choose
	if u.autoChoose != nil {
		choose(*u.autoChoose)
	}
}

// resolvedLens builds a lens with a command on the given line and column.
func resolvedLens(line, char int, title, command string) Lens {
	return Lens{
		Range: Range{
			Start: Position{Line: line, Character: char},
			End:   Position{Line: line, Character: char + 1},
		},
		Command: &Command{Title: title, Command: command},
	}
}

// stubLens builds an unresolved lens on the given line and column.
func stubLens(line, char int) Lens {
	return Lens{
		Range: Range{
			Start: Position{Line: line, Character: char},
			End:   Position{Line: line, Character: char + 1},
		},
	}
}

// chunkText flattens a chunk sequence to its display text.
func chunkText(chunks []Chunk) string {
	var out string
	for _, c := range chunks {
		out += c.Text
	}
	return out
}

// mustJSON marshals v or fails the test.
func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

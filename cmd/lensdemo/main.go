// Command lensdemo wires the lens pipeline to a scripted in-process
// server and paints the resulting annotations on a tcell screen. It
// exists to exercise the full list -> cache -> resolve -> render path
// outside a host editor; press any key to exit.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codelens/internal/annotate"
	"github.com/dshills/codelens/internal/event"
	"github.com/dshills/codelens/internal/lens"
	"github.com/dshills/codelens/internal/logging"
)

var sample = []string{
	"package demo",
	"",
	"func Build() error {",
	"\treturn nil",
	"}",
	"",
	"func Test() error {",
	"\treturn nil",
	"}",
}

// demoDoc is a fixed in-memory document.
type demoDoc struct {
	path  string
	lines []string
}

func (d *demoDoc) Path() string   { return d.path }
func (d *demoDoc) Loaded() bool   { return true }
func (d *demoDoc) LineCount() int { return len(d.lines) }

func (d *demoDoc) Indentation(line int) string {
	if line < 0 || line >= len(d.lines) {
		return ""
	}
	text := d.lines[line]
	return text[:len(text)-len(strings.TrimLeft(text, " \t"))]
}

// demoHost exposes the single document with the cursor parked on line 0.
type demoHost struct {
	doc *demoDoc
}

func (h *demoHost) Documents() []lens.Document         { return []lens.Document{h.doc} }
func (h *demoHost) Cursor() (lens.Document, int, bool) { return h.doc, 0, true }

// demoConn answers list and resolve requests from canned lenses,
// synchronously. Lenses arrive unresolved and resolve to run/test
// commands, exercising the fan-out path.
type demoConn struct {
	titles map[int]string
}

func (c *demoConn) ID() string  { return "demo" }
func (c *demoConn) Alive() bool { return true }

func (c *demoConn) Request(method string, params any, done func(json.RawMessage, error)) {
	switch method {
	case lens.MethodCodeLens:
		var lenses []lens.Lens
		for line := range c.titles {
			lenses = append(lenses, lens.Lens{
				Range: lens.Range{
					Start: lens.Position{Line: line},
					End:   lens.Position{Line: line, Character: 1},
				},
				Data: line,
			})
		}
		raw, err := json.Marshal(lenses)
		done(raw, err)

	case lens.MethodCodeLensResolve:
		stub, ok := params.(lens.Lens)
		if !ok {
			done(nil, fmt.Errorf("unexpected params %T", params))
			return
		}
		resolved := stub
		resolved.Command = &lens.Command{
			Title:   c.titles[stub.Range.Start.Line],
			Command: "demo.run",
		}
		raw, err := json.Marshal(resolved)
		done(raw, err)

	default:
		done(nil, fmt.Errorf("unsupported method %s", method))
	}
}

// demoUI drops notifications; the demo has no interactive surface.
type demoUI struct{}

func (demoUI) Notify(string) {}

func (demoUI) Select(_ string, _ []string, choose func(int)) { choose(-1) }

func main() {
	doc := &demoDoc{path: "/demo/main.go", lines: sample}
	host := &demoHost{doc: doc}
	set := annotate.NewSet()
	bus := event.NewBus("lensdemo")

	svc := lens.New(host, set, demoUI{}, bus,
		lens.WithLogger(logging.New(logging.Config{Level: logging.LevelError, Prefix: "lensdemo"})))
	svc.Attach(&demoConn{titles: map[int]string{2: "run | 3 references", 6: "run test"}})

	svc.Refresh(lens.RefreshOptions{})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lensdemo: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "lensdemo: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	painter := annotate.NewTerminal(screen)
	for line, text := range sample {
		x := 0
		for _, r := range text {
			screen.SetContent(x, line, r, nil, tcell.StyleDefault)
			x++
		}
		painter.DrawLine(set, doc.Path(), line, x+2, line)
	}
	screen.Show()

	for {
		switch screen.PollEvent().(type) {
		case *tcell.EventKey:
			return
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

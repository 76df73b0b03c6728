package lens

import (
	"testing"
)

func newRenderFixture() (*Renderer, *fakeAnnotator, *Registry) {
	ann := newFakeAnnotator()
	reg := NewRegistry()
	return NewRenderer(ann, reg), ann, reg
}

func TestRenderLineAllOrNothing(t *testing.T) {
	renderer, ann, reg := newRenderFixture()
	doc := newFakeDoc("/p/a.go", 10)
	ns := reg.Get("gopls")

	// A stale annotation from an earlier pass.
	ann.Attach(doc.Path(), ns, 2, []Chunk{{Text: "old", Kind: ChunkLens}}, false)

	lenses := []Lens{
		resolvedLens(2, 0, "run", "demo.run"),
		stubLens(2, 5),
	}
	renderer.RenderLine(doc, "gopls", 2, lenses, DisplayOptions{})

	// One unresolved lens means no side effect at all; the stale
	// annotation stays visible.
	got := ann.at(doc.Path(), ns, 2)
	if chunkText(got) != "old" {
		t.Errorf("annotation = %q, want stale %q preserved", chunkText(got), "old")
	}
}

func TestRenderLineOrderAndSeparator(t *testing.T) {
	renderer, ann, reg := newRenderFixture()
	doc := newFakeDoc("/p/a.go", 10)

	// Out of column order on purpose.
	lenses := []Lens{
		resolvedLens(0, 8, "Test", "demo.test"),
		resolvedLens(0, 0, "Build", "demo.build"),
	}
	renderer.RenderLine(doc, "gopls", 0, lenses, DisplayOptions{})

	got := ann.at(doc.Path(), reg.Get("gopls"), 0)
	if chunkText(got) != "Build | Test" {
		t.Errorf("rendered = %q, want %q", chunkText(got), "Build | Test")
	}
	if len(got) != 3 {
		t.Fatalf("chunks = %d, want 3", len(got))
	}
	if got[0].Kind != ChunkLens || got[1].Kind != ChunkSeparator || got[2].Kind != ChunkLens {
		t.Errorf("chunk kinds = %v %v %v", got[0].Kind, got[1].Kind, got[2].Kind)
	}
}

func TestRenderLineStableForEqualColumns(t *testing.T) {
	renderer, ann, reg := newRenderFixture()
	doc := newFakeDoc("/p/a.go", 10)

	lenses := []Lens{
		resolvedLens(0, 0, "first", "a"),
		resolvedLens(0, 0, "second", "b"),
	}
	renderer.RenderLine(doc, "gopls", 0, lenses, DisplayOptions{})

	got := ann.at(doc.Path(), reg.Get("gopls"), 0)
	if chunkText(got) != "first | second" {
		t.Errorf("rendered = %q, want input order kept for ties", chunkText(got))
	}
}

func TestRenderLineCollapsesWhitespace(t *testing.T) {
	renderer, ann, reg := newRenderFixture()
	doc := newFakeDoc("/p/a.go", 10)

	lenses := []Lens{resolvedLens(0, 0, "run\n\t all  tests", "demo.test")}
	renderer.RenderLine(doc, "gopls", 0, lenses, DisplayOptions{})

	got := ann.at(doc.Path(), reg.Get("gopls"), 0)
	if chunkText(got) != "run all tests" {
		t.Errorf("rendered = %q, want %q", chunkText(got), "run all tests")
	}
}

func TestRenderLineAboveMode(t *testing.T) {
	renderer, ann, reg := newRenderFixture()
	doc := newFakeDoc("/p/a.go", 10)
	doc.indent[3] = "\t\t"

	lenses := []Lens{resolvedLens(3, 0, "run", "demo.run")}
	renderer.RenderLine(doc, "gopls", 3, lenses, DisplayOptions{VirtualBlockAboveLine: true})

	got := ann.at(doc.Path(), reg.Get("gopls"), 3)
	if len(got) != 2 {
		t.Fatalf("chunks = %d, want spacer + title", len(got))
	}
	if got[0].Kind != ChunkSpacer || got[0].Text != "\t\t" {
		t.Errorf("spacer = %+v, want line indentation", got[0])
	}
	if len(ann.calls) == 0 || !ann.calls[len(ann.calls)-1].above {
		t.Error("annotation should be attached above the line")
	}
}

func TestRenderLineEmptyClearsOnly(t *testing.T) {
	renderer, ann, reg := newRenderFixture()
	doc := newFakeDoc("/p/a.go", 10)
	ns := reg.Get("gopls")
	ann.Attach(doc.Path(), ns, 2, []Chunk{{Text: "old"}}, false)

	renderer.RenderLine(doc, "gopls", 2, nil, DisplayOptions{})

	if ann.at(doc.Path(), ns, 2) != nil {
		t.Error("empty lens set should clear the line")
	}
	if ann.attachCount() != 1 {
		t.Errorf("attach count = %d, want only the setup attach", ann.attachCount())
	}
}

func TestRenderLineSinkBypassesAnnotator(t *testing.T) {
	renderer, ann, reg := newRenderFixture()
	doc := newFakeDoc("/p/a.go", 10)
	ns := reg.Get("gopls")
	ann.Attach(doc.Path(), ns, 0, []Chunk{{Text: "old"}}, false)

	var sinkPath string
	var sinkNS Namespace
	var sinkLine int
	var sinkChunks []Chunk
	opts := DisplayOptions{Sink: func(path string, ns Namespace, line int, chunks []Chunk) {
		sinkPath, sinkNS, sinkLine, sinkChunks = path, ns, line, chunks
	}}

	renderer.RenderLine(doc, "gopls", 0, []Lens{resolvedLens(0, 0, "run", "demo.run")}, opts)

	if sinkPath != doc.Path() || sinkNS != ns || sinkLine != 0 {
		t.Errorf("sink got (%q, %q, %d)", sinkPath, sinkNS, sinkLine)
	}
	if chunkText(sinkChunks) != "run" {
		t.Errorf("sink chunks = %q, want %q", chunkText(sinkChunks), "run")
	}
	// The sink owns presentation; the annotator path is skipped entirely.
	if chunkText(ann.at(doc.Path(), ns, 0)) != "old" {
		t.Error("annotator state should be untouched when a sink is set")
	}
}

func TestGroupByLine(t *testing.T) {
	lenses := []Lens{
		stubLens(0, 0),
		stubLens(3, 0),
		stubLens(0, 5),
	}
	groups := groupByLine(lenses)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if len(groups[0]) != 2 || groups[0][0] != 0 || groups[0][1] != 2 {
		t.Errorf("groups[0] = %v, want [0 2]", groups[0])
	}
	if len(groups[3]) != 1 || groups[3][0] != 1 {
		t.Errorf("groups[3] = %v, want [1]", groups[3])
	}
}

package lens

import (
	"sort"
	"strings"
)

// Separator inserted between consecutive lens titles on a line.
const chunkSeparator = " | "

// Renderer converts a line's resolved lenses into display chunks and
// hands them to the annotator or a configured sink. Rendering is
// all-or-nothing per line: a line with any unresolved lens is left
// untouched, so a previously displayed annotation stays visible rather
// than flickering through a half-resolved state.
type Renderer struct {
	annotator Annotator
	registry  *Registry
}

// NewRenderer creates a renderer backed by the given annotator.
func NewRenderer(annotator Annotator, registry *Registry) *Renderer {
	return &Renderer{annotator: annotator, registry: registry}
}

// RenderLine renders the full lens set of one line for one server.
// Aborts with no side effect unless every lens is resolved.
func (r *Renderer) RenderLine(doc Document, serverID string, line int, lenses []Lens, opts DisplayOptions) {
	for _, l := range lenses {
		if !l.Resolved() {
			return
		}
	}

	sorted := make([]Lens, len(lenses))
	copy(sorted, lenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Character < sorted[j].Range.Start.Character
	})

	chunks := make([]Chunk, 0, 2*len(sorted))
	for i, l := range sorted {
		if i > 0 {
			chunks = append(chunks, Chunk{Text: chunkSeparator, Kind: ChunkSeparator})
		}
		chunks = append(chunks, Chunk{Text: collapseWhitespace(l.Command.Title), Kind: ChunkLens})
	}

	ns := r.registry.Get(serverID)

	if opts.Sink != nil {
		opts.Sink(doc.Path(), ns, line, chunks)
		return
	}

	r.annotator.ClearLine(doc.Path(), ns, line)
	if len(chunks) == 0 {
		return
	}

	if opts.VirtualBlockAboveLine {
		spacer := Chunk{Text: doc.Indentation(line), Kind: ChunkSpacer}
		chunks = append([]Chunk{spacer}, chunks...)
	}
	r.annotator.Attach(doc.Path(), ns, line, chunks, opts.VirtualBlockAboveLine)
}

// collapseWhitespace reduces internal whitespace runs to single spaces so
// multi-line command titles render on one line.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// groupByLine buckets lenses by their start line.
func groupByLine(lenses []Lens) map[int][]int {
	groups := make(map[int][]int)
	for i, l := range lenses {
		line := l.Range.Start.Line
		groups[line] = append(groups[line], i)
	}
	return groups
}

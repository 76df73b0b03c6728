package lens

import "encoding/json"

// Connection is a live language-intelligence endpoint. Request issues an
// asynchronous request and returns immediately; done is invoked exactly
// once with the raw result or an error, possibly on another goroutine.
type Connection interface {
	// ID returns a stable identifier for this connection.
	ID() string

	// Alive reports whether the connection is still usable.
	Alive() bool

	// Request sends a request and schedules done with the response.
	Request(method string, params any, done func(result json.RawMessage, err error))
}

// Document is an open text artifact owned by the host. A document may
// become unloaded at any time; coordination code re-checks Loaded before
// touching displayed state.
type Document interface {
	// Path identifies the document. It is the cache key.
	Path() string

	// Loaded reports whether the document is still open.
	Loaded() bool

	// LineCount returns the current number of lines.
	LineCount() int

	// Indentation returns the leading whitespace of a line, used as the
	// spacer for above-line annotation blocks.
	Indentation(line int) string
}

// Host exposes the document collection and cursor of the embedding editor.
type Host interface {
	// Documents returns the currently loaded documents.
	Documents() []Document

	// Cursor returns the active document and cursor line, if any.
	Cursor() (Document, int, bool)
}

// Interactor is the host's interactive UI surface.
type Interactor interface {
	// Notify shows a user-visible notice.
	Notify(message string)

	// Select presents a single-choice selection over labelled items and
	// invokes choose with the selected index, or -1 on cancellation.
	Select(prompt string, items []string, choose func(index int))
}

// Annotator is the host's text annotation primitive: styled virtual text
// attached at a line, scoped by (document, namespace).
type Annotator interface {
	// Attach replaces the annotation at (path, ns, line). When above is
	// set the chunks render as a block above the line instead of inline
	// trailing text.
	Attach(path string, ns Namespace, line int, chunks []Chunk, above bool)

	// ClearLine removes the annotation at (path, ns, line), if any.
	ClearLine(path string, ns Namespace, line int)

	// ClearAll removes every annotation for (path, ns).
	ClearAll(path string, ns Namespace)
}

// ChunkKind classifies a display chunk for styling.
type ChunkKind uint8

const (
	// ChunkLens is a lens command title.
	ChunkLens ChunkKind = iota

	// ChunkSeparator sits between consecutive lens titles.
	ChunkSeparator

	// ChunkSpacer matches the line indentation in above-line blocks.
	ChunkSpacer
)

// String returns the string representation of the chunk kind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkLens:
		return "lens"
	case ChunkSeparator:
		return "separator"
	case ChunkSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Chunk is a single styled run of annotation text.
type Chunk struct {
	Text string
	Kind ChunkKind
}

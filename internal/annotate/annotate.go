// Package annotate implements the text annotation primitive consumed by
// the lens subsystem: styled virtual-text chunks attached to document
// lines, scoped by (document, namespace), plus a tcell painter that puts
// them on screen.
package annotate

import (
	"sort"
	"sync"

	"github.com/dshills/codelens/internal/lens"
)

// Annotation is one attached virtual-text entry.
type Annotation struct {
	// Namespace identifies the display channel that owns the entry.
	Namespace lens.Namespace

	// Line is the anchor line, zero-indexed.
	Line int

	// Chunks are the styled text runs in display order.
	Chunks []lens.Chunk

	// Above renders the chunks as a block above the line instead of
	// inline trailing text.
	Above bool
}

type setKey struct {
	path string
	ns   lens.Namespace
}

// Set is an in-memory annotation store implementing lens.Annotator. One
// annotation exists per (path, namespace, line); Attach replaces.
type Set struct {
	mu   sync.RWMutex
	anns map[setKey]map[int]Annotation
}

// NewSet creates an empty annotation set.
func NewSet() *Set {
	return &Set{anns: make(map[setKey]map[int]Annotation)}
}

// Attach replaces the annotation at (path, ns, line).
func (s *Set) Attach(path string, ns lens.Namespace, line int, chunks []lens.Chunk, above bool) {
	copied := make([]lens.Chunk, len(chunks))
	copy(copied, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := setKey{path: path, ns: ns}
	lines, ok := s.anns[key]
	if !ok {
		lines = make(map[int]Annotation)
		s.anns[key] = lines
	}
	lines[line] = Annotation{Namespace: ns, Line: line, Chunks: copied, Above: above}
}

// ClearLine removes the annotation at (path, ns, line), if any.
func (s *Set) ClearLine(path string, ns lens.Namespace, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := setKey{path: path, ns: ns}
	if lines, ok := s.anns[key]; ok {
		delete(lines, line)
		if len(lines) == 0 {
			delete(s.anns, key)
		}
	}
}

// ClearAll removes every annotation for (path, ns).
func (s *Set) ClearAll(path string, ns lens.Namespace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.anns, setKey{path: path, ns: ns})
}

// At returns the annotations anchored at a line across all namespaces,
// ordered by namespace for determinism.
func (s *Set) At(path string, line int) []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Annotation
	for key, lines := range s.anns {
		if key.path != path {
			continue
		}
		if ann, ok := lines[line]; ok {
			result = append(result, ann)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Namespace < result[j].Namespace
	})
	return result
}

// Lines returns all annotations for (path, ns) ordered by line.
func (s *Set) Lines(path string, ns lens.Namespace) []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.anns[setKey{path: path, ns: ns}]
	result := make([]Annotation, 0, len(lines))
	for _, ann := range lines {
		result = append(result, ann)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Line < result[j].Line
	})
	return result
}

// Count returns the number of annotations stored for a path across all
// namespaces.
func (s *Set) Count(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key, lines := range s.anns {
		if key.path == path {
			n += len(lines)
		}
	}
	return n
}

package annotate

import (
	"testing"

	"github.com/dshills/codelens/internal/lens"
)

func TestSetAttachReplace(t *testing.T) {
	set := NewSet()

	set.Attach("/p/a.go", "ns", 2, []lens.Chunk{{Text: "run"}}, false)
	set.Attach("/p/a.go", "ns", 2, []lens.Chunk{{Text: "run | test"}}, true)

	anns := set.At("/p/a.go", 2)
	if len(anns) != 1 {
		t.Fatalf("annotations = %d, want 1 after replace", len(anns))
	}
	if anns[0].Chunks[0].Text != "run | test" {
		t.Errorf("text = %q, want replacement", anns[0].Chunks[0].Text)
	}
	if !anns[0].Above {
		t.Error("Above not carried through replace")
	}
}

func TestSetAttachCopiesChunks(t *testing.T) {
	set := NewSet()
	chunks := []lens.Chunk{{Text: "run"}}

	set.Attach("/p/a.go", "ns", 0, chunks, false)
	chunks[0].Text = "mutated"

	if got := set.At("/p/a.go", 0)[0].Chunks[0].Text; got != "run" {
		t.Errorf("stored chunk = %q, caller mutation leaked", got)
	}
}

func TestSetClearLine(t *testing.T) {
	set := NewSet()
	set.Attach("/p/a.go", "ns", 2, []lens.Chunk{{Text: "run"}}, false)
	set.Attach("/p/a.go", "ns", 5, []lens.Chunk{{Text: "test"}}, false)

	set.ClearLine("/p/a.go", "ns", 2)

	if len(set.At("/p/a.go", 2)) != 0 {
		t.Error("line 2 not cleared")
	}
	if len(set.At("/p/a.go", 5)) != 1 {
		t.Error("line 5 should survive")
	}

	// Clearing a line that was never annotated is a no-op.
	set.ClearLine("/p/a.go", "ns", 9)
	set.ClearLine("/p/b.go", "ns", 0)
}

func TestSetClearAllScopedByNamespace(t *testing.T) {
	set := NewSet()
	set.Attach("/p/a.go", "gopls", 2, []lens.Chunk{{Text: "run"}}, false)
	set.Attach("/p/a.go", "other", 2, []lens.Chunk{{Text: "refs"}}, false)

	set.ClearAll("/p/a.go", "gopls")

	anns := set.At("/p/a.go", 2)
	if len(anns) != 1 {
		t.Fatalf("annotations = %d, want 1", len(anns))
	}
	if anns[0].Namespace != "other" {
		t.Errorf("survivor namespace = %q, want %q", anns[0].Namespace, "other")
	}
}

func TestSetAtOrderedByNamespace(t *testing.T) {
	set := NewSet()
	set.Attach("/p/a.go", "zz", 0, []lens.Chunk{{Text: "z"}}, false)
	set.Attach("/p/a.go", "aa", 0, []lens.Chunk{{Text: "a"}}, false)

	anns := set.At("/p/a.go", 0)
	if len(anns) != 2 || anns[0].Namespace != "aa" || anns[1].Namespace != "zz" {
		t.Errorf("order = %v, want sorted by namespace", anns)
	}
}

func TestSetLinesOrdered(t *testing.T) {
	set := NewSet()
	set.Attach("/p/a.go", "ns", 7, []lens.Chunk{{Text: "c"}}, false)
	set.Attach("/p/a.go", "ns", 1, []lens.Chunk{{Text: "a"}}, false)
	set.Attach("/p/a.go", "ns", 4, []lens.Chunk{{Text: "b"}}, false)

	anns := set.Lines("/p/a.go", "ns")
	if len(anns) != 3 {
		t.Fatalf("annotations = %d, want 3", len(anns))
	}
	for i, want := range []int{1, 4, 7} {
		if anns[i].Line != want {
			t.Errorf("anns[%d].Line = %d, want %d", i, anns[i].Line, want)
		}
	}
}

func TestSetCountAcrossNamespaces(t *testing.T) {
	set := NewSet()
	set.Attach("/p/a.go", "gopls", 0, []lens.Chunk{{Text: "x"}}, false)
	set.Attach("/p/a.go", "other", 3, []lens.Chunk{{Text: "y"}}, false)
	set.Attach("/p/b.go", "gopls", 0, []lens.Chunk{{Text: "z"}}, false)

	if got := set.Count("/p/a.go"); got != 2 {
		t.Errorf("Count(/p/a.go) = %d, want 2", got)
	}
	if got := set.Count("/p/b.go"); got != 1 {
		t.Errorf("Count(/p/b.go) = %d, want 1", got)
	}
	if got := set.Count("/p/c.go"); got != 0 {
		t.Errorf("Count(/p/c.go) = %d, want 0", got)
	}
}

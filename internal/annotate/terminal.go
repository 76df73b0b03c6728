package annotate

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codelens/internal/lens"
)

// Terminal paints annotations from a Set onto a tcell screen. It draws
// only; screen lifecycle (Init/Fini/Show) belongs to the host.
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal creates a painter for the given screen.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// DrawChunks draws a chunk sequence starting at (x, y) and returns the
// column after the last drawn cell.
func (t *Terminal) DrawChunks(x, y int, chunks []lens.Chunk) int {
	width, height := t.screen.Size()
	if y < 0 || y >= height {
		return x
	}

	for _, chunk := range chunks {
		style := convertStyle(ChunkStyle(chunk.Kind))
		for _, r := range chunk.Text {
			if x >= width {
				return x
			}
			t.screen.SetContent(x, y, r, nil, style)
			x++
		}
	}
	return x
}

// DrawLine draws every annotation anchored at a document line. Inline
// annotations start at inlineX on row y; above-line blocks draw on the
// row above, from column zero.
func (t *Terminal) DrawLine(set *Set, path string, line, inlineX, y int) {
	x := inlineX
	for _, ann := range set.At(path, line) {
		if ann.Above {
			t.DrawChunks(0, y-1, ann.Chunks)
			continue
		}
		x = t.DrawChunks(x, y, ann.Chunks)
	}
}

// convertStyle translates an annotation style to a tcell style.
func convertStyle(s Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		if s.Foreground.Indexed {
			style = style.Foreground(tcell.PaletteColor(int(s.Foreground.R)))
		} else {
			style = style.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
		}
	}

	if !s.Background.IsDefault() {
		if s.Background.Indexed {
			style = style.Background(tcell.PaletteColor(int(s.Background.R)))
		} else {
			style = style.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
		}
	}

	if s.Attributes.Has(AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(AttrUnderline) {
		style = style.Underline(true)
	}

	return style
}

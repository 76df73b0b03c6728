package annotate

import "github.com/dshills/codelens/internal/lens"

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint8

// Text attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrDim                 // Faint/dim text
	AttrItalic              // Italic text
	AttrUnderline           // Underlined text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color represents a color value. Supports true color (RGB) and terminal
// palette colors.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R contains the palette index (0-255).
	Indexed bool
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// IsDefault returns true if this is the default color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Style is the visual style of an annotation chunk.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// Default chunk styles. Lens titles render dim so virtual text reads as
// advisory rather than document content.
var (
	StyleLens      = Style{Foreground: ColorFromIndex(8), Attributes: AttrDim}
	StyleSeparator = Style{Foreground: ColorFromIndex(8), Attributes: AttrDim}
	StyleSpacer    = Style{Foreground: ColorDefault, Background: ColorDefault}
)

// ChunkStyle maps a chunk kind to its display style.
func ChunkStyle(kind lens.ChunkKind) Style {
	switch kind {
	case lens.ChunkLens:
		return StyleLens
	case lens.ChunkSeparator:
		return StyleSeparator
	case lens.ChunkSpacer:
		return StyleSpacer
	default:
		return Style{Foreground: ColorDefault, Background: ColorDefault}
	}
}

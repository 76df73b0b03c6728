package lens

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
)

// Position in a text document expressed as zero-based line and character
// offset. Character offset is measured in UTF-16 code units per the LSP
// specification.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range in a text document expressed as start and end positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// CoversLine reports whether the range touches the given line. Both ends
// are inclusive: a lens whose range starts and ends on the same line
// covers that line, which a half-open end would miss.
func (r Range) CoversLine(line int) bool {
	return line >= r.Start.Line && line <= r.End.Line
}

// Command represents a reference to a command. The presence of a Command
// on a Lens marks it as resolved.
type Command struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// Lens is a range-anchored, optionally resolved advisory command. Servers
// may return minimal stubs from a list request and fill in the command
// during a later resolve request; Data is the server's opaque resolve
// cookie and is echoed back unchanged.
type Lens struct {
	Range   Range    `json:"range"`
	Command *Command `json:"command,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// Resolved reports whether the lens carries a command.
func (l Lens) Resolved() bool {
	return l.Command != nil
}

// Executable reports whether the lens carries a dispatchable command.
// A resolved lens with an empty command identifier is display-only.
func (l Lens) Executable() bool {
	return l.Command != nil && l.Command.Command != ""
}

// Title returns the command title, or an empty string for unresolved lenses.
func (l Lens) Title() string {
	if l.Command == nil {
		return ""
	}
	return l.Command.Title
}

// DocumentURI represents a document URI, typically file://.
type DocumentURI string

// TextDocumentIdentifier identifies a text document.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// Request methods used by this subsystem.
const (
	// MethodCodeLens lists the lenses for a document.
	MethodCodeLens = "textDocument/codeLens"

	// MethodCodeLensResolve fills in the command of a single lens stub.
	MethodCodeLensResolve = "codeLens/resolve"

	// MethodExecuteCommand dispatches a lens command on the server.
	MethodExecuteCommand = "workspace/executeCommand"
)

// CodeLensParams are parameters for textDocument/codeLens.
type CodeLensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// ExecuteCommandParams are parameters for workspace/executeCommand.
type ExecuteCommandParams struct {
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// ParseLensResult parses a list response, which may be null or an array.
func ParseLensResult(data json.RawMessage) ([]Lens, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var lenses []Lens
	if err := json.Unmarshal(data, &lenses); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return lenses, nil
}

// ParseLens parses a single-lens resolve response. A null response yields
// nil without error; the lens simply stays unresolved.
func ParseLens(data json.RawMessage) (*Lens, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var lens Lens
	if err := json.Unmarshal(data, &lens); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &lens, nil
}

// FilePathToURI converts a file path to a DocumentURI.
func FilePathToURI(path string) DocumentURI {
	if path == "" {
		return ""
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	path = filepath.ToSlash(path)

	// On Windows, add extra slash for drive letter
	if runtime.GOOS == "windows" && len(path) >= 2 && path[1] == ':' {
		path = "/" + path
	}

	u := &url.URL{
		Scheme: "file",
		Path:   path,
	}

	return DocumentURI(u.String())
}

// URIToFilePath converts a DocumentURI to a file path.
func URIToFilePath(uri DocumentURI) string {
	if uri == "" {
		return ""
	}

	u, err := url.Parse(string(uri))
	if err != nil {
		return string(uri)
	}

	if u.Scheme != "file" {
		return string(uri)
	}

	path := u.Path

	// On Windows, remove leading slash before drive letter
	if runtime.GOOS == "windows" && len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path)
}

package lens

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/codelens/internal/logging"
)

// LuaSink adapts a Lua script into a DisplaySink, letting hosts script
// lens presentation. The script must define a global function
//
//	function display(path, namespace, line, chunks)
//
// where chunks is an array of {text=..., kind=...} tables in display
// order. A missing or non-function display global fails at construction.
//
// Lua states are not goroutine safe, so all calls into the state are
// serialized behind a mutex.
type LuaSink struct {
	mu    sync.Mutex
	state *lua.LState
	fn    *lua.LFunction
	log   *logging.Logger
}

// NewLuaSink compiles the script and validates its display function.
func NewLuaSink(script string, log *logging.Logger) (*LuaSink, error) {
	if log == nil {
		log = logging.Nop()
	}

	state := lua.NewState()
	if err := state.DoString(script); err != nil {
		state.Close()
		return nil, fmt.Errorf("lua sink: %w", err)
	}

	fn, ok := state.GetGlobal("display").(*lua.LFunction)
	if !ok {
		state.Close()
		return nil, fmt.Errorf("lua sink: %w", ErrNoDisplayFunc)
	}

	return &LuaSink{state: state, fn: fn, log: log}, nil
}

// Sink returns the DisplaySink invoking the script's display function.
// Script errors are logged and swallowed; presentation failures must not
// break the resolve pipeline.
func (s *LuaSink) Sink() DisplaySink {
	return func(path string, ns Namespace, line int, chunks []Chunk) {
		s.mu.Lock()
		defer s.mu.Unlock()

		tbl := s.state.NewTable()
		for _, chunk := range chunks {
			entry := s.state.NewTable()
			entry.RawSetString("text", lua.LString(chunk.Text))
			entry.RawSetString("kind", lua.LString(chunk.Kind.String()))
			tbl.Append(entry)
		}

		s.state.Push(s.fn)
		s.state.Push(lua.LString(path))
		s.state.Push(lua.LString(string(ns)))
		s.state.Push(lua.LNumber(line))
		s.state.Push(tbl)

		if err := s.state.PCall(4, 0, nil); err != nil {
			s.log.Error("lua sink display failed: doc=%s line=%d: %v", path, line, err)
		}
	}
}

// Close releases the Lua state. The sink must not be used afterwards.
func (s *LuaSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

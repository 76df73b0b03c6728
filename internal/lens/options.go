package lens

import "fmt"

// DisplaySink fully overrides rendering when configured. The sink owns
// presentation for the handed line; the default annotator path is skipped.
type DisplaySink func(path string, ns Namespace, line int, chunks []Chunk)

// DisplayOptions controls how resolved lenses are presented.
type DisplayOptions struct {
	// VirtualBlockAboveLine renders lenses as a block above the line,
	// prefixed with a spacer matching the line's indentation, instead of
	// inline trailing text.
	VirtualBlockAboveLine bool

	// Sink, when non-nil, receives the chunks instead of the annotator.
	Sink DisplaySink
}

// Recognized keys for ParseDisplayOptions.
const (
	optVirtualBlockAboveLine = "virtualBlockAboveLine"
	optCustomDisplaySink     = "customDisplaySink"
)

// ParseDisplayOptions validates a loosely typed option table, as handed
// through scripting or configuration surfaces. Wrong value shapes and
// unknown keys fail synchronously.
func ParseDisplayOptions(raw map[string]any) (DisplayOptions, error) {
	var opts DisplayOptions

	for key, value := range raw {
		switch key {
		case optVirtualBlockAboveLine:
			b, ok := value.(bool)
			if !ok {
				return DisplayOptions{}, &OptionError{
					Key: key,
					Err: fmt.Errorf("%w: expected bool, got %T", ErrInvalidOption, value),
				}
			}
			opts.VirtualBlockAboveLine = b

		case optCustomDisplaySink:
			switch sink := value.(type) {
			case DisplaySink:
				opts.Sink = sink
			case func(string, Namespace, int, []Chunk):
				opts.Sink = sink
			default:
				return DisplayOptions{}, &OptionError{
					Key: key,
					Err: fmt.Errorf("%w: expected display sink function, got %T", ErrInvalidOption, value),
				}
			}

		default:
			return DisplayOptions{}, &OptionError{
				Key: key,
				Err: fmt.Errorf("%w: unknown option", ErrInvalidOption),
			}
		}
	}

	return opts, nil
}

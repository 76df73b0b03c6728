package lens

import (
	"errors"
	"fmt"
)

// Standard errors returned by the lens subsystem.
var (
	// ErrInvalidResponse indicates a response that could not be parsed.
	ErrInvalidResponse = errors.New("invalid response from server")

	// ErrInvalidOption indicates a display option with the wrong shape.
	ErrInvalidOption = errors.New("invalid display option")

	// ErrNoConnection indicates no live connection for a server id.
	ErrNoConnection = errors.New("no connection for server id")

	// ErrNoDisplayFunc indicates a sink script without a display function.
	ErrNoDisplayFunc = errors.New("script does not define a display function")
)

// OptionError wraps an option validation failure with the offending key.
type OptionError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	return fmt.Sprintf("option %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *OptionError) Unwrap() error {
	return e.Err
}

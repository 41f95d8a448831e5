package reportflow

import (
	"errors"
	"fmt"

	"github.com/lvillar/reportflow/layout"
)

// Sentinel errors for common generation failure conditions.
var (
	// ErrInvalidTemplate wraps template validation failures. The chained
	// error names the offending zone, field, or table.
	ErrInvalidTemplate = errors.New("reportflow: invalid template")
	// ErrIterationCap reports that pagination exceeded the configured page
	// cap without completing. Raise the cap with WithIterationCap if the
	// document is legitimately that long.
	ErrIterationCap = layout.ErrIterationCap
)

// Error represents an error that occurred during a specific generation
// operation. It wraps an underlying error and includes the operation name
// for context.
type Error struct {
	Op  string // operation name, e.g. "Generate", "LoadTemplate"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reportflow.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("reportflow.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a new Error wrapping the given error with operation context.
func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

package pipe

import (
	"github.com/scarabhk/releasetools/pkg/context"
)

// Piper is one step of a release tool. Pipes run sequentially; the first
// error stops the run.
type Piper interface {
	// String returns the pipe name shown while it runs.
	String() string

	// Run executes the step. Return a SkipError via Skip to step over the
	// pipe without failing the run.
	Run(ctx *context.Context) error
}

// IsSkip indicates that a pipe was intentionally skipped.
type IsSkip interface {
	IsSkip() bool
}

// SkipError represents an intentional skip of a pipeline step.
type SkipError struct {
	Reason string
}

func (e SkipError) Error() string { return e.Reason }
func (e SkipError) IsSkip() bool  { return true }

// Skip creates a new skip error with the given reason.
func Skip(reason string) SkipError {
	return SkipError{Reason: reason}
}

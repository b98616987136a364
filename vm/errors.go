package vm

import (
	"errors"
	"fmt"

	"github.com/coregx/tagtext/tagtable"
)

// Engine errors. An EngineError wraps one of these, or an error from
// tagtable such as tagtable.ErrListIndex.
var (
	// ErrNilTable indicates a nil table passed to Run.
	ErrNilTable = errors.New("vm: nil table")

	// ErrNegativePosition indicates a command that moved the scan head
	// before the start of the text.
	ErrNegativePosition = errors.New("moved before start of text")

	// ErrCallback indicates a Call, CallArg or CallTag callback that
	// returned an error.
	ErrCallback = errors.New("callback failed")

	// ErrSearcher indicates a searcher that failed for a reason other than
	// not finding its pattern.
	ErrSearcher = errors.New("searcher failed")

	// ErrBadCommand indicates an instruction the engine cannot execute.
	ErrBadCommand = errors.New("unrecognized command")

	// ErrBadArgument indicates an instruction argument of the wrong type.
	ErrBadArgument = errors.New("bad instruction argument")

	// ErrBadOutcome indicates an instruction that produced no known outcome.
	ErrBadOutcome = errors.New("unknown instruction outcome")
)

// EngineError aborts a whole tagging run. Table and Index locate the
// failing instruction; Position is the start position of the innermost
// active table when the error occurred.
type EngineError struct {
	Table    string
	Index    int
	Command  tagtable.Command
	Position int
	Err      error
}

// Error implements the error interface
func (e *EngineError) Error() string {
	return fmt.Sprintf("tag table %q entry %d (%s) at position %d: %v",
		e.Table, e.Index, e.Command, e.Position, e.Err)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Err
}

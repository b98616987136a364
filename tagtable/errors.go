package tagtable

import (
	"errors"
	"fmt"
)

// Compile errors. A CompileError wraps exactly one of these.
var (
	// ErrEntryShape indicates an entry that is neither a label nor an
	// instruction record.
	ErrEntryShape = errors.New("malformed entry")

	// ErrUnknownCommand indicates a command code with no meaning.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnknownFlags indicates flag bits outside the known set.
	ErrUnknownFlags = errors.New("unknown flags")

	// ErrArgument indicates an argument of the wrong type or value for the
	// command.
	ErrArgument = errors.New("bad argument")

	// ErrDuplicateLabel indicates a jump target defined twice.
	ErrDuplicateLabel = errors.New("jump target already defined")

	// ErrMissingLabel indicates a jump to an undefined label.
	ErrMissingLabel = errors.New("jump target not defined")

	// ErrTagType indicates a tag that does not support the entry's flags.
	ErrTagType = errors.New("bad tag type")
)

// Other errors.
var (
	// ErrNilDefinition indicates a nil definition passed to the compiler.
	ErrNilDefinition = errors.New("tagtable: nil definition")

	// ErrModeMismatch indicates narrow text tagged with a wide table or
	// the reverse.
	ErrModeMismatch = errors.New("tagtable: text width does not match table mode")

	// ErrListIndex indicates a table list index out of range.
	ErrListIndex = errors.New("tagtable: table list index out of range")
)

// CompileError reports a definition that could not be compiled, with the
// position of the offending entry.
type CompileError struct {
	Table string
	Index int
	Err   error
}

// Error implements the error interface
func (e *CompileError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("tag table %q entry %d: %v", e.Table, e.Index, e.Err)
	}
	return fmt.Sprintf("tag table entry %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error
func (e *CompileError) Unwrap() error {
	return e.Err
}

func argError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrArgument}, args...)...)
}

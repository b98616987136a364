package tagdef

import (
	"errors"
	"fmt"
)

// Decode errors. A *DecodeError wraps one of these with the path of the
// offending field.
var (
	// ErrSyntax indicates a document that is not valid YAML or does not
	// have the expected shape.
	ErrSyntax = errors.New("malformed document")

	// ErrNoMain indicates a document without a usable main table.
	ErrNoMain = errors.New("no main table")

	// ErrCommand indicates an unknown command name.
	ErrCommand = errors.New("unknown command")

	// ErrFlag indicates an unknown flag name.
	ErrFlag = errors.New("unknown flag")

	// ErrArgument indicates an argument of the wrong type for its command.
	ErrArgument = errors.New("bad argument")

	// ErrJump indicates a jump that is neither an offset nor a label.
	ErrJump = errors.New("bad jump")

	// ErrUnknownTable indicates a reference to a table the document does
	// not define.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownList indicates a reference to an undefined table list.
	ErrUnknownList = errors.New("unknown table list")

	// ErrUnknownFunc indicates a callback or tag name missing from
	// Options.
	ErrUnknownFunc = errors.New("unknown function")

	// ErrReservedName indicates a table named after a keyword.
	ErrReservedName = errors.New("reserved name")
)

// DecodeError reports where in a document decoding failed.
type DecodeError struct {
	// Path locates the field, e.g. "tables.pair[2].arg".
	Path string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tagdef: %v", e.Err)
	}
	return fmt.Sprintf("tagdef: %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeError(path string, sentinel error, format string, args ...any) error {
	if format == "" {
		return &DecodeError{Path: path, Err: sentinel}
	}
	return &DecodeError{Path: path, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

package tagtable

import (
	"fmt"
	"strconv"
)

// Jump is the fail or match jump of an entry: either a relative
// instruction offset or the name of a jump target label.
//
// The zero Jump means "omitted" and takes the default (fail 0, match +1).
type Jump struct {
	set    bool
	offset int
	label  string
}

// To returns a relative jump of n instructions.
func To(n int) Jump {
	return Jump{set: true, offset: n}
}

// ToLabel returns a jump to the instruction following the label name.
func ToLabel(name string) Jump {
	return Jump{set: true, label: name}
}

// IsZero reports whether j was omitted.
func (j Jump) IsZero() bool {
	return !j.set
}

// Label returns the target label, or "" for a numeric jump.
func (j Jump) Label() string {
	return j.label
}

// Offset returns the relative offset of a numeric jump.
func (j Jump) Offset() int {
	return j.offset
}

// String implements fmt.Stringer.
func (j Jump) String() string {
	switch {
	case !j.set:
		return "default"
	case j.label != "":
		return strconv.Quote(j.label)
	default:
		return fmt.Sprintf("%+d", j.offset)
	}
}

// Entry is one element of a tag table definition.
//
// An entry is either a jump target label (only Label set) or an
// instruction record (Cmd set, Label empty). Anything else is malformed.
type Entry struct {
	Label   string
	Tag     any
	Cmd     Command
	Flags   Flags
	Arg     any
	OnFail  Jump
	OnMatch Jump
}

// Label returns a jump target entry. Jumps to name continue with the
// instruction after it.
func Label(name string) Entry {
	return Entry{Label: name}
}

// Code returns the packed command code of e.
func (e Entry) Code() Code {
	return Pack(e.Cmd, e.Flags)
}

func (e Entry) isLabel() bool {
	return e.Label != "" && e.Tag == nil && e.Cmd == 0 && e.Flags == 0 &&
		e.Arg == nil && e.OnFail.IsZero() && e.OnMatch.IsZero()
}

// Definition is an uncompiled tag table.
//
// The pointer identifies the definition: the compile cache is keyed by it,
// and a definition that refers to itself (directly or through other
// definitions) compiles into a cyclic graph of tables. Do not modify a
// definition after compiling it with caching enabled.
type Definition struct {
	Name    string
	Entries []Entry
}

// NewDefinition returns a definition with the given entries.
func NewDefinition(name string, entries ...Entry) *Definition {
	return &Definition{Name: name, Entries: entries}
}

// String implements fmt.Stringer.
func (d *Definition) String() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("definition(%p)", d)
}

// Source is a table argument: a *Definition, a compiled *Table, or
// ThisTable.
type Source interface {
	tableSource()
}

func (*Definition) tableSource() {}
func (*Table) tableSource()      {}
func (SelfRef) tableSource()     {}

// SelfRef is the type of ThisTable.
type SelfRef struct{}

// ThisTable refers to the table containing the instruction. It is resolved
// when the instruction runs, so a table can call itself recursively.
var ThisTable SelfRef

// String implements fmt.Stringer.
func (SelfRef) String() string {
	return "ThisTable"
}

// ListRef is the argument of TableInList and SubTableInList: the table at
// Index in List, compiled on first use.
type ListRef struct {
	List  *TableList
	Index int
}

// Input is the text being tagged, as seen by callbacks. Exactly one of
// Bytes and Runes is set, depending on the table mode.
type Input struct {
	Bytes   []byte
	Runes   []rune
	Context any
}

// Len returns the length of the text in characters.
func (in *Input) Len() int {
	if in.Runes != nil {
		return len(in.Runes)
	}
	return len(in.Bytes)
}

// Slice returns text[l:r] as a string.
func (in *Input) Slice(l, r int) string {
	if in.Runes != nil {
		return string(in.Runes[l:r])
	}
	return string(in.Bytes[l:r])
}

// MatchFunc is the argument of Call. It is called with the text, the
// current position and the slice end, and returns the new position.
// Returning pos unchanged means no match; a returned error aborts tagging.
type MatchFunc func(in *Input, pos, end int, args ...any) (int, error)

// CallArgs is the argument of CallArg: Fn is called with Args appended.
type CallArgs struct {
	Fn   MatchFunc
	Args []any
}

// Tagger is the tag of a CallTag instruction. It receives the result that
// would otherwise have been recorded, and the current result list (nil
// when results are discarded).
type Tagger interface {
	Tag(dst *Results, in *Input, res Result) error
}

// TagFunc adapts a function to the Tagger interface.
type TagFunc func(dst *Results, in *Input, res Result) error

// Tag implements Tagger.
func (f TagFunc) Tag(dst *Results, in *Input, res Result) error {
	return f(dst, in, res)
}

// Appender is the tag of an AppendToTag instruction.
type Appender interface {
	Append(res Result)
}

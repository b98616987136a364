package tagtable

import (
	"fmt"
	"strconv"
)

// Mode is the character width a table is compiled for.
type Mode uint8

const (
	// Narrow tables match []byte text.
	Narrow Mode = iota
	// Wide tables match []rune text.
	Wide
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Narrow:
		return "narrow"
	case Wide:
		return "wide"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Instruction is one compiled, validated table entry.
//
// Arg holds the compiled argument, by command:
//   - Is: rune
//   - AllIn, AllNotIn, IsIn, IsNotIn: *Multiset
//   - Word, WordStart, WordEnd: []byte (narrow) or []rune (wide)
//   - AllInSet, IsInSet: Set
//   - AllInCharSet, IsInCharSet: *charset.CharSet
//   - sWordStart, sWordEnd, sFindWord: search.Searcher
//   - Table, SubTable: *Table or SelfRef
//   - TableInList, SubTableInList: ListRef
//   - Call: MatchFunc; CallArg: CallArgs
//   - Skip, Move, Loop, LoopControl: int
//   - JumpTarget: the label string, or nil
//   - Fail, EOF: nil
//
// OnFail and OnMatch are relative offsets. An OnFail of 0 fails the table.
type Instruction struct {
	Tag     any
	Cmd     Command
	Flags   Flags
	Arg     any
	OnFail  int
	OnMatch int
}

// Table is a compiled tag table. It is immutable once Compile returns and
// safe for concurrent use by any number of tagging runs.
type Table struct {
	name   string
	mode   Mode
	def    *Definition
	ins    []Instruction
	labels map[string]int

	// cache is where the table was stored, nil for uncached compiles.
	cache *Cache
}

// Cache returns the cache the table was compiled into, or nil if it was
// compiled without caching. Table list items selected by t compile into
// the same cache.
func (t *Table) Cache() *Cache {
	return t.cache
}

// Name returns the name of the source definition.
func (t *Table) Name() string {
	return t.name
}

// Mode returns the character width the table was compiled for.
func (t *Table) Mode() Mode {
	return t.mode
}

// Len returns the number of instructions.
func (t *Table) Len() int {
	return len(t.ins)
}

// At returns a pointer to instruction i. The instruction must not be
// modified.
func (t *Table) At(i int) *Instruction {
	return &t.ins[i]
}

// Instructions returns a copy of the instructions.
func (t *Table) Instructions() []Instruction {
	return append([]Instruction(nil), t.ins...)
}

// Source returns the definition the table was compiled from.
func (t *Table) Source() *Definition {
	return t.def
}

// LabelIndex returns the instruction index a jump to name continues at.
func (t *Table) LabelIndex(name string) (int, bool) {
	i, ok := t.labels[name]
	return i, ok
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	name := t.name
	if name == "" {
		name = fmt.Sprintf("%p", t)
	}
	return fmt.Sprintf("Table(%s, %s, %d entries)", name, t.mode, len(t.ins))
}

package tagtable

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/coregx/tagtext/charset"
	"github.com/coregx/tagtext/internal/conv"
	"github.com/coregx/tagtext/search"
)

// Compile compiles def for mode using the process-wide cache.
// See Cache.Compile.
func Compile(def *Definition, mode Mode, cacheable bool) (*Table, error) {
	return defaultCache.Compile(def, mode, cacheable)
}

// MustCompile is like Compile but panics on error.
func MustCompile(def *Definition, mode Mode) *Table {
	t, err := Compile(def, mode, true)
	if err != nil {
		panic(err)
	}
	return t
}

// Compile validates def and every definition it reaches through Table and
// SubTable arguments, and compiles them into tables for mode.
//
// With cacheable set, each definition is first looked up in c; tables
// compiled by this call are stored in c only after the whole graph
// compiled successfully. A nil c compiles without caching.
//
// Definitions that refer to each other, or to themselves, compile into a
// cyclic table graph.
func (c *Cache) Compile(def *Definition, mode Mode, cacheable bool) (*Table, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if mode > Wide {
		return nil, fmt.Errorf("tagtable: unknown mode %d", mode)
	}

	cc := &compiler{
		cache:     c,
		mode:      mode,
		cacheable: cacheable && c != nil,
		active:    make(map[*Definition]*Table),
	}
	t, err := cc.table(def)
	if err != nil {
		return nil, err
	}
	if !cc.cacheable {
		return t, nil
	}

	// Store dependencies first so the returned instance is the last one
	// published.
	for _, done := range cc.done {
		if done != t {
			c.Put(done)
		}
	}
	return c.Put(t), nil
}

type compiler struct {
	cache     *Cache
	mode      Mode
	cacheable bool

	// active maps every definition seen by this compile to its table,
	// including tables whose instructions are still being filled in.
	active map[*Definition]*Table
	done   []*Table
}

func (cc *compiler) table(def *Definition) (*Table, error) {
	if t, ok := cc.active[def]; ok {
		return t, nil
	}
	if cc.cacheable {
		if t, ok := cc.cache.Get(def, cc.mode); ok {
			return t, nil
		}
	}

	t := &Table{name: def.Name, mode: cc.mode, def: def}
	if cc.cacheable {
		t.cache = cc.cache
	}
	cc.active[def] = t
	if err := cc.fill(t, def); err != nil {
		return nil, err
	}
	cc.done = append(cc.done, t)
	return t, nil
}

// fill compiles the entries of def into t in two passes: the first
// validates entries and records labels, the second back-patches jumps
// given as labels.
func (cc *compiler) fill(t *Table, def *Definition) error {
	ins := make([]Instruction, len(def.Entries))
	labels := make(map[string]int)
	var patches []int

	addLabel := func(i int, name string) error {
		if _, dup := labels[name]; dup {
			return &CompileError{Table: def.Name, Index: i, Err: fmt.Errorf("%w: %q", ErrDuplicateLabel, name)}
		}
		labels[name] = i + 1
		return nil
	}

	for i, e := range def.Entries {
		if e.Label != "" {
			if !e.isLabel() {
				return &CompileError{Table: def.Name, Index: i,
					Err: fmt.Errorf("%w: label %q combined with instruction fields", ErrEntryShape, e.Label)}
			}
			if err := addLabel(i, e.Label); err != nil {
				return err
			}
			ins[i] = Instruction{Cmd: CmdJumpTarget, Arg: e.Label, OnMatch: 1}
			continue
		}

		in, err := cc.instruction(e)
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) {
				// Already located in a nested table.
				return err
			}
			return &CompileError{Table: def.Name, Index: i, Err: err}
		}
		if name, ok := in.Arg.(string); ok && in.Cmd == CmdJumpTarget && name != "" {
			if err := addLabel(i, name); err != nil {
				return err
			}
		}
		if e.OnFail.Label() != "" || e.OnMatch.Label() != "" {
			patches = append(patches, i)
		}
		ins[i] = in
	}

	for _, i := range patches {
		e := def.Entries[i]
		for _, p := range []struct {
			jump Jump
			dst  *int
		}{
			{e.OnFail, &ins[i].OnFail},
			{e.OnMatch, &ins[i].OnMatch},
		} {
			name := p.jump.Label()
			if name == "" {
				continue
			}
			target, ok := labels[name]
			if !ok {
				return &CompileError{Table: def.Name, Index: i, Err: fmt.Errorf("%w: %q", ErrMissingLabel, name)}
			}
			*p.dst = target - i
		}
	}

	t.ins = ins
	t.labels = labels
	return nil
}

func (cc *compiler) instruction(e Entry) (Instruction, error) {
	if e.Cmd == 0 {
		return Instruction{}, fmt.Errorf("%w: entry has neither a label nor a command", ErrEntryShape)
	}
	if !e.Cmd.Valid() {
		return Instruction{}, fmt.Errorf("%w: %d", ErrUnknownCommand, e.Cmd)
	}
	if rest := e.Flags &^ allFlags; rest != 0 {
		return Instruction{}, fmt.Errorf("%w: %#x", ErrUnknownFlags, uint32(rest))
	}

	tag, err := checkTag(e.Tag, e.Flags)
	if err != nil {
		return Instruction{}, err
	}
	arg, err := cc.argument(e.Cmd, e.Arg)
	if err != nil {
		return Instruction{}, err
	}

	in := Instruction{
		Tag:     tag,
		Cmd:     e.Cmd,
		Flags:   e.Flags,
		Arg:     arg,
		OnFail:  0,
		OnMatch: 1,
	}
	if !e.OnFail.IsZero() && e.OnFail.Label() == "" {
		in.OnFail = e.OnFail.Offset()
	}
	if !e.OnMatch.IsZero() && e.OnMatch.Label() == "" {
		in.OnMatch = e.OnMatch.Offset()
	}
	return in, nil
}

// checkTag verifies that tag supports the callback flags. A nil tag records
// nothing, so any flags go.
func checkTag(tag any, flags Flags) (any, error) {
	if tag == nil {
		return nil, nil
	}
	switch {
	case flags&CallTag != 0:
		switch fn := tag.(type) {
		case Tagger:
			return fn, nil
		case func(*Results, *Input, Result) error:
			return TagFunc(fn), nil
		default:
			return nil, fmt.Errorf("%w: CallTag needs a Tagger, got %T", ErrTagType, tag)
		}
	case flags&AppendToTag != 0:
		if _, ok := tag.(Appender); !ok {
			return nil, fmt.Errorf("%w: AppendToTag needs an Appender, got %T", ErrTagType, tag)
		}
	}
	return tag, nil
}

func (cc *compiler) argument(cmd Command, arg any) (any, error) {
	switch cmd {
	case CmdIs:
		chars, err := cc.chars(cmd, arg)
		if err != nil {
			return nil, err
		}
		if len(chars) != 1 {
			return nil, argError("Is needs exactly one character, got %d", len(chars))
		}
		return chars[0], nil

	case CmdAllIn, CmdAllNotIn, CmdIsIn, CmdIsNotIn:
		chars, err := cc.chars(cmd, arg)
		if err != nil {
			return nil, err
		}
		return newMultiset(chars), nil

	case CmdWord, CmdWordStart, CmdWordEnd:
		chars, err := cc.chars(cmd, arg)
		if err != nil {
			return nil, err
		}
		if len(chars) == 0 {
			return nil, argError("%s needs a non-empty word", cmd)
		}
		if cc.mode == Wide {
			return chars, nil
		}
		word := make([]byte, len(chars))
		for i, r := range chars {
			word[i] = conv.RuneToByte(r)
		}
		return word, nil

	case CmdAllInSet, CmdIsInSet:
		return setArgument(cmd, arg)

	case CmdAllInCharSet, CmdIsInCharSet:
		cs, ok := arg.(*charset.CharSet)
		if !ok || cs == nil {
			return nil, argError("%s needs a *charset.CharSet, got %T", cmd, arg)
		}
		return cs, nil

	case CmdSWordStart, CmdSWordEnd, CmdSFindWord:
		s, ok := arg.(search.Searcher)
		if !ok || s == nil {
			return nil, argError("%s needs a search.Searcher, got %T", cmd, arg)
		}
		return s, nil

	case CmdTable, CmdSubTable:
		return cc.tableArgument(cmd, arg)

	case CmdTableInList, CmdSubTableInList:
		ref, ok := arg.(ListRef)
		if !ok || ref.List == nil {
			return nil, argError("%s needs a ListRef, got %T", cmd, arg)
		}
		if ref.Index < 0 {
			return nil, argError("%s list index %d is negative", cmd, ref.Index)
		}
		return ref, nil

	case CmdCall:
		switch fn := arg.(type) {
		case MatchFunc:
			if fn != nil {
				return fn, nil
			}
		case func(*Input, int, int, ...any) (int, error):
			if fn != nil {
				return MatchFunc(fn), nil
			}
		}
		return nil, argError("Call needs a MatchFunc, got %T", arg)

	case CmdCallArg:
		ca, ok := arg.(CallArgs)
		if !ok || ca.Fn == nil {
			return nil, argError("CallArg needs CallArgs with a function, got %T", arg)
		}
		ca.Args = slices.Clone(ca.Args)
		return ca, nil

	case CmdSkip, CmdMove, CmdLoop, CmdLoopControl:
		n, ok := arg.(int)
		if !ok {
			return nil, argError("%s needs an int, got %T", cmd, arg)
		}
		return n, nil

	case CmdJumpTarget:
		name, ok := arg.(string)
		if !ok {
			return nil, argError("JumpTarget needs a label string, got %T", arg)
		}
		return name, nil

	case CmdFail, CmdEOF:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, cmd)
}

// chars converts a literal argument to characters of the table's width.
// Narrow tables treat strings as bytes; wide tables decode them as UTF-8.
// Byte slices are Latin-1 in both modes.
func (cc *compiler) chars(cmd Command, arg any) ([]rune, error) {
	var chars []rune
	switch a := arg.(type) {
	case string:
		if cc.mode == Wide {
			return []rune(a), nil
		}
		chars = latin1([]byte(a))
	case []byte:
		chars = latin1(a)
	case []rune:
		chars = slices.Clone(a)
	case rune:
		chars = []rune{a}
	case byte:
		chars = []rune{rune(a)}
	default:
		return nil, argError("%s needs a string, got %T", cmd, arg)
	}
	if cc.mode == Narrow {
		for _, r := range chars {
			if r < 0 || r > 0xFF {
				return nil, argError("%s: character %q does not fit a narrow table", cmd, r)
			}
		}
	} else {
		for _, r := range chars {
			if !utf8.ValidRune(r) {
				return nil, argError("%s: invalid character %#x", cmd, r)
			}
		}
	}
	return chars, nil
}

func latin1(b []byte) []rune {
	chars := make([]rune, len(b))
	for i, c := range b {
		chars[i] = rune(c)
	}
	return chars
}

func setArgument(cmd Command, arg any) (Set, error) {
	switch a := arg.(type) {
	case Set:
		return a, nil
	case *Set:
		if a != nil {
			return *a, nil
		}
	case string:
		if len(a) == len(Set{}) {
			return Set([]byte(a)), nil
		}
	case []byte:
		if len(a) == len(Set{}) {
			return Set(a), nil
		}
	}
	return Set{}, argError("%s needs a 32-byte Set, got %T", cmd, arg)
}

func (cc *compiler) tableArgument(cmd Command, arg any) (any, error) {
	switch src := arg.(type) {
	case SelfRef:
		return src, nil
	case *Definition:
		if src != nil {
			return cc.table(src)
		}
	case *Table:
		if src == nil {
			break
		}
		if src.mode == cc.mode {
			return src, nil
		}
		if src.def == nil {
			return nil, argError("%s: %s table has no definition to recompile as %s", cmd, src.mode, cc.mode)
		}
		return cc.table(src.def)
	}
	return nil, argError("%s needs a *Definition, *Table or ThisTable, got %T", cmd, arg)
}

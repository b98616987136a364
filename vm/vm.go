// Package vm executes compiled tag tables.
//
// The engine is a non-recursive interpreter: a Table or SubTable
// instruction pushes the caller's state onto an explicit frame stack and
// continues in the sub-table; when the sub-table ends, the frame is popped
// and the calling instruction resolves with the sub-table's outcome. Table
// nesting depth is therefore bounded by memory, not by the goroutine stack.
//
// Matching is forward-only. Every instruction either succeeds, usually
// moving the scan head forward, or fails, leaving the head where the
// instruction started. Control flow is entirely in the instructions' fail
// and match jumps; the engine never backtracks on its own.
//
// A Table is immutable and may be run by any number of goroutines at
// once; each run owns its frame stack and result list.
package vm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coregx/tagtext/charset"
	"github.com/coregx/tagtext/internal/bounds"
	"github.com/coregx/tagtext/search"
	"github.com/coregx/tagtext/tagtable"
)

// outcome is the resolution of an instruction or a whole table.
type outcome int8

const (
	unset outcome = iota
	pending
	success
	failure
	errored
)

// state is the part of the machine that belongs to one table activation.
type state struct {
	table *tagtable.Table
	index int

	position      int
	startPosition int

	results    *tagtable.Results
	resultsLen int

	loopCount int
	loopStart int
}

// frame saves a caller's state while a sub-table runs.
type frame struct {
	state
	childStart int
}

// framePool recycles frame stacks between runs.
var framePool = sync.Pool{
	New: func() any {
		s := make([]frame, 0, 16)
		return &s
	},
}

type machine[C byte | rune] struct {
	text  []C
	left  int
	right int
	in    *tagtable.Input

	state
	returnCode outcome

	childStart    int
	childPosition int
	childResults  *tagtable.Results
	childOutcome  outcome

	stack []frame
	err   *EngineError
}

// Run tags text[start:end] with table, appending results to dst.
//
// start and end are normalized: end past the text is clamped to its
// length, negative values count back from the end. A nil dst discards
// results. context is passed to callbacks through tagtable.Input.
//
// It returns whether the table matched and the next position: where
// tagging stopped on success, or how far the last instruction got on
// failure. On failure dst is restored to its length on entry. An engine
// error aborts the run and is returned as an *EngineError.
func Run[C byte | rune](text []C, start, end int, table *tagtable.Table, dst *tagtable.Results, context any) (matched bool, next int, err error) {
	if table == nil {
		return false, 0, ErrNilTable
	}

	in := &tagtable.Input{Context: context}
	mode := tagtable.Narrow
	switch t := any(text).(type) {
	case []byte:
		in.Bytes = t
	case []rune:
		in.Runes = t
		if t == nil {
			in.Runes = []rune{}
		}
		mode = tagtable.Wide
	}
	if table.Mode() != mode {
		return false, 0, fmt.Errorf("%w: %s table, %s text", tagtable.ErrModeMismatch, table.Mode(), mode)
	}

	start, end = bounds.Normalize(start, end, len(text))
	m := &machine[C]{
		text:  text,
		left:  start,
		right: end,
		in:    in,
	}

	sp := framePool.Get().(*[]frame)
	m.stack = (*sp)[:0]
	defer func() {
		clear(m.stack[:cap(m.stack)])
		*sp = m.stack[:0]
		framePool.Put(sp)
	}()

	return m.run(table, dst)
}

func (m *machine[C]) run(table *tagtable.Table, dst *tagtable.Results) (bool, int, error) {
	m.position = m.left
	m.startPosition = m.left
	m.table = table
	m.results = dst
	m.resetTable()

	for {
		for m.index >= 0 && m.index < m.table.Len() && m.returnCode == unset {
			m.step(m.table.At(m.index))
		}

		if m.returnCode == unset {
			// Falling off the end is success; anything else, including
			// running out of text, is failure.
			if m.index >= m.table.Len() {
				m.returnCode = success
			} else {
				m.returnCode = failure
			}
		}

		switch m.returnCode {
		case failure:
			m.results.Truncate(m.resultsLen)
			m.position = m.startPosition
		case errored:
			m.err.Position = m.startPosition
			next := m.startPosition
			m.stack = m.stack[:0]
			return false, next, m.err
		}

		if len(m.stack) > 0 {
			m.pop()
			continue
		}
		if m.returnCode == failure {
			return false, m.childPosition, nil
		}
		return true, m.position, nil
	}
}

// resetTable starts the current table from its first instruction.
func (m *machine[C]) resetTable() {
	m.index = 0
	m.returnCode = unset
	m.loopCount = -1
	m.loopStart = m.startPosition
	m.resultsLen = m.results.Len()
}

// push suspends the current table and enters t, recording into results.
func (m *machine[C]) push(t *tagtable.Table, results *tagtable.Results) {
	m.stack = append(m.stack, frame{state: m.state, childStart: m.childStart})
	m.childOutcome = pending

	m.startPosition = m.position
	m.table = t
	m.results = results
	m.resetTable()
}

// pop returns to the calling table. The calling instruction resolves with
// the sub-table's outcome, final position and result list.
func (m *machine[C]) pop() {
	f := m.stack[len(m.stack)-1]
	m.stack[len(m.stack)-1] = frame{}
	m.stack = m.stack[:len(m.stack)-1]

	m.childStart = f.childStart
	m.childPosition = m.position
	m.childResults = m.results
	m.childOutcome = m.returnCode

	m.state = f.state
	m.returnCode = unset
}

func (m *machine[C]) fail(ins *tagtable.Instruction, err error) {
	m.childOutcome = errored
	m.err = &EngineError{
		Table:   m.table.Name(),
		Index:   m.index,
		Command: ins.Cmd,
		Err:     err,
	}
}

// step executes one instruction and applies its outcome.
func (m *machine[C]) step(ins *tagtable.Instruction) {
	if m.childOutcome == unset {
		m.childStart = m.position
		m.childPosition = m.position
		m.childResults = nil
	}

	if ins.Cmd.IsLowLevel() {
		m.lowLevel(ins)
		if m.childOutcome == unset {
			if m.childPosition > m.childStart {
				m.childOutcome = success
			} else {
				m.childOutcome = failure
			}
		}
	} else {
		m.highLevel(ins)
	}

	if m.childPosition < 0 && m.childOutcome != errored {
		m.fail(ins, fmt.Errorf("%w (to position %d)", ErrNegativePosition, m.childPosition))
	}

	switch m.childOutcome {
	case unset, success:
		if ins.Tag != nil {
			m.record(ins)
		}
		if ins.Flags&tagtable.LookAhead != 0 {
			m.position = m.childStart
		} else {
			m.position = m.childPosition
		}
		m.index += ins.OnMatch

	case failure:
		m.childResults = nil
		m.position = m.childStart
		if ins.OnFail == 0 {
			m.returnCode = failure
		} else {
			m.index += ins.OnFail
		}

	case pending:
		// A sub-table was entered; it resolves this instruction when it
		// returns.

	case errored:
		m.returnCode = errored

	default:
		m.fail(ins, ErrBadOutcome)
		m.returnCode = errored
	}
	m.childOutcome = unset
}

// lowLevel runs a matching command. Only childPosition moves; the
// outcome follows from whether it moved forward.
func (m *machine[C]) lowLevel(ins *tagtable.Instruction) {
	text, right := m.text, m.right
	pos := m.childPosition

	switch ins.Cmd {
	case tagtable.CmdAllIn, tagtable.CmdAllNotIn, tagtable.CmdIsIn, tagtable.CmdIsNotIn:
		set, ok := ins.Arg.(*tagtable.Multiset)
		if !ok {
			m.fail(ins, ErrBadArgument)
			return
		}
		switch ins.Cmd {
		case tagtable.CmdAllIn:
			for pos < right && set.Contains(rune(text[pos])) {
				pos++
			}
		case tagtable.CmdAllNotIn:
			for pos < right && !set.Contains(rune(text[pos])) {
				pos++
			}
		case tagtable.CmdIsIn:
			if pos < right && set.Contains(rune(text[pos])) {
				pos++
			}
		default:
			if pos < right && !set.Contains(rune(text[pos])) {
				pos++
			}
		}

	case tagtable.CmdIs:
		c, ok := ins.Arg.(rune)
		if !ok {
			m.fail(ins, ErrBadArgument)
			return
		}
		if pos < right && rune(text[pos]) == c {
			pos++
		}

	case tagtable.CmdWord:
		word, ok := ins.Arg.([]C)
		if !ok {
			m.fail(ins, ErrBadArgument)
			return
		}
		last := len(word) - 1
		if pos+last >= right {
			break
		}
		// Compare right to left.
		j := last
		for j >= 0 && text[pos+j] == word[j] {
			j--
		}
		if j >= 0 {
			pos = m.startPosition
		} else {
			pos += last + 1
		}

	case tagtable.CmdWordStart, tagtable.CmdWordEnd:
		word, ok := ins.Arg.([]C)
		if !ok {
			m.fail(ins, ErrBadArgument)
			return
		}
		last := len(word) - 1
		for {
			if pos+last >= right {
				pos = m.startPosition
				break
			}
			j := last
			for j >= 0 && text[pos+j] == word[j] {
				j--
			}
			if j < 0 {
				if ins.Cmd == tagtable.CmdWordEnd {
					pos += last + 1
				}
				break
			}
			pos++
		}

	case tagtable.CmdAllInSet, tagtable.CmdIsInSet:
		set, ok := ins.Arg.(tagtable.Set)
		if !ok {
			m.fail(ins, ErrBadArgument)
			return
		}
		if ins.Cmd == tagtable.CmdAllInSet {
			for pos < right && set.Contains(rune(text[pos])) {
				pos++
			}
		} else if pos < right && set.Contains(rune(text[pos])) {
			pos++
		}

	case tagtable.CmdAllInCharSet, tagtable.CmdIsInCharSet:
		cs, ok := ins.Arg.(*charset.CharSet)
		if !ok {
			m.fail(ins, ErrBadArgument)
			return
		}
		if ins.Cmd == tagtable.CmdAllInCharSet {
			for pos < right && cs.Contains(rune(text[pos])) {
				pos++
			}
		} else if pos < right && cs.Contains(rune(text[pos])) {
			pos++
		}

	default:
		m.fail(ins, ErrBadCommand)
		return
	}
	m.childPosition = pos
}

// highLevel runs the special, search, loop, call and table commands.
// Commands that leave childOutcome unset succeed.
func (m *machine[C]) highLevel(ins *tagtable.Instruction) {
	switch ins.Cmd {
	case tagtable.CmdFail:
		m.childOutcome = failure

	case tagtable.CmdEOF:
		if m.right > m.childPosition {
			m.childOutcome = failure
		} else {
			m.childOutcome = success
			m.childPosition = m.right
			m.childStart = m.right
		}

	case tagtable.CmdSkip:
		n, ok := m.intArg(ins)
		if !ok {
			return
		}
		m.childPosition += n
		m.childOutcome = success

	case tagtable.CmdMove:
		n, ok := m.intArg(ins)
		if !ok {
			return
		}
		if n < 0 {
			m.childPosition = n + m.right + 1
		} else {
			m.childPosition = n + m.left
		}
		m.childOutcome = success

	case tagtable.CmdJumpTarget:
		m.childOutcome = success

	case tagtable.CmdSWordStart, tagtable.CmdSWordEnd, tagtable.CmdSFindWord:
		m.searchWord(ins)

	case tagtable.CmdLoop:
		n, ok := m.intArg(ins)
		if !ok {
			return
		}
		if m.loopCount > 0 {
			m.loopCount--
		} else if m.loopCount < 0 {
			m.loopCount = n
			m.loopStart = m.childPosition
		}
		if m.loopCount == 0 {
			m.loopCount = -1
		}
		if m.loopStart == m.childPosition {
			m.childOutcome = failure
		} else {
			m.childOutcome = success
			m.childStart = m.loopStart
		}

	case tagtable.CmdLoopControl:
		n, ok := m.intArg(ins)
		if !ok {
			return
		}
		m.loopCount = n

	case tagtable.CmdCall, tagtable.CmdCallArg:
		m.call(ins)

	case tagtable.CmdTable, tagtable.CmdSubTable, tagtable.CmdTableInList, tagtable.CmdSubTableInList:
		m.enter(ins)

	default:
		m.fail(ins, ErrBadCommand)
	}
}

func (m *machine[C]) intArg(ins *tagtable.Instruction) (int, bool) {
	n, ok := ins.Arg.(int)
	if !ok {
		m.fail(ins, ErrBadArgument)
	}
	return n, ok
}

// searchWord runs sWordStart, sWordEnd and sFindWord over
// [childPosition, right).
func (m *machine[C]) searchWord(ins *tagtable.Instruction) {
	s, ok := ins.Arg.(search.Searcher)
	if !ok {
		m.fail(ins, ErrBadArgument)
		return
	}
	m.childStart = m.childPosition

	var left, right int
	var err error
	switch text := any(m.text).(type) {
	case []byte:
		left, right, err = s.Search(text, m.childStart, m.right)
	case []rune:
		left, right, err = s.SearchRunes(text, m.childStart, m.right)
	}
	switch {
	case errors.Is(err, search.ErrNotFound):
		m.childOutcome = failure
		return
	case err != nil:
		m.fail(ins, fmt.Errorf("%w: %w", ErrSearcher, err))
		return
	}

	if ins.Cmd == tagtable.CmdSWordStart {
		m.childPosition = left
	} else {
		m.childPosition = right
	}
	if ins.Cmd == tagtable.CmdSFindWord {
		m.childStart = left
	}
}

// call runs Call and CallArg. They follow the low-level contract: the
// returned position must differ from the current one.
func (m *machine[C]) call(ins *tagtable.Instruction) {
	var fn tagtable.MatchFunc
	var args []any
	switch a := ins.Arg.(type) {
	case tagtable.MatchFunc:
		fn = a
	case tagtable.CallArgs:
		fn, args = a.Fn, a.Args
	}
	if fn == nil {
		m.fail(ins, ErrBadArgument)
		return
	}

	m.childStart = m.childPosition
	pos, err := fn(m.in, m.childStart, m.right, args...)
	if err != nil {
		m.fail(ins, fmt.Errorf("%w: %w", ErrCallback, err))
		return
	}
	m.childPosition = pos
	if pos == m.childStart {
		m.childOutcome = failure
	}
}

// enter pushes a frame for a table command. When the sub-table has
// already returned, the instruction is resolved and there is nothing to do.
func (m *machine[C]) enter(ins *tagtable.Instruction) {
	if m.childOutcome != unset {
		return
	}

	var next *tagtable.Table
	switch a := ins.Arg.(type) {
	case tagtable.SelfRef:
		next = m.table
	case *tagtable.Table:
		next = a
	case tagtable.ListRef:
		t, err := a.List.TableWith(m.table.Cache(), a.Index, m.table.Mode())
		if err != nil {
			m.fail(ins, err)
			return
		}
		next = t
	}
	if next == nil {
		m.fail(ins, ErrBadArgument)
		return
	}

	results := m.results
	if results != nil && (ins.Cmd == tagtable.CmdTable || ins.Cmd == tagtable.CmdTableInList) {
		results = tagtable.NewResults()
	}
	m.push(next, results)
}

// record reports a successful match of a tagged instruction.
func (m *machine[C]) record(ins *tagtable.Instruction) {
	var res tagtable.Result
	switch {
	case ins.Flags&tagtable.AppendMatchedText != 0:
		res = tagtable.Result{
			Kind:  tagtable.TextResult,
			Tag:   ins.Tag,
			Left:  m.childStart,
			Right: m.childPosition,
			Text:  m.slice(m.childStart, m.childPosition),
		}
	case ins.Flags&tagtable.AppendTagValue != 0:
		res = tagtable.Result{Kind: tagtable.ValueResult, Tag: ins.Tag}
	default:
		children := m.childResults
		if children == m.results {
			children = nil
		}
		res = tagtable.Span(ins.Tag, m.childStart, m.childPosition, children)
	}
	m.childResults = nil

	switch {
	case ins.Flags&tagtable.CallTag != 0:
		tagger, ok := ins.Tag.(tagtable.Tagger)
		if !ok {
			m.fail(ins, ErrBadArgument)
			m.returnCode = errored
			return
		}
		if err := tagger.Tag(m.results, m.in, res); err != nil {
			m.fail(ins, fmt.Errorf("%w: %w", ErrCallback, err))
			m.returnCode = errored
		}
	case ins.Flags&tagtable.AppendToTag != 0:
		appender, ok := ins.Tag.(tagtable.Appender)
		if !ok {
			m.fail(ins, ErrBadArgument)
			m.returnCode = errored
			return
		}
		appender.Append(res)
	default:
		if m.results != nil {
			m.results.Append(res)
		}
	}
}

// slice returns the text between l and r, clamped to the text.
func (m *machine[C]) slice(l, r int) string {
	n := len(m.text)
	l = min(max(l, 0), n)
	r = min(max(r, l), n)
	return m.in.Slice(l, r)
}

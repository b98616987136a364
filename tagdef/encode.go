package tagdef

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/coregx/tagtext/charset"
	"github.com/coregx/tagtext/search"
	"github.com/coregx/tagtext/tagtable"
)

// ErrUnencodable indicates a definition holding Go values a document
// cannot express: callbacks, non-scalar tags, translated searchers.
var ErrUnencodable = errors.New("value has no YAML form")

// Encode writes main and every table reachable from it as a YAML
// document that Decode reads back. Compiled tables are exported with
// Table.Definition. Tables sharing a name are told apart by a numeric
// suffix.
func Encode(main tagtable.Source) ([]byte, error) {
	e := &encoder{
		names: make(map[any]string),
		used:  make(map[string]bool),
		lists: make(map[*tagtable.TableList]string),
		doc:   document{Tables: make(map[string][]rawEntry)},
	}
	name, err := e.name(main)
	if err != nil {
		return nil, err
	}
	e.doc.Main = name

	for len(e.queue) > 0 {
		item := e.queue[0]
		e.queue = e.queue[1:]
		if err := e.table(item); err != nil {
			return nil, err
		}
	}
	return yaml.Marshal(&e.doc)
}

type queued struct {
	name string
	def  *tagtable.Definition
}

type encoder struct {
	names map[any]string
	used  map[string]bool
	lists map[*tagtable.TableList]string
	doc   document
	queue []queued
}

// name returns the document name of a table, queueing it on first sight.
func (e *encoder) name(src tagtable.Source) (string, error) {
	if name, ok := e.names[src]; ok {
		return name, nil
	}
	var def *tagtable.Definition
	switch s := src.(type) {
	case *tagtable.Definition:
		def = s
	case *tagtable.Table:
		if s != nil {
			def = s.Definition()
		}
	}
	if def == nil {
		return "", fmt.Errorf("%w: table source %T", ErrUnencodable, src)
	}

	name := e.unique(def.Name)
	e.names[src] = name
	e.queue = append(e.queue, queued{name: name, def: def})
	return name, nil
}

func (e *encoder) unique(base string) string {
	if base == "" || base == thisTable {
		base = "table"
	}
	name := base
	for i := 2; e.used[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	e.used[name] = true
	return name
}

func (e *encoder) list(l *tagtable.TableList) (string, error) {
	if name, ok := e.lists[l]; ok {
		return name, nil
	}
	name := "list" + strconv.Itoa(len(e.lists))
	e.lists[l] = name

	items := make([]string, l.Len())
	for i := range items {
		src, err := l.Item(i)
		if err != nil {
			return "", err
		}
		if items[i], err = e.name(src); err != nil {
			return "", err
		}
	}
	if e.doc.Lists == nil {
		e.doc.Lists = make(map[string][]string)
	}
	e.doc.Lists[name] = items
	return name, nil
}

func (e *encoder) table(q queued) error {
	raws := make([]rawEntry, len(q.def.Entries))
	for i, entry := range q.def.Entries {
		raw, err := e.entry(entry)
		if err != nil {
			return &DecodeError{Path: fmt.Sprintf("tables.%s[%d]", q.name, i), Err: err}
		}
		raws[i] = raw
	}
	e.doc.Tables[q.name] = raws
	return nil
}

func (e *encoder) entry(entry tagtable.Entry) (rawEntry, error) {
	if entry.Cmd == 0 && entry.Label != "" {
		return rawEntry{Label: entry.Label}, nil
	}

	raw := rawEntry{
		Cmd:     entry.Code().String(),
		OnFail:  encodeJump(entry.OnFail, 0),
		OnMatch: encodeJump(entry.OnMatch, 1),
	}
	switch entry.Tag.(type) {
	case nil, string, int, int64, uint64, float64, bool:
		raw.Tag = entry.Tag
	default:
		return rawEntry{}, fmt.Errorf("%w: tag %T", ErrUnencodable, entry.Tag)
	}

	if err := e.argument(&raw, entry.Cmd, entry.Arg); err != nil {
		return rawEntry{}, err
	}
	return raw, nil
}

func (e *encoder) argument(raw *rawEntry, cmd tagtable.Command, arg any) error {
	switch cmd {
	case tagtable.CmdFail, tagtable.CmdEOF:
		return nil
	case tagtable.CmdAllInSet, tagtable.CmdIsInSet:
		return encodeSet(raw, arg)
	}

	switch a := arg.(type) {
	case string, int:
		raw.Arg = a
	case []byte:
		raw.Arg = string(a)
	case []rune:
		raw.Arg = string(a)
	case rune:
		raw.Arg = string(a)
	case byte:
		raw.Arg = string([]byte{a})
	case *charset.CharSet:
		raw.Arg = a.Definition()
	case *search.TextSearch:
		if a.Translate() != nil {
			return fmt.Errorf("%w: translated searcher", ErrUnencodable)
		}
		raw.Arg = a.Match()
		if a.Algorithm() != search.BoyerMoore {
			raw.Algorithm = a.Algorithm().String()
		}
	case *search.WordSet:
		raw.Words = a.Words()
	case tagtable.SelfRef:
		raw.Arg = thisTable
	case *tagtable.Definition, *tagtable.Table:
		name, err := e.name(a.(tagtable.Source))
		if err != nil {
			return err
		}
		raw.Arg = name
	case tagtable.ListRef:
		name, err := e.list(a.List)
		if err != nil {
			return err
		}
		raw.List, raw.Index = name, a.Index
	default:
		return fmt.Errorf("%w: %s argument %T", ErrUnencodable, cmd, arg)
	}
	return nil
}

// encodeSet writes a set as its members, or as its complement when that
// is shorter.
func encodeSet(raw *rawEntry, arg any) error {
	var s tagtable.Set
	switch a := arg.(type) {
	case tagtable.Set:
		s = a
	case *tagtable.Set:
		s = *a
	case string:
		copy(s[:], a)
	case []byte:
		copy(s[:], a)
	default:
		return fmt.Errorf("%w: set argument %T", ErrUnencodable, arg)
	}

	var in, out []byte
	for c := range 256 {
		if s.ContainsByte(byte(c)) {
			in = append(in, byte(c))
		} else {
			out = append(out, byte(c))
		}
	}
	if len(in) > len(out) {
		raw.Arg, raw.Negate = string(out), true
	} else {
		raw.Arg = string(in)
	}
	return nil
}

// encodeJump returns nil for omitted and default jumps.
func encodeJump(j tagtable.Jump, def int) interface{} {
	switch {
	case j.IsZero():
		return nil
	case j.Label() != "":
		return j.Label()
	case j.Offset() == def:
		return nil
	case j.Offset() == tagtable.MatchOK:
		return "MatchOK"
	case j.Offset() == tagtable.MatchFail:
		return "MatchFail"
	}
	return j.Offset()
}

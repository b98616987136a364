// Package tagdef reads and writes tag table definitions as YAML.
//
// A document maps table names to entry lists and names the table tagging
// starts with:
//
//	main: pairs
//	tables:
//	  pairs:
//	    - {tag: pair, cmd: Table, arg: pair}
//	    - {cmd: Is, arg: ";", on_fail: MatchOK, on_match: -1}
//	  pair:
//	    - {tag: key, cmd: AllNotIn, arg: "="}
//	    - {cmd: Is, arg: "="}
//	    - {tag: value, cmd: AllNotIn, arg: ";"}
//
// Entry fields:
//
//	label      jump target name; a label entry has no other fields
//	cmd        command name, optionally followed by "+Flag" suffixes
//	flags      further flag names
//	tag        scalar tag; with CallTag or AppendToTag, a name from Options
//	arg        the argument, interpreted per command (see below)
//	on_fail    jump: an offset, a label, MatchOK or MatchFail
//	on_match   same as on_fail
//
// Literal commands take a string; AllInSet and IsInSet take the member
// characters, inverted by "negate: true"; charset commands take a charset
// definition such as "a-zA-Z"; sWordStart, sWordEnd and sFindWord take a
// word and an optional "algorithm", or a "words" list; Table and SubTable
// take a table name or ThisTable; TableInList and SubTableInList take
// "list" and "index"; Call and CallArg take a function name from Options,
// CallArg with "args"; Skip, Move, Loop and LoopControl take an int or
// one of ToEOF, ToBOF, Break and Reset.
//
// Table lists are declared under "lists" as lists of table names.
package tagdef

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/coregx/tagtext/charset"
	"github.com/coregx/tagtext/search"
	"github.com/coregx/tagtext/tagtable"
)

// thisTable names the running table in Table and SubTable arguments.
const thisTable = "ThisTable"

type document struct {
	Main   string                `yaml:"main,omitempty"`
	Tables map[string][]rawEntry `yaml:"tables"`
	Lists  map[string][]string   `yaml:"lists,omitempty"`
}

type rawEntry struct {
	Label     string        `yaml:"label,omitempty"`
	Tag       interface{}   `yaml:"tag,omitempty"`
	Cmd       string        `yaml:"cmd,omitempty"`
	Flags     []string      `yaml:"flags,omitempty"`
	Arg       interface{}   `yaml:"arg,omitempty"`
	Negate    bool          `yaml:"negate,omitempty"`
	Algorithm string        `yaml:"algorithm,omitempty"`
	Words     []string      `yaml:"words,omitempty"`
	List      string        `yaml:"list,omitempty"`
	Index     int           `yaml:"index,omitempty"`
	Args      []interface{} `yaml:"args,omitempty"`
	OnFail    interface{}   `yaml:"on_fail,omitempty"`
	OnMatch   interface{}   `yaml:"on_match,omitempty"`
}

// Options supplies the Go values a document refers to by name.
type Options struct {
	// Funcs are the functions of Call and CallArg entries.
	Funcs map[string]tagtable.MatchFunc

	// Taggers are the tags of CallTag entries.
	Taggers map[string]tagtable.Tagger

	// Appenders are the tags of AppendToTag entries.
	Appenders map[string]tagtable.Appender
}

// File is a decoded document.
type File struct {
	// Main is the table tagging starts with.
	Main *tagtable.Definition

	// Tables holds every table by name, Main included.
	Tables map[string]*tagtable.Definition

	// Lists holds the declared table lists by name.
	Lists map[string]*tagtable.TableList
}

// Names returns the table names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Tables))
	for name := range f.Tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DecodeReader decodes the document read from r.
func DecodeReader(r io.Reader, opts *Options) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data, opts)
}

// Decode decodes a YAML document into definitions. Tables may refer to
// each other in any order, and to themselves.
//
// Unknown fields are errors. All errors are *DecodeError.
func Decode(data []byte, opts *Options) (*File, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrSyntax, err)}
	}
	if len(doc.Tables) == 0 {
		return nil, decodeError("tables", ErrSyntax, "no tables")
	}

	d := &decoder{
		tables: make(map[string]*tagtable.Definition, len(doc.Tables)),
		lists:  make(map[string]*tagtable.TableList, len(doc.Lists)),
	}
	if opts != nil {
		d.opts = *opts
	}

	// Create every definition first so entries can refer to any of them.
	names := sortedKeys(doc.Tables)
	for _, name := range names {
		if name == "" || name == thisTable {
			return nil, decodeError("tables", ErrReservedName, "%q", name)
		}
		d.tables[name] = &tagtable.Definition{Name: name}
	}
	for _, name := range sortedKeys(doc.Lists) {
		list := tagtable.NewTableList()
		for i, item := range doc.Lists[name] {
			def, ok := d.tables[item]
			if !ok {
				return nil, decodeError(fmt.Sprintf("lists.%s[%d]", name, i), ErrUnknownTable, "%q", item)
			}
			list.Append(def)
		}
		d.lists[name] = list
	}

	for _, name := range names {
		raws := doc.Tables[name]
		entries := make([]tagtable.Entry, len(raws))
		for i, raw := range raws {
			e, err := d.entry(fmt.Sprintf("tables.%s[%d]", name, i), raw)
			if err != nil {
				return nil, err
			}
			entries[i] = e
		}
		d.tables[name].Entries = entries
	}

	f := &File{Tables: d.tables, Lists: d.lists}
	switch {
	case doc.Main != "":
		f.Main = d.tables[doc.Main]
		if f.Main == nil {
			return nil, decodeError("main", ErrNoMain, "table %q not defined", doc.Main)
		}
	case len(names) == 1:
		f.Main = d.tables[names[0]]
	default:
		return nil, decodeError("main", ErrNoMain, "")
	}
	return f, nil
}

type decoder struct {
	opts   Options
	tables map[string]*tagtable.Definition
	lists  map[string]*tagtable.TableList
}

func (d *decoder) entry(path string, raw rawEntry) (tagtable.Entry, error) {
	if raw.Cmd == "" {
		if raw.Label == "" {
			return tagtable.Entry{}, decodeError(path, ErrSyntax, "entry has neither cmd nor label")
		}
		if raw.Tag != nil || raw.Arg != nil || len(raw.Flags) > 0 || raw.OnFail != nil || raw.OnMatch != nil {
			return tagtable.Entry{}, decodeError(path, ErrSyntax, "label entry %q has other fields", raw.Label)
		}
		return tagtable.Label(raw.Label), nil
	}
	if raw.Label != "" {
		return tagtable.Entry{}, decodeError(path, ErrSyntax, "entry has both cmd and label")
	}

	cmd, flags, err := parseCode(path+".cmd", raw.Cmd, raw.Flags)
	if err != nil {
		return tagtable.Entry{}, err
	}
	tag, err := d.tag(path+".tag", raw.Tag, flags)
	if err != nil {
		return tagtable.Entry{}, err
	}
	arg, err := d.argument(path, cmd, raw)
	if err != nil {
		return tagtable.Entry{}, err
	}
	onFail, err := parseJump(path+".on_fail", raw.OnFail)
	if err != nil {
		return tagtable.Entry{}, err
	}
	onMatch, err := parseJump(path+".on_match", raw.OnMatch)
	if err != nil {
		return tagtable.Entry{}, err
	}

	return tagtable.Entry{
		Tag:     tag,
		Cmd:     cmd,
		Flags:   flags,
		Arg:     arg,
		OnFail:  onFail,
		OnMatch: onMatch,
	}, nil
}

// parseCode reads "Cmd+Flag+Flag" plus the separate flag list.
func parseCode(path, code string, extra []string) (tagtable.Command, tagtable.Flags, error) {
	parts := strings.Split(code, "+")
	cmd, ok := tagtable.ParseCommand(parts[0])
	if !ok {
		return 0, 0, decodeError(path, ErrCommand, "%q", parts[0])
	}
	var flags tagtable.Flags
	for _, name := range append(parts[1:], extra...) {
		f, ok := tagtable.ParseFlag(name)
		if !ok {
			return 0, 0, decodeError(path, ErrFlag, "%q", name)
		}
		flags |= f
	}
	return cmd, flags, nil
}

func (d *decoder) tag(path string, tag interface{}, flags tagtable.Flags) (any, error) {
	if tag == nil {
		return nil, nil
	}
	switch {
	case flags&tagtable.CallTag != 0:
		name, ok := tag.(string)
		t := d.opts.Taggers[name]
		if !ok || t == nil {
			return nil, decodeError(path, ErrUnknownFunc, "tagger %v", tag)
		}
		return t, nil
	case flags&tagtable.AppendToTag != 0:
		name, ok := tag.(string)
		a := d.opts.Appenders[name]
		if !ok || a == nil {
			return nil, decodeError(path, ErrUnknownFunc, "appender %v", tag)
		}
		return a, nil
	}
	switch tag.(type) {
	case string, int, int64, uint64, float64, bool:
		return tag, nil
	}
	return nil, decodeError(path, ErrArgument, "tag must be a scalar, got %T", tag)
}

func (d *decoder) argument(path string, cmd tagtable.Command, raw rawEntry) (any, error) {
	argPath := path + ".arg"
	switch cmd {
	case tagtable.CmdFail, tagtable.CmdEOF:
		return nil, nil

	case tagtable.CmdIs, tagtable.CmdIsIn, tagtable.CmdIsNotIn, tagtable.CmdAllIn, tagtable.CmdAllNotIn,
		tagtable.CmdWord, tagtable.CmdWordStart, tagtable.CmdWordEnd, tagtable.CmdJumpTarget:
		return stringArg(argPath, cmd, raw.Arg)

	case tagtable.CmdAllInSet, tagtable.CmdIsInSet:
		s, err := stringArg(argPath, cmd, raw.Arg)
		if err != nil {
			return nil, err
		}
		return tagtable.NewSet(s, !raw.Negate), nil

	case tagtable.CmdAllInCharSet, tagtable.CmdIsInCharSet:
		s, err := stringArg(argPath, cmd, raw.Arg)
		if err != nil {
			return nil, err
		}
		cs, err := charset.New(s)
		if err != nil {
			return nil, decodeError(argPath, ErrArgument, "%v", err)
		}
		return cs, nil

	case tagtable.CmdSWordStart, tagtable.CmdSWordEnd, tagtable.CmdSFindWord:
		return searcherArg(path, cmd, raw)

	case tagtable.CmdTable, tagtable.CmdSubTable:
		name, err := stringArg(argPath, cmd, raw.Arg)
		if err != nil {
			return nil, err
		}
		if name == thisTable {
			return tagtable.ThisTable, nil
		}
		def, ok := d.tables[name]
		if !ok {
			return nil, decodeError(argPath, ErrUnknownTable, "%q", name)
		}
		return def, nil

	case tagtable.CmdTableInList, tagtable.CmdSubTableInList:
		list, ok := d.lists[raw.List]
		if !ok {
			return nil, decodeError(path+".list", ErrUnknownList, "%q", raw.List)
		}
		return tagtable.ListRef{List: list, Index: raw.Index}, nil

	case tagtable.CmdCall, tagtable.CmdCallArg:
		name, err := stringArg(argPath, cmd, raw.Arg)
		if err != nil {
			return nil, err
		}
		fn := d.opts.Funcs[name]
		if fn == nil {
			return nil, decodeError(argPath, ErrUnknownFunc, "%q", name)
		}
		if cmd == tagtable.CmdCall {
			return fn, nil
		}
		return tagtable.CallArgs{Fn: fn, Args: raw.Args}, nil

	case tagtable.CmdSkip, tagtable.CmdMove, tagtable.CmdLoop, tagtable.CmdLoopControl:
		return intArg(argPath, cmd, raw.Arg)
	}
	return nil, decodeError(path+".cmd", ErrCommand, "%v", cmd)
}

func stringArg(path string, cmd tagtable.Command, arg interface{}) (string, error) {
	s, ok := arg.(string)
	if !ok {
		return "", decodeError(path, ErrArgument, "%s needs a string, got %T", cmd, arg)
	}
	return s, nil
}

// intNames are the named int arguments.
var intNames = map[string]int{
	"ToEOF": tagtable.ToEOF,
	"ToBOF": tagtable.ToBOF,
	"Break": tagtable.Break,
	"Reset": tagtable.Reset,
}

func intArg(path string, cmd tagtable.Command, arg interface{}) (int, error) {
	switch a := arg.(type) {
	case int:
		return a, nil
	case string:
		if n, ok := intNames[a]; ok {
			return n, nil
		}
	}
	return 0, decodeError(path, ErrArgument, "%s needs an int, got %v", cmd, arg)
}

var algorithms = map[string]search.Algorithm{
	"":           search.BoyerMoore,
	"BoyerMoore": search.BoyerMoore,
	"Fast":       search.Fast,
	"Trivial":    search.Trivial,
}

func searcherArg(path string, cmd tagtable.Command, raw rawEntry) (search.Searcher, error) {
	if len(raw.Words) > 0 {
		if raw.Arg != nil {
			return nil, decodeError(path, ErrArgument, "%s takes arg or words, not both", cmd)
		}
		ws, err := search.NewWordSet(raw.Words...)
		if err != nil {
			return nil, decodeError(path+".words", ErrArgument, "%v", err)
		}
		return ws, nil
	}

	word, err := stringArg(path+".arg", cmd, raw.Arg)
	if err != nil {
		return nil, err
	}
	algo, ok := algorithms[raw.Algorithm]
	if !ok {
		return nil, decodeError(path+".algorithm", ErrArgument, "unknown algorithm %q", raw.Algorithm)
	}
	ts, err := search.New(word, algo)
	if err != nil {
		return nil, decodeError(path+".arg", ErrArgument, "%v", err)
	}
	return ts, nil
}

// jumpNames are the named jump offsets.
var jumpNames = map[string]int{
	"MatchOK":   tagtable.MatchOK,
	"MatchFail": tagtable.MatchFail,
}

func parseJump(path string, v interface{}) (tagtable.Jump, error) {
	switch j := v.(type) {
	case nil:
		return tagtable.Jump{}, nil
	case int:
		return tagtable.To(j), nil
	case string:
		if n, ok := jumpNames[j]; ok {
			return tagtable.To(n), nil
		}
		if j != "" {
			return tagtable.ToLabel(j), nil
		}
	}
	return tagtable.Jump{}, decodeError(path, ErrJump, "%v", v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Package codegen emits Go source that rebuilds tag table definitions.
//
// The generated function returns a fresh *tagtable.Definition graph equal
// to the input: every table reachable from the main one becomes a local
// variable, so recursive and mutually recursive tables survive the trip.
// Compiled tables are exported with Table.Definition first.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/coregx/tagtext/charset"
	"github.com/coregx/tagtext/search"
	"github.com/coregx/tagtext/tagtable"
)

const (
	tagtablePkg = "github.com/coregx/tagtext/tagtable"
	charsetPkg  = "github.com/coregx/tagtext/charset"
	searchPkg   = "github.com/coregx/tagtext/search"
)

// ErrUnsupported indicates a definition holding values that have no
// source form, such as callbacks or translated searchers.
var ErrUnsupported = errors.New("codegen: value has no source form")

// Config holds the configuration for code generation.
type Config struct {
	Package string // package of the generated file
	Func    string // name of the generated function; default "Definition"
	Source  string // where the definition came from, for the header comment
}

// Generator emits one definition graph into a jen.File.
type Generator struct {
	config    Config
	file      *jen.File
	vars      map[any]string
	used      map[string]bool
	lists     map[*tagtable.TableList]string
	tables    []*table
	listOrder []*list
}

type table struct {
	v   string
	def *tagtable.Definition
}

type list struct {
	v     string
	items []string
}

// New creates a new generator.
func New(config Config) *Generator {
	if config.Func == "" {
		config.Func = "Definition"
	}
	if config.Package == "" {
		config.Package = "tables"
	}
	return &Generator{
		config: config,
		file:   jen.NewFile(config.Package),
		vars:   make(map[any]string),
		used:   make(map[string]bool),
		lists:  make(map[*tagtable.TableList]string),
	}
}

// Generate adds the function rebuilding main and everything it refers to.
func (g *Generator) Generate(main tagtable.Source) error {
	mainVar, err := g.variable(main)
	if err != nil {
		return err
	}

	// Entries may queue further tables; g.tables grows while we walk it.
	entries := make([]jen.Code, 0)
	for i := 0; i < len(g.tables); i++ {
		t := g.tables[i]
		values := make([]jen.Code, len(t.def.Entries))
		for j, e := range t.def.Entries {
			v, err := g.entry(e)
			if err != nil {
				return fmt.Errorf("table %q entry %d: %w", t.def.Name, j, err)
			}
			values[j] = v
		}
		entries = append(entries, jen.Id(t.v).Dot("Entries").Op("=").
			Index().Qual(tagtablePkg, "Entry").ValuesFunc(func(grp *jen.Group) {
			for _, v := range values {
				grp.Add(v)
			}
		}))
	}

	var body []jen.Code
	for _, t := range g.tables {
		body = append(body, jen.Id(t.v).Op(":=").Op("&").Qual(tagtablePkg, "Definition").Values(jen.Dict{
			jen.Id("Name"): jen.Lit(t.def.Name),
		}))
	}
	for _, l := range g.listOrder {
		items := make([]jen.Code, len(l.items))
		for i, item := range l.items {
			items[i] = jen.Id(item)
		}
		body = append(body, jen.Id(l.v).Op(":=").Qual(tagtablePkg, "NewTableList").Call(items...))
	}
	body = append(body, entries...)
	body = append(body, jen.Return(jen.Id(mainVar)))

	if g.config.Source != "" {
		g.file.HeaderComment(fmt.Sprintf("Code generated by tagtext from %s. DO NOT EDIT.", g.config.Source))
	} else {
		g.file.HeaderComment("Code generated by tagtext. DO NOT EDIT.")
	}
	name := g.tables[0].def.Name
	g.file.Comment(fmt.Sprintf("%s returns a new copy of the %q tag table definition.", g.config.Func, name))
	g.file.Func().Id(g.config.Func).Params().Op("*").Qual(tagtablePkg, "Definition").Block(body...)
	return nil
}

// Render writes the formatted source.
func (g *Generator) Render(w io.Writer) error {
	return g.file.Render(w)
}

// Save writes the formatted source to path.
func (g *Generator) Save(path string) error {
	return g.file.Save(path)
}

// Generate renders the source of a function rebuilding main.
func Generate(w io.Writer, main tagtable.Source, config Config) error {
	g := New(config)
	if err := g.Generate(main); err != nil {
		return err
	}
	return g.Render(w)
}

// variable returns the local variable holding a table, queueing the table
// on first sight.
func (g *Generator) variable(src tagtable.Source) (string, error) {
	if v, ok := g.vars[src]; ok {
		return v, nil
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
		return "", fmt.Errorf("%w: table source %T", ErrUnsupported, src)
	}

	v := g.unique(identifier(def.Name) + "Def")
	g.vars[src] = v
	g.tables = append(g.tables, &table{v: v, def: def})
	return v, nil
}

func (g *Generator) list(l *tagtable.TableList) (string, error) {
	if v, ok := g.lists[l]; ok {
		return v, nil
	}
	v := g.unique("list" + strconv.Itoa(len(g.lists)))
	g.lists[l] = v

	items := make([]string, l.Len())
	for i := range items {
		src, err := l.Item(i)
		if err != nil {
			return "", err
		}
		if items[i], err = g.variable(src); err != nil {
			return "", err
		}
	}
	g.listOrder = append(g.listOrder, &list{v: v, items: items})
	return v, nil
}

func (g *Generator) unique(base string) string {
	v := base
	for i := 2; g.used[v]; i++ {
		v = base + strconv.Itoa(i)
	}
	g.used[v] = true
	return v
}

// identifier turns a table name into a lowerCamel Go identifier.
func identifier(name string) string {
	var sb strings.Builder
	upper := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if sb.Len() == 0 {
				r = unicode.ToLower(r)
			} else if upper {
				r = unicode.ToUpper(r)
			}
			sb.WriteRune(r)
			upper = false
		default:
			upper = sb.Len() > 0
		}
	}
	s := sb.String()
	if s == "" || unicode.IsDigit([]rune(s)[0]) {
		s = "table" + s
	}
	return s
}

func (g *Generator) entry(e tagtable.Entry) (jen.Code, error) {
	if e.Cmd == 0 && e.Label != "" {
		return jen.Qual(tagtablePkg, "Label").Call(jen.Lit(e.Label)), nil
	}

	d := jen.Dict{
		jen.Id("Cmd"): jen.Qual(tagtablePkg, cmdIdent(e.Cmd)),
	}
	if e.Tag != nil {
		tag, err := literal(e.Tag)
		if err != nil {
			return nil, fmt.Errorf("tag: %w", err)
		}
		d[jen.Id("Tag")] = tag
	}
	if e.Flags != 0 {
		d[jen.Id("Flags")] = flags(e.Flags)
	}
	if e.Cmd != tagtable.CmdFail && e.Cmd != tagtable.CmdEOF && e.Arg != nil {
		arg, err := g.argument(e.Cmd, e.Arg)
		if err != nil {
			return nil, err
		}
		d[jen.Id("Arg")] = arg
	}
	if j := jump(e.OnFail, 0); j != nil {
		d[jen.Id("OnFail")] = j
	}
	if j := jump(e.OnMatch, 1); j != nil {
		d[jen.Id("OnMatch")] = j
	}
	return jen.Values(d), nil
}

// cmdIdent returns the name of the tagtable constant for cmd.
func cmdIdent(cmd tagtable.Command) string {
	name := cmd.String()
	if strings.HasPrefix(name, "s") {
		// sWordStart -> CmdSWordStart
		name = "S" + name[1:]
	}
	return "Cmd" + name
}

func flags(f tagtable.Flags) jen.Code {
	var parts []jen.Code
	for _, name := range strings.Split(f.String(), "+") {
		if strings.HasPrefix(name, "0x") {
			v, _ := strconv.ParseUint(name[2:], 16, 32)
			parts = append(parts, jen.Qual(tagtablePkg, "Flags").Call(jen.Lit(int(v))))
			continue
		}
		parts = append(parts, jen.Qual(tagtablePkg, name))
	}
	return jen.Add(parts[0]).Do(func(s *jen.Statement) {
		for _, p := range parts[1:] {
			s.Op("|").Add(p)
		}
	})
}

var jumpConsts = map[int]string{
	tagtable.MatchOK:   "MatchOK",
	tagtable.MatchFail: "MatchFail",
}

// jump returns nil for omitted and default jumps.
func jump(j tagtable.Jump, def int) jen.Code {
	switch {
	case j.IsZero():
		return nil
	case j.Label() != "":
		return jen.Qual(tagtablePkg, "ToLabel").Call(jen.Lit(j.Label()))
	case j.Offset() == def:
		return nil
	}
	if name, ok := jumpConsts[j.Offset()]; ok {
		return jen.Qual(tagtablePkg, "To").Call(jen.Qual(tagtablePkg, name))
	}
	return jen.Qual(tagtablePkg, "To").Call(jen.Lit(j.Offset()))
}

// literal renders scalar values.
func literal(v any) (jen.Code, error) {
	switch x := v.(type) {
	case string, int, int64, uint64, float64, bool:
		return jen.Lit(x), nil
	case []byte:
		return jen.Index().Byte().Parens(jen.Lit(string(x))), nil
	case []rune:
		return jen.Index().Rune().Parens(jen.Lit(string(x))), nil
	case rune:
		return jen.LitRune(x), nil
	case byte:
		return jen.Byte().Parens(jen.Lit(int(x))), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
}

func (g *Generator) argument(cmd tagtable.Command, arg any) (jen.Code, error) {
	switch a := arg.(type) {
	case tagtable.Set:
		return setLiteral(a), nil
	case *tagtable.Set:
		if a != nil {
			return setLiteral(*a), nil
		}
	case *charset.CharSet:
		if a != nil {
			return jen.Qual(charsetPkg, "MustNew").Call(jen.Lit(a.Definition())), nil
		}
	case *search.TextSearch:
		if a == nil || a.Translate() != nil {
			break
		}
		return jen.Qual(searchPkg, "MustNew").Call(jen.Lit(a.Match()), jen.Qual(searchPkg, a.Algorithm().String())), nil
	case *search.WordSet:
		if a == nil {
			break
		}
		words := a.Words()
		lits := make([]jen.Code, len(words))
		for i, w := range words {
			lits[i] = jen.Lit(w)
		}
		return jen.Qual(searchPkg, "MustNewWordSet").Call(lits...), nil
	case tagtable.SelfRef:
		return jen.Qual(tagtablePkg, "ThisTable"), nil
	case *tagtable.Definition, *tagtable.Table:
		v, err := g.variable(a.(tagtable.Source))
		if err != nil {
			return nil, err
		}
		return jen.Id(v), nil
	case tagtable.ListRef:
		v, err := g.list(a.List)
		if err != nil {
			return nil, err
		}
		return jen.Qual(tagtablePkg, "ListRef").Values(jen.Dict{
			jen.Id("List"):  jen.Id(v),
			jen.Id("Index"): jen.Lit(a.Index),
		}), nil
	case string:
		if cmd == tagtable.CmdAllInSet || cmd == tagtable.CmdIsInSet {
			var s tagtable.Set
			copy(s[:], a)
			return setLiteral(s), nil
		}
		return jen.Lit(a), nil
	case int:
		return intLiteral(cmd, a), nil
	default:
		return literal(arg)
	}
	return nil, fmt.Errorf("%w: %s argument %T", ErrUnsupported, cmd, arg)
}

// intLiteral names the special Move and LoopControl arguments.
func intLiteral(cmd tagtable.Command, n int) jen.Code {
	switch {
	case cmd == tagtable.CmdMove && n == tagtable.ToEOF:
		return jen.Qual(tagtablePkg, "ToEOF")
	case cmd == tagtable.CmdMove && n == tagtable.ToBOF:
		return jen.Qual(tagtablePkg, "ToBOF")
	case cmd == tagtable.CmdLoopControl && n == tagtable.Break:
		return jen.Qual(tagtablePkg, "Break")
	case cmd == tagtable.CmdLoopControl && n == tagtable.Reset:
		return jen.Qual(tagtablePkg, "Reset")
	}
	return jen.Lit(n)
}

// setLiteral rebuilds a set from its members, or from its complement
// when that is shorter.
func setLiteral(s tagtable.Set) jen.Code {
	var in, out []byte
	for c := range 256 {
		if s.ContainsByte(byte(c)) {
			in = append(in, byte(c))
		} else {
			out = append(out, byte(c))
		}
	}
	if len(in) > len(out) {
		return jen.Qual(tagtablePkg, "NewSet").Call(jen.Lit(string(out)), jen.False())
	}
	return jen.Qual(tagtablePkg, "NewSet").Call(jen.Lit(string(in)), jen.True())
}

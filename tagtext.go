// Package tagtext is a table-driven text tagging engine.
//
// A tag table is a flat list of match instructions. Tagging walks the text
// from a start position, executing one instruction at a time: each either
// matches at the scan head (usually advancing it) or fails, and its fail or
// match jump selects the next instruction. Matched spans of tagged
// instructions are recorded in a result list; Table and SubTable
// instructions run another table at the scan head. Nesting depth is
// bounded by memory, not by the goroutine stack.
//
// Basic usage:
//
//	def := tagtable.NewDefinition("words",
//	    tagtable.Entry{Tag: "word", Cmd: tagtable.CmdAllIn, Arg: "abcdefghijklmnopqrstuvwxyz"},
//	    tagtable.Entry{Cmd: tagtable.CmdAllIn, Arg: " ", OnFail: tagtable.To(1), OnMatch: tagtable.To(-1)},
//	)
//	tt := tagtext.MustCompile(def)
//
//	results := tagtable.NewResults()
//	ok, next, err := tt.Tag([]byte("hello world"), results)
//
// Tables compile once per definition and mode; compiled tables are cached
// and safe for concurrent use.
//
// Result helpers turn result lists back into text: Join concatenates
// literal strings and slices of a source text, JoinList expands a sparse
// list of replacements into such a join list, and Replace and
// MultiReplace build on both.
package tagtext

import (
	"fmt"

	"github.com/coregx/tagtext/tagtable"
	"github.com/coregx/tagtext/vm"
)

// TagTable is a compiled tag table ready for tagging.
//
// A TagTable is safe to use concurrently from multiple goroutines.
//
// Example:
//
//	tt := tagtext.MustCompile(def)
//	ok, next, err := tt.Tag([]byte("text"), nil)
type TagTable struct {
	table   *tagtable.Table
	context any
}

// Compile compiles def for narrow ([]byte) text using the process-wide
// cache.
//
// Example:
//
//	tt, err := tagtext.Compile(def)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(def *tagtable.Definition) (*TagTable, error) {
	return compile(tagtable.DefaultCache(), def, tagtable.Narrow, true)
}

// CompileWide compiles def for wide ([]rune) text using the process-wide
// cache.
func CompileWide(def *tagtable.Definition) (*TagTable, error) {
	return compile(tagtable.DefaultCache(), def, tagtable.Wide, true)
}

// MustCompile compiles def for narrow text and panics if it fails.
//
// This is useful for tables built from literals at package init.
func MustCompile(def *tagtable.Definition) *TagTable {
	tt, err := Compile(def)
	if err != nil {
		panic(fmt.Sprintf("tagtext: Compile(%v): %v", def, err))
	}
	return tt
}

// CompileWithConfig compiles def as configured: Wide selects the mode,
// Cacheable the use of a cache of CacheCapacity tables private to this
// call. Use a Compiler to share a cache across calls.
func CompileWithConfig(def *tagtable.Definition, config Config) (*TagTable, error) {
	c, err := NewCompiler(config)
	if err != nil {
		return nil, err
	}
	return c.Compile(def)
}

func compile(cache *tagtable.Cache, def *tagtable.Definition, mode tagtable.Mode, cacheable bool) (*TagTable, error) {
	t, err := cache.Compile(def, mode, cacheable)
	if err != nil {
		return nil, err
	}
	return &TagTable{table: t}, nil
}

// New wraps an already compiled table.
func New(t *tagtable.Table) *TagTable {
	return &TagTable{table: t}
}

// Compiler compiles definitions with a fixed configuration and its own
// cache.
type Compiler struct {
	config Config
	cache  *tagtable.Cache
}

// NewCompiler returns a compiler for config, or a *ConfigError.
func NewCompiler(config Config) (*Compiler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Compiler{
		config: config,
		cache:  tagtable.NewCache(config.CacheCapacity),
	}, nil
}

// Compile compiles def in the configured mode.
func (c *Compiler) Compile(def *tagtable.Definition) (*TagTable, error) {
	return compile(c.cache, def, c.config.mode(), c.config.Cacheable)
}

// Cache returns the compiler's table cache.
func (c *Compiler) Cache() *tagtable.Cache {
	return c.cache
}

// Table returns the compiled table.
func (t *TagTable) Table() *tagtable.Table {
	return t.table
}

// Mode returns the character width the table accepts.
func (t *TagTable) Mode() tagtable.Mode {
	return t.table.Mode()
}

// String returns the table name.
func (t *TagTable) String() string {
	return t.table.Name()
}

// WithContext returns a copy of t whose callbacks receive ctx as
// tagtable.Input.Context.
func (t *TagTable) WithContext(ctx any) *TagTable {
	return &TagTable{table: t.table, context: ctx}
}

// Tag tags all of text, appending results to dst (nil discards them).
//
// It returns whether the table matched and the next position: where
// tagging stopped on success, or how far it got on failure. Results added
// by a failed run are removed again.
func (t *TagTable) Tag(text []byte, dst *tagtable.Results) (bool, int, error) {
	return vm.Run(text, 0, len(text), t.table, dst, t.context)
}

// TagSlice tags text[start:end]. Positions in results and the returned
// next position are indices into text.
//
// Slice bounds are normalized: end past the text is clamped, negative
// values count back from the end.
func (t *TagTable) TagSlice(text []byte, start, end int, dst *tagtable.Results) (bool, int, error) {
	return vm.Run(text, start, end, t.table, dst, t.context)
}

// TagString tags s. Convenience for TagSlice over []byte(s).
func (t *TagTable) TagString(s string, dst *tagtable.Results) (bool, int, error) {
	return t.Tag([]byte(s), dst)
}

// TagRunes tags all of text with a wide table.
func (t *TagTable) TagRunes(text []rune, dst *tagtable.Results) (bool, int, error) {
	return vm.Run(text, 0, len(text), t.table, dst, t.context)
}

// TagRunesSlice tags text[start:end] with a wide table.
func (t *TagTable) TagRunesSlice(text []rune, start, end int, dst *tagtable.Results) (bool, int, error) {
	return vm.Run(text, start, end, t.table, dst, t.context)
}

// Tag compiles def (cached) and tags text[start:end] into a new result
// list, mirroring the classic tag(text, table, start, end) call.
func Tag(text []byte, def *tagtable.Definition, start, end int) (bool, *tagtable.Results, int, error) {
	tt, err := Compile(def)
	if err != nil {
		return false, nil, 0, err
	}
	results := tagtable.NewResults()
	ok, next, err := tt.TagSlice(text, start, end, results)
	return ok, results, next, err
}

// TagDict tags text[start:end] and maps each tagged span to its text. Keys
// are the tags formatted with fmt.Sprint; spans nested in a Table call's
// results are keyed "parent.child". Later spans overwrite earlier ones
// with the same key. The map is nil when the table did not match.
func (t *TagTable) TagDict(text []byte, start, end int) (bool, map[string]string, int, error) {
	results := tagtable.NewResults()
	ok, next, err := t.TagSlice(text, start, end, results)
	if err != nil || !ok {
		return false, nil, next, err
	}
	dict := make(map[string]string)
	tagDict(text, dict, "", results)
	return true, dict, next, nil
}

func tagDict(text []byte, dict map[string]string, prefix string, results *tagtable.Results) {
	for _, res := range *results {
		if res.Kind != tagtable.SpanResult {
			continue
		}
		key := prefix + fmt.Sprint(res.Tag)
		dict[key] = string(clip(text, res.Left, res.Right))
		if res.Children != nil {
			tagDict(text, dict, key+".", res.Children)
		}
	}
}

// clip returns text[l:r] with both bounds clamped to the text.
func clip[C byte | rune](text []C, l, r int) []C {
	l = min(max(l, 0), len(text))
	r = min(max(r, l), len(text))
	return text[l:r]
}

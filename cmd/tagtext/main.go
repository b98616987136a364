// Command tagtext tags text with tag tables read from YAML definitions.
//
// Usage:
//
//	tagtext tag  -def pairs.yaml [-table name] [-wide] [-dict] [file]
//	tagtext dump -def pairs.yaml [-table name] [-wide] [-yaml]
//	tagtext gen  -def pairs.yaml [-table name] [-pkg tables] [-func Definition] [-o out.go]
//
// tag reads the text from file, or from stdin when no file is given, and
// prints the result tree. It exits with status 1 when the table does not
// match.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/coregx/tagtext"
	"github.com/coregx/tagtext/codegen"
	"github.com/coregx/tagtext/tagdef"
	"github.com/coregx/tagtext/tagtable"
)

const appName = "tagtext"

// errNoMatch makes tag exit with status 1 without printing an error.
var errNoMatch = errors.New("no match")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printHelp(stderr)
		return 2
	}

	var cmd func(*options, []string) error
	switch args[0] {
	case "tag":
		cmd = cmdTag
	case "dump":
		cmd = cmdDump
	case "gen":
		cmd = cmdGen
	case "help", "-h", "-help", "--help":
		printHelp(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		printHelp(stderr)
		return 2
	}

	opts := &options{stdin: stdin, stdout: stdout, stderr: stderr}
	fs := opts.flags(args[0])
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if opts.def == "" {
		fmt.Fprintf(stderr, "Error: -def flag is required\n")
		return 2
	}
	opts.log = NewLogger(opts.verbose, stderr)

	if err := cmd(opts, fs.Args()); err != nil {
		if errors.Is(err, errNoMatch) {
			return 1
		}
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

type options struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	log            *Logger

	def     string
	table   string
	wide    bool
	verbose bool

	dict     bool
	yaml     bool
	pkg      string
	funcName string
	output   string
}

func (o *options) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(appName+" "+name, flag.ContinueOnError)
	fs.SetOutput(o.stderr)
	fs.StringVar(&o.def, "def", "", "YAML file with the tag table definitions")
	fs.StringVar(&o.table, "table", "", "table to use instead of the document's main table")
	fs.BoolVar(&o.wide, "wide", false, "compile for Unicode text instead of bytes")
	fs.BoolVar(&o.verbose, "v", false, "log progress to stderr")

	switch name {
	case "tag":
		fs.BoolVar(&o.dict, "dict", false, "print tagged spans as key: text lines")
	case "dump":
		fs.BoolVar(&o.yaml, "yaml", false, "print the compiled tables as YAML instead of a listing")
	case "gen":
		fs.StringVar(&o.pkg, "pkg", "tables", "package of the generated file")
		fs.StringVar(&o.funcName, "func", "Definition", "name of the generated function")
		fs.StringVar(&o.output, "o", "", "output file (default stdout)")
	}
	return fs
}

// load decodes the definition file and returns the selected table.
func (o *options) load() (*tagtable.Definition, error) {
	o.log.Section("Definitions")
	data, err := os.ReadFile(o.def)
	if err != nil {
		return nil, err
	}
	f, err := tagdef.Decode(data, nil)
	if err != nil {
		return nil, err
	}
	o.log.Log("File: %s", o.def)
	o.log.Log("Tables: %v", f.Names())
	if o.log.Enabled() {
		for _, name := range f.Names() {
			o.log.Log("  %s: %d entries", name, len(f.Tables[name].Entries))
		}
	}

	def := f.Main
	if o.table != "" {
		var ok bool
		if def, ok = f.Tables[o.table]; !ok {
			return nil, fmt.Errorf("table %q not defined in %s", o.table, o.def)
		}
	}
	o.log.Log("Main table: %s", def.Name)
	return def, nil
}

func (o *options) compile(def *tagtable.Definition) (*tagtext.TagTable, error) {
	config := tagtext.DefaultConfig()
	config.Wide = o.wide
	c, err := tagtext.NewCompiler(config)
	if err != nil {
		return nil, err
	}
	tt, err := c.Compile(def)
	if err != nil {
		return nil, err
	}
	o.log.Log("Compiled %d tables (%s)", c.Cache().Size(), tt.Mode())
	return tt, nil
}

func cmdTag(o *options, args []string) error {
	def, err := o.load()
	if err != nil {
		return err
	}
	tt, err := o.compile(def)
	if err != nil {
		return err
	}

	var text []byte
	switch len(args) {
	case 0:
		text, err = io.ReadAll(o.stdin)
	case 1:
		text, err = os.ReadFile(args[0])
	default:
		return fmt.Errorf("tag takes at most one input file, got %d", len(args))
	}
	if err != nil {
		return err
	}

	o.log.Section("Tagging")
	o.log.Log("Input: %d bytes", len(text))

	if o.dict {
		if o.wide {
			return errors.New("-dict supports byte tables only")
		}
		ok, dict, next, err := tt.TagDict(text, 0, len(text))
		if err != nil {
			return err
		}
		o.log.Log("Matched: %v, next: %d", ok, next)
		if !ok {
			return errNoMatch
		}
		for _, k := range slices.Sorted(maps.Keys(dict)) {
			fmt.Fprintf(o.stdout, "%s: %q\n", k, dict[k])
		}
		return nil
	}

	results := tagtable.NewResults()
	var in tagtable.Input
	var ok bool
	var next int
	if o.wide {
		runes := []rune(string(text))
		in.Runes = runes
		ok, next, err = tt.TagRunes(runes, results)
	} else {
		in.Bytes = text
		ok, next, err = tt.Tag(text, results)
	}
	if err != nil {
		return err
	}
	o.log.Log("Matched: %v, next: %d, results: %d", ok, next, results.Len())
	if !ok {
		fmt.Fprintf(o.stdout, "no match (stopped at %d)\n", next)
		return errNoMatch
	}
	fmt.Fprintf(o.stdout, "match (next %d)\n", next)
	return tagtable.PrintTags(o.stdout, &in, results)
}

func cmdDump(o *options, _ []string) error {
	def, err := o.load()
	if err != nil {
		return err
	}
	tt, err := o.compile(def)
	if err != nil {
		return err
	}

	if o.yaml {
		data, err := tagdef.Encode(tt.Table())
		if err != nil {
			return err
		}
		_, err = o.stdout.Write(data)
		return err
	}

	// List every table reachable from the main one.
	seen := map[*tagtable.Table]bool{}
	queue := []*tagtable.Table{tt.Table()}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen[t] {
			continue
		}
		seen[t] = true
		if _, err := t.Disassemble(o.stdout); err != nil {
			return err
		}
		for _, in := range t.Instructions() {
			if sub, ok := in.Arg.(*tagtable.Table); ok {
				queue = append(queue, sub)
			}
		}
	}
	return nil
}

func cmdGen(o *options, _ []string) error {
	def, err := o.load()
	if err != nil {
		return err
	}
	// Compile first so errors are reported before any output is written.
	if _, err := o.compile(def); err != nil {
		return err
	}

	o.log.Section("Code Generation")
	g := codegen.New(codegen.Config{
		Package: o.pkg,
		Func:    o.funcName,
		Source:  filepath.Base(o.def),
	})
	if err := g.Generate(def); err != nil {
		return err
	}
	if o.output == "" {
		return g.Render(o.stdout)
	}
	o.log.Log("Writing %s", o.output)
	return g.Save(o.output)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `%s - table-driven text tagging

Usage:
  %s tag  -def FILE [-table NAME] [-wide] [-dict] [-v] [INPUT]
  %s dump -def FILE [-table NAME] [-wide] [-yaml] [-v]
  %s gen  -def FILE [-table NAME] [-pkg NAME] [-func NAME] [-o FILE] [-v]

Commands:
  tag   tag INPUT (default stdin) and print the result tree
  dump  print the compiled tables
  gen   print Go source that rebuilds the definition
`, appName, appName, appName, appName)
}

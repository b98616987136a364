package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coregx/tagtext/tagdef"
)

var pairsDef = filepath.Join("..", "..", "tagdef", "testdata", "pairs.yaml")

func runCmd(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no arguments", nil, 2},
		{"unknown command", []string{"frob"}, 2},
		{"missing def", []string{"tag"}, 2},
		{"bad flag", []string{"tag", "-nope"}, 2},
		{"help", []string{"help"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCmd(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("run(%q) = %d, want %d", tt.args, code, tt.code)
			}
		})
	}
}

func TestRun_Tag(t *testing.T) {
	input := writeFile(t, "a=1;b=2")
	code, stdout, stderr := runCmd(t, "", "tag", "-def", pairsDef, input)
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}

	expected := strings.Join([]string{
		`match (next 7)`,
		`  "pair" :  "a=1" (0, 3)`,
		`  | "key" :  "a" (0, 1)`,
		`  | "value" :  "1" (2, 3)`,
		`  "pair" :  "b=2" (4, 7)`,
		`  | "key" :  "b" (4, 5)`,
		`  | "value" :  "2" (6, 7)`,
		``,
	}, "\n")
	if stdout != expected {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, expected)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty without -v", stderr)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	quiet := NewLogger(false, &buf)
	quiet.Log("hidden %d", 1)
	quiet.Section("Hidden")
	if quiet.Enabled() || buf.Len() != 0 {
		t.Errorf("disabled logger: Enabled() = %v, wrote %q", quiet.Enabled(), buf.String())
	}

	loud := NewLogger(true, &buf)
	loud.Section("Tagging")
	loud.Log("Input: %d bytes", 3)
	want := "\n[tagtext] === Tagging ===\n[tagtext] Input: 3 bytes\n"
	if !loud.Enabled() || buf.String() != want {
		t.Errorf("enabled logger: Enabled() = %v, wrote %q, want %q", loud.Enabled(), buf.String(), want)
	}
}

func TestRun_TagStdin(t *testing.T) {
	code, stdout, _ := runCmd(t, "k=v", "tag", "-def", pairsDef, "-table", "pair")
	if code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if !strings.HasPrefix(stdout, "match (next 3)\n") {
		t.Errorf("stdout = %q", stdout)
	}

	code, stdout, _ = runCmd(t, "a", "tag", "-def", pairsDef)
	if code != 1 {
		t.Errorf("run() on mismatch = %d, want 1", code)
	}
	if !strings.HasPrefix(stdout, "no match") {
		t.Errorf("stdout = %q, want no match", stdout)
	}
}

func TestRun_TagDict(t *testing.T) {
	code, stdout, stderr := runCmd(t, "a=1;b=2", "tag", "-def", pairsDef, "-dict")
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}
	want := "pair: \"b=2\"\npair.key: \"b\"\npair.value: \"2\"\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestRun_TagWide(t *testing.T) {
	code, stdout, stderr := runCmd(t, "é=ü", "tag", "-def", pairsDef, "-wide")
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, `"pair" :  "é=ü" (0, 3)`) {
		t.Errorf("stdout =\n%s", stdout)
	}
}

func TestRun_Verbose(t *testing.T) {
	code, _, stderr := runCmd(t, "a=1", "tag", "-def", pairsDef, "-v")
	if code != 0 {
		t.Fatalf("run() = %d", code)
	}
	for _, want := range []string{
		"[tagtext] === Definitions ===",
		"[tagtext] Tables: [pair pairs]",
		"[tagtext]   pair: 3 entries",
		"[tagtext]   pairs: 2 entries",
		"[tagtext] Main table: pairs",
		"[tagtext] Compiled 2 tables (narrow)",
		"[tagtext] Matched: true, next: 3, results: 1",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr lacks %q:\n%s", want, stderr)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"tag", "-def", "nope.yaml"}, "nope.yaml"},
		{"unknown table", []string{"tag", "-def", pairsDef, "-table", "zz"}, `table "zz" not defined`},
		{"two inputs", []string{"tag", "-def", pairsDef, "a", "b"}, "at most one input file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(t, "", tt.args...)
			if code != 1 {
				t.Errorf("run() = %d, want 1", code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.want)
			}
		})
	}
}

func TestRun_Dump(t *testing.T) {
	code, stdout, stderr := runCmd(t, "", "dump", "-def", pairsDef)
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{`%table "pairs" narrow`, `%table "pair" narrow`, `Table <table pair> tag="pair"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout lacks %q:\n%s", want, stdout)
		}
	}
	if strings.Count(stdout, "%table") != 2 {
		t.Errorf("stdout lists %d tables, want 2", strings.Count(stdout, "%table"))
	}
}

func TestRun_DumpYAML(t *testing.T) {
	code, stdout, stderr := runCmd(t, "", "dump", "-def", pairsDef, "-yaml")
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}
	f, err := tagdef.Decode([]byte(stdout), nil)
	if err != nil {
		t.Fatalf("Decode() error = %v\n%s", err, stdout)
	}
	if f.Main.Name != "pairs" || len(f.Tables) != 2 {
		t.Errorf("decoded main %q with %d tables", f.Main.Name, len(f.Tables))
	}
}

func TestRun_Gen(t *testing.T) {
	code, stdout, stderr := runCmd(t, "", "gen", "-def", pairsDef, "-pkg", "pairs", "-func", "Pairs")
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{
		"// Code generated by tagtext from pairs.yaml. DO NOT EDIT.",
		"package pairs",
		"func Pairs() *tagtable.Definition {",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout lacks %q:\n%s", want, stdout)
		}
	}

	out := filepath.Join(t.TempDir(), "pairs.go")
	code, stdout, _ = runCmd(t, "", "gen", "-def", pairsDef, "-o", out)
	if code != 0 || stdout != "" {
		t.Fatalf("run() = %d, stdout %q", code, stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "func Definition() *tagtable.Definition {") {
		t.Errorf("generated file:\n%s", data)
	}
}

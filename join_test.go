package tagtext

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/tagtext/search"
	"github.com/coregx/tagtext/tagtable"
)

func TestPiece_String(t *testing.T) {
	tests := []struct {
		name  string
		piece Piece
		want  string
	}{
		{"literal", Literal("abc"), "abc"},
		{"slice", Slice("abcdef", 1, 3), "bc"},
		{"negative from end", Slice("abcdef", -3, -1), "ef"},
		{"right clamped", Slice("abc", 1, 10), "bc"},
		{"left before start clamped", Slice("abc", -10, 2), "ab"},
		{"inverted", Slice("abc", 2, 1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.piece.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}

	if Literal("x").IsSlice() || !Slice("x", 0, 1).IsSlice() {
		t.Error("IsSlice() mismatch")
	}
}

func TestJoin(t *testing.T) {
	pieces := []Piece{Literal("a"), Literal(""), Slice("xyz", 0, 0), Literal("b")}

	tests := []struct {
		name        string
		sep         string
		start, stop int
		want        string
	}{
		{"no separator", "", 0, 4, "ab"},
		{"empty slices skipped", ",", 0, 4, "a,,b"},
		{"sub-range", ",", 1, 4, ",b"},
		{"negative stop", "-", 0, -1, "a-"},
		{"stop clamped", "+", 3, 99, "b"},
		{"empty range", ",", 2, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(pieces, tt.sep, tt.start, tt.stop); got != tt.want {
				t.Errorf("Join(%q, %d, %d) = %q, want %q", tt.sep, tt.start, tt.stop, got, tt.want)
			}
		})
	}
}

func TestJoinList(t *testing.T) {
	const text = "hello world"
	repl := []Replacement{
		{Text: "J", Left: 0, Right: 1},
		{Text: "W", Left: 6, Right: 7},
	}

	pieces, err := JoinList(text, repl, 0, len(text))
	if err != nil {
		t.Fatal(err)
	}
	want := []Piece{Literal("J"), Slice(text, 1, 6), Literal("W"), Slice(text, 7, 11)}
	if diff := cmp.Diff(want, pieces, cmp.AllowUnexported(Piece{})); diff != "" {
		t.Errorf("JoinList() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"J", "ello ", "W", "orld"}, NormList(pieces)); diff != "" {
		t.Errorf("NormList() mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiReplace(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		repl        []Replacement
		start, stop int
		want        string
		wantErr     error
	}{
		{"two replacements", "hello world", []Replacement{{"J", 0, 1}, {"W", 6, 7}}, 0, 11, "Jello World", nil},
		{"no replacements", "abc", nil, 0, 3, "abc", nil},
		{"insertion", "abc", []Replacement{{"-", 1, 1}}, 0, 3, "a-bc", nil},
		{"deletion", "abc", []Replacement{{"", 1, 2}}, 0, 3, "ac", nil},
		{"within slice", "hello", []Replacement{{"X", 3, 4}}, 2, 5, "lXo", nil},
		{"replacement at end", "abc", []Replacement{{"Z", 2, 3}}, 0, 3, "abZ", nil},
		{"overlapping", "abcdef", []Replacement{{"x", 0, 3}, {"y", 2, 4}}, 0, 6, "", ErrJoinOrder},
		{"unsorted", "abcdef", []Replacement{{"x", 4, 5}, {"y", 1, 2}}, 0, 6, "", ErrJoinOrder},
		{"before slice start", "abcdef", []Replacement{{"x", 0, 1}}, 2, 6, "", ErrJoinOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MultiReplace(tt.text, tt.repl, tt.start, tt.stop)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MultiReplace() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("MultiReplace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		what, with  string
		start, stop int
		want        string
	}{
		{"every occurrence", "a-b-c", "-", "+", 0, 5, "a+b+c"},
		{"trailing match", "ab-", "-", "+", 0, 3, "ab+"},
		{"slice", "a-b-c", "-", "+", 2, 5, "b+c"},
		{"no match", "abc", "-", "+", 0, 3, "abc"},
		{"empty text", "", "-", "+", 0, 0, ""},
		{"longer pattern", "one, two, three", ", ", " / ", 0, 100, "one / two / three"},
		{"delete", "a--b", "-", "", 0, 4, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Replace(tt.text, tt.what, tt.with, tt.start, tt.stop)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Replace(%q, %q, %q) = %q, want %q", tt.text, tt.what, tt.with, got, tt.want)
			}
		})
	}

	if _, err := Replace("abc", "", "x", 0, 3); !errors.Is(err, search.ErrEmptyPattern) {
		t.Errorf("Replace() with empty pattern error = %v, want %v", err, search.ErrEmptyPattern)
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name        string
		text, what  string
		start, stop int
		want        int
	}{
		{"first", "hello", "l", 0, 5, 2},
		{"from start", "hello", "l", 3, 5, 3},
		{"absent", "hello", "z", 0, 5, -1},
		{"cut by stop", "hello", "lo", 0, 4, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find(tt.text, tt.what, tt.start, tt.stop)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Find(%q, %q) = %d, want %d", tt.text, tt.what, got, tt.want)
			}
		})
	}

	if _, err := Find("abc", "", 0, 3); !errors.Is(err, search.ErrEmptyPattern) {
		t.Errorf("Find() with empty pattern error = %v, want %v", err, search.ErrEmptyPattern)
	}
}

func TestFindAll(t *testing.T) {
	got, err := FindAll("abab", "ab", 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][2]int{{0, 2}, {2, 4}}, got); diff != "" {
		t.Errorf("FindAll() mismatch (-want +got):\n%s", diff)
	}

	got, err = FindAll("aaaa", "aa", 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][2]int{{1, 3}}, got); diff != "" {
		t.Errorf("FindAll() non-overlapping mismatch (-want +got):\n%s", diff)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name        string
		text, sep   string
		start, stop int
		want        []string
	}{
		{"commas", "a,b,,c", ",", 0, 100, []string{"a", "b", "", "c"}},
		{"negative stop", "a,b,,c", ",", 0, -1, []string{"a", "b", "", ""}},
		{"no separator", "abc", ",", 0, 3, []string{"abc"}},
		{"slice", "x::y::z", "::", 3, 7, []string{"y", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.text, tt.sep, tt.start, tt.stop)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrintJoinList(t *testing.T) {
	var buf bytes.Buffer
	err := PrintJoinList(&buf, []Piece{
		Literal("ab"),
		Slice("hello", 1, 3),
		Literal(strings.Repeat("x", 50)),
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := strings.Join([]string{
		`  "ab"  (len = 2)`,
		`  "el"  (len = 2) (1, 3)`,
		`  "` + strings.Repeat("x", 39) + `...  (len = 50)`,
		``,
	}, "\n")
	if actual := buf.String(); expected != actual {
		t.Errorf("PrintJoinList() =\n%s\nwant\n%s", actual, expected)
	}
}

func TestPieces(t *testing.T) {
	const text = "key=value"
	results := &tagtable.Results{
		tagtable.Span("key", 0, 3, nil),
		{Kind: tagtable.TextResult, Text: ": "},
		{Kind: tagtable.ValueResult, Tag: "<"},
		{Kind: tagtable.ValueResult, Tag: 42},
		tagtable.Span("value", 4, 9, nil),
	}

	pieces := Pieces(text, results)
	if got := Join(pieces, "", 0, len(pieces)); got != "key: <value" {
		t.Errorf("Join(Pieces()) = %q, want %q", got, "key: <value")
	}
	if Pieces(text, nil) != nil {
		t.Error("Pieces(nil) != nil")
	}
}

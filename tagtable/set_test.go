package tagtable

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/tagtext/charset"
)

func TestSet_Contains(t *testing.T) {
	vowels := NewSet("aeiou", true)
	others := NewSet("aeiou", false)

	tests := []struct {
		c          rune
		wantVowels bool
		wantOthers bool
	}{
		{'a', true, false},
		{'u', true, false},
		{'b', false, true},
		{0, false, true},
		{0xFF, false, true},
		{0x100, false, false},
		{-1, false, false},
	}
	for _, tt := range tests {
		if got := vowels.Contains(tt.c); got != tt.wantVowels {
			t.Errorf("vowels.Contains(%q) = %v, want %v", tt.c, got, tt.wantVowels)
		}
		if got := others.Contains(tt.c); got != tt.wantOthers {
			t.Errorf("others.Contains(%q) = %v, want %v", tt.c, got, tt.wantOthers)
		}
	}

	if vowels.Invert() != others {
		t.Error("Invert() of positive set differs from negative set")
	}
}

func TestSet_String(t *testing.T) {
	if got, want := NewSet("cab", true).String(), `Set("abc")`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestSet_Find(t *testing.T) {
	digits := NewSet("0123456789", true)
	text := []byte("ab1c2")

	tests := []struct {
		start, stop int
		want        int
	}{
		{0, 5, 2},
		{3, 5, 4},
		{0, 2, -1},
		{-2, 5, 4},
	}
	for _, tt := range tests {
		if got := digits.Find(text, tt.start, tt.stop); got != tt.want {
			t.Errorf("Find(%d, %d) = %d, want %d", tt.start, tt.stop, got, tt.want)
		}
	}
}

func TestSet_Strip(t *testing.T) {
	space := NewSet(" \t", true)
	text := []byte("  hello \t")

	tests := []struct {
		where charset.Where
		want  string
	}{
		{charset.Both, "hello"},
		{charset.Left, "hello \t"},
		{charset.Right, "  hello"},
	}
	for _, tt := range tests {
		if got := string(space.Strip(text, 0, len(text), tt.where)); got != tt.want {
			t.Errorf("Strip(%v) = %q, want %q", tt.where, got, tt.want)
		}
	}
}

func TestSet_Split(t *testing.T) {
	sep := NewSet(", ", true)
	got := sep.Split([]byte(", a,b ,, c,"), 0, 100)
	want := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
	if got := sep.Split([]byte(" ,"), 0, 2); got != nil {
		t.Errorf("Split() of separators only = %q, want nil", got)
	}
}

func TestMultiset(t *testing.T) {
	m := newMultiset([]rune("aΩé"))
	for _, c := range []rune{'a', 'Ω', 'é'} {
		if !m.Contains(c) {
			t.Errorf("Contains(%q) = false, want true", c)
		}
	}
	if m.Contains('b') || m.Contains('Ψ') {
		t.Error("Contains() reported a non-member")
	}
	if diff := cmp.Diff([]rune("aΩé"), m.Chars()); diff != "" {
		t.Errorf("Chars() mismatch (-want +got):\n%s", diff)
	}
}

package tagtext

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/tagtext/charset"
)

func TestBuildSet(t *testing.T) {
	s := BuildSet("abc")
	inv := InvertSet("abc")
	for c := range 256 {
		in := c == 'a' || c == 'b' || c == 'c'
		if s.ContainsByte(byte(c)) != in {
			t.Errorf("BuildSet(%q).ContainsByte(%q) = %v", "abc", c, !in)
		}
		if inv.ContainsByte(byte(c)) == in {
			t.Errorf("InvertSet(%q).ContainsByte(%q) = %v", "abc", c, in)
		}
	}
}

func TestSetFind(t *testing.T) {
	digits := BuildSet("0123456789")
	text := []byte("abc123")

	tests := []struct {
		start, stop int
		want        int
	}{
		{0, 6, 3},
		{4, 6, 4},
		{0, 3, -1},
		{-2, 6, 4},
	}
	for _, tt := range tests {
		if got := SetFind(text, digits, tt.start, tt.stop); got != tt.want {
			t.Errorf("SetFind(%d, %d) = %d, want %d", tt.start, tt.stop, got, tt.want)
		}
	}
}

func TestSetStrip(t *testing.T) {
	space := BuildSet(" \t")
	text := []byte("  x y \t")

	tests := []struct {
		where charset.Where
		want  string
	}{
		{charset.Both, "x y"},
		{charset.Left, "x y \t"},
		{charset.Right, "  x y"},
	}
	for _, tt := range tests {
		if got := string(SetStrip(text, space, 0, len(text), tt.where)); got != tt.want {
			t.Errorf("SetStrip(%v) = %q, want %q", tt.where, got, tt.want)
		}
	}

	if got := SetStrip([]byte("   "), space, 0, 3, charset.Both); len(got) != 0 {
		t.Errorf("SetStrip() of separators only = %q, want empty", got)
	}
}

func TestSetSplit(t *testing.T) {
	got := SetSplit([]byte("  one,two ,, three "), BuildSet(" ,"), 0, 100)
	want := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SetSplit() mismatch (-want +got):\n%s", diff)
	}

	if got := SetSplit([]byte(",,"), BuildSet(","), 0, 2); got != nil {
		t.Errorf("SetSplit() of separators only = %q, want nil", got)
	}
}

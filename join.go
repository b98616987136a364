package tagtext

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coregx/tagtext/internal/bounds"
	"github.com/coregx/tagtext/search"
	"github.com/coregx/tagtext/tagtable"
)

// ErrJoinOrder indicates replacements that are not sorted ascending or
// that overlap.
var ErrJoinOrder = errors.New("tagtext: replacements not sorted ascending or overlapping")

// Piece is one element of a join list: either a literal string, or the
// slice [Left, Right) of a source text.
//
// Slice bounds use the join-list convention: values past the end are
// clamped, and negative values count back from one past the end, so -1
// is len(text), -2 is len(text)-1, and so on.
type Piece struct {
	Text  string
	Left  int
	Right int
	slice bool
}

// Literal returns a piece that joins as s.
func Literal(s string) Piece {
	return Piece{Text: s}
}

// Slice returns a piece that joins as text[left:right].
func Slice(text string, left, right int) Piece {
	return Piece{Text: text, Left: left, Right: right, slice: true}
}

// IsSlice reports whether p is a slice of a source text.
func (p Piece) IsSlice() bool {
	return p.slice
}

// String returns the text the piece joins as.
func (p Piece) String() string {
	if !p.slice {
		return p.Text
	}
	n := len(p.Text)
	l, r := bounds.JoinIndex(p.Left, n), bounds.JoinIndex(p.Right, n)
	if l >= r {
		return ""
	}
	return p.Text[l:r]
}

// Join concatenates pieces[start:stop], inserting sep between them.
// start and stop are normalized like tagging slices. Empty slice pieces
// contribute nothing, not even a separator.
func Join(pieces []Piece, sep string, start, stop int) string {
	start, stop = bounds.Normalize(start, stop, len(pieces))

	var sb strings.Builder
	for i := start; i < stop; i++ {
		p := pieces[i]
		s := p.String()
		if p.slice && s == "" {
			continue
		}
		if i > start {
			sb.WriteString(sep)
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// Replacement replaces text[Left:Right] with Text.
type Replacement struct {
	Text  string
	Left  int
	Right int
}

// JoinList expands replacements within text[start:stop] into a join list:
// untouched stretches of text become slice pieces, replacements become
// literal pieces. Replacements must be sorted ascending and must not
// overlap, otherwise ErrJoinOrder is returned.
func JoinList(text string, replacements []Replacement, start, stop int) ([]Piece, error) {
	pos, stop := bounds.Normalize(start, stop, len(text))

	pieces := make([]Piece, 0, 2*len(replacements)+1)
	for i, r := range replacements {
		if r.Left < pos {
			return nil, fmt.Errorf("%w: replacement %d starts at %d, before %d", ErrJoinOrder, i, r.Left, pos)
		}
		if r.Left > pos {
			pieces = append(pieces, Slice(text, pos, r.Left))
		}
		pieces = append(pieces, Literal(r.Text))
		pos = r.Right
	}
	if pos < stop {
		pieces = append(pieces, Slice(text, pos, stop))
	}
	return pieces, nil
}

// MultiReplace applies replacements to text[start:stop] at once and
// returns the result. Indices always refer to the original text.
func MultiReplace(text string, replacements []Replacement, start, stop int) (string, error) {
	pieces, err := JoinList(text, replacements, start, stop)
	if err != nil {
		return "", err
	}
	return Join(pieces, "", 0, len(pieces)), nil
}

// NormList returns the text of each piece.
func NormList(pieces []Piece) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.String()
	}
	return out
}

// PrintJoinList writes one line per piece to w: the quoted text, its
// length, and for slices the source span.
func PrintJoinList(w io.Writer, pieces []Piece) error {
	for _, p := range pieces {
		s := p.String()
		text := strconv.Quote(s)
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		var err error
		if p.slice {
			_, err = fmt.Fprintf(w, "  %s  (len = %d) (%d, %d)\n", text, len(s), p.Left, p.Right)
		} else {
			_, err = fmt.Fprintf(w, "  %s  (len = %d)\n", text, len(s))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Pieces converts a result list over text into a join list: span results
// become slices of text, value results whose tag is a string become
// literals. Children and other results are ignored.
func Pieces(text string, results *tagtable.Results) []Piece {
	if results == nil {
		return nil
	}
	pieces := make([]Piece, 0, len(*results))
	for _, res := range *results {
		switch res.Kind {
		case tagtable.SpanResult:
			pieces = append(pieces, Slice(text, res.Left, res.Right))
		case tagtable.TextResult:
			pieces = append(pieces, Literal(res.Text))
		case tagtable.ValueResult:
			if s, ok := res.Tag.(string); ok {
				pieces = append(pieces, Literal(s))
			}
		}
	}
	return pieces
}

// sourceText tags the stretches of text Replace keeps.
type sourceText struct{}

// Replace returns text[start:stop] with every occurrence of what replaced
// by with. It tags the text with a three-instruction table: search for
// what, record the replacement and skip over the match, and finally keep
// the rest of the text.
func Replace(text, what, with string, start, stop int) (string, error) {
	s, err := search.New(what, search.BoyerMoore)
	if err != nil {
		return "", err
	}
	def := tagtable.NewDefinition("replace",
		tagtable.Entry{Tag: sourceText{}, Cmd: tagtable.CmdSWordStart, Arg: s, OnFail: tagtable.To(2)},
		tagtable.Entry{Tag: with, Cmd: tagtable.CmdSkip, Flags: tagtable.AppendTagValue, Arg: len(what),
			OnFail: tagtable.To(-1), OnMatch: tagtable.To(-1)},
		tagtable.Entry{Tag: sourceText{}, Cmd: tagtable.CmdMove, Arg: tagtable.ToEOF},
	)
	t, err := tagtable.Compile(def, tagtable.Narrow, false)
	if err != nil {
		return "", err
	}

	results := tagtable.NewResults()
	if _, _, err := New(t).TagSlice([]byte(text), start, stop, results); err != nil {
		return "", err
	}
	pieces := Pieces(text, results)
	return Join(pieces, "", 0, len(pieces)), nil
}

// Find returns the index of the first occurrence of what in
// text[start:stop], or -1.
func Find(text, what string, start, stop int) (int, error) {
	s, err := search.New(what, search.BoyerMoore)
	if err != nil {
		return -1, err
	}
	return search.Find(s, []byte(text), start, stop)
}

// FindAll returns the spans of all non-overlapping occurrences of what in
// text[start:stop].
func FindAll(text, what string, start, stop int) ([][2]int, error) {
	s, err := search.New(what, search.BoyerMoore)
	if err != nil {
		return nil, err
	}
	return search.FindAll(s, []byte(text), start, stop)
}

// Split cuts text[start:stop] at every occurrence of sep.
func Split(text, sep string, start, stop int) ([]string, error) {
	spans, err := FindAll(text, sep, start, stop)
	if err != nil {
		return nil, err
	}
	start, stop = bounds.Normalize(start, stop, len(text))
	parts := make([]string, 0, len(spans)+1)
	l := start
	for _, sp := range spans {
		parts = append(parts, text[l:sp[0]])
		l = sp[1]
	}
	return append(parts, text[l:stop]), nil
}

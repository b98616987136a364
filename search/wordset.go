package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/tagtext/internal/bounds"
)

// WordSet is a Searcher for the first occurrence of any of several words.
//
// Narrow text is scanned in a single pass by an Aho-Corasick automaton.
// When several words match at the same leftmost position, the one added
// first wins. Wide text falls back to trying each word at every offset
// with the same preference order.
type WordSet struct {
	words []string
	runes [][]rune
	auto  *ahocorasick.Automaton
}

// NewWordSet builds a searcher for words. Empty words are rejected.
func NewWordSet(words ...string) (*WordSet, error) {
	if len(words) == 0 {
		return nil, ErrEmptyPattern
	}

	builder := ahocorasick.NewBuilder()
	ws := &WordSet{
		words: make([]string, len(words)),
		runes: make([][]rune, len(words)),
	}
	for i, w := range words {
		if w == "" {
			return nil, fmt.Errorf("word %d: %w", i, ErrEmptyPattern)
		}
		ws.words[i] = w
		ws.runes[i] = []rune(w)
		builder.AddPattern([]byte(w))
	}

	auto, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("search: building word automaton: %w", err)
	}
	ws.auto = auto
	return ws, nil
}

// MustNewWordSet is like NewWordSet but panics on error.
func MustNewWordSet(words ...string) *WordSet {
	ws, err := NewWordSet(words...)
	if err != nil {
		panic(err)
	}
	return ws
}

// Words returns the words in preference order.
func (ws *WordSet) Words() []string {
	return append([]string(nil), ws.words...)
}

// String implements fmt.Stringer.
func (ws *WordSet) String() string {
	return "WordSet(" + strings.Join(ws.words, "|") + ")"
}

// Search implements Searcher.
func (ws *WordSet) Search(text []byte, start, stop int) (int, int, error) {
	start, stop = bounds.Normalize(start, stop, len(text))
	if start >= stop {
		return start, start, ErrNotFound
	}
	m := ws.auto.Find(text[:stop], start)
	if m == nil {
		return start, start, ErrNotFound
	}
	return m.Start, m.End, nil
}

// SearchRunes implements Searcher.
func (ws *WordSet) SearchRunes(text []rune, start, stop int) (int, int, error) {
	start, stop = bounds.Normalize(start, stop, len(text))
	for pos := start; pos < stop; pos++ {
		for _, w := range ws.runes {
			if pos+len(w) <= stop && slices.Equal(text[pos:pos+len(w)], w) {
				return pos, pos + len(w), nil
			}
		}
	}
	return start, start, ErrNotFound
}

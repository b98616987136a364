package search

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/coregx/tagtext/internal/bounds"
)

// TextSearch is a single-word Searcher. It is immutable after
// construction and safe for concurrent use.
type TextSearch struct {
	algo  Algorithm
	match []byte
	runes []rune

	// translate maps narrow text characters before comparison; nil means
	// identity.
	translate *[256]byte

	// shift is the BoyerMoore bad-character table.
	shift [256]int

	// rare and rareIdx are the Fast candidate byte and its offset.
	rare    byte
	rareIdx int
}

// New creates a searcher for match using algo.
// The match is also decoded as UTF-8 for searching wide text.
func New(match string, algo Algorithm) (*TextSearch, error) {
	return newTextSearch([]byte(match), algo, nil)
}

// NewTranslated creates a searcher that maps every narrow text character
// through translate before comparing it with match.
func NewTranslated(match string, translate *[256]byte, algo Algorithm) (*TextSearch, error) {
	return newTextSearch([]byte(match), algo, translate)
}

// MustNew is like New but panics on error.
func MustNew(match string, algo Algorithm) *TextSearch {
	s, err := New(match, algo)
	if err != nil {
		panic(err)
	}
	return s
}

func newTextSearch(match []byte, algo Algorithm, translate *[256]byte) (*TextSearch, error) {
	if len(match) == 0 {
		return nil, ErrEmptyPattern
	}
	if algo > Trivial {
		return nil, fmt.Errorf("search: unknown algorithm %d", algo)
	}

	s := &TextSearch{
		algo:      algo,
		match:     bytes.Clone(match),
		translate: translate,
	}
	if utf8.Valid(match) {
		s.runes = bytes.Runes(match)
	} else {
		s.runes = make([]rune, len(match))
		for i, b := range match {
			s.runes[i] = rune(b)
		}
	}

	m := len(match)
	for i := range s.shift {
		s.shift[i] = m
	}
	for i := 0; i < m-1; i++ {
		s.shift[match[i]] = m - 1 - i
	}
	s.rare, s.rareIdx = rareByte(match)
	return s, nil
}

// Match returns the pattern.
func (s *TextSearch) Match() string {
	return string(s.match)
}

// Algorithm returns the search algorithm.
func (s *TextSearch) Algorithm() Algorithm {
	return s.algo
}

// Translate returns the translate table, or nil.
func (s *TextSearch) Translate() *[256]byte {
	return s.translate
}

// String implements fmt.Stringer.
func (s *TextSearch) String() string {
	return fmt.Sprintf("TextSearch(%q, %s)", s.match, s.algo)
}

func (s *TextSearch) tr(c byte) byte {
	if s.translate == nil {
		return c
	}
	return s.translate[c]
}

// Search implements Searcher.
func (s *TextSearch) Search(text []byte, start, stop int) (int, int, error) {
	start, stop = bounds.Normalize(start, stop, len(text))
	if stop-start < len(s.match) {
		return start, start, ErrNotFound
	}

	var left int
	switch {
	case s.algo == Trivial:
		left = s.trivial(text, start, stop)
	case s.algo == Fast && s.translate == nil:
		left = s.fast(text, start, stop)
	default:
		left = s.boyerMoore(text, start, stop)
	}
	if left < 0 {
		return start, start, ErrNotFound
	}
	return left, left + len(s.match), nil
}

// SearchRunes implements Searcher.
func (s *TextSearch) SearchRunes(text []rune, start, stop int) (int, int, error) {
	start, stop = bounds.Normalize(start, stop, len(text))
	m := len(s.runes)
	for pos := start; pos+m <= stop; pos++ {
		j := m - 1
		for j >= 0 && s.trRune(text[pos+j]) == s.runes[j] {
			j--
		}
		if j < 0 {
			return pos, pos + m, nil
		}
	}
	return start, start, ErrNotFound
}

func (s *TextSearch) trRune(c rune) rune {
	if s.translate == nil || c < 0 || c > 0xFF {
		return c
	}
	return rune(s.translate[c])
}

// trivial tries every offset, comparing right to left.
func (s *TextSearch) trivial(text []byte, start, stop int) int {
	m := len(s.match)
	for pos := start; pos+m <= stop; pos++ {
		j := m - 1
		for j >= 0 && s.tr(text[pos+j]) == s.match[j] {
			j--
		}
		if j < 0 {
			return pos
		}
	}
	return -1
}

// boyerMoore aligns the pattern end at pos and skips by the bad-character
// shift of the text byte under the pattern's last position.
func (s *TextSearch) boyerMoore(text []byte, start, stop int) int {
	m := len(s.match)
	for pos := start + m - 1; pos < stop; pos += s.shift[s.tr(text[pos])] {
		j, k := m-1, pos
		for j >= 0 && s.tr(text[k]) == s.match[j] {
			j--
			k--
		}
		if j < 0 {
			return k + 1
		}
	}
	return -1
}

// fast scans for the rare byte with indexByte and verifies each candidate.
func (s *TextSearch) fast(text []byte, start, stop int) int {
	m := len(s.match)
	from := start + s.rareIdx
	last := stop - m + s.rareIdx
	for from <= last {
		i := indexByte(text[from:last+1], s.rare)
		if i < 0 {
			return -1
		}
		cand := from + i - s.rareIdx
		if bytes.Equal(text[cand:cand+m], s.match) {
			return cand
		}
		from += i + 1
	}
	return -1
}

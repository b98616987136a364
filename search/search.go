// Package search provides the exact substring searchers used by the
// sWordStart, sWordEnd and sFindWord commands.
//
// A Searcher locates the first occurrence of its pattern inside
// text[start:stop] and reports the matched span. Three single-word
// algorithms are available, mirroring the classic text-search objects:
//
//   - BoyerMoore: bad-character shift table, right-to-left verification
//   - Fast: rare byte candidate scan (SWAR memchr) plus verification
//   - Trivial: brute force, right-to-left verification at every offset
//
// All three accept an optional 256-entry translate table that maps each
// narrow text character before comparison (useful for case folding). The
// pattern itself is stored untranslated; callers are expected to pass a
// pattern already expressed in the translated alphabet.
//
// WordSet searches for any of several words at once using an Aho-Corasick
// automaton.
//
// Wide (rune) text is always searched with the trivial algorithm.
package search

import (
	"errors"

	"github.com/coregx/tagtext/internal/bounds"
)

var (
	// ErrNotFound indicates the pattern does not occur in the searched slice.
	// It is an ordinary negative outcome, not a failure of the searcher.
	ErrNotFound = errors.New("search: not found")

	// ErrEmptyPattern indicates an empty search pattern.
	ErrEmptyPattern = errors.New("search: empty pattern")

	// ErrNarrowOnly indicates a searcher that cannot handle wide text.
	ErrNarrowOnly = errors.New("search: searcher only supports narrow text")
)

// Searcher finds the first occurrence of a pattern in a slice of text.
//
// Search returns the half-open span [left, right) of the match, or
// ErrNotFound. Any other error is a searcher failure and aborts tagging.
// Slice bounds are normalized the same way as everywhere else in the
// module (see Find).
type Searcher interface {
	Search(text []byte, start, stop int) (left, right int, err error)
	SearchRunes(text []rune, start, stop int) (left, right int, err error)
}

// Algorithm selects the single-word search strategy.
type Algorithm uint8

const (
	// BoyerMoore is the default algorithm.
	BoyerMoore Algorithm = iota
	// Fast uses a rare byte candidate scan.
	Fast
	// Trivial is brute force.
	Trivial
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case BoyerMoore:
		return "BoyerMoore"
	case Fast:
		return "Fast"
	case Trivial:
		return "Trivial"
	default:
		return "Unknown"
	}
}

// Find returns the index of the first occurrence found by s in
// text[start:stop], or -1.
func Find(s Searcher, text []byte, start, stop int) (int, error) {
	left, _, err := s.Search(text, start, stop)
	if errors.Is(err, ErrNotFound) {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return left, nil
}

// FindAll returns the spans of all non-overlapping occurrences found by s
// in text[start:stop], in order.
func FindAll(s Searcher, text []byte, start, stop int) ([][2]int, error) {
	start, stop = bounds.Normalize(start, stop, len(text))
	var spans [][2]int
	for start < stop {
		left, right, err := s.Search(text, start, stop)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		spans = append(spans, [2]int{left, right})
		if right <= start {
			// Zero-width match: step past it to make progress.
			right = start + 1
		}
		start = right
	}
	return spans, nil
}

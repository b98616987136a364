package tagtable

import (
	"strconv"
	"strings"

	"github.com/coregx/tagtext/charset"
	"github.com/coregx/tagtext/internal/bounds"
)

// Set is a 256-bit membership bitmap over 8-bit characters, the argument
// of AllInSet and IsInSet. Bit c&7 of byte c>>3 is set for member c.
type Set [32]byte

// NewSet returns the set of the bytes in chars. If positive is false the
// set is inverted: it contains every byte not in chars.
func NewSet(chars string, positive bool) Set {
	var s Set
	for i := 0; i < len(chars); i++ {
		c := chars[i]
		s[c>>3] |= 1 << (c & 7)
	}
	if !positive {
		return s.Invert()
	}
	return s
}

// Invert returns the complement of s.
func (s Set) Invert() Set {
	for i := range s {
		s[i] = ^s[i]
	}
	return s
}

// Contains reports whether c is a member. Characters above 0xFF are never
// members.
func (s Set) Contains(c rune) bool {
	if c < 0 || c > 0xFF {
		return false
	}
	return s[c>>3]&(1<<(c&7)) != 0
}

// ContainsByte reports whether b is a member.
func (s Set) ContainsByte(b byte) bool {
	return s[b>>3]&(1<<(b&7)) != 0
}

// String lists the members, quoted.
func (s Set) String() string {
	var sb strings.Builder
	for c := 0; c < 256; c++ {
		if s.ContainsByte(byte(c)) {
			sb.WriteByte(byte(c))
		}
	}
	return "Set(" + strconv.Quote(sb.String()) + ")"
}

// Find returns the index of the first member of s in text[start:stop],
// or -1.
func (s Set) Find(text []byte, start, stop int) int {
	start, stop = bounds.Normalize(start, stop, len(text))
	for i := start; i < stop; i++ {
		if s.ContainsByte(text[i]) {
			return i
		}
	}
	return -1
}

// Strip removes members of s from the ends of text[start:stop] selected
// by where.
func (s Set) Strip(text []byte, start, stop int, where charset.Where) []byte {
	start, stop = bounds.Normalize(start, stop, len(text))
	if where <= charset.Both {
		for start < stop && s.ContainsByte(text[start]) {
			start++
		}
	}
	if where >= charset.Both {
		for stop > start && s.ContainsByte(text[stop-1]) {
			stop--
		}
	}
	return text[start:stop]
}

// Split cuts text[start:stop] at runs of members of s, dropping the
// separators and empty pieces.
func (s Set) Split(text []byte, start, stop int) [][]byte {
	start, stop = bounds.Normalize(start, stop, len(text))
	var parts [][]byte
	for start < stop {
		for start < stop && s.ContainsByte(text[start]) {
			start++
		}
		end := start
		for end < stop && !s.ContainsByte(text[end]) {
			end++
		}
		if end > start {
			parts = append(parts, text[start:end])
		}
		start = end
	}
	return parts
}

// Multiset is the compiled argument of AllIn, AllNotIn, IsIn and IsNotIn:
// a literal set of characters.
type Multiset struct {
	chars  []rune
	narrow [256]bool
	wide   map[rune]struct{}
}

func newMultiset(chars []rune) *Multiset {
	m := &Multiset{chars: chars}
	for _, c := range chars {
		if c >= 0 && c <= 0xFF {
			m.narrow[c] = true
			continue
		}
		if m.wide == nil {
			m.wide = make(map[rune]struct{})
		}
		m.wide[c] = struct{}{}
	}
	return m
}

// Contains reports whether c is one of the characters.
func (m *Multiset) Contains(c rune) bool {
	if c >= 0 && c <= 0xFF {
		return m.narrow[c]
	}
	_, ok := m.wide[c]
	return ok
}

// Chars returns the characters in definition order.
func (m *Multiset) Chars() []rune {
	return append([]rune(nil), m.chars...)
}

// String implements fmt.Stringer.
func (m *Multiset) String() string {
	return strconv.Quote(string(m.chars))
}

// Package charset implements the character sets used by the AllInCharSet
// and IsInCharSet commands.
//
// A CharSet is built from a definition string written like the body of a
// regex character class:
//
//	"a-zA-Z0-9_"   letters, digits and underscore
//	"^ \t\r\n"     everything except whitespace
//	"+\-*/"        an escaped '-' is a literal
//
// A leading '^' negates the set. "x-y" is an inclusive range. A backslash
// only escapes itself ("\\"); any other backslash is dropped and the next
// character is read normally, so "\-" yields a literal '-' when it cannot
// start a range.
//
// Sets whose definition only uses 8-bit characters are narrow: characters
// above 0xFF are never members of a narrow set, even a negated one. Sets
// that mention wider characters are wide and apply negation to the whole
// code point range.
package charset

import (
	"errors"
	"sort"
	"strconv"

	"github.com/coregx/tagtext/internal/conv"
)

// ErrEmptyRange indicates a range whose right end is below its left end.
var ErrEmptyRange = errors.New("charset: empty range")

// Direction selects the scan direction of Match and Search.
type Direction int

const (
	// Forward scans from start towards stop.
	Forward Direction = 1
	// Backward scans from stop-1 towards start.
	Backward Direction = -1
)

// runeRange is an inclusive range of code points above 0xFF.
type runeRange struct {
	lo, hi rune
}

// CharSet is an immutable set of characters. It is safe for concurrent use.
type CharSet struct {
	def string

	// bitmap holds membership for 0x00-0xFF, negation already applied.
	// Addressing: bitmap[c>>3] & (1 << (c&7)).
	bitmap [32]byte

	// wide holds sorted, merged ranges above 0xFF (before negation).
	wide []runeRange

	negated bool
	isWide  bool
}

// New parses a definition string. The definition is read as UTF-8.
func New(def string) (*CharSet, error) {
	return build(def, []rune(def))
}

// NewBytes parses a definition given as raw 8-bit characters.
// Each byte is one character; the resulting set is always narrow.
func NewBytes(def []byte) (*CharSet, error) {
	chars := make([]rune, len(def))
	for i, b := range def {
		chars[i] = rune(b)
	}
	return build(string(def), chars)
}

// MustNew is like New but panics if the definition is invalid.
func MustNew(def string) *CharSet {
	cs, err := New(def)
	if err != nil {
		panic(err)
	}
	return cs
}

func build(def string, chars []rune) (*CharSet, error) {
	cs := &CharSet{def: def}
	i := 0
	if len(chars) > 0 && chars[0] == '^' {
		cs.negated = true
		i = 1
	}

	n := len(chars)
	for ; i < n; i++ {
		c := chars[i]

		// Escapes: only "\\" produces a character.
		if c == '\\' {
			if i < n-1 && chars[i+1] == '\\' {
				cs.add('\\', '\\')
				i++
			}
			continue
		}

		// Ranges: "b-d". The right end is re-read as the next character,
		// so "a-c-e" chains into a-e.
		if i < n-2 && chars[i+1] == '-' {
			lo, hi := c, chars[i+2]
			if hi < lo {
				return nil, ErrEmptyRange
			}
			cs.add(lo, hi)
			i++
			continue
		}

		cs.add(c, c)
	}

	cs.mergeWide()
	if cs.negated {
		for k := range cs.bitmap {
			cs.bitmap[k] ^= 0xFF
		}
	}
	return cs, nil
}

// add marks [lo, hi] as members.
func (cs *CharSet) add(lo, hi rune) {
	for c := lo; c <= hi && c <= 0xFF; c++ {
		b := conv.RuneToByte(c)
		cs.bitmap[b>>3] |= 1 << (b & 7)
	}
	if hi > 0xFF {
		cs.isWide = true
		cs.wide = append(cs.wide, runeRange{lo: max(lo, 0x100), hi: hi})
	}
}

func (cs *CharSet) mergeWide() {
	if len(cs.wide) < 2 {
		return
	}
	sort.Slice(cs.wide, func(a, b int) bool { return cs.wide[a].lo < cs.wide[b].lo })
	merged := cs.wide[:1]
	for _, r := range cs.wide[1:] {
		last := &merged[len(merged)-1]
		if r.lo <= last.hi+1 {
			last.hi = max(last.hi, r.hi)
			continue
		}
		merged = append(merged, r)
	}
	cs.wide = merged
}

// Definition returns the definition string the set was built from.
func (cs *CharSet) Definition() string {
	return cs.def
}

// String implements fmt.Stringer.
func (cs *CharSet) String() string {
	return "CharSet(" + strconv.Quote(cs.def) + ")"
}

// IsWide reports whether the set mentions characters above 0xFF.
func (cs *CharSet) IsWide() bool {
	return cs.isWide
}

// Contains reports whether r is a member of the set.
func (cs *CharSet) Contains(r rune) bool {
	if r >= 0 && r <= 0xFF {
		return cs.bitmap[r>>3]&(1<<(r&7)) != 0
	}
	if !cs.isWide {
		return false
	}
	i := sort.Search(len(cs.wide), func(k int) bool { return cs.wide[k].hi >= r })
	in := i < len(cs.wide) && cs.wide[i].lo <= r
	return in != cs.negated
}

// ContainsByte reports whether the 8-bit character b is a member.
func (cs *CharSet) ContainsByte(b byte) bool {
	return cs.bitmap[b>>3]&(1<<(b&7)) != 0
}

// Bitmap returns the 32-byte membership bitmap for 0x00-0xFF.
func (cs *CharSet) Bitmap() [32]byte {
	return cs.bitmap
}

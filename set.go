package tagtext

import (
	"github.com/coregx/tagtext/charset"
	"github.com/coregx/tagtext/tagtable"
)

// BuildSet returns the set of the bytes in chars, for AllInSet and
// IsInSet instructions.
func BuildSet(chars string) tagtable.Set {
	return tagtable.NewSet(chars, true)
}

// InvertSet returns the set of all bytes except those in chars.
func InvertSet(chars string) tagtable.Set {
	return tagtable.NewSet(chars, false)
}

// SetFind returns the index of the first byte of text[start:stop] in set,
// or -1.
func SetFind(text []byte, set tagtable.Set, start, stop int) int {
	return set.Find(text, start, stop)
}

// SetStrip strips bytes in set from the ends of text[start:stop] selected
// by where.
func SetStrip(text []byte, set tagtable.Set, start, stop int, where charset.Where) []byte {
	return set.Strip(text, start, stop, where)
}

// SetSplit cuts text[start:stop] at runs of bytes in set.
func SetSplit(text []byte, set tagtable.Set, start, stop int) [][]byte {
	return set.Split(text, start, stop)
}

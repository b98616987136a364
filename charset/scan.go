package charset

import "github.com/coregx/tagtext/internal/bounds"

// char is the element type of narrow (byte) and wide (rune) text.
type char interface {
	byte | rune
}

func (cs *CharSet) has(c rune) bool {
	if c >= 0 && c <= 0xFF {
		return cs.bitmap[c>>3]&(1<<(c&7)) != 0
	}
	return cs.Contains(c)
}

// find returns the first index in [start, stop) whose membership equals
// member, scanning in dir. It returns stop (Forward) or start-1
// (Backward) when every character fails the test.
func find[C char](cs *CharSet, text []C, start, stop int, member bool, dir Direction) int {
	if dir == Forward {
		i := start
		for ; i < stop; i++ {
			if cs.has(rune(text[i])) == member {
				break
			}
		}
		return i
	}
	i := stop - 1
	for ; i >= start; i-- {
		if cs.has(rune(text[i])) == member {
			break
		}
	}
	return i
}

func search[C char](cs *CharSet, text []C, start, stop int, dir Direction) int {
	start, stop = bounds.Normalize(start, stop, len(text))
	pos := find(cs, text, start, stop, true, dir)
	if (dir == Forward && pos >= stop) || (dir != Forward && pos < start) {
		return -1
	}
	return pos
}

func match[C char](cs *CharSet, text []C, start, stop int, dir Direction) int {
	start, stop = bounds.Normalize(start, stop, len(text))
	pos := find(cs, text, start, stop, false, dir)
	if dir == Forward {
		return pos - start
	}
	return stop - 1 - pos
}

// Search returns the index of the first member of the set in
// text[start:stop], scanning in dir, or -1 if there is none.
func (cs *CharSet) Search(text []byte, start, stop int, dir Direction) int {
	return search(cs, text, start, stop, dir)
}

// SearchRunes is Search for wide text.
func (cs *CharSet) SearchRunes(text []rune, start, stop int, dir Direction) int {
	return search(cs, text, start, stop, dir)
}

// Match returns the length of the longest run of members at the start
// (Forward) or at the end (Backward) of text[start:stop].
func (cs *CharSet) Match(text []byte, start, stop int, dir Direction) int {
	return match(cs, text, start, stop, dir)
}

// MatchRunes is Match for wide text.
func (cs *CharSet) MatchRunes(text []rune, start, stop int, dir Direction) int {
	return match(cs, text, start, stop, dir)
}

// Where selects which ends Strip trims.
type Where int

const (
	// Both strips members from both ends.
	Both Where = 0
	// Left strips members from the start only.
	Left Where = -1
	// Right strips members from the end only.
	Right Where = 1
)

func strip[C char](cs *CharSet, text []C, start, stop int, where Where) []C {
	start, stop = bounds.Normalize(start, stop, len(text))
	left, right := start, stop
	if where <= Both {
		left = find(cs, text, start, stop, false, Forward)
	}
	if where >= Both {
		right = find(cs, text, left, stop, false, Backward) + 1
	}
	if right < left {
		right = left
	}
	return text[left:right]
}

// Strip returns text[start:stop] with members of the set removed from the
// ends selected by where. The result aliases text.
func (cs *CharSet) Strip(text []byte, start, stop int, where Where) []byte {
	return strip(cs, text, start, stop, where)
}

// StripRunes is Strip for wide text.
func (cs *CharSet) StripRunes(text []rune, start, stop int, where Where) []rune {
	return strip(cs, text, start, stop, where)
}

func split[C char](cs *CharSet, text []C, start, stop int, keepSeparators bool) [][]C {
	start, stop = bounds.Normalize(start, stop, len(text))
	var parts [][]C
	x := start
	for x < stop {
		// Without separators the first scan skips members; with them it
		// collects the non-member run that precedes the next member.
		z := x
		x = find(cs, text, x, stop, keepSeparators, Forward)
		if keepSeparators {
			parts = append(parts, text[z:x])
			if x >= stop {
				break
			}
		}

		z = x
		x = find(cs, text, x, stop, !keepSeparators, Forward)
		if x > z {
			parts = append(parts, text[z:x])
		}
	}
	return parts
}

// Split splits text[start:stop] into the runs of non-members, dropping
// the members that separate them.
func (cs *CharSet) Split(text []byte, start, stop int) [][]byte {
	return split(cs, text, start, stop, false)
}

// SplitX splits text[start:stop] like Split but keeps the separating runs
// in the result, alternating non-member and member runs. The first part
// may be empty.
func (cs *CharSet) SplitX(text []byte, start, stop int) [][]byte {
	return split(cs, text, start, stop, true)
}

// SplitRunes is Split for wide text.
func (cs *CharSet) SplitRunes(text []rune, start, stop int) [][]rune {
	return split(cs, text, start, stop, false)
}

// Package bounds normalizes [start, stop) slice arguments.
//
// All public entry points of the module accept slice bounds the way the
// classic text tools did: stop values past the end are clamped to the
// length, negative values count from the end, and an inverted slice
// collapses to an empty one at stop.
package bounds

// Normalize clamps start and stop against length n.
//
// Rules, in order:
//   - stop > n: stop = n
//   - stop < 0: stop += n, clamped at 0
//   - start < 0: start += n, clamped at 0
//   - stop < start: start = stop
func Normalize(start, stop, n int) (int, int) {
	if stop > n {
		stop = n
	} else if stop < 0 {
		stop += n
		if stop < 0 {
			stop = 0
		}
	}
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < start {
		start = stop
	}
	return start, stop
}

// JoinIndex maps a join-list index onto [0, n].
//
// Join lists use their own convention for negative indices: -1 means one
// past the end (n), -2 means n-1, and so on. Values past either end are
// clamped.
func JoinIndex(i, n int) int {
	if i > n {
		return n
	}
	if i < 0 {
		i += n + 1
		if i < 0 {
			return 0
		}
	}
	return i
}

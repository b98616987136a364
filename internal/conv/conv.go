// Package conv provides checked integer conversions for the tagging engine.
//
// Conversions check bounds before narrowing to prevent silent truncation.
// They panic on overflow since callers validate
// user input first: reaching an out-of-range value here is a programming
// error, not a malformed tag table.
package conv

import "math"

// RuneToByte converts a character known to be 8-bit to its byte value.
// Panics if r is negative or above 0xFF.
//
//go:inline
func RuneToByte(r rune) byte {
	if r < 0 || r > math.MaxUint8 {
		panic("integer overflow: rune value out of byte range")
	}
	return byte(r)
}

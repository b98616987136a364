package search

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// hasVectorScan reports whether the runtime's bytes.IndexByte runs on
// vector instructions on this CPU. Without them the SWAR loop is faster.
var hasVectorScan = cpu.X86.HasAVX2 || cpu.X86.HasSSE42 || cpu.ARM64.HasASIMD

// SWAR (SIMD Within A Register) constants: one bit per byte lane.
const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// indexByte returns the index of the first b in haystack, or -1.
func indexByte(haystack []byte, b byte) int {
	if hasVectorScan {
		return bytes.IndexByte(haystack, b)
	}
	return memchr(haystack, b)
}

// memchr returns the index of the first b in haystack, or -1.
//
// It processes 8 bytes per step:
//  1. Broadcast b to every byte of a uint64
//  2. XOR a little-endian word of haystack with it (equal bytes become 0x00)
//  3. Detect a zero lane with (v - lo8) & ^v & hi8
//  4. The trailing zero count of that mask locates the lane
func memchr(haystack []byte, b byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == b {
				return i
			}
		}
		return -1
	}

	mask := uint64(b) * lo8
	i := 0
	for ; i+8 <= n; i += 8 {
		v := binary.LittleEndian.Uint64(haystack[i:]) ^ mask
		if zero := (v - lo8) & ^v & hi8; zero != 0 {
			return i + bits.TrailingZeros64(zero)/8
		}
	}
	for ; i < n; i++ {
		if haystack[i] == b {
			return i
		}
	}
	return -1
}

// rank estimates how common a byte is in text; lower is rarer.
// The classes follow the usual shape of prose and source code: spaces and
// lowercase vowels dominate, control and high bytes are rare.
func rank(b byte) uint8 {
	switch {
	case b == ' ':
		return 255
	case b == 'e' || b == 't' || b == 'a' || b == 'o' || b == 'i' || b == 'n':
		return 230
	case b >= 'a' && b <= 'z':
		return 180
	case b == '.' || b == ',' || b == '\n' || b == '_' || b == '(' || b == ')':
		return 160
	case b >= '0' && b <= '9':
		return 140
	case b >= 'A' && b <= 'Z':
		return 100
	case b >= 0x21 && b <= 0x7e:
		return 60
	case b == '\t' || b == '\r':
		return 40
	default:
		return 10
	}
}

// rareByte picks the rarest byte of needle and its index. Ties keep the
// rightmost byte, which tends to be more distinctive than a prefix.
func rareByte(needle []byte) (byte, int) {
	idx := len(needle) - 1
	best := rank(needle[idx])
	for i := idx - 1; i >= 0; i-- {
		if r := rank(needle[i]); r < best {
			best, idx = r, i
		}
	}
	return needle[idx], idx
}

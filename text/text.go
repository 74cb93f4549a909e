// Package text owns the raw source bytes fed to the lexer and parser.
//
// Positions are dense 32-bit offsets (TextSize); a TextSpan is a borrowed
// view into a Buffer and must not outlive it. Out-of-range access is a
// programming error and panics through internal/invariant rather than
// returning an error, matching the fatal-on-internal-misuse policy used
// throughout this module.
package text

import (
	"math/bits"

	"github.com/aledsdavies/gml/internal/invariant"
)

// TextSize is a 32-bit byte offset into a Buffer.
type TextSize uint32

// TextSpan is a borrowed (start, end) byte range within a Buffer.
type TextSpan struct {
	Start TextSize
	End   TextSize
}

// Len reports the span's length in bytes.
func (s TextSpan) Len() TextSize { return s.End - s.Start }

// Buffer owns an immutable, contiguous byte slice. Its length must be
// strictly less than 2^32, mirroring the TextSize domain.
type Buffer struct {
	data []byte
}

// New wraps raw bytes as a Buffer. The caller must not mutate data afterward.
func New(data []byte) Buffer {
	invariant.Precondition(len(data) < (1<<32), "buffer length must be < 2^32, got %d", len(data))
	return Buffer{data: data}
}

// Len returns the buffer length.
func (b Buffer) Len() TextSize { return TextSize(len(b.data)) }

// ByteAt returns the byte at i, panicking if i is out of range.
func (b Buffer) ByteAt(i TextSize) byte {
	invariant.Precondition(i < b.Len(), "index %d out of range for buffer of length %d", i, b.Len())
	return b.data[i]
}

// UncheckedByteAt returns the byte at i without a bounds check. Callers
// must have already established i < b.Len(); this exists for the lexer's
// hot dispatch loop where the bounds check has already happened.
func (b Buffer) UncheckedByteAt(i TextSize) byte {
	return b.data[i]
}

// Slice returns the raw bytes in [start, end).
func (b Buffer) Slice(start, end TextSize) []byte {
	invariant.Precondition(start <= end && end <= b.Len(), "slice [%d,%d) out of range for buffer of length %d", start, end, b.Len())
	return b.data[start:end]
}

// SliceFrom returns the raw bytes from start to the end of the buffer.
func (b Buffer) SliceFrom(start TextSize) []byte {
	return b.Slice(start, b.Len())
}

// Span returns a borrowed view over [start, end).
func (b Buffer) Span(start, end TextSize) TextSpan {
	invariant.Precondition(start <= end && end <= b.Len(), "span [%d,%d) out of range for buffer of length %d", start, end, b.Len())
	return TextSpan{Start: start, End: end}
}

// Text materializes the bytes a span covers.
func (b Buffer) Text(s TextSpan) []byte {
	return b.Slice(s.Start, s.End)
}

// FindNext returns the offset of the next occurrence of byte at or after
// start, or (0, false) if none exists.
//
// The scan is a portable SWAR ("SIMD within a register") byte search: it
// tests eight bytes at a time via the classic has-zero-byte trick against a
// broadcast needle, falling back to a scalar loop for the final partial
// word. Real machine SIMD (the reference implementation used x86 SSE2
// intrinsics) has no portable equivalent in Go without cgo or
// architecture-specific assembly, which this module's dependency set does
// not carry — see DESIGN.md.
func (b Buffer) FindNext(needle byte, start TextSize) (TextSize, bool) {
	invariant.Precondition(start <= b.Len(), "start %d out of range for buffer of length %d", start, b.Len())

	haystack := b.data[start:]
	if off, ok := indexOfSWAR(needle, haystack); ok {
		return start + TextSize(off), true
	}
	return 0, false
}

const swarWordSize = 8

func broadcast(b byte) uint64 {
	return uint64(b) * 0x0101010101010101
}

// hasZeroByte returns a nonzero value iff v contains a zero byte.
func hasZeroByte(v uint64) uint64 {
	const lo = 0x0101010101010101
	const hi = 0x8080808080808080
	return (v - lo) &^ v & hi
}

func indexOfSWAR(needle byte, haystack []byte) (int, bool) {
	n := len(haystack)
	needleWord := broadcast(needle)

	i := 0
	for i+swarWordSize <= n {
		word := le64(haystack[i : i+swarWordSize])
		masked := hasZeroByte(word ^ needleWord)
		if masked != 0 {
			return i + bits.TrailingZeros64(masked)/8, true
		}
		i += swarWordSize
	}

	for ; i < n; i++ {
		if haystack[i] == needle {
			return i, true
		}
	}
	return 0, false
}

func le64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

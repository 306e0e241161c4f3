package buf

import (
	"math"
	"math/bits"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// AddU64 adds a and b, returning ok = false when the sum wraps.
func AddU64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// RoundUpU64 rounds n up to the next multiple of unit, returning ok = false
// when unit is zero or the result would wrap.
//
// Example:
//
//	RoundUpU64(1, 4096)    = 4096
//	RoundUpU64(4096, 4096) = 4096
//	RoundUpU64(4097, 4096) = 8192
func RoundUpU64(n, unit uint64) (uint64, bool) {
	if unit == 0 {
		return 0, false
	}
	rem := n % unit
	if rem == 0 {
		return n, true
	}
	return AddU64(n, unit-rem)
}

// FitsInt reports whether n can be used as a Go length.
func FitsInt(n uint64) bool {
	return n <= math.MaxInt
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

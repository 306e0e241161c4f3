package format

import "github.com/joshuapare/heapkit/internal/buf"

// AlignBlockU64 returns n aligned up to the next block boundary (16 bytes).
// ok is false when rounding would wrap.
//
// Example:
//
//	AlignBlockU64(1)  = 16
//	AlignBlockU64(16) = 16
//	AlignBlockU64(17) = 32
func AlignBlockU64(n uint64) (uint64, bool) {
	return buf.RoundUpU64(n, BlockAlignment)
}

// AlignPage returns n rounded up to a multiple of pageSize. ok is false when
// pageSize is not positive or the result would wrap.
func AlignPage(n uint64, pageSize int) (uint64, bool) {
	if pageSize <= 0 {
		return 0, false
	}
	return buf.RoundUpU64(n, uint64(pageSize))
}

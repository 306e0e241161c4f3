package heap

import (
	"github.com/joshuapare/heapkit/heap/freelist"
	"github.com/joshuapare/heapkit/internal/format"
)

// Free returns the allocation at p to its arena, coalescing it with any
// adjacent free chunks. Pointers that do not name a live allocation
// (foreign, corrupted or already freed) are ignored. When the arena ends up
// entirely free and is not the head arena it is unmapped.
func (h *Heap) Free(p Ptr) {
	h.stats.FreeCalls++

	idx, a, off, size, ok := h.lookup(p)
	if !ok {
		h.stats.IgnoredFrees++
		return
	}

	merges := a.free.Merges()
	merged, err := a.free.Insert(freelist.Span{Off: off, Size: size})
	if err != nil {
		// The header claims bytes that are already free.
		h.stats.IgnoredFrees++
		return
	}
	h.stats.Coalesces += a.free.Merges() - merges

	// Retag the freed header first so a repeated Free of p misses even when
	// the chunk merged into its left neighbor.
	format.PutFreeHeader(a.region, off, uint64(size))
	format.PutFreeHeader(a.region, merged.Off, uint64(merged.Size))
	h.stats.InUseBytes -= int64(size)

	if idx != 0 && a.releasable() {
		h.release(idx)
	}
}

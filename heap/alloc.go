package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Alloc returns a pointer to at least size usable bytes along with a slice
// over them. Sizes are rounded up to the 16-byte block alignment, and a
// chunk whose leftover cannot host a header is handed out whole, so the
// slice may be longer than size.
//
// On failure Alloc returns Nil and one of ErrZeroSize, ErrOverflow,
// ErrNoSpace or ErrUninitialized (possibly wrapped).
func (h *Heap) Alloc(size uint64) (Ptr, []byte, error) {
	h.stats.AllocCalls++

	if err := h.Init(); err != nil {
		return Nil, nil, err
	}
	if size == 0 {
		return Nil, nil, ErrZeroSize
	}
	need, ok := format.AlignBlockU64(size)
	if !ok || !buf.FitsInt(need) {
		return Nil, nil, fmt.Errorf("%w: %d bytes", ErrOverflow, size)
	}

	a, err := h.accommodating(need)
	if err != nil {
		return Nil, nil, err
	}

	i, ok := a.free.FirstFit(int(need))
	if !ok {
		// The cached max promised a fit; a miss here means the cache is stale.
		return Nil, nil, fmt.Errorf("%w: arena %d max %d has no chunk for %d", ErrNoSpace, a.id, a.free.Max(), need)
	}

	merges := a.free.Merges()
	taken, rest, err := a.free.Take(i, int(need))
	if err != nil {
		return Nil, nil, fmt.Errorf("%w: %w", ErrNoSpace, err)
	}
	h.stats.Coalesces += a.free.Merges() - merges

	switch {
	case rest.Size > 0:
		format.PutFreeHeader(a.region, rest.Off, uint64(rest.Size))
		h.stats.Splits++
	case taken.Size > int(need):
		h.stats.Donations++
	}

	format.PutAllocHeader(a.region, taken.Off, uint64(taken.Size))
	h.stats.InUseBytes += int64(taken.Size)

	return a.ptrAt(taken.Off), a.payload(taken.Off, taken.Size), nil
}

// Bytes returns the usable slice of the live allocation at p.
func (h *Heap) Bytes(p Ptr) ([]byte, error) {
	_, a, off, size, ok := h.lookup(p)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrBadPtr, uintptr(p))
	}
	return a.payload(off, size), nil
}

// Size returns the usable size of the live allocation at p.
func (h *Heap) Size(p Ptr) (uint64, bool) {
	_, _, _, size, ok := h.lookup(p)
	return uint64(size), ok
}

// lookup resolves p to its arena and validates the allocation header in
// front of it. The check is best-effort: it rejects foreign pointers,
// misaligned pointers, headers without the allocation tag and sizes that
// run past the arena end.
func (h *Heap) lookup(p Ptr) (idx int, a *arena, off, size int, ok bool) {
	if !h.initialized || p == Nil {
		return 0, nil, 0, 0, false
	}
	idx, a, ok = h.owner(uintptr(p))
	if !ok {
		return 0, nil, 0, 0, false
	}
	off = a.headerOff(p)
	if off < format.ArenaHeaderSize || off%format.BlockAlignment != 0 {
		return 0, nil, 0, 0, false
	}
	raw, tag, ok := format.ReadBlockHeader(a.region, off)
	if !ok || tag != format.AllocMagic || !buf.FitsInt(raw) {
		return 0, nil, 0, 0, false
	}
	if !buf.Has(a.region, off+format.BlockHeaderSize, int(raw)) {
		return 0, nil, 0, 0, false
	}
	return idx, a, off, int(raw), true
}

package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/freelist"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// arena is one mapping. Its region starts with the arena header; the rest
// is tiled by blocks whose free members are tracked by free.
type arena struct {
	id     uint32
	region []byte
	base   uintptr
	free   *freelist.List
}

// contains reports whether addr lies between the end of the arena header
// and the end of the mapping.
func (a *arena) contains(addr uintptr) bool {
	return addr >= a.base+format.ArenaHeaderSize && addr < a.base+uintptr(len(a.region))
}

// releasable reports whether the arena holds a single free chunk spanning
// its whole usable space.
func (a *arena) releasable() bool {
	return len(a.region) == a.free.Max()+format.ArenaOverhead
}

// mapArena maps size bytes and lays out a fresh arena: header plus one free
// chunk covering everything after it.
func (h *Heap) mapArena(size int) (*arena, error) {
	region, err := h.p.Map(size)
	if err != nil {
		return nil, fmt.Errorf("%w: map %d bytes: %w", ErrNoSpace, size, err)
	}
	if len(region) != size {
		_ = h.p.Unmap(region)
		return nil, fmt.Errorf("%w: provider returned %d bytes, asked %d", ErrNoSpace, len(region), size)
	}

	id := h.nextID
	h.nextID++
	format.PutArenaHeader(region, id, uint64(size))
	first := freelist.Span{Off: format.ArenaHeaderSize, Size: size - format.ArenaOverhead}
	format.PutFreeHeader(region, first.Off, uint64(first.Size))

	a := &arena{
		id:     id,
		region: region,
		base:   regionBase(region),
		free:   freelist.New(first),
	}
	h.stats.ArenasCreated++
	h.log.Debug("arena created", "arena", id, "size", size, "base", fmt.Sprintf("0x%x", a.base))
	if h.opts.OnGrow != nil {
		h.opts.OnGrow(size)
	}
	return a, nil
}

// createArena maps an arena able to hold a chunk of need usable bytes. The
// size is the minimum arena size when need plus overhead fits in it,
// otherwise need plus overhead rounded up to a page multiple.
func (h *Heap) createArena(need uint64) (*arena, error) {
	total, ok := buf.AddU64(need, format.ArenaOverhead)
	if !ok || !buf.FitsInt(total) {
		return nil, fmt.Errorf("%w: %d bytes plus %d overhead", ErrOverflow, need, format.ArenaOverhead)
	}

	size := uint64(h.minArenaSize)
	if total > size {
		size, ok = format.AlignPage(total, h.pageSize)
		if !ok || !buf.FitsInt(size) {
			return nil, fmt.Errorf("%w: %d bytes rounded to page size %d", ErrOverflow, total, h.pageSize)
		}
	}
	return h.mapArena(int(size))
}

// extend creates an arena for need bytes and appends it to the registry.
func (h *Heap) extend(need uint64) (*arena, error) {
	a, err := h.createArena(need)
	if err != nil {
		return nil, err
	}
	h.arenas = append(h.arenas, a)
	return a, nil
}

// accommodating returns the first arena whose largest free chunk can hold
// need bytes, extending the heap when none can.
func (h *Heap) accommodating(need uint64) (*arena, error) {
	for _, a := range h.arenas {
		if uint64(a.free.Max()) >= need {
			return a, nil
		}
	}
	return h.extend(need)
}

// owner returns the registry index and arena containing addr.
func (h *Heap) owner(addr uintptr) (int, *arena, bool) {
	for i, a := range h.arenas {
		if a.contains(addr) {
			return i, a, true
		}
	}
	return 0, nil, false
}

// release unmaps the arena at index i. The arena leaves the registry only
// when the unmap succeeds. The head arena is never released.
func (h *Heap) release(i int) {
	if i == 0 {
		return
	}
	a := h.arenas[i]
	if err := h.p.Unmap(a.region); err != nil {
		h.stats.ReleaseFailures++
		h.log.Warn("arena release failed", "arena", a.id, "size", len(a.region), "error", err)
		return
	}
	h.arenas = append(h.arenas[:i], h.arenas[i+1:]...)
	h.stats.ArenasReleased++
	h.log.Debug("arena released", "arena", a.id, "size", len(a.region))
	a.region = nil
}

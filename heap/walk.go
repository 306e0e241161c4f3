package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/freelist"
	"github.com/joshuapare/heapkit/internal/format"
)

// Block describes one block found while walking an arena.
type Block struct {
	Arena  uint32 // Owning arena id
	Offset int    // Header offset within the arena
	Ptr    Ptr    // Client pointer (header address + 16)
	Size   int    // Usable size, header excluded
	Free   bool   // On the free list
}

// ArenaInfo is a snapshot of one arena.
type ArenaInfo struct {
	ID         uint32
	Head       bool
	Base       uintptr
	Allocated  int // Mapped size, overhead included
	MaxFree    int // Cached largest free chunk
	FreeChunks int
	FreeBytes  int

	// Free lists the free spans in address order.
	Free []freelist.Span

	// Region aliases the arena memory. It is exposed for validators and
	// dumps and must not be modified.
	Region []byte
}

// Arenas returns a snapshot of the live arenas in registry order. It is
// empty before initialization.
func (h *Heap) Arenas() []ArenaInfo {
	out := make([]ArenaInfo, 0, len(h.arenas))
	for i, a := range h.arenas {
		out = append(out, ArenaInfo{
			ID:         a.id,
			Head:       i == 0,
			Base:       a.base,
			Allocated:  len(a.region),
			MaxFree:    a.free.Max(),
			FreeChunks: a.free.Len(),
			FreeBytes:  a.free.Total(),
			Free:       a.free.Spans(),
			Region:     a.region,
		})
	}
	return out
}

// Walk calls fn for every block of every arena in registry then address
// order. The walk decodes headers from arena memory and stops at the first
// error returned by fn or found while decoding. Walking an uninitialized
// heap visits nothing.
func (h *Heap) Walk(fn func(Block) error) error {
	for _, a := range h.arenas {
		off := format.ArenaHeaderSize
		for off < len(a.region) {
			blk, next, err := format.NextBlock(a.region, off)
			if err != nil {
				return fmt.Errorf("arena %d: %w", a.id, err)
			}
			if err := fn(Block{
				Arena:  a.id,
				Offset: blk.Offset,
				Ptr:    a.ptrAt(blk.Offset),
				Size:   blk.Size,
				Free:   blk.Free,
			}); err != nil {
				return err
			}
			off = next
		}
	}
	return nil
}

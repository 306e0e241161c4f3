// Package verify provides validation functions for heap arenas.
// These helpers are used in tests to ensure allocator invariants are maintained.
package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/freelist"
	"github.com/joshuapare/heapkit/internal/format"
)

// Error types for different validation failures.
type ValidationError struct {
	Type    string
	Message string
	Arena   uint32
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s in arena %d at offset 0x%X: %s", e.Type, e.Arena, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s in arena %d: %s", e.Type, e.Arena, e.Message)
}

// AllInvariants validates all heap invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(h *heap.Heap) error {
	arenas := h.Arenas()
	for _, a := range arenas {
		if err := ArenaHeader(a); err != nil {
			return err
		}
		if err := Tiling(a); err != nil {
			return err
		}
		if err := FreeList(a); err != nil {
			return err
		}
	}
	if err := Registry(h, arenas); err != nil {
		return err
	}
	return Accounting(h, arenas)
}

// ArenaHeader validates the arena header against the snapshot.
func ArenaHeader(a heap.ArenaInfo) error {
	hdr, err := format.ParseArenaHeader(a.Region)
	if err != nil {
		return &ValidationError{
			Type:    "ArenaHeader",
			Message: err.Error(),
			Arena:   a.ID,
			Offset:  0,
		}
	}
	if hdr.ID != a.ID {
		return &ValidationError{
			Type:    "ArenaHeader",
			Message: fmt.Sprintf("id mismatch: header=%d, registry=%d", hdr.ID, a.ID),
			Arena:   a.ID,
			Offset:  format.ArenaIDOffset,
		}
	}
	if a.Allocated != len(a.Region) {
		return &ValidationError{
			Type:    "ArenaHeader",
			Message: fmt.Sprintf("allocated %d, region %d bytes", a.Allocated, len(a.Region)),
			Arena:   a.ID,
			Offset:  -1,
		}
	}
	return nil
}

// Tiling validates that the blocks of an arena cover [32, allocated)
// exactly with no gaps or overlaps, and that every block is header-aligned.
func Tiling(a heap.ArenaInfo) error {
	_, err := blocks(a)
	return err
}

// FreeList validates the free list of an arena against its memory:
//   - the list matches the free blocks found in memory, in address order
//   - no two free blocks are adjacent (coalescing is complete)
//   - the cached max equals the true largest free block
func FreeList(a heap.ArenaInfo) error {
	blks, err := blocks(a)
	if err != nil {
		return err
	}

	var inMemory []freelist.Span
	prevFree := false
	for _, b := range blks {
		if b.Free {
			if prevFree {
				return &ValidationError{
					Type:    "FreeList",
					Message: "adjacent free blocks were not coalesced",
					Arena:   a.ID,
					Offset:  b.Offset,
				}
			}
			inMemory = append(inMemory, freelist.Span{Off: b.Offset, Size: b.Size})
		}
		prevFree = b.Free
	}

	if len(inMemory) != len(a.Free) {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("free list has %d spans, memory has %d free blocks", len(a.Free), len(inMemory)),
			Arena:   a.ID,
			Offset:  -1,
			Details: map[string]interface{}{
				"list":   a.Free,
				"memory": inMemory,
			},
		}
	}
	maxSize := 0
	for i, s := range a.Free {
		if s != inMemory[i] {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("span %d is {%d %d}, memory has {%d %d}", i, s.Off, s.Size, inMemory[i].Off, inMemory[i].Size),
				Arena:   a.ID,
				Offset:  s.Off,
			}
		}
		maxSize = max(maxSize, s.Size)
	}

	if a.MaxFree != maxSize {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("cached max %d, largest free span %d", a.MaxFree, maxSize),
			Arena:   a.ID,
			Offset:  -1,
			Details: map[string]interface{}{
				"cached": a.MaxFree,
				"actual": maxSize,
			},
		}
	}
	return nil
}

// Registry validates arena ordering and lifetime rules: the head arena is
// first, ids are unique, and no non-head arena is left entirely free unless
// a release failed.
func Registry(h *heap.Heap, arenas []heap.ArenaInfo) error {
	if !h.Initialized() {
		if len(arenas) != 0 {
			return &ValidationError{Type: "Registry", Message: "uninitialized heap has arenas", Offset: -1}
		}
		return nil
	}
	if len(arenas) == 0 || !arenas[0].Head {
		return &ValidationError{Type: "Registry", Message: "head arena missing", Offset: -1}
	}
	if arenas[0].Allocated != h.MinArenaSize() {
		return &ValidationError{
			Type:    "Registry",
			Message: fmt.Sprintf("head arena is %d bytes, minimum arena %d", arenas[0].Allocated, h.MinArenaSize()),
			Arena:   arenas[0].ID,
			Offset:  -1,
		}
	}

	stuck := h.Stats().ReleaseFailures > 0
	seen := make(map[uint32]bool, len(arenas))
	for i, a := range arenas {
		if seen[a.ID] {
			return &ValidationError{Type: "Registry", Message: "duplicate arena id", Arena: a.ID, Offset: -1}
		}
		seen[a.ID] = true

		if a.Allocated < h.MinArenaSize() || a.Allocated%h.PageSize() != 0 {
			return &ValidationError{
				Type:    "Registry",
				Message: fmt.Sprintf("arena size %d is not a page multiple of at least %d", a.Allocated, h.MinArenaSize()),
				Arena:   a.ID,
				Offset:  -1,
			}
		}
		if i > 0 && !stuck && a.Allocated == a.MaxFree+format.ArenaOverhead {
			return &ValidationError{
				Type:    "Registry",
				Message: "fully free arena was not released",
				Arena:   a.ID,
				Offset:  -1,
			}
		}
	}
	return nil
}

// Accounting validates the heap statistics against the arena contents.
func Accounting(h *heap.Heap, arenas []heap.ArenaInfo) error {
	var inUse, free, mapped int64
	for _, a := range arenas {
		blks, err := blocks(a)
		if err != nil {
			return err
		}
		for _, b := range blks {
			if b.Free {
				free += int64(b.Size)
			} else {
				inUse += int64(b.Size)
			}
		}
		mapped += int64(a.Allocated)
	}

	st := h.Stats()
	if st.InUseBytes != inUse || st.FreeBytes != free || st.MappedBytes != mapped {
		return &ValidationError{
			Type:    "Accounting",
			Message: fmt.Sprintf("stats in-use=%d free=%d mapped=%d, memory in-use=%d free=%d mapped=%d", st.InUseBytes, st.FreeBytes, st.MappedBytes, inUse, free, mapped),
			Offset:  -1,
		}
	}
	return nil
}

// blocks decodes every block of an arena and checks they tile it exactly.
func blocks(a heap.ArenaInfo) ([]format.Block, error) {
	var out []format.Block
	off := format.ArenaHeaderSize
	for off < len(a.Region) {
		if off%format.BlockAlignment != 0 {
			return nil, &ValidationError{
				Type:    "Tiling",
				Message: fmt.Sprintf("block header not %d-byte aligned", format.BlockAlignment),
				Arena:   a.ID,
				Offset:  off,
			}
		}
		b, next, err := format.NextBlock(a.Region, off)
		if err != nil {
			return nil, &ValidationError{
				Type:    "Tiling",
				Message: err.Error(),
				Arena:   a.ID,
				Offset:  off,
			}
		}
		out = append(out, b)
		off = next
	}
	if off != len(a.Region) {
		return nil, &ValidationError{
			Type:    "Tiling",
			Message: fmt.Sprintf("blocks end at 0x%X, arena ends at 0x%X", off, len(a.Region)),
			Arena:   a.ID,
			Offset:  off,
		}
	}
	return out, nil
}

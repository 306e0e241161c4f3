// Package verify checks heap invariants against arena memory.
//
// # Overview
//
// Every check walks arena memory with the same header decoder the allocator
// uses and compares what it finds with the allocator's own bookkeeping, so a
// mismatch means the two have drifted apart.
//
// Validation categories:
//   - ArenaHeader: signature, id and size stamped at the start of the arena
//   - Tiling: blocks cover the arena from 0x20 to its end with no gaps
//   - FreeList: list spans equal the free blocks in memory, coalescing is
//     complete and the cached max is exact
//   - Registry: head arena first and minimum sized, unique ids, fully free
//     arenas released
//   - Accounting: Stats gauges equal what memory holds
//
// # Quick Start
//
//	h := heap.New(vmem.NewSim(vmem.SimOptions{}), nil)
//	p, _, _ := h.Alloc(64)
//	h.Free(p)
//	if err := verify.AllInvariants(h); err != nil {
//	    t.Fatal(err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure:
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("%s arena=%d offset=0x%X\n", verr.Type, verr.Arena, verr.Offset)
//	}
//
// Offset is -1 when the failure is not tied to a position in the arena.
package verify

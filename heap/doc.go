// Package heap is a general-purpose dynamic memory allocator that serves
// variable-sized requests out of page-granular arenas obtained from a
// virtual-memory provider.
//
// # Overview
//
// A Heap owns an ordered registry of arenas. Each arena is one contiguous
// mapping that starts with a 32-byte arena header and is tiled, with no gaps,
// by blocks. Every block is a 16-byte header followed by its payload:
//
//	arena: [arena header][hdr|payload][hdr|payload][hdr|free ..........]
//
// Free blocks are tracked per arena by an address-ordered free list
// (package freelist) that supports first-fit lookup, splitting and one-hop
// coalescing with both neighbors, and caches the size of its largest span so
// arena admission is a single comparison.
//
// # Usage Example
//
//	h := heap.New(nil, nil) // operating system provider, default options
//
//	p, buf, err := h.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Later, return the block
//	h.Free(p)
//
// # Arena Lifecycle
//
// The first arena is mapped lazily on the first Alloc (or an explicit Init)
// with exactly pageSize × ArenaPages bytes and is never released. When no
// arena has a large enough free chunk a new arena is mapped, sized to the
// request plus overhead and rounded up to the minimum arena size or a page
// multiple. A non-head arena is unmapped as soon as a Free leaves it entirely
// free. If the unmap fails the arena stays registered and usable.
//
// # Error Handling
//
// Alloc reports failures through its error return and a Nil pointer. Free
// never reports anything: foreign pointers, corrupted headers and double
// frees are ignored and counted in Stats.IgnoredFrees.
//
// # Thread Safety
//
// Heap instances are not thread-safe and not reentrant. Callers must
// synchronize access externally.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/heap/freelist: per-arena free-chunk engine
//   - github.com/joshuapare/heapkit/heap/verify: invariant validation
//   - github.com/joshuapare/heapkit/heap/printer: heap dump
//   - github.com/joshuapare/heapkit/internal/format: memory layout
package heap

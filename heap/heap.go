package heap

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/vmem"
)

// Provider supplies page-granular address space. Map must return a zeroed,
// private region of exactly size bytes or fail without side effects. Unmap
// must be given the exact region returned by Map.
type Provider interface {
	Map(size int) ([]byte, error)
	Unmap(region []byte) error
	PageSize() int
}

// Ptr is the address of the first usable byte of an allocation. The
// allocation header sits immediately before it.
type Ptr uintptr

// Nil is the pointer returned by failed allocations.
const Nil Ptr = 0

// Heap is an arena-based allocator. The zero value is not usable; create
// one with New.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Heap struct {
	p    Provider
	opts Options
	log  *slog.Logger

	// arenas[0] is the permanent head arena; new arenas are appended.
	arenas []*arena
	nextID uint32

	pageSize     int
	minArenaSize int

	initialized bool
	initErr     error // sticky: set once when the head arena cannot be mapped

	stats Stats
}

// Stats holds allocator counters and gauges.
type Stats struct {
	AllocCalls      int // Total Alloc() calls
	FreeCalls       int // Total Free() calls
	IgnoredFrees    int // Free() calls that did not name a live allocation
	ArenasCreated   int // Arenas mapped, head included
	ArenasReleased  int // Arenas unmapped
	ReleaseFailures int // Unmap failures; those arenas stay live
	Splits          int // Allocations that split their chunk
	Donations       int // Allocations that absorbed a too-small leftover
	Coalesces       int // Free-chunk merges

	Arenas      int   // Live arenas
	MappedBytes int64 // Bytes mapped across live arenas
	InUseBytes  int64 // Usable bytes handed out and not yet freed
	FreeBytes   int64 // Usable bytes on free lists
}

// New creates a heap drawing memory from p. A nil p selects the operating
// system provider and nil opts selects DefaultOptions. No memory is mapped
// until the first Alloc or Init.
func New(p Provider, opts *Options) *Heap {
	if p == nil {
		p = vmem.OS()
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	o = o.withDefaults()
	return &Heap{
		p:    p,
		opts: o,
		log:  o.Logger,
	}
}

// Init maps the permanent head arena. It runs at most once: later calls
// return nil after success or the original error after failure.
func (h *Heap) Init() error {
	if h.initialized {
		return nil
	}
	if h.initErr != nil {
		return h.initErr
	}

	page := h.p.PageSize()
	if page <= 0 || h.opts.ArenaPages > math.MaxInt/page {
		h.initErr = fmt.Errorf("%w: page size %d × %d pages", ErrUninitialized, page, h.opts.ArenaPages)
		return h.initErr
	}
	minSize := page * h.opts.ArenaPages
	if minSize <= format.ArenaOverhead {
		h.initErr = fmt.Errorf("%w: minimum arena %d bytes leaves no usable space", ErrUninitialized, minSize)
		return h.initErr
	}

	head, err := h.mapArena(minSize)
	if err != nil {
		h.initErr = fmt.Errorf("%w: %w", ErrUninitialized, err)
		h.log.Warn("heap init failed", "size", minSize, "error", err)
		return h.initErr
	}

	h.pageSize = page
	h.minArenaSize = minSize
	h.arenas = []*arena{head}
	h.initialized = true
	h.log.Debug("heap initialized", "page_size", page, "min_arena", minSize)
	return nil
}

// Initialized reports whether the head arena has been mapped.
func (h *Heap) Initialized() bool {
	return h.initialized
}

// PageSize returns the provider page size (0 before initialization).
func (h *Heap) PageSize() int {
	return h.pageSize
}

// MinArenaSize returns the size of the head arena and the floor for every
// other arena (0 before initialization).
func (h *Heap) MinArenaSize() int {
	return h.minArenaSize
}

// Stats returns a snapshot of allocator statistics.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.Arenas = len(h.arenas)
	for _, a := range h.arenas {
		s.MappedBytes += int64(len(a.region))
		s.FreeBytes += int64(a.free.Total())
	}
	return s
}

package heap_test

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/vmem"
)

func TestFree_RoundTrip(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	mustAlloc(t, h, 200)

	for _, n := range []uint64{1, 64, 1000, 4096} {
		p := mustAlloc(t, h, n)
		h.Free(p)
		again := mustAlloc(t, h, n)
		require.Equal(t, p, again, "size %d", n)
		h.Free(again)
	}
	assertInvariants(t, h)
}

func TestFree_BeforeInit(t *testing.T) {
	h, sim := newTestHeap(t, 4)
	var x uint64

	require.NotPanics(t, func() {
		h.Free(heap.Ptr(uintptr(unsafe.Pointer(&x))))
		h.Free(heap.Nil)
	})
	require.False(t, h.Initialized())
	require.Equal(t, 0, sim.Stats().Maps)
	require.Equal(t, 2, h.Stats().IgnoredFrees)
}

func TestFree_InvalidPointersIgnored(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	p := mustAlloc(t, h, 64)
	q := mustAlloc(t, h, 64)
	before := h.Arenas()[0]

	var local [32]byte
	stack := heap.Ptr(uintptr(unsafe.Pointer(&local[0])))
	bad := []heap.Ptr{
		heap.Nil,
		stack,
		p + 8,                        // misaligned interior pointer
		p + 16,                       // aligned, inside p's payload
		heap.Ptr(before.Base),        // arena header
		heap.Ptr(before.Base + 16),   // first block header
		heap.Ptr(before.Base + 4096), // free tail
	}
	for _, b := range bad {
		for range 2 {
			h.Free(b)
		}
	}

	after := h.Arenas()[0]
	assert.Equal(t, before.Free, after.Free)
	assert.Equal(t, 2*len(bad), h.Stats().IgnoredFrees)
	_, ok := h.Size(p)
	assert.True(t, ok)
	_, ok = h.Size(q)
	assert.True(t, ok)
	assertInvariants(t, h)
}

func TestFree_DoubleFreeIgnored(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	h.Free(b)
	// a merges with b, so b's old header now sits inside a's free chunk.
	h.Free(a)
	snapshot := h.Arenas()[0].Free

	h.Free(b)
	h.Free(a)
	assert.Equal(t, snapshot, h.Arenas()[0].Free)
	assert.Equal(t, 2, h.Stats().IgnoredFrees)
	assertInvariants(t, h)
}

func TestFree_CoalesceForward(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	h.Free(b)
	h.Free(a)
	spans := h.Arenas()[0].Free
	require.Len(t, spans, 2)
	assert.Equal(t, 64+16+64, spans[0].Size)
	assertInvariants(t, h)
}

func TestFree_CoalesceBackward(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	h.Free(a)
	h.Free(b)
	spans := h.Arenas()[0].Free
	require.Len(t, spans, 2)
	assert.Equal(t, 64+16+64, spans[0].Size)
	assertInvariants(t, h)
}

func TestFree_CoalesceBothSides(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 64)
	c := mustAlloc(t, h, 64)
	mustAlloc(t, h, 64)

	h.Free(a)
	h.Free(c)
	require.Len(t, h.Arenas()[0].Free, 3)

	h.Free(b)
	spans := h.Arenas()[0].Free
	require.Len(t, spans, 2)
	assert.Equal(t, 3*64+2*16, spans[0].Size)
	assert.Equal(t, 2, h.Stats().Coalesces, "b joins c, then a joins b")
	assertInvariants(t, h)
}

func TestFree_MiddleOfList(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	var ptrs []heap.Ptr
	for range 7 {
		ptrs = append(ptrs, mustAlloc(t, h, 32))
	}

	// Free every other block, last to first, then one in the middle.
	h.Free(ptrs[5])
	h.Free(ptrs[1])
	h.Free(ptrs[3])

	spans := h.Arenas()[0].Free
	require.Len(t, spans, 4)
	for i := 1; i < len(spans); i++ {
		assert.Less(t, spans[i-1].End(), spans[i].Off, "address order with gaps")
	}
	assertInvariants(t, h)
}

func TestFree_HeadArenaNeverReleased(t *testing.T) {
	h, sim := newTestHeap(t, 1)
	p := mustAlloc(t, h, 100)
	h.Free(p)

	require.Len(t, h.Arenas(), 1)
	assert.Equal(t, 0, sim.Stats().Unmaps)
	assert.Equal(t, 0, h.Stats().ArenasReleased)
}

// TestFree_ReleasesEmptyArena fills a non-head arena with small blocks and
// checks it is kept while any block is live and released after the last.
func TestFree_ReleasesEmptyArena(t *testing.T) {
	h, sim := newTestHeap(t, 1)

	// Fill the head arena exactly.
	mustAlloc(t, h, testPageSize-48)

	var ptrs []heap.Ptr
	for range 20 {
		ptrs = append(ptrs, mustAlloc(t, h, 64))
	}
	require.Len(t, h.Arenas(), 2)
	second := h.Arenas()[1].ID
	for _, p := range ptrs {
		require.Equal(t, second, arenaOf(t, h, p))
	}

	last := ptrs[7]
	for i, p := range ptrs {
		if i != 7 {
			h.Free(p)
			require.Len(t, h.Arenas(), 2, "arena released with a live block")
		}
	}
	assertInvariants(t, h)

	h.Free(last)
	require.Len(t, h.Arenas(), 1)
	assert.Equal(t, 1, h.Stats().ArenasReleased)
	assert.Equal(t, 1, sim.Stats().Unmaps)
	assert.Equal(t, 1, sim.Stats().LiveRegions)
	assertInvariants(t, h)

	// The next request needs a fresh arena.
	created := h.Stats().ArenasCreated
	mustAlloc(t, h, 64)
	assert.Equal(t, created+1, h.Stats().ArenasCreated)
	assertInvariants(t, h)
}

func TestFree_UnmapFailureKeepsArena(t *testing.T) {
	fail := true
	h, sim := newTestHeapWith(t, vmem.SimOptions{
		PageSize: testPageSize,
		FailUnmap: func([]byte) error {
			if fail {
				return errors.New("munmap failed")
			}
			return nil
		},
	}, 1)

	mustAlloc(t, h, testPageSize-48)
	p := mustAlloc(t, h, 512)
	h.Free(p)

	require.Len(t, h.Arenas(), 2, "arena stays registered after a failed unmap")
	assert.Equal(t, 1, h.Stats().ReleaseFailures)
	assert.Equal(t, 2, sim.Stats().LiveRegions)
	assertInvariants(t, h)

	// The surviving arena keeps serving requests.
	created := h.Stats().ArenasCreated
	q := mustAlloc(t, h, 512)
	assert.Equal(t, p, q)
	assert.Equal(t, created, h.Stats().ArenasCreated)

	fail = false
	h.Free(q)
	require.Len(t, h.Arenas(), 1)
	assert.Equal(t, 1, h.Stats().ArenasReleased)
	assertInvariants(t, h)
}

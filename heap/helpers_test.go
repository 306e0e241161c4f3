package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/vmem"
)

const testPageSize = 4096

// newTestHeap returns a heap on a simulated provider with a 4 KiB page.
// pages <= 0 keeps the default arena size.
func newTestHeap(t *testing.T, pages int) (*heap.Heap, *vmem.Sim) {
	t.Helper()
	return newTestHeapWith(t, vmem.SimOptions{PageSize: testPageSize}, pages)
}

func newTestHeapWith(t *testing.T, simOpts vmem.SimOptions, pages int) (*heap.Heap, *vmem.Sim) {
	t.Helper()
	sim := vmem.NewSim(simOpts)
	return heap.New(sim, &heap.Options{ArenaPages: pages}), sim
}

// assertInvariants fails the test if any heap invariant is violated.
func assertInvariants(t *testing.T, h *heap.Heap) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(h))
}

// mustAlloc allocates n bytes and fails the test on error.
func mustAlloc(t *testing.T, h *heap.Heap, n uint64) heap.Ptr {
	t.Helper()
	p, data, err := h.Alloc(n)
	require.NoError(t, err)
	require.NotEqual(t, heap.Nil, p)
	require.GreaterOrEqual(t, uint64(len(data)), n)
	return p
}

// arenaOf returns the id of the arena holding p.
func arenaOf(t *testing.T, h *heap.Heap, p heap.Ptr) uint32 {
	t.Helper()
	for _, a := range h.Arenas() {
		if uintptr(p) >= a.Base && uintptr(p) < a.Base+uintptr(a.Allocated) {
			return a.ID
		}
	}
	t.Fatalf("pointer 0x%x not in any arena", uintptr(p))
	return 0
}

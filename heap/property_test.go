package heap_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

// TestProperty_RandomOps drives the heap with a seeded random mix of
// allocations and frees and checks every invariant after each step.
func TestProperty_RandomOps(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			runRandomOps(t, seed, 600)
		})
	}
}

func runRandomOps(t *testing.T, seed int64, steps int) {
	h, sim := newTestHeap(t, 2)
	rng := rand.New(rand.NewSource(seed))

	type live struct {
		p    heap.Ptr
		fill byte
	}
	var blocks []live

	for step := range steps {
		if len(blocks) == 0 || rng.Intn(100) < 55 {
			var n uint64
			switch rng.Intn(10) {
			case 0:
				n = uint64(rng.Intn(3 * 2 * testPageSize))
			default:
				n = uint64(rng.Intn(512))
			}
			p, data, err := h.Alloc(n)
			if n == 0 {
				require.ErrorIs(t, err, heap.ErrZeroSize)
				continue
			}
			require.NoError(t, err, "step %d: alloc %d", step, n)
			fill := byte(rng.Intn(255) + 1)
			for i := range data {
				data[i] = fill
			}
			blocks = append(blocks, live{p, fill})
		} else {
			i := rng.Intn(len(blocks))
			b := blocks[i]

			data, err := h.Bytes(b.p)
			require.NoError(t, err, "step %d", step)
			for _, v := range data {
				require.Equal(t, b.fill, v, "step %d: allocation contents changed", step)
			}

			h.Free(b.p)
			if rng.Intn(10) == 0 {
				h.Free(b.p) // double free must be harmless
			}
			blocks[i] = blocks[len(blocks)-1]
			blocks = blocks[:len(blocks)-1]
		}
		assertInvariants(t, h)
	}

	for _, b := range blocks {
		h.Free(b.p)
	}
	assertInvariants(t, h)
	require.Len(t, h.Arenas(), 1, "only the head arena survives")
	require.Equal(t, 1, sim.Stats().LiveRegions)
	require.Zero(t, h.Stats().InUseBytes)
}

// TestProperty_RoundTripAfterChurn checks that free-then-alloc of the same
// size returns the same address regardless of prior history.
func TestProperty_RoundTripAfterChurn(t *testing.T) {
	h, _ := newTestHeap(t, 16)
	rng := rand.New(rand.NewSource(99))

	var ptrs []heap.Ptr
	for range 200 {
		ptrs = append(ptrs, mustAlloc(t, h, uint64(rng.Intn(300)+1)))
	}
	rng.Shuffle(len(ptrs), func(i, j int) { ptrs[i], ptrs[j] = ptrs[j], ptrs[i] })
	for _, p := range ptrs[:100] {
		h.Free(p)
	}

	for range 50 {
		n := uint64(rng.Intn(600) + 1)
		p := mustAlloc(t, h, n)
		h.Free(p)
		again := mustAlloc(t, h, n)
		require.Equal(t, p, again, "size %d", n)
		h.Free(again)
	}
	assertInvariants(t, h)
}

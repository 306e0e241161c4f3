// Package vmem provides virtual-memory providers for the heap: page-granular
// anonymous mappings obtained from the operating system, plus a simulated
// provider backed by the Go heap for deterministic tests and trace replay.
//
// Every provider hands out zero-initialized regions whose length equals the
// requested size and must be given the exact same region back on Unmap.
package vmem

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize indicates a mapping request for a non-positive size.
	ErrInvalidSize = errors.New("vmem: invalid mapping size")

	// ErrLimit indicates a Go-heap provider refused a request: the simulated
	// budget is exhausted or the region exceeds MaxHeapRegion.
	ErrLimit = errors.New("vmem: mapping limit reached")

	// ErrUnknownRegion indicates Unmap was given a region that is not a live mapping.
	ErrUnknownRegion = errors.New("vmem: unknown region")
)

// MaxHeapRegion caps a single region served from the Go heap. Larger
// requests fail with ErrLimit instead of reaching make.
const MaxHeapRegion = 1 << 40

func checkSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return nil
}

func checkHeapSize(size int) error {
	if err := checkSize(size); err != nil {
		return err
	}
	if uint64(size) > MaxHeapRegion {
		return fmt.Errorf("%w: %d exceeds region ceiling %d", ErrLimit, size, uint64(MaxHeapRegion))
	}
	return nil
}

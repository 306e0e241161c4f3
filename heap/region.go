package heap

import (
	"unsafe"

	"github.com/joshuapare/heapkit/internal/format"
)

// The helpers below are the only places that translate between arena
// offsets and addresses.

func regionBase(region []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(region)))
}

// ptrAt returns the client pointer for the block whose header is at off.
func (a *arena) ptrAt(off int) Ptr {
	return Ptr(a.base + uintptr(off) + format.BlockHeaderSize)
}

// headerOff returns the header offset for a client pointer inside a.
func (a *arena) headerOff(p Ptr) int {
	return int(uintptr(p)-a.base) - format.BlockHeaderSize
}

// payload returns the capped usable slice of the block at off.
func (a *arena) payload(off, size int) []byte {
	lo := off + format.BlockHeaderSize
	hi := lo + size
	return a.region[lo:hi:hi]
}

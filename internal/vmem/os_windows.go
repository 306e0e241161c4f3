//go:build windows

package vmem

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// OSProvider reserves and commits memory with VirtualAlloc.
type OSProvider struct{}

// OS returns the provider backed by the host operating system.
func OS() OSProvider {
	return OSProvider{}
}

// Map returns a zeroed, committed read/write region of size bytes.
func (OSProvider) Map(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// Unmap releases a region previously returned by Map. VirtualFree with
// MEM_RELEASE frees the whole reservation, so the size is implied.
func (OSProvider) Unmap(region []byte) error {
	if len(region) == 0 {
		return ErrUnknownRegion
	}
	return windows.VirtualFree(uintptr(unsafe.Pointer(unsafe.SliceData(region))), 0, windows.MEM_RELEASE)
}

// PageSize returns the allocation page size.
func (OSProvider) PageSize() int {
	return windows.Getpagesize()
}

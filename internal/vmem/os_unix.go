//go:build unix

package vmem

import (
	"errors"

	"golang.org/x/sys/unix"
)

// OSProvider maps anonymous private memory with mmap(2).
type OSProvider struct{}

// OS returns the provider backed by the host operating system.
func OS() OSProvider {
	return OSProvider{}
}

// Map returns a zeroed, private, anonymous read/write mapping of size bytes.
func (OSProvider) Map(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// Unmap releases a region previously returned by Map.
func (OSProvider) Unmap(region []byte) error {
	if len(region) == 0 {
		return ErrUnknownRegion
	}
	err := unix.Munmap(region)
	if errors.Is(err, unix.EINVAL) {
		return ErrUnknownRegion
	}
	return err
}

// PageSize returns the system page size.
func (OSProvider) PageSize() int {
	return unix.Getpagesize()
}

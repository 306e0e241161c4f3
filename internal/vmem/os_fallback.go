//go:build !unix && !windows

package vmem

import "os"

// OSProvider hands out Go-heap regions when no mapping primitive is available.
type OSProvider struct{}

// OS returns the fallback provider.
func OS() OSProvider {
	return OSProvider{}
}

// Map allocates a zeroed region of size bytes.
func (OSProvider) Map(size int) ([]byte, error) {
	if err := checkHeapSize(size); err != nil {
		return nil, err
	}
	return make([]byte, size), nil
}

// Unmap drops the region; the garbage collector reclaims it.
func (OSProvider) Unmap(region []byte) error {
	if len(region) == 0 {
		return ErrUnknownRegion
	}
	return nil
}

// PageSize returns the platform page size.
func (OSProvider) PageSize() int {
	return os.Getpagesize()
}

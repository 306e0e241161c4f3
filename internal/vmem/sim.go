package vmem

import (
	"errors"
	"fmt"
	"unsafe"
)

const defaultSimPageSize = 4096

// SimOptions configures a simulated provider.
type SimOptions struct {
	// PageSize reported to the heap. Default: 4096
	PageSize int

	// Limit caps the total bytes that may be mapped at once (0 = unlimited).
	Limit int

	// FailMap, when set, is consulted before every mapping. A non-nil
	// return fails that mapping.
	FailMap func(size int) error

	// FailUnmap, when set, is consulted before every unmap. A non-nil
	// return fails the unmap and leaves the region mapped.
	FailUnmap func(region []byte) error
}

// SimStats counts simulated provider activity.
type SimStats struct {
	Maps        int // Successful Map calls
	Unmaps      int // Successful Unmap calls
	FailedMaps  int // Map calls rejected by limit or hook
	LiveRegions int // Regions currently mapped
	LiveBytes   int // Bytes currently mapped
}

// Sim is a provider backed by Go-heap byte slices. It enforces the same
// contract as a real mapping (exact region on unmap, zeroed memory, no
// partial success) and lets tests inject failures.
//
// NOT thread-safe.
type Sim struct {
	opts  SimOptions
	live  map[uintptr]int // base address -> mapped length
	stats SimStats
}

// NewSim creates a simulated provider.
func NewSim(opts SimOptions) *Sim {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultSimPageSize
	}
	return &Sim{
		opts: opts,
		live: make(map[uintptr]int),
	}
}

// Map returns a zeroed region of exactly size bytes.
func (s *Sim) Map(size int) ([]byte, error) {
	if err := checkHeapSize(size); err != nil {
		if errors.Is(err, ErrLimit) {
			s.stats.FailedMaps++
		}
		return nil, err
	}
	if s.opts.FailMap != nil {
		if err := s.opts.FailMap(size); err != nil {
			s.stats.FailedMaps++
			return nil, err
		}
	}
	if s.opts.Limit > 0 && s.stats.LiveBytes+size > s.opts.Limit {
		s.stats.FailedMaps++
		return nil, fmt.Errorf("%w: %d live + %d requested > %d", ErrLimit, s.stats.LiveBytes, size, s.opts.Limit)
	}
	region := make([]byte, size)
	s.live[regionBase(region)] = size
	s.stats.Maps++
	s.stats.LiveRegions++
	s.stats.LiveBytes += size
	return region, nil
}

// Unmap releases a region previously returned by Map. The region must match
// the original mapping's base and length.
func (s *Sim) Unmap(region []byte) error {
	if len(region) == 0 {
		return ErrUnknownRegion
	}
	base := regionBase(region)
	size, ok := s.live[base]
	if !ok || size != len(region) {
		return fmt.Errorf("%w: base=0x%x len=%d", ErrUnknownRegion, base, len(region))
	}
	if s.opts.FailUnmap != nil {
		if err := s.opts.FailUnmap(region); err != nil {
			return err
		}
	}
	delete(s.live, base)
	s.stats.Unmaps++
	s.stats.LiveRegions--
	s.stats.LiveBytes -= size
	return nil
}

// PageSize returns the configured page size.
func (s *Sim) PageSize() int {
	return s.opts.PageSize
}

// Stats returns a snapshot of provider activity.
func (s *Sim) Stats() SimStats {
	return s.stats
}

func regionBase(region []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(region)))
}

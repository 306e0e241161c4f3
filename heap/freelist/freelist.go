// Package freelist implements the per-arena free-chunk list: an address-ordered
// sequence of free spans with first-fit lookup, splitting, one-hop
// coalescing and a cached largest-span aggregate.
//
// Spans are described by offsets relative to their arena, never by
// addresses, and the list itself lives outside the arena memory. The heap
// package mirrors every change into the in-memory block headers.
//
// A List is not safe for concurrent use.
package freelist

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/heapkit/internal/format"
)

// HeaderSize is the per-chunk header overhead absorbed when two spans merge
// and reserved when a span is split.
const HeaderSize = format.BlockHeaderSize

var (
	// ErrOverlap indicates an inserted span intersects a span already on the list.
	ErrOverlap = errors.New("freelist: span overlaps free span")

	// ErrTooSmall indicates Take was asked for more bytes than the span holds.
	ErrTooSmall = errors.New("freelist: span too small")

	// ErrIndex indicates an out-of-range span index.
	ErrIndex = errors.New("freelist: index out of range")
)

// Span is one free chunk. Off is the offset of the chunk header within the
// arena and Size is the usable size, header excluded.
type Span struct {
	Off  int
	Size int
}

// End returns the offset one past the span's last byte.
func (s Span) End() int {
	return s.Off + HeaderSize + s.Size
}

// List is an address-ordered free list. The zero value is an empty list.
type List struct {
	spans  []Span
	max    int // size of the largest span, 0 when empty
	merges int // total coalesce operations
}

// New returns a list holding the single span s, as created for a fresh arena.
func New(s Span) *List {
	return &List{
		spans: []Span{s},
		max:   s.Size,
	}
}

// Len returns the number of free spans.
func (l *List) Len() int { return len(l.spans) }

// Max returns the cached size of the largest free span.
func (l *List) Max() int { return l.max }

// Merges returns the number of coalesce operations performed so far.
func (l *List) Merges() int { return l.merges }

// At returns the span at index i.
func (l *List) At(i int) Span { return l.spans[i] }

// Spans returns a copy of the free spans in address order.
func (l *List) Spans() []Span {
	out := make([]Span, len(l.spans))
	copy(out, l.spans)
	return out
}

// Total returns the sum of the usable sizes of all free spans.
func (l *List) Total() int {
	total := 0
	for _, s := range l.spans {
		total += s.Size
	}
	return total
}

// FirstFit returns the index of the first span, in address order, whose
// size is at least n.
func (l *List) FirstFit(n int) (int, bool) {
	for i, s := range l.spans {
		if s.Size >= n {
			return i, true
		}
	}
	return 0, false
}

// Take consumes span i for an n-byte allocation and returns the consumed
// range. When the leftover is larger than a chunk header the span is split
// and the remainder, coalesced with its right neighbor, is returned as rest.
// Otherwise the leftover is donated to the allocation (taken.Size exceeds n)
// and rest is the zero Span.
func (l *List) Take(i, n int) (taken, rest Span, err error) {
	if i < 0 || i >= len(l.spans) {
		return Span{}, Span{}, fmt.Errorf("%w: %d of %d", ErrIndex, i, len(l.spans))
	}
	s := l.spans[i]
	if n < 0 || s.Size < n {
		return Span{}, Span{}, fmt.Errorf("%w: span %d bytes, need %d", ErrTooSmall, s.Size, n)
	}

	wasMax := s.Size >= l.max
	leftover := s.Size - n

	if leftover > HeaderSize {
		l.spans[i] = Span{Off: s.Off + HeaderSize + n, Size: leftover - HeaderSize}
		l.coalesce(i)
		l.adjust(l.spans[i])
		taken, rest = Span{Off: s.Off, Size: n}, l.spans[i]
	} else {
		l.spans = append(l.spans[:i], l.spans[i+1:]...)
		taken = s
	}

	// Shrinking the cached max cannot be done incrementally.
	if wasMax {
		l.rescan()
	}
	return taken, rest, nil
}

// Insert places s into the list in address order and coalesces it with
// both neighbors. It returns the resulting free span, which starts at s.Off
// unless s merged into its left neighbor.
func (l *List) Insert(s Span) (Span, error) {
	idx := sort.Search(len(l.spans), func(i int) bool {
		return l.spans[i].Off >= s.Off
	})
	if idx > 0 && l.spans[idx-1].End() > s.Off {
		return Span{}, fmt.Errorf("%w: [%d,%d) after [%d,%d)", ErrOverlap, s.Off, s.End(), l.spans[idx-1].Off, l.spans[idx-1].End())
	}
	if idx < len(l.spans) && s.End() > l.spans[idx].Off {
		return Span{}, fmt.Errorf("%w: [%d,%d) before [%d,%d)", ErrOverlap, s.Off, s.End(), l.spans[idx].Off, l.spans[idx].End())
	}

	l.spans = append(l.spans, Span{})
	copy(l.spans[idx+1:], l.spans[idx:])
	l.spans[idx] = s

	// Two one-hop merges: the freed span joins its right neighbor, then the
	// left neighbor joins the (possibly grown) freed span.
	l.coalesce(idx)
	l.adjust(l.spans[idx])
	if idx > 0 && l.coalesce(idx-1) {
		idx--
		l.adjust(l.spans[idx])
	}
	return l.spans[idx], nil
}

// Overlaps reports whether [off, end) intersects any free span.
func (l *List) Overlaps(off, end int) bool {
	idx := sort.Search(len(l.spans), func(i int) bool {
		return l.spans[i].End() > off
	})
	return idx < len(l.spans) && l.spans[idx].Off < end
}

// coalesce merges span i with span i+1 when they are address-adjacent.
func (l *List) coalesce(i int) bool {
	if i+1 >= len(l.spans) || l.spans[i].End() != l.spans[i+1].Off {
		return false
	}
	l.spans[i].Size += HeaderSize + l.spans[i+1].Size
	l.spans = append(l.spans[:i+1], l.spans[i+2:]...)
	l.merges++
	return true
}

// adjust raises the cached max if s is larger. It never lowers it.
func (l *List) adjust(s Span) {
	if s.Size > l.max {
		l.max = s.Size
	}
}

func (l *List) rescan() {
	l.max = 0
	for _, s := range l.spans {
		l.adjust(s)
	}
}

package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Block represents a single block (free or allocated) within an arena.
//
// Block header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    8     Usable size in bytes, header excluded.
//	0x08    4     Tag: AllocMagic when handed out, FreeMagic when on a free list.
//	0x0C    4     Reserved, zero.
//	0x10    ...   Payload.
type Block struct {
	Offset int    // Offset of the header relative to the arena start
	Size   int    // Usable size, header excluded
	Free   bool   // True when the header carries FreeMagic
	Data   []byte // Payload bytes (alias of the arena region)
}

// End returns the offset one past the block's last payload byte.
func (b Block) End() int {
	return b.Offset + BlockHeaderSize + b.Size
}

// PutAllocHeader stamps an allocated-block header at off.
func PutAllocHeader(b []byte, off int, size uint64) {
	putBlockHeader(b, off, size, AllocMagic)
}

// PutFreeHeader stamps a free-chunk header at off.
func PutFreeHeader(b []byte, off int, size uint64) {
	putBlockHeader(b, off, size, FreeMagic)
}

func putBlockHeader(b []byte, off int, size uint64, tag uint32) {
	PutU64(b, off+BlockSizeOffset, size)
	PutU32(b, off+BlockTagOffset, tag)
	PutU32(b, off+BlockReservedOffset, 0)
}

// ReadBlockHeader returns the size and tag stored at off. ok is false when
// the header does not fit in b.
func ReadBlockHeader(b []byte, off int) (size uint64, tag uint32, ok bool) {
	head, ok := buf.Slice(b, off, BlockHeaderSize)
	if !ok {
		return 0, 0, false
	}
	return buf.U64LE(head[BlockSizeOffset:]), buf.U32LE(head[BlockTagOffset:]), true
}

// NextBlock decodes the block at off within the arena region b and returns
// the block plus the offset of the following block. The caller must ensure
// off points to the start of a block header. When the returned next offset
// equals len(b) the arena has been fully walked.
func NextBlock(b []byte, off int) (Block, int, error) {
	if off < ArenaHeaderSize {
		return Block{}, 0, fmt.Errorf("block: offset %d inside arena header", off)
	}
	size, tag, ok := ReadBlockHeader(b, off)
	if !ok {
		return Block{}, 0, fmt.Errorf("block: %w", ErrTruncated)
	}
	var free bool
	switch tag {
	case AllocMagic:
	case FreeMagic:
		free = true
	default:
		return Block{}, 0, fmt.Errorf("block at %d: tag 0x%08x: %w", off, tag, ErrSignatureMismatch)
	}
	payload, ok := buf.Slice(b, off+BlockHeaderSize, clampInt(size))
	if !ok {
		return Block{}, 0, fmt.Errorf("block at %d: size %d: %w", off, size, ErrTruncated)
	}
	blk := Block{
		Offset: off,
		Size:   len(payload),
		Free:   free,
		Data:   payload,
	}
	return blk, blk.End(), nil
}

// clampInt converts a decoded size to int, saturating values that cannot be
// a valid length so bounds checks reject them.
func clampInt(n uint64) int {
	if !buf.FitsInt(n) {
		return -1
	}
	return int(n)
}

// Package format describes the in-memory layout of heap arenas. The goal is
// to keep every piece of raw byte arithmetic in one place so higher-level
// packages work with offsets and sizes instead of addresses.
package format

// ArenaSignature is the four-byte signature at the start of every arena.
// Layout:
//
//	0x00  'a' 'r' 'n' 'a'
var ArenaSignature = []byte{'a', 'r', 'n', 'a'}

const (
	// ArenaHeaderSize is the size of the arena header in bytes. The first
	// block of an arena starts immediately after it.
	ArenaHeaderSize = 0x20

	// BlockHeaderSize is the number of bytes used by the header preceding
	// every block (allocated or free) within an arena. Allocated and free
	// blocks share the same header width so a released allocation can be
	// reinterpreted as a free chunk in place.
	BlockHeaderSize = 0x10

	// ArenaOverhead is the bookkeeping reserved when sizing a fresh arena:
	// the arena header plus the header of its single spanning free chunk.
	ArenaOverhead = ArenaHeaderSize + BlockHeaderSize

	// BlockAlignment is the granularity of block sizes. Sizes are rounded to
	// the header width so every header and payload stays header-aligned.
	BlockAlignment = BlockHeaderSize
)

const (
	// AllocMagic tags the header of a block handed out to a client.
	AllocMagic uint32 = 0xab91ea94

	// FreeMagic tags the header of a block that sits on a free list.
	FreeMagic uint32 = 0x0f4eec4b
)

// Arena header field offsets.
const (
	ArenaSignatureOffset = 0x00
	ArenaIDOffset        = 0x04
	ArenaSizeOffset      = 0x08
)

// Block header field offsets.
const (
	BlockSizeOffset     = 0x00
	BlockTagOffset      = 0x08
	BlockReservedOffset = 0x0C
)

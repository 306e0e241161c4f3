package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// ArenaHeader describes an arena. Each arena begins with a 0x20-byte header
// with the following structure (little-endian):
//
//	Offset  Size  Field
//	0x00    4     'a' 'r' 'n' 'a'
//	0x04    4     Arena id (stable for the lifetime of the arena)
//	0x08    8     Mapped size of the arena, header included
//	0x10    16    Reserved
type ArenaHeader struct {
	ID   uint32
	Size uint64
}

// PutArenaHeader stamps an arena header at the start of b.
func PutArenaHeader(b []byte, id uint32, size uint64) {
	copy(b[ArenaSignatureOffset:ArenaSignatureOffset+4], ArenaSignature)
	PutU32(b, ArenaIDOffset, id)
	PutU64(b, ArenaSizeOffset, size)
}

// ParseArenaHeader validates the arena header at the start of b. The declared
// size must match len(b) exactly since an arena is always viewed as the
// whole mapping.
func ParseArenaHeader(b []byte) (ArenaHeader, error) {
	if len(b) < ArenaOverhead {
		return ArenaHeader{}, fmt.Errorf("arena: %w", ErrTruncated)
	}
	if !bytes.Equal(b[ArenaSignatureOffset:ArenaSignatureOffset+4], ArenaSignature) {
		return ArenaHeader{}, fmt.Errorf("arena: %w", ErrSignatureMismatch)
	}
	size := buf.U64LE(b[ArenaSizeOffset:])
	if size != uint64(len(b)) {
		return ArenaHeader{}, fmt.Errorf("arena: declared size %d, mapped %d", size, len(b))
	}
	return ArenaHeader{
		ID:   buf.U32LE(b[ArenaIDOffset:]),
		Size: size,
	}, nil
}

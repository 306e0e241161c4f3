package heap_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

type record struct {
	ID    uint64
	Count uint32
	Flags [4]uint8
	Score float64
}

func TestBind_TypedView(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	p := mustAlloc(t, h, 32)

	var rec *record
	require.NoError(t, h.Bind(p, &rec))
	require.NotNil(t, rec)

	rec.ID = 0x1122334455667788
	rec.Count = 7
	rec.Flags[2] = 0xFF

	data, err := h.Bytes(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1122334455667788), binary.LittleEndian.Uint64(data[0:]))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[8:]))
	assert.Equal(t, byte(0xFF), data[14])
	assertInvariants(t, h)
}

func TestBind_Rejects(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	small := mustAlloc(t, h, 16)

	var rec *record
	var str *string
	var withPtr *struct {
		N    int
		Next *int
	}
	var slice *[]byte
	var n int

	tests := []struct {
		name   string
		p      heap.Ptr
		target any
	}{
		{"nil target", small, nil},
		{"typed nil", small, (**record)(nil)},
		{"not a pointer", small, n},
		{"single pointer", small, &n},
		{"too large", small, &rec},
		{"string", small, &str},
		{"pointer field", small, &withPtr},
		{"slice", small, &slice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Bind(tt.p, tt.target), heap.ErrBindTarget)
		})
	}
	require.Nil(t, rec)
}

func TestBind_BadPointer(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	p := mustAlloc(t, h, 32)
	h.Free(p)

	var rec *record
	require.ErrorIs(t, h.Bind(p, &rec), heap.ErrBadPtr)
	require.Nil(t, rec)
}

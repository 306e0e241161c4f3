package printer

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/joshuapare/heapkit/heap"
)

var jsonConfig = jsoniter.Config{
	OnlyTaggedField: true,
	EscapeHTML:      false,
}.Froze()

// jsonHeap represents the heap in JSON format.
type jsonHeap struct {
	Initialized  bool        `json:"initialized"`
	PageSize     int         `json:"page_size,omitempty"`
	MinArenaSize int         `json:"min_arena_size,omitempty"`
	Stats        jsonStats   `json:"stats"`
	Arenas       []jsonArena `json:"arenas"`
}

// jsonArena represents an arena in JSON format.
type jsonArena struct {
	ID         uint32      `json:"id"`
	Head       bool        `json:"head"`
	Base       uint64      `json:"base"`
	Allocated  int         `json:"allocated"`
	MaxFree    int         `json:"max_free"`
	FreeChunks int         `json:"free_chunks"`
	FreeBytes  int         `json:"free_bytes"`
	Blocks     []jsonBlock `json:"blocks,omitempty"`
}

// jsonBlock represents a block in JSON format.
type jsonBlock struct {
	Offset int  `json:"offset"`
	Size   int  `json:"size"`
	Free   bool `json:"free"`
}

// jsonStats represents allocator counters in JSON format.
type jsonStats struct {
	AllocCalls      int   `json:"alloc_calls"`
	FreeCalls       int   `json:"free_calls"`
	IgnoredFrees    int   `json:"ignored_frees"`
	Splits          int   `json:"splits"`
	Donations       int   `json:"donations"`
	Coalesces       int   `json:"coalesces"`
	ArenasCreated   int   `json:"arenas_created"`
	ArenasReleased  int   `json:"arenas_released"`
	ReleaseFailures int   `json:"release_failures"`
	Arenas          int   `json:"arenas"`
	MappedBytes     int64 `json:"mapped_bytes"`
	InUseBytes      int64 `json:"in_use_bytes"`
	FreeBytes       int64 `json:"free_bytes"`
}

func toJSONStats(st heap.Stats) jsonStats {
	return jsonStats{
		AllocCalls:      st.AllocCalls,
		FreeCalls:       st.FreeCalls,
		IgnoredFrees:    st.IgnoredFrees,
		Splits:          st.Splits,
		Donations:       st.Donations,
		Coalesces:       st.Coalesces,
		ArenasCreated:   st.ArenasCreated,
		ArenasReleased:  st.ArenasReleased,
		ReleaseFailures: st.ReleaseFailures,
		Arenas:          st.Arenas,
		MappedBytes:     st.MappedBytes,
		InUseBytes:      st.InUseBytes,
		FreeBytes:       st.FreeBytes,
	}
}

// printJSON prints the heap in JSON format.
func (p *Printer) printJSON() error {
	out := jsonHeap{
		Initialized: p.src.Initialized(),
		Stats:       toJSONStats(p.src.Stats()),
		Arenas:      []jsonArena{},
	}
	if out.Initialized {
		out.PageSize = p.src.PageSize()
		out.MinArenaSize = p.src.MinArenaSize()

		blocks, err := p.blocksByArena()
		if err != nil {
			return err
		}
		for _, a := range p.src.Arenas() {
			ja := jsonArena{
				ID:         a.ID,
				Head:       a.Head,
				Base:       uint64(a.Base),
				Allocated:  a.Allocated,
				MaxFree:    a.MaxFree,
				FreeChunks: a.FreeChunks,
				FreeBytes:  a.FreeBytes,
			}
			for _, b := range blocks[a.ID] {
				ja.Blocks = append(ja.Blocks, jsonBlock{Offset: b.Offset, Size: b.Size, Free: b.Free})
			}
			out.Arenas = append(out.Arenas, ja)
		}
	}
	return p.encode(out)
}

// printStatsJSON prints allocator counters in JSON format.
func (p *Printer) printStatsJSON() error {
	return p.encode(toJSONStats(p.src.Stats()))
}

func (p *Printer) encode(v any) error {
	enc := jsonConfig.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

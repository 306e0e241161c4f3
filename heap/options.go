package heap

import (
	"io"
	"log/slog"
)

// DefaultArenaPages is the number of pages in the minimum (and head) arena.
const DefaultArenaPages = 1000

// Options configures a Heap.
type Options struct {
	// ArenaPages sets the minimum arena size in pages. The head arena is
	// mapped with exactly this many pages.
	// Default: 1000
	ArenaPages int

	// Logger receives arena lifecycle events at Debug level and release
	// failures at Warn level.
	// Default: discard
	Logger *slog.Logger

	// OnGrow is called with the mapped size after every new arena
	// (nil in production).
	OnGrow func(size int)
}

// DefaultOptions returns the default heap configuration.
func DefaultOptions() Options {
	return Options{
		ArenaPages: DefaultArenaPages,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ArenaPages <= 0 {
		o.ArenaPages = def.ArenaPages
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	return o
}

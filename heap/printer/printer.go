// Package printer renders heap state for diagnostics. It never modifies the
// heap it prints.
package printer

import (
	"io"

	"golang.org/x/text/language"

	"github.com/joshuapare/heapkit/heap"
)

const DefaultIndentSize = 2

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Source is the read-only view of a heap the printer needs.
type Source interface {
	Initialized() bool
	PageSize() int
	MinArenaSize() int
	Stats() heap.Stats
	Arenas() []heap.ArenaInfo
	Walk(fn func(heap.Block) error) error
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// ShowBlocks lists every block of every arena.
	// Default: true
	ShowBlocks bool

	// ShowFree includes free blocks when ShowBlocks is set.
	// Default: true
	ShowFree bool

	// Language selects digit grouping for byte counts (text format only).
	// Default: language.English
	Language language.Tag
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:     FormatText,
		IndentSize: DefaultIndentSize,
		ShowBlocks: true,
		ShowFree:   true,
		Language:   language.English,
	}
}

// Printer handles formatted output of heap state.
type Printer struct {
	opts   Options
	writer io.Writer
	src    Source
}

// New creates a new Printer.
//
// Example:
//
//	h := heap.New(nil, nil)
//	p := printer.New(h, os.Stdout, printer.DefaultOptions())
//	p.Print()
func New(src Source, w io.Writer, opts Options) *Printer {
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	return &Printer{
		opts:   opts,
		writer: w,
		src:    src,
	}
}

// Print writes the heap summary, each arena and, when enabled, its blocks.
func (p *Printer) Print() error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON()
	default:
		return p.printText()
	}
}

// PrintStats writes allocator counters only.
func (p *Printer) PrintStats() error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printStatsJSON()
	default:
		return p.printStatsText()
	}
}

// blocksByArena walks the heap once and groups blocks by arena id.
func (p *Printer) blocksByArena() (map[uint32][]heap.Block, error) {
	out := make(map[uint32][]heap.Block)
	if !p.opts.ShowBlocks {
		return out, nil
	}
	err := p.src.Walk(func(b heap.Block) error {
		if b.Free && !p.opts.ShowFree {
			return nil
		}
		out[b.Arena] = append(out[b.Arena], b)
		return nil
	})
	return out, err
}

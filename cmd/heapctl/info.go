package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/format"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Report the arena layout for the current configuration",
		Long: `The info command initializes a heap with the given provider settings
and reports the page size, minimum arena size and per-block overheads.

Example:
  heapctl info
  heapctl info --page-size 16384 --arena-pages 64
  heapctl info --sim=false --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
	return cmd
}

// layoutInfo is the info command's report.
type layoutInfo struct {
	Provider        string `json:"provider"`
	PageSize        int    `json:"page_size"`
	ArenaPages      int    `json:"arena_pages"`
	MinArenaSize    int    `json:"min_arena_size"`
	ArenaHeaderSize int    `json:"arena_header_size"`
	BlockHeaderSize int    `json:"block_header_size"`
	ArenaOverhead   int    `json:"arena_overhead"`
	HeadUsable      int    `json:"head_usable"`
}

func runInfo() error {
	h, err := newHeap()
	if err != nil {
		return err
	}
	printVerbose("Initializing heap\n")
	if err := h.Init(); err != nil {
		return fmt.Errorf("failed to initialize heap: %w", err)
	}

	provider := "os"
	if useSim {
		provider = "sim"
	}
	info := layoutInfo{
		Provider:        provider,
		PageSize:        h.PageSize(),
		ArenaPages:      arenaPages,
		MinArenaSize:    h.MinArenaSize(),
		ArenaHeaderSize: format.ArenaHeaderSize,
		BlockHeaderSize: format.BlockHeaderSize,
		ArenaOverhead:   format.ArenaOverhead,
		HeadUsable:      h.Arenas()[0].MaxFree,
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nHeap Layout:\n")
	printInfo("  Provider: %s\n", info.Provider)
	printInfo("  Page size: %d bytes\n", info.PageSize)
	printInfo("  Minimum arena: %d pages, %d bytes\n", info.ArenaPages, info.MinArenaSize)
	printInfo("  Arena header: %d bytes\n", info.ArenaHeaderSize)
	printInfo("  Block header: %d bytes\n", info.BlockHeaderSize)
	printInfo("  Arena overhead: %d bytes\n", info.ArenaOverhead)
	printInfo("  Head arena usable: %d bytes\n", info.HeadUsable)
	return nil
}

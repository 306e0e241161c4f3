package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/vmem"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	// Heap flags
	useSim     bool
	pageSize   int
	arenaPages int
	simLimit   int
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect the heapkit arena allocator",
	Long: `heapctl exercises the heapkit allocator. It reports the arena layout
for a configuration and replays allocation traces against a heap, printing
block-level dumps and statistics along the way.`,
	Version: "0.1.0",
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.PersistentFlags().BoolVar(&useSim, "sim", true, "Use the simulated provider instead of OS mappings")
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", 4096, "Page size of the simulated provider")
	rootCmd.PersistentFlags().
		IntVar(&arenaPages, "arena-pages", heap.DefaultArenaPages, "Pages in the minimum arena")
	rootCmd.PersistentFlags().
		IntVar(&simLimit, "sim-limit", 0, "Byte budget of the simulated provider (0 = unlimited)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newHeap builds a heap from the global flags.
func newHeap() (*heap.Heap, error) {
	if arenaPages <= 0 {
		return nil, fmt.Errorf("--arena-pages must be positive, got %d", arenaPages)
	}
	var p heap.Provider = vmem.OS()
	if useSim {
		if pageSize <= 0 || pageSize&(pageSize-1) != 0 {
			return nil, fmt.Errorf("--page-size must be a positive power of two, got %d", pageSize)
		}
		p = vmem.NewSim(vmem.SimOptions{PageSize: pageSize, Limit: simLimit})
	}

	opts := heap.DefaultOptions()
	opts.ArenaPages = arenaPages
	opts.Logger = newLogger()
	return heap.New(p, &opts), nil
}

// newLogger returns a debug logger on stderr in verbose mode and a
// discarding one otherwise.
func newLogger() *slog.Logger {
	if verbose && !quiet {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

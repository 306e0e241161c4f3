package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	replayStats  bool
	replayVerify bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayStats, "stats", false, "Print allocator statistics after the replay")
	cmd.Flags().BoolVar(&replayVerify, "verify", false, "Check heap invariants after every operation")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace against a fresh heap",
		Long: `The replay command runs an allocation trace against a fresh heap.
Each line of the trace is one operation:

  alloc <label> <size>   allocate size bytes (k, m, g suffixes allowed)
  free <label>           free the allocation bound to label
  dump                   print every arena and block

Lines starting with # are comments. Use - to read the trace from stdin.
Freeing a label twice is passed through to the heap, which ignores it.

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --verify --stats
  heapctl replay - --arena-pages 4 --json < workload.trace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
	return cmd
}

// binding tracks the allocation behind a trace label.
type binding struct {
	ptr   heap.Ptr
	freed bool
}

func runReplay(args []string) error {
	ops, err := readTrace(args[0])
	if err != nil {
		return err
	}

	h, err := newHeap()
	if err != nil {
		return err
	}

	popts := printer.DefaultOptions()
	if jsonOut {
		popts.Format = printer.FormatJSON
	}
	pr := printer.New(h, os.Stdout, popts)

	labels := make(map[string]*binding)
	owners := make(map[heap.Ptr]string) // live address -> label
	live := 0
	for _, op := range ops {
		switch op.kind {
		case opAlloc:
			if b, ok := labels[op.label]; ok && !b.freed {
				return fmt.Errorf("line %d: label %q is still allocated", op.line, op.label)
			}
			p, data, err := h.Alloc(op.size)
			if err != nil {
				return fmt.Errorf("line %d: alloc %s %d: %w", op.line, op.label, op.size, err)
			}
			labels[op.label] = &binding{ptr: p}
			owners[p] = op.label
			live++
			printVerbose("line %d: alloc %s %d -> 0x%x (%d usable)\n", op.line, op.label, op.size, uintptr(p), len(data))

		case opFree:
			b, ok := labels[op.label]
			if !ok {
				return fmt.Errorf("line %d: unknown label %q", op.line, op.label)
			}
			if b.freed {
				if other, reused := owners[b.ptr]; reused {
					printVerbose("line %d: free %s skipped, address now held by %s\n", op.line, op.label, other)
					break
				}
				h.Free(b.ptr)
				printVerbose("line %d: free %s (already freed)\n", op.line, op.label)
				break
			}
			h.Free(b.ptr)
			delete(owners, b.ptr)
			b.freed = true
			live--
			printVerbose("line %d: free %s\n", op.line, op.label)

		case opDump:
			if !quiet {
				if err := pr.Print(); err != nil {
					return fmt.Errorf("line %d: dump: %w", op.line, err)
				}
			}
		}

		if replayVerify {
			if err := verify.AllInvariants(h); err != nil {
				return fmt.Errorf("line %d: invariant violated: %w", op.line, err)
			}
		}
	}

	if !jsonOut {
		printInfo("Replayed %d operations: %d live allocations, %d arenas\n", len(ops), live, len(h.Arenas()))
	}
	if replayStats && !quiet {
		if err := pr.PrintStats(); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
	}
	return nil
}

// readTrace parses the trace at path, or stdin when path is "-".
func readTrace(path string) ([]traceOp, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace: %w", err)
		}
		defer f.Close()
		r = f
	}
	ops, err := parseTrace(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trace: %w", err)
	}
	return ops, nil
}

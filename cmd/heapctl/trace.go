package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// opKind is a trace operation.
type opKind int

const (
	opAlloc opKind = iota
	opFree
	opDump
)

// traceOp is one parsed trace line.
type traceOp struct {
	kind  opKind
	label string
	size  uint64
	line  int
}

// parseTrace reads a replay trace. Each non-empty line is one of
//
//	alloc <label> <size>
//	free <label>
//	dump
//
// and '#' starts a comment that runs to the end of the line.
func parseTrace(r io.Reader) ([]traceOp, error) {
	var ops []traceOp
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		op := traceOp{line: lineNo}
		switch strings.ToLower(fields[0]) {
		case "alloc":
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: usage: alloc <label> <size>", lineNo)
			}
			size, err := parseSize(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			op.kind, op.label, op.size = opAlloc, fields[1], size
		case "free":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: usage: free <label>", lineNo)
			}
			op.kind, op.label = opFree, fields[1]
		case "dump":
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: usage: dump", lineNo)
			}
			op.kind = opDump
		default:
			return nil, fmt.Errorf("line %d: unknown operation %q", lineNo, fields[0])
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return ops, nil
}

// parseSize parses a byte count with an optional k, m or g suffix (powers
// of 1024).
func parseSize(s string) (uint64, error) {
	mult := uint64(1)
	switch strings.ToLower(s[len(s)-1:]) {
	case "k":
		mult = 1 << 10
	case "m":
		mult = 1 << 20
	case "g":
		mult = 1 << 30
	}
	if mult > 1 {
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n > ^uint64(0)/mult {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return n * mult, nil
}

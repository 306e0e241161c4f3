package printer

import (
	"strings"

	"golang.org/x/text/message"
)

// printText prints the heap in human-readable text format.
func (p *Printer) printText() error {
	mp := message.NewPrinter(p.opts.Language)

	if !p.src.Initialized() {
		_, err := mp.Fprintf(p.writer, "heap: not yet initialized\n")
		return err
	}

	st := p.src.Stats()
	mp.Fprintf(p.writer, "heap: page size %d, min arena %d bytes\n", p.src.PageSize(), p.src.MinArenaSize())
	mp.Fprintf(p.writer, "arenas: %d, mapped %d bytes, in use %d, free %d\n",
		st.Arenas, st.MappedBytes, st.InUseBytes, st.FreeBytes)

	blocks, err := p.blocksByArena()
	if err != nil {
		return err
	}

	indent := strings.Repeat(" ", p.opts.IndentSize)
	for _, a := range p.src.Arenas() {
		role := ""
		if a.Head {
			role = " (head)"
		}
		mp.Fprintf(p.writer, "arena %d%s base 0x%x: allocated %d, max free %d, free chunks %d\n",
			a.ID, role, a.Base, a.Allocated, a.MaxFree, a.FreeChunks)

		for _, b := range blocks[a.ID] {
			state := "alloc"
			if b.Free {
				state = "free "
			}
			mp.Fprintf(p.writer, "%s0x%06x %s %d\n", indent, b.Offset, state, b.Size)
		}
	}
	return nil
}

// printStatsText prints allocator counters in human-readable text format.
func (p *Printer) printStatsText() error {
	mp := message.NewPrinter(p.opts.Language)
	st := p.src.Stats()

	rows := []struct {
		name  string
		value int64
	}{
		{"alloc calls", int64(st.AllocCalls)},
		{"free calls", int64(st.FreeCalls)},
		{"ignored frees", int64(st.IgnoredFrees)},
		{"splits", int64(st.Splits)},
		{"donations", int64(st.Donations)},
		{"coalesces", int64(st.Coalesces)},
		{"arenas created", int64(st.ArenasCreated)},
		{"arenas released", int64(st.ArenasReleased)},
		{"release failures", int64(st.ReleaseFailures)},
		{"live arenas", int64(st.Arenas)},
		{"mapped bytes", st.MappedBytes},
		{"in-use bytes", st.InUseBytes},
		{"free bytes", st.FreeBytes},
	}
	for _, r := range rows {
		if _, err := mp.Fprintf(p.writer, "%-17s %d\n", r.name+":", r.value); err != nil {
			return err
		}
	}
	return nil
}

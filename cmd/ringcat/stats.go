// File: cmd/ringcat/stats.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/momentics/hioload-ring/api"
)

// writeStats prints one line per registry entry, sorted by name, with byte
// counts in IEC units.
func writeStats(w io.Writer, state map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(state)) {
		var line string
		switch s := state[name].(type) {
		case api.RingStats:
			line = fmt.Sprintf("capacity=%s buffered=%s committed=%s consumed=%s",
				ibytes(s.Capacity), ibytes(s.Size), humanize.IBytes(s.Committed), humanize.IBytes(s.Consumed))
		case api.StagingStats:
			line = fmt.Sprintf("capacity=%s buffered=%s committed=%s consumed=%s grows=%s compactions=%s",
				ibytes(s.Capacity), ibytes(s.Size), humanize.IBytes(s.Committed), humanize.IBytes(s.Consumed),
				humanize.Comma(int64(s.Grows)), humanize.Comma(int64(s.Compactions)))
		case api.PoolStats:
			line = fmt.Sprintf("allocs=%s reuses=%s frees=%s in_use=%s retained=%s",
				humanize.Comma(s.TotalAlloc), humanize.Comma(s.TotalReuse), humanize.Comma(s.TotalFree),
				humanize.Comma(s.InUse), humanize.Comma(s.Retained))
		case int:
			line = humanize.Comma(int64(s))
		default:
			line = fmt.Sprint(s)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, line); err != nil {
			return err
		}
	}
	return nil
}

func ibytes(n int) string { return humanize.IBytes(uint64(n)) }

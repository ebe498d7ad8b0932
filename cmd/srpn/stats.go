package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/codahale/metrics"
)

// printStats writes every counter as "name value", sorted by name.
func printStats(w io.Writer) {
	counters, _ := metrics.Snapshot()
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s %d\n", name, counters[name])
	}
}

// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command allocbench drives a randomized malloc/free/realloc trace
// through an Allocator and reports AllocStats and CheckHeap violations
// at the end. It is a minimal demonstration, analogous to db_bench's
// role relative to lldb in the package this one is built on — not the
// scoring harness a malloc-lab grader would run.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/randver/malloc"
)

func main() {
	var (
		backend = flag.String("backend", "mem", "sink backend: mem or mmap")
		ops     = flag.Int("ops", 100000, "number of malloc/free/realloc operations to run")
		maxSize = flag.Int("maxsize", 512, "largest payload size, in bytes, a single allocation will request")
		chunk   = flag.Int("chunk", 4096, "bytes requested from the sink on a free-list miss")
		verbose = flag.Bool("v", false, "print every CheckHeap block as it is walked")
	)
	flag.Parse()

	if err := run(*backend, *ops, *maxSize, *chunk, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "allocbench:", err)
		os.Exit(1)
	}
}

func run(backend string, ops, maxSize, chunk int, verbose bool) error {
	var sink malloc.Sink
	switch backend {
	case "mem":
		sink = malloc.NewMemSink()
	case "mmap":
		s, err := malloc.NewMmapSink(int64(chunk) * 4096)
		if err != nil {
			return err
		}

		defer s.Close()
		sink = s
	default:
		return fmt.Errorf("unknown backend %q, want mem or mmap", backend)
	}

	a, err := malloc.New(sink, malloc.ChunkSize(chunk))
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(1))
	live := make([]int64, 0, ops/4)
	start := time.Now()
	var mallocs, frees, reallocs int
	for i := 0; i < ops; i++ {
		switch {
		case len(live) == 0 || rng.Intn(3) != 0:
			n := int64(1 + rng.Intn(maxSize))
			bp, err := a.Malloc(n)
			if err != nil {
				return fmt.Errorf("op %d: Malloc(%d): %w", i, n, err)
			}

			if bp != 0 {
				live = append(live, bp)
			}

			mallocs++

		case rng.Intn(2) == 0:
			j := rng.Intn(len(live))
			if err := a.Free(live[j]); err != nil {
				return fmt.Errorf("op %d: Free(%d): %w", i, live[j], err)
			}

			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			frees++

		default:
			j := rng.Intn(len(live))
			n := int64(1 + rng.Intn(maxSize))
			bp, err := a.Realloc(live[j], n)
			if err != nil {
				return fmt.Errorf("op %d: Realloc(%d,%d): %w", i, live[j], n, err)
			}

			live[j] = bp
			reallocs++
		}
	}

	elapsed := time.Since(start)

	errs, stats := a.CheckHeap(verbose, os.Stdout)
	fmt.Printf("backend=%s ops=%d (malloc=%d free=%d realloc=%d) elapsed=%s\n", backend, ops, mallocs, frees, reallocs, elapsed)
	fmt.Printf("live=%d total=%d alloc=%d/%d free=%d/%d\n",
		len(live), stats.TotalBytes, stats.AllocCount, stats.AllocBytes, stats.FreeCount, stats.FreeBytes)

	if len(errs) != 0 {
		return fmt.Errorf("CheckHeap found %d violation(s)", len(errs))
	}

	return nil
}

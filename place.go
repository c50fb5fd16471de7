// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

// splitThreshold is the smallest remainder, in bytes, worth carving off
// as its own free block. Below it the whole candidate block is handed
// to the caller instead, per spec.md §4.5 and §9: this is a tuning
// choice, not an invariant, named here rather than inlined so it can be
// retuned without hunting through place.
const splitThreshold = 6 * overhead

// place consumes bp — a free block of size csize already removed from
// the index — and carves an allocation of asize <= csize out of it.
//
// If the remainder would be smaller than splitThreshold, the whole
// block is marked allocated in place (no split). Otherwise the block is
// split, and the side it is split on is chosen by comparing the sizes
// of bp's immediate physical neighbors (which may be sentinels): the
// allocation goes on the side away from the larger neighbor, so the
// free remainder lands next to it, improving the odds that a future
// free() on that side coalesces with it. This is original_source/mm.c's
// place heuristic, carried over unchanged.
func (a *Allocator) place(bp, asize int64) (int64, error) {
	csize, _, err := getHeader(a.sink, bp)
	if err != nil {
		return 0, err
	}

	remainder := csize - asize
	if remainder < splitThreshold {
		return bp, putTags(a.sink, bp, csize, true)
	}

	prevBp, err := prevBP(a.sink, bp)
	if err != nil {
		return 0, err
	}

	prevSize, _, err := getHeader(a.sink, prevBp)
	if err != nil {
		return 0, err
	}

	nextSize, _, err := getHeader(a.sink, nextBP(bp, csize))
	if err != nil {
		return 0, err
	}

	if nextSize > prevSize {
		// Allocate the front, leave the remainder free at the tail.
		if err := putTags(a.sink, bp, asize, true); err != nil {
			return 0, err
		}

		tail := nextBP(bp, asize)
		if err := putTags(a.sink, tail, remainder, false); err != nil {
			return 0, err
		}

		if a.root, err = insert(a.sink, a.root, tail); err != nil {
			return 0, err
		}

		return bp, nil
	}

	// Leave the remainder free at the front, allocate the tail.
	if err := putTags(a.sink, bp, remainder, false); err != nil {
		return 0, err
	}

	if a.root, err = insert(a.sink, a.root, bp); err != nil {
		return 0, err
	}

	tail := nextBP(bp, remainder)
	return tail, putTags(a.sink, tail, asize, true)
}

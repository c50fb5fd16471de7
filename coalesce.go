// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

// coalesce merges bp — a block whose header/footer are already marked
// free but which is not currently in the index — with its immediately
// adjacent free physical neighbors, and returns the resulting block
// pointer. Four cases, matching original_source/mm.c's coalesce and
// spec.md §4.3 exactly:
//
//	prev alloc, next alloc: bp unchanged
//	prev alloc, next free:  bp absorbs next
//	prev free,  next alloc: prev absorbs bp
//	prev free,  next free:  prev absorbs bp and next
//
// Any neighbor absorbed here is first removed from the index, since a
// merged block cannot still be tracked under its old (now stale) size.
// The returned block is never itself inserted — that remains the
// caller's responsibility.
func (a *Allocator) coalesce(bp int64) (int64, error) {
	size, _, err := getHeader(a.sink, bp)
	if err != nil {
		return 0, err
	}

	prevBp, err := prevBP(a.sink, bp)
	if err != nil {
		return 0, err
	}

	prevSize, prevAlloc, err := getHeader(a.sink, prevBp)
	if err != nil {
		return 0, err
	}

	nextBp := nextBP(bp, size)
	nextSize, nextAlloc, err := getHeader(a.sink, nextBp)
	if err != nil {
		return 0, err
	}

	switch {
	case prevAlloc && nextAlloc:
		return bp, nil

	case prevAlloc && !nextAlloc:
		if a.root, err = remove(a.sink, a.root, nextBp); err != nil {
			return 0, err
		}

		if err = putTags(a.sink, bp, size+nextSize, false); err != nil {
			return 0, err
		}

		return bp, nil

	case !prevAlloc && nextAlloc:
		if a.root, err = remove(a.sink, a.root, prevBp); err != nil {
			return 0, err
		}

		if err = putTags(a.sink, prevBp, size+prevSize, false); err != nil {
			return 0, err
		}

		return prevBp, nil

	default: // !prevAlloc && !nextAlloc
		if a.root, err = remove(a.sink, a.root, nextBp); err != nil {
			return 0, err
		}

		if a.root, err = remove(a.sink, a.root, prevBp); err != nil {
			return 0, err
		}

		if err = putTags(a.sink, prevBp, size+prevSize+nextSize, false); err != nil {
			return 0, err
		}

		return prevBp, nil
	}
}

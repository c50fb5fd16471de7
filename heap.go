// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

// defaultChunkSize is the default number of bytes requested from the
// Sink whenever the free-block index cannot satisfy a request, named
// CHUNKSIZE in spec.md §4.6 and mirrored from original_source/mm.c.
const defaultChunkSize = 4096

// extend grows the heap by requesting wordCount words (rounded up to an
// even count so the resulting byte size stays 8-aligned) from the Sink,
// installs a fresh free block describing the new region, plants a new
// epilogue header at the new tail, and hands the result to coalesce.
//
// The returned block is free, maximally merged with any preceding free
// block, and is NOT inserted into the index — the caller (Malloc, via
// the miss path) decides when and whether to insert it, since it is
// about to hand all or part of it straight to place.
//
// On Sink failure no header, footer, or epilogue is written and the
// index is left untouched, per spec.md §7's no-partial-mutation
// requirement.
func (a *Allocator) extend(wordCount int64) (bp int64, err error) {
	if wordCount%2 != 0 {
		wordCount++
	}

	size := wordCount * wsize
	base, err := a.sink.Extend(size)
	if err != nil {
		return 0, err
	}

	bp = base
	if err = putTags(a.sink, bp, size, false); err != nil {
		return 0, err
	}

	// Fresh epilogue: a zero-size, always-allocated header at the new
	// tail, reusing nextBP's arithmetic so its bp matches Hi() exactly.
	if err = putWord(a.sink, hdrOff(nextBP(bp, size)), pack(0, true)); err != nil {
		return 0, err
	}

	return a.coalesce(bp)
}

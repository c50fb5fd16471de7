// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "testing"

// buildPlaceFixture lays out three adjacent blocks — prev (allocated),
// candidate (free, to be placed into) and next (allocated) — directly
// via the block-tag primitives, bypassing Malloc entirely so the
// orientation heuristic can be exercised with neighbor sizes Malloc
// itself would never produce on its own.
func buildPlaceFixture(t *testing.T, prevSize, candidateSize, nextSize int64) (s *MemSink, candidateBp int64) {
	t.Helper()
	s = NewMemSink()
	if _, err := s.Extend(prevSize + candidateSize + nextSize + dsize); err != nil {
		t.Fatal(err)
	}

	const prevBp = 8
	if err := putTags(s, prevBp, prevSize, true); err != nil {
		t.Fatal(err)
	}

	candidateBp = nextBP(prevBp, prevSize)
	if err := putTags(s, candidateBp, candidateSize, false); err != nil {
		t.Fatal(err)
	}

	nextBp := nextBP(candidateBp, candidateSize)
	if err := putTags(s, nextBp, nextSize, true); err != nil {
		t.Fatal(err)
	}

	return s, candidateBp
}

// When the next neighbor is larger than the prev neighbor, place must
// allocate the front of the candidate and leave the remainder free at
// the tail, next to the larger neighbor.
func TestPlaceOrientationFrontAllocated(t *testing.T) {
	s, candidateBp := buildPlaceFixture(t, 40, 64, 200)
	a := &Allocator{sink: s}

	const asize = 16
	wantRemainder := int64(64 - asize)
	if wantRemainder < splitThreshold {
		t.Fatalf("test setup invalid: remainder %d < splitThreshold %d", wantRemainder, splitThreshold)
	}

	bp, err := a.place(candidateBp, asize)
	if err != nil {
		t.Fatal(err)
	}

	if bp != candidateBp {
		t.Fatalf("place returned %d, want the front (%d)", bp, candidateBp)
	}

	size, alloc, err := getHeader(s, bp)
	if err != nil {
		t.Fatal(err)
	}

	if size != asize || !alloc {
		t.Fatalf("front block = (size %d, alloc %v), want (%d, true)", size, alloc, asize)
	}

	tail := nextBP(bp, asize)
	tsize, talloc, err := getHeader(s, tail)
	if err != nil {
		t.Fatal(err)
	}

	if tsize != wantRemainder || talloc {
		t.Fatalf("tail block = (size %d, alloc %v), want (%d, false)", tsize, talloc, wantRemainder)
	}

	if a.root != tail {
		t.Fatalf("a.root = %d, want the free tail %d", a.root, tail)
	}
}

// When the prev neighbor is larger than the next neighbor, place must
// leave the remainder free at the front and allocate the tail.
func TestPlaceOrientationTailAllocated(t *testing.T) {
	s, candidateBp := buildPlaceFixture(t, 200, 64, 40)
	a := &Allocator{sink: s}

	const asize = 16
	wantRemainder := int64(64 - asize)

	bp, err := a.place(candidateBp, asize)
	if err != nil {
		t.Fatal(err)
	}

	wantTail := nextBP(candidateBp, wantRemainder)
	if bp != wantTail {
		t.Fatalf("place returned %d, want the tail (%d)", bp, wantTail)
	}

	size, alloc, err := getHeader(s, bp)
	if err != nil {
		t.Fatal(err)
	}

	if size != asize || !alloc {
		t.Fatalf("tail block = (size %d, alloc %v), want (%d, true)", size, alloc, asize)
	}

	fsize, falloc, err := getHeader(s, candidateBp)
	if err != nil {
		t.Fatal(err)
	}

	if fsize != wantRemainder || falloc {
		t.Fatalf("front block = (size %d, alloc %v), want (%d, false)", fsize, falloc, wantRemainder)
	}

	if a.root != candidateBp {
		t.Fatalf("a.root = %d, want the free front %d", a.root, candidateBp)
	}
}

// A remainder below splitThreshold must not be split at all: the whole
// candidate block is handed to the caller, oversized.
func TestPlaceNoSplitWhenRemainderTooSmall(t *testing.T) {
	s, candidateBp := buildPlaceFixture(t, 40, 32, 200)
	a := &Allocator{sink: s}

	const asize = 16 // remainder would be 16, well under splitThreshold (48)
	bp, err := a.place(candidateBp, asize)
	if err != nil {
		t.Fatal(err)
	}

	if bp != candidateBp {
		t.Fatalf("place returned %d, want the whole block at %d", bp, candidateBp)
	}

	size, alloc, err := getHeader(s, bp)
	if err != nil {
		t.Fatal(err)
	}

	if size != 32 || !alloc {
		t.Fatalf("block = (size %d, alloc %v), want (32, true), unsplit", size, alloc)
	}

	if a.root != 0 {
		t.Fatalf("a.root = %d, want 0 (nothing inserted on no-split path)", a.root)
	}
}

// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "testing"

func TestPackUnpack(t *testing.T) {
	for _, tc := range []struct {
		size  int64
		alloc bool
	}{
		{16, true},
		{16, false},
		{4096, true},
		{0, true}, // epilogue shape
	} {
		w := pack(tc.size, tc.alloc)
		size, alloc := unpack(w)
		if size != tc.size || alloc != tc.alloc {
			t.Fatalf("pack/unpack(%d,%v) round-tripped to (%d,%v)", tc.size, tc.alloc, size, alloc)
		}
	}
}

func TestHeaderFooterRoundTrip(t *testing.T) {
	s := NewMemSink()
	if _, err := s.Extend(64); err != nil {
		t.Fatal(err)
	}

	const bp = 8
	if err := putTags(s, bp, 32, true); err != nil {
		t.Fatal(err)
	}

	size, alloc, err := getHeader(s, bp)
	if err != nil {
		t.Fatal(err)
	}

	if size != 32 || !alloc {
		t.Fatalf("getHeader = (%d, %v), want (32, true)", size, alloc)
	}

	fsize, falloc, err := getFooter(s, bp, size)
	if err != nil {
		t.Fatal(err)
	}

	if fsize != size || falloc != alloc {
		t.Fatalf("footer (%d,%v) != header (%d,%v)", fsize, falloc, size, alloc)
	}
}

func TestNeighborNavigation(t *testing.T) {
	s := NewMemSink()
	if _, err := s.Extend(96); err != nil {
		t.Fatal(err)
	}

	const a = 8
	if err := putTags(s, a, 24, true); err != nil {
		t.Fatal(err)
	}

	b := nextBP(a, 24)
	if err := putTags(s, b, 32, false); err != nil {
		t.Fatal(err)
	}

	if got := nextBP(a, 24); got != b {
		t.Fatalf("nextBP(a) = %d, want %d", got, b)
	}

	back, err := prevBP(s, b)
	if err != nil {
		t.Fatal(err)
	}

	if back != a {
		t.Fatalf("prevBP(b) = %d, want %d", back, a)
	}
}

func TestFreeBlockLinks(t *testing.T) {
	s := NewMemSink()
	if _, err := s.Extend(32); err != nil {
		t.Fatal(err)
	}

	const bp = 8
	if err := putLeft(s, bp, 100); err != nil {
		t.Fatal(err)
	}

	if err := putRight(s, bp, 200); err != nil {
		t.Fatal(err)
	}

	left, err := getLeft(s, bp)
	if err != nil || left != 100 {
		t.Fatalf("getLeft = (%d, %v), want (100, nil)", left, err)
	}

	right, err := getRight(s, bp)
	if err != nil || right != 200 {
		t.Fatalf("getRight = (%d, %v), want (200, nil)", right, err)
	}
}

func TestAlign8(t *testing.T) {
	for _, tc := range [][2]int64{{0, 0}, {1, 8}, {7, 8}, {8, 8}, {9, 16}, {24, 24}} {
		if got := align8(tc[0]); got != tc[1] {
			t.Fatalf("align8(%d) = %d, want %d", tc[0], got, tc[1])
		}
	}
}

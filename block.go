// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "encoding/binary"

// Word and alignment constants, named after the original mm.c macros
// this package's layout is grounded on.
const (
	wsize    = 4  // word size in bytes
	dsize    = 8  // double word / alignment size in bytes
	overhead = 8  // header + footer overhead per block
	minBlock = 16 // header + left + right + footer

	allocBit uint32 = 1
	sizeMask uint32 = ^uint32(7)
)

// getWord/putWord are the only functions in this package that know the
// on-heap byte encoding of a header/footer word. Every other accessor is
// built on top of these two.
func getWord(s Sink, off int64) (uint32, error) {
	var b [wsize]byte
	if _, err := s.ReadAt(b[:], off); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(b[:]), nil
}

func putWord(s Sink, off int64, w uint32) error {
	var b [wsize]byte
	binary.BigEndian.PutUint32(b[:], w)
	_, err := s.WriteAt(b[:], off)
	return err
}

func pack(size int64, alloc bool) uint32 {
	w := uint32(size) &^ 7
	if alloc {
		w |= allocBit
	}

	return w
}

func unpack(w uint32) (size int64, alloc bool) {
	return int64(w & sizeMask), w&allocBit != 0
}

// hdrOff/ftrOff return the absolute byte offsets of bp's header and
// footer. size must already be known (read from the header, or about
// to be written there).
func hdrOff(bp int64) int64 { return bp - wsize }

func ftrOff(bp, size int64) int64 { return bp + size - dsize }

// getHeader reads bp's header, returning the block's total size and
// allocation flag.
func getHeader(s Sink, bp int64) (size int64, alloc bool, err error) {
	w, err := getWord(s, hdrOff(bp))
	if err != nil {
		return 0, false, err
	}

	size, alloc = unpack(w)
	return
}

// putHeader writes bp's header.
func putHeader(s Sink, bp, size int64, alloc bool) error {
	return putWord(s, hdrOff(bp), pack(size, alloc))
}

// getFooter reads the footer of the size-byte block at bp.
func getFooter(s Sink, bp, size int64) (fsize int64, alloc bool, err error) {
	w, err := getWord(s, ftrOff(bp, size))
	if err != nil {
		return 0, false, err
	}

	fsize, alloc = unpack(w)
	return
}

// putFooter writes bp's footer.
func putFooter(s Sink, bp, size int64, alloc bool) error {
	return putWord(s, ftrOff(bp, size), pack(size, alloc))
}

// putTags writes both header and footer of bp with the same size/alloc
// pair, the only way either should ever be written outside of sentinel
// setup.
func putTags(s Sink, bp, size int64, alloc bool) error {
	if err := putHeader(s, bp, size, alloc); err != nil {
		return err
	}

	return putFooter(s, bp, size, alloc)
}

// nextBP returns the block pointer immediately following bp, given bp's
// own size. Valid for any bp up to, but not past, the epilogue.
func nextBP(bp, size int64) int64 { return bp + size }

// prevFooterOff returns the offset of the footer of the block physically
// preceding bp. Undefined if bp is the prologue.
func prevFooterOff(bp int64) int64 { return bp - dsize }

// prevBP returns the block pointer immediately preceding bp, by reading
// the preceding block's footer. Undefined if bp is the prologue.
func prevBP(s Sink, bp int64) (int64, error) {
	w, err := getWord(s, prevFooterOff(bp))
	if err != nil {
		return 0, err
	}

	size, _ := unpack(w)
	return bp - size, nil
}

// Free-block payload layout: two link words immediately following the
// header, holding the left and right child offsets of the size-keyed
// binary search tree (index.go). A zero link means "no child" — bp == 0
// is never a valid block pointer since the heap always begins with at
// least a pad word and the prologue.
func leftOff(bp int64) int64  { return bp }
func rightOff(bp int64) int64 { return bp + wsize }

func getLeft(s Sink, bp int64) (int64, error) {
	w, err := getWord(s, leftOff(bp))
	return int64(w), err
}

func putLeft(s Sink, bp, left int64) error {
	return putWord(s, leftOff(bp), uint32(left))
}

func getRight(s Sink, bp int64) (int64, error) {
	w, err := getWord(s, rightOff(bp))
	return int64(w), err
}

func putRight(s Sink, bp, right int64) error {
	return putWord(s, rightOff(bp), uint32(right))
}

// align8 rounds n up to the next multiple of 8.
func align8(n int64) int64 { return (n + 7) &^ 7 }

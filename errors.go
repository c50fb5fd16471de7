// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "fmt"

// ErrILSEQType enumerates the kinds of invariant violation CheckHeap can
// discover.
type ErrILSEQType int

// ErrILSEQ kinds.
const (
	ErrOther ErrILSEQType = iota
	ErrHeaderFooterMismatch
	ErrMisaligned
	ErrBadSize
	ErrAdjacentFree
	ErrBadPrologue
	ErrBadEpilogue
	ErrTreeOrder
	ErrTreeMembership
	ErrLostFreeBlock
)

func (t ErrILSEQType) String() string {
	switch t {
	case ErrHeaderFooterMismatch:
		return "header does not match footer"
	case ErrMisaligned:
		return "block pointer is not 8-byte aligned"
	case ErrBadSize:
		return "block size is not a multiple of 8 or is below the minimum"
	case ErrAdjacentFree:
		return "two adjacent free blocks were not coalesced"
	case ErrBadPrologue:
		return "prologue block is missing or corrupted"
	case ErrBadEpilogue:
		return "epilogue header is missing or corrupted"
	case ErrTreeOrder:
		return "free-index size ordering invariant violated"
	case ErrTreeMembership:
		return "free-index membership does not match the set of free blocks"
	case ErrLostFreeBlock:
		return "free block is reachable by heap walk but absent from the index"
	default:
		return "invariant violation"
	}
}

// ErrILSEQ reports an illegal sequence: heap state that violates one of
// the invariants this package guarantees. CheckHeap reports it, and the
// free-block index returns it when asked to remove a block it does not
// hold; a correctly used Allocator never returns it from Malloc, Free,
// or Realloc.
type ErrILSEQ struct {
	Type ErrILSEQType
	Off  int64 // byte offset into the heap where the violation was found
	Arg  int64
	Arg2 int64
	More error
}

func (e *ErrILSEQ) Error() string {
	if e.More != nil {
		return fmt.Sprintf("%s at offset %#x (%d, %d): %s", e.Type, e.Off, e.Arg, e.Arg2, e.More)
	}

	return fmt.Sprintf("%s at offset %#x (%d, %d)", e.Type, e.Off, e.Arg, e.Arg2)
}

// ErrINVAL reports an invalid argument: a bad size, a handle/pointer out
// of range, or a similar caller error.
type ErrINVAL struct {
	Msg string
	Arg interface{}
}

func (e *ErrINVAL) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Arg) }

// ErrPERM reports an operation invoked in a way its contract forbids.
// No function in this package returns it; a second MmapSink.Close, for
// one, returns nil.
type ErrPERM struct {
	Msg string
}

func (e *ErrPERM) Error() string { return e.Msg }

// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/cznic/sortutil"
)

// CheckHeap walks the heap and the free-block index and reports every
// invariant violation it finds. It never mutates anything. If w is
// nil, reports are written to os.Stderr, matching spec.md §7's
// "reported via diagnostic output" policy — CheckHeap does not stop the
// allocator or recover anything, it only observes.
//
// It combines original_source/mm.c's mm_checkheap (sentinel sanity,
// per-block alignment/tag checks) with the fuller cross-check
// lldb.Allocator.Verify performs between a storage engine's sequential
// block scan and its free registry — adapted here from a bitmap-indexed
// external free list to a direct walk of the in-memory BST.
func (a *Allocator) CheckHeap(verbose bool, w io.Writer) ([]error, AllocStats) {
	if w == nil {
		w = os.Stderr
	}

	var errs []error
	var stats AllocStats
	report := func(err error) {
		errs = append(errs, err)
		fmt.Fprintln(w, err)
	}

	psize, palloc, err := getHeader(a.sink, a.prologue)
	if err != nil {
		report(&ErrILSEQ{Type: ErrOther, Off: a.prologue, More: err})
		return errs, stats
	}

	if psize != 2*wsize || !palloc {
		report(&ErrILSEQ{Type: ErrBadPrologue, Off: a.prologue, Arg: psize})
	}

	var freeFromWalk []int64
	prevFree := false
	bp := a.prologue
	for {
		size, alloc, err := getHeader(a.sink, bp)
		if err != nil {
			report(&ErrILSEQ{Type: ErrOther, Off: bp, More: err})
			return errs, stats
		}

		if size == 0 { // epilogue: no footer of its own, never compare one
			if verbose {
				fmt.Fprintf(w, "off=%#x size=0 alloc\n", bp)
			}

			if !alloc {
				report(&ErrILSEQ{Type: ErrBadEpilogue, Off: bp})
			}

			break
		}

		fsize, falloc, err := getFooter(a.sink, bp, size)
		if err != nil {
			report(&ErrILSEQ{Type: ErrOther, Off: bp, More: err})
			return errs, stats
		}

		if size != fsize || alloc != falloc {
			report(&ErrILSEQ{Type: ErrHeaderFooterMismatch, Off: bp, Arg: int64(size), Arg2: fsize})
		}

		if verbose {
			tag := "alloc"
			if !alloc {
				tag = "free"
			}

			fmt.Fprintf(w, "off=%#x size=%d %s\n", bp, size, tag)
		}

		if bp%dsize != 0 {
			report(&ErrILSEQ{Type: ErrMisaligned, Off: bp})
		}

		if size%dsize != 0 || (!alloc && size < minBlock) {
			report(&ErrILSEQ{Type: ErrBadSize, Off: bp, Arg: size})
		}

		if bp != a.prologue {
			if alloc {
				stats.AllocBytes += size
				stats.AllocCount++
			} else {
				stats.FreeBytes += size
				stats.FreeCount++
				if prevFree {
					report(&ErrILSEQ{Type: ErrAdjacentFree, Off: bp})
				}

				freeFromWalk = append(freeFromWalk, bp)
			}

			prevFree = !alloc
		}

		bp = nextBP(bp, size)
	}

	stats.TotalBytes = a.sink.Hi() - a.sink.Lo()

	treeNodes, err := walk(a.sink, a.root)
	if err != nil {
		report(&ErrILSEQ{Type: ErrOther, Off: a.root, More: err})
		return errs, stats
	}

	sort.Sort(sortutil.Int64Slice(treeNodes))
	walked := append([]int64(nil), freeFromWalk...)
	sort.Sort(sortutil.Int64Slice(walked))

	if !int64SliceEqual(treeNodes, walked) {
		report(&ErrILSEQ{Type: ErrTreeMembership, Arg: int64(len(treeNodes)), Arg2: int64(len(walked))})
	}

	if a.root != 0 {
		type bound struct{ bp, lo, hi int64 }
		stack := []bound{{a.root, -1, math.MaxInt64}}
		for len(stack) != 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			size, _, err := getHeader(a.sink, b.bp)
			if err != nil {
				report(&ErrILSEQ{Type: ErrOther, Off: b.bp, More: err})
				continue
			}

			if size <= b.lo || size > b.hi {
				report(&ErrILSEQ{Type: ErrTreeOrder, Off: b.bp, Arg: size})
			}

			left, err := getLeft(a.sink, b.bp)
			if err == nil && left != 0 {
				stack = append(stack, bound{left, b.lo, size})
			}

			right, err := getRight(a.sink, b.bp)
			if err == nil && right != 0 {
				stack = append(stack, bound{right, size, b.hi})
			}
		}
	}

	return errs, stats
}

func int64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}

	for i, v := range a {
		if b[i] != v {
			return false
		}
	}

	return true
}

// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package malloc implements a dynamic memory allocator over a single,
contiguous, monotonically growing heap region obtained from a pluggable
Sink. It is the classic allocate/free/reallocate triad built around a
boundary-tagged block layout and a size-keyed binary search tree of free
blocks, rather than a flat free list, so that the fit search is better
than linear on typical traces.

Heap layout

The heap is a single contiguous byte region bracketed by two immortal
sentinels, the prologue and the epilogue:

	|<-pad->|<- prologue  ->|<-  user blocks (0 or more)  ->|<-epilogue->|
	+-------+-------+-------+-----+----+-----+----+--- ... -+-----------+
	| word  | hdr   | ftr   | hdr | .. | ftr  | hdr| ..      | hdr(sz=0) |
	+-------+-------+-------+-----+----+-----+----+--- ... -+-----------+

The prologue is a minimum-size, always-allocated block whose footer acts
as the "previous block" when coalescing the very first user block. The
epilogue is a zero-size, always-allocated header sitting at the current
tail of the heap; its presence lets "next block" navigation succeed with
no bounds check. Neither sentinel is ever split, freed, or visited by the
free-block index.

Block anatomy

Every block, allocated or free, is a run of bytes beginning with a
4-byte header and ending with a 4-byte footer of identical value:

	bits [3, 32): block size in bytes, a multiple of 8, header+payload+footer
	bit  0      : allocation flag (1 = allocated, 0 = free)
	bits [1, 3) : unused, zero

A block pointer (bp) conventionally addresses the first payload byte,
immediately past the header. Header and footer together give O(1)
neighbor navigation: the previous block's footer sits one word before
bp's header, and the next block starts size(bp) bytes after bp's header.

Free blocks additionally store, in the first two words of their
payload, the left and right child links of the size-keyed binary
search tree that indexes every free block currently in the heap
(see index.go). This is why the minimum block size is 16 bytes:
4 (header) + 4 (left) + 4 (right) + 4 (footer).

Control flow

	Malloc(n):
	  adjust n to asize (alignment + overhead)
	  fit(root, asize) -> hit: remove from tree, place(bp, asize)
	                    -> miss: extend(max(asize, chunkSize)), place(bp, asize)

	Free(bp):
	  mark bp free
	  coalesce(bp) with physical neighbors
	  insert result into tree

The allocator is single-threaded and non-reentrant by contract; there is
no internal locking. Callers that share an *Allocator across goroutines
must serialize access themselves.
*/
package malloc

// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import "github.com/cznic/mathutil"

// An Allocator manages a single, monotonically growing heap built on
// top of a Sink. It is the public surface spec.md §4.6 names: New
// (spec.md's init), Malloc, Free, Realloc, and CheckHeap. An Allocator
// is single-threaded and non-reentrant, like lldb.Allocator; callers
// sharing one across goroutines must serialize access themselves.
type Allocator struct {
	sink      Sink
	root      int64 // free-block index root, 0 == empty
	prologue  int64 // constant after New: the immortal prologue's bp
	chunkSize int64 // bytes requested from sink on a fit miss
}

// AllocStats summarizes a heap's makeup, filled in by CheckHeap,
// mirroring lldb.AllocStats.
type AllocStats struct {
	TotalBytes int64 // bytes in the whole Sink region (Hi-Lo), pad word included
	AllocBytes int64 // bytes in allocated blocks, including overhead
	FreeBytes  int64 // bytes in free blocks, including overhead
	AllocCount int64
	FreeCount  int64
}

// An Option configures an Allocator at construction, following the
// functional-options pattern dbm/options.go uses for its Options type.
type Option func(*Allocator)

// ChunkSize overrides the number of bytes requested from the Sink
// whenever the free-block index cannot satisfy a request (spec.md's
// CHUNKSIZE, default 4096).
func ChunkSize(bytes int) Option {
	return func(a *Allocator) { a.chunkSize = align8(int64(bytes)) }
}

// New creates an Allocator over sink, which must be empty (Hi() == 0),
// and initializes it: it plants the pad word, the prologue and
// epilogue sentinels, and a first free block obtained by extending the
// heap by one chunk, exactly as spec.md §4.6's init describes.
//
// New returns an error, rather than spec.md's -1 sentinel, on Sink
// failure, and no Allocator. The sink is not rolled back: if the first
// chunk cannot be obtained, the pad word and sentinels New already
// wrote stay in the sink, which is then no longer empty.
func New(sink Sink, opts ...Option) (*Allocator, error) {
	if sink.Hi() != 0 {
		return nil, &ErrINVAL{"New: sink is not empty", sink.Hi()}
	}

	a := &Allocator{sink: sink, chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(a)
	}

	base, err := sink.Extend(4 * wsize) // pad + prologue hdr/ftr + epilogue hdr
	if err != nil {
		return nil, err
	}

	if err := putWord(sink, base, 0); err != nil { // alignment pad
		return nil, err
	}

	a.prologue = base + 2*wsize
	if err := putTags(sink, a.prologue, 2*wsize, true); err != nil {
		return nil, err
	}

	epilogueBP := nextBP(a.prologue, 2*wsize)
	if err := putWord(sink, hdrOff(epilogueBP), pack(0, true)); err != nil {
		return nil, err
	}

	bp, err := a.extend(a.chunkSize / wsize)
	if err != nil {
		return nil, err
	}

	if a.root, err = insert(sink, a.root, bp); err != nil {
		return nil, err
	}

	return a, nil
}

// adjustedSize computes spec.md §4.6's asize: the block size (including
// header+footer overhead) needed to satisfy a size-byte payload
// request, rounded up to the 8-byte alignment every block size obeys.
func adjustedSize(size int64) int64 {
	if size <= dsize {
		return minBlock
	}

	return align8(size + overhead)
}

// Malloc returns a block pointer to at least size writable, 8-aligned
// bytes, or 0 if size <= 0. A non-nil error indicates the Sink could
// not grow the heap to satisfy the request; in that case no index or
// heap-tag mutation is left behind.
func (a *Allocator) Malloc(size int64) (int64, error) {
	if size <= 0 {
		return 0, nil
	}

	asize := adjustedSize(size)

	bp, err := fit(a.sink, a.root, asize)
	if err != nil {
		return 0, err
	}

	if bp != 0 {
		if a.root, err = remove(a.sink, a.root, bp); err != nil {
			return 0, err
		}

		return a.place(bp, asize)
	}

	extendWords := mathutil.MaxInt64(asize, a.chunkSize) / wsize
	bp, err = a.extend(extendWords)
	if err != nil {
		return 0, err
	}

	return a.place(bp, asize)
}

// Free returns bp, previously returned by Malloc or Realloc and not
// since freed, to the heap: it is marked free, coalesced with any free
// physical neighbors, and the result is inserted into the free-block
// index. Freeing an already-free or interior pointer is undefined
// behavior, per spec.md §7, and is not detected.
func (a *Allocator) Free(bp int64) error {
	if bp == 0 {
		return nil
	}

	size, _, err := getHeader(a.sink, bp)
	if err != nil {
		return err
	}

	if err := putTags(a.sink, bp, size, false); err != nil {
		return err
	}

	merged, err := a.coalesce(bp)
	if err != nil {
		return err
	}

	a.root, err = insert(a.sink, a.root, merged)
	return err
}

// Realloc returns a block of size writable bytes whose first
// min(size, old payload size) bytes equal bp's current content, frees
// bp, and returns the new block pointer. No in-place optimization is
// attempted, matching spec.md §4.6's minimum requirement; externally
// observable behavior is the standard realloc contract. Realloc(bp, n)
// for n <= 0 frees bp and returns (0, nil), matching C's realloc(p, 0).
func (a *Allocator) Realloc(bp int64, size int64) (int64, error) {
	if bp == 0 {
		return a.Malloc(size)
	}

	oldTotal, _, err := getHeader(a.sink, bp)
	if err != nil {
		return 0, err
	}

	newBp, err := a.Malloc(size)
	if err != nil {
		return 0, err
	}

	if newBp == 0 {
		// size <= 0: Realloc(bp, 0) frees bp and returns null, matching
		// the C realloc(p, 0) contract rather than leaking it.
		return 0, a.Free(bp)
	}

	oldPayload := oldTotal - overhead
	n := mathutil.MinInt64(size, oldPayload)
	if n > 0 {
		buf := make([]byte, n)
		if _, err := a.sink.ReadAt(buf, bp); err != nil {
			return 0, err
		}

		if _, err := a.sink.WriteAt(buf, newBp); err != nil {
			return 0, err
		}
	}

	if err := a.Free(bp); err != nil {
		return 0, err
	}

	return newBp, nil
}

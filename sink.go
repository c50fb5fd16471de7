// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"fmt"
	"io"

	"github.com/cznic/mathutil"
)

// A Sink is the page-granularity collaborator the core allocator grows
// into. It models spec.md's "heap-sink interface": something that can
// enlarge a byte region on request and report its current bounds. A
// Sink is not safe for concurrent use; like the allocator built on top
// of it, it is designed for single-goroutine access.
//
// Sink is the only external interface this package consumes. It
// deliberately does not implement allocation, coalescing, or placement
// policy — those are the core's job.
type Sink interface {
	// Extend enlarges the region by n bytes and returns the offset of
	// the start of the newly available region (the former Hi()). It
	// fails atomically: on error, the region's size is unchanged.
	Extend(n int64) (base int64, err error)

	// ReadAt and WriteAt address the region like a []byte: off is
	// relative to the region's start and must satisfy
	// Lo() <= off && off+len(b) <= Hi().
	ReadAt(b []byte, off int64) (n int, err error)
	WriteAt(b []byte, off int64) (n int, err error)

	// Lo and Hi report the current bounds of the region. Lo is always
	// 0; Hi is the current size in bytes.
	Lo() int64
	Hi() int64
}

const (
	pgBits = 12
	pgSize = 1 << pgBits
	pgMask = pgSize - 1
)

var zeroPage [pgSize]byte

type memSinkPages map[int64]*[pgSize]byte

// MemSink is the default Sink: a paged, growable in-process byte
// region. Pages are allocated lazily on first write and read back as
// zero until then, the same strategy lldb/memfiler.go uses for its
// MemFiler.
type MemSink struct {
	pages memSinkPages
	size  int64
}

// NewMemSink returns an empty MemSink.
func NewMemSink() *MemSink { return &MemSink{pages: memSinkPages{}} }

// Extend implements Sink.
func (s *MemSink) Extend(n int64) (base int64, err error) {
	if n < 0 {
		return 0, &ErrINVAL{"MemSink.Extend: negative size", n}
	}

	base = s.size
	s.size += n
	return base, nil
}

// Lo implements Sink.
func (s *MemSink) Lo() int64 { return 0 }

// Hi implements Sink.
func (s *MemSink) Hi() int64 { return s.size }

// ReadAt implements Sink.
func (s *MemSink) ReadAt(b []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(b)) > s.size {
		return 0, &ErrINVAL{"MemSink.ReadAt: out of range", off}
	}

	pgI := off >> pgBits
	pgO := int(off & pgMask)
	rem := len(b)
	for rem != 0 {
		pg := s.pages[pgI]
		if pg == nil {
			pg = &zeroPage
		}

		nc := copy(b[n:], pg[pgO:])
		pgI++
		pgO = 0
		rem -= nc
		n += nc
	}

	return n, nil
}

// WriteAt implements Sink.
func (s *MemSink) WriteAt(b []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(b)) > s.size {
		return 0, &ErrINVAL{"MemSink.WriteAt: out of range", off}
	}

	pgI := off >> pgBits
	pgO := int(off & pgMask)
	rem := len(b)
	for rem != 0 {
		pg := s.pages[pgI]
		if pg == nil {
			pg = &[pgSize]byte{}
			s.pages[pgI] = pg
		}

		nc := copy(pg[pgO:], b[n:])
		pgI++
		pgO = 0
		rem -= nc
		n += nc
	}

	return n, nil
}

// ReadFrom populates the sink's content from r, growing it as needed.
// It mirrors lldb.MemFiler.ReadFrom and is mainly useful for tests that
// want to seed a heap from a fixture.
func (s *MemSink) ReadFrom(r io.Reader) (n int64, err error) {
	var buf [pgSize]byte
	for {
		rn, rerr := r.Read(buf[:])
		if rn > 0 {
			base, eerr := s.Extend(int64(rn))
			if eerr != nil {
				return n, eerr
			}

			if _, werr := s.WriteAt(buf[:rn], base); werr != nil {
				return n, werr
			}

			n += int64(rn)
		}

		if rerr != nil {
			if rerr == io.EOF {
				return n, nil
			}

			return n, rerr
		}
	}
}

// String implements fmt.Stringer, reporting the current size for
// diagnostics.
func (s *MemSink) String() string {
	return fmt.Sprintf("MemSink(size=%d)", mathutil.MaxInt64(s.size, 0))
}

// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"os"

	"github.com/cznic/fileutil"
)

// FileSink is an *os.File backed Sink. It is intended for use where the
// heap should be inspectable after the process exits (debugging a
// trace, or simply not wanting gigabytes of dead address space), not as
// a durability mechanism — like lldb.SimpleFileFiler, it does nothing
// to protect structural integrity across a crash.
type FileSink struct {
	file *os.File
	size int64
}

// NewFileSink returns a FileSink over f, an already-open file truncated
// to zero length.
func NewFileSink(f *os.File) (*FileSink, error) {
	if err := f.Truncate(0); err != nil {
		return nil, err
	}

	return &FileSink{file: f}, nil
}

// Extend implements Sink.
func (s *FileSink) Extend(n int64) (base int64, err error) {
	if n < 0 {
		return 0, &ErrINVAL{"FileSink.Extend: negative size", n}
	}

	base = s.size
	if err = s.file.Truncate(s.size + n); err != nil {
		return 0, err
	}

	s.size += n
	return base, nil
}

// Lo implements Sink.
func (s *FileSink) Lo() int64 { return 0 }

// Hi implements Sink.
func (s *FileSink) Hi() int64 { return s.size }

// ReadAt implements Sink.
func (s *FileSink) ReadAt(b []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(b)) > s.size {
		return 0, &ErrINVAL{"FileSink.ReadAt: out of range", off}
	}

	return s.file.ReadAt(b, off)
}

// WriteAt implements Sink.
func (s *FileSink) WriteAt(b []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(b)) > s.size {
		return 0, &ErrINVAL{"FileSink.WriteAt: out of range", off}
	}

	return s.file.WriteAt(b, off)
}

// Close closes the backing file.
func (s *FileSink) Close() error { return s.file.Close() }

// Reclaim hole-punches [off, off+size) in the backing file. The core
// allocator never returns memory to its Sink (spec.md §1 Non-goals),
// but a Sink implementation is free to give back the physical pages
// backing a region the caller knows is permanently retired — e.g. a
// diagnostic tool that has fully drained and is about to exit but wants
// to avoid leaving a sparse multi-gigabyte file needlessly resident.
// Reclaim does not change Hi(); reading a reclaimed range afterwards is
// unspecified, matching fileutil.PunchHole's own contract.
func (s *FileSink) Reclaim(off, size int64) error {
	if off < 0 || size < 0 || off+size > s.size {
		return &ErrINVAL{"FileSink.Reclaim: out of range", off}
	}

	return fileutil.PunchHole(s.file, off, size)
}

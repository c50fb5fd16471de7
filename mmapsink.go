// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package malloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapSink is a Sink backed by a single anonymous mmap reservation,
// grown logically (not remapped) as the allocator calls Extend. It
// exists to give the heap-sink collaborator a real page-granularity
// implementation distinct from MemSink's Go-slice-backed one, the way
// a production allocator would sit directly on top of the OS's virtual
// memory, grounded on the buddy pool setup in the reference buddy
// allocator (mmap the whole arena once, sub-allocate internally).
//
// The reservation's capacity is fixed at construction; Extend beyond it
// fails exactly like a real sbrk/mmap running out of address space.
type MmapSink struct {
	mem  []byte // the full mmap'd reservation
	size int64  // bytes currently considered part of the heap
}

// NewMmapSink reserves capacity bytes of anonymous memory (rounded up
// to a page) and returns a Sink over it, initially empty.
func NewMmapSink(capacity int64) (*MmapSink, error) {
	if capacity <= 0 {
		return nil, &ErrINVAL{"NewMmapSink: capacity", capacity}
	}

	pageSize := int64(unix.Getpagesize())
	capacity = (capacity + pageSize - 1) &^ (pageSize - 1)

	mem, err := unix.Mmap(-1, 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}

	return &MmapSink{mem: mem}, nil
}

// Close releases the underlying mapping. The Sink, and any Allocator
// built on it, must not be used afterwards.
func (s *MmapSink) Close() error {
	if s.mem == nil {
		return nil
	}

	err := unix.Munmap(s.mem)
	s.mem = nil
	return err
}

// Extend implements Sink.
func (s *MmapSink) Extend(n int64) (base int64, err error) {
	if n < 0 {
		return 0, &ErrINVAL{"MmapSink.Extend: negative size", n}
	}

	if s.size+n > int64(len(s.mem)) {
		return 0, &ErrINVAL{"MmapSink.Extend: reservation exhausted", s.size + n}
	}

	base = s.size
	s.size += n
	return base, nil
}

// Lo implements Sink.
func (s *MmapSink) Lo() int64 { return 0 }

// Hi implements Sink.
func (s *MmapSink) Hi() int64 { return s.size }

// ReadAt implements Sink.
func (s *MmapSink) ReadAt(b []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(b)) > s.size {
		return 0, &ErrINVAL{"MmapSink.ReadAt: out of range", off}
	}

	return copy(b, s.mem[off:off+int64(len(b))]), nil
}

// WriteAt implements Sink.
func (s *MmapSink) WriteAt(b []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(b)) > s.size {
		return 0, &ErrINVAL{"MmapSink.WriteAt: out of range", off}
	}

	return copy(s.mem[off:off+int64(len(b))], b), nil
}

// basePointer returns the address of the reservation's first byte, for
// diagnostics only; the core allocator never uses raw addresses, only
// Sink-relative offsets.
func (s *MmapSink) basePointer() uintptr {
	if len(s.mem) == 0 {
		return 0
	}

	return uintptr(unsafe.Pointer(&s.mem[0]))
}

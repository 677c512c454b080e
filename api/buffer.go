// Package api
// Author: momentics
//
// Byte staging contracts shared by the mirrored ring and the linear staging
// buffer. A producer writes into WriteHead and publishes with Commit; a
// consumer reads ReadHead and releases with Consume. Neither side performs
// any I/O on its own.

package api

// ByteRing is the capability set common to every staging structure.
type ByteRing interface {
    // WriteHead returns the contiguous writable region, FreeSize bytes long.
    WriteHead() []byte

    // FreeSize returns the number of bytes writable at WriteHead.
    FreeSize() int

    // Commit publishes n bytes written at WriteHead.
    // n must not exceed FreeSize.
    Commit(n int)

    // ReadHead returns the contiguous readable region, Size bytes long.
    ReadHead() []byte

    // Size returns the number of unread bytes.
    Size() int

    // Consume releases n bytes from ReadHead.
    // n must not exceed Size.
    Consume(n int)

    // Clear drops all buffered data without releasing storage.
    Clear()

    // Empty reports whether Size is zero.
    Empty() bool

    // Cap returns the storage capacity in bytes.
    Cap() int
}

// Slab describes a contiguous writable span returned by Prepare.
// len(Data) is the requested size; cap(Data) covers all trailing free space.
type Slab struct {
    Data []byte
}

// Size returns the length of the span.
func (s Slab) Size() int { return len(s.Data) }

// Allocator abstracts a memory ownership strategy.
type Allocator interface {
    // Allocate returns a zeroed region of exactly n bytes.
    Allocate(n int) ([]byte, error)

    // Deallocate returns a region previously obtained from Allocate.
    // The region must not be used afterwards.
    Deallocate(b []byte)
}

// Deleter releases externally allocated memory adopted by a buffer.
type Deleter func(b []byte)

// Package ring implements a fixed-capacity byte ring whose unread bytes and
// free space are always exposed as single contiguous slices.
//
// The storage is a mirrored mapping: 2*Cap bytes of address space where the
// upper half maps the same physical pages as the lower half. A span that
// runs past the physical end continues transparently in the mirror, so
// callers never split a read or a write at the wrap point.
//
//	        head      size      tail
//	         v                    v
//	+---------------------------+---------------------------+
//	|  storage                  |  mirror of storage        |
//	+---------------------------+---------------------------+
//	 <--------- capacity ------->
//
// Writing into the ring:
//
//	n, err := unix.Read(fd, rb.WriteHead())
//	rb.Commit(n)
//
// Reading from the ring:
//
//	n, err := unix.Write(fd, rb.ReadHead())
//	rb.Consume(n)
//
// Buffer uses atomic counters and supports one writer goroutine and one
// reader goroutine at the same time. Several writers or several readers must
// serialize with a mutex. LocalBuffer trades that guarantee for plain
// counters when the ring never leaves one goroutine.
//
// Only initialization can fail. It may report api.ErrCodeInvalidArgument,
// api.ErrCodeOutOfMemory or api.ErrCodeTryAgain; the latter means another
// thread mapped memory where the mirror half had to go, and retrying is
// expected to succeed. Initialize rings before starting goroutines that map
// memory, or use WithRetry.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package ring

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Allocation strategies for staging buffers. Every strategy implements
// api.Allocator and can be injected with staging.WithAllocator:
//
//   - Heap: Go heap slices, released by the garbage collector.
//   - Pages: anonymous private mmap regions, optionally on huge pages.
//   - Recycler: size-class free lists in front of another allocator.
package pool

//go:build linux
// +build linux

// File: pool/pages_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Page-backed allocator. Regions come straight from anonymous private mmap
// and go back to the OS on Deallocate, so large staging buffers do not sit
// on the Go heap.

package pool

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ring/api"
)

const hugePageSize = 2 << 20

// Pages allocates whole pages with mmap. With Huge set it first tries
// MAP_HUGETLB on 2 MiB boundaries and falls back to regular pages.
type Pages struct {
	Huge bool
}

var _ api.Allocator = Pages{}

// Allocate maps at least n bytes. The returned slice has length n; its
// capacity covers the whole mapping.
func (p Pages) Allocate(n int) ([]byte, error) {
	const op = "pool.Pages"
	if n < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, op, "negative size").WithContext("size", n)
	}
	if n == 0 {
		return []byte{}, nil
	}

	if p.Huge {
		length := roundUp(n, hugePageSize)
		if length > 0 {
			data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE,
				unix.MAP_ANONYMOUS|unix.MAP_PRIVATE|unix.MAP_HUGETLB)
			if err == nil {
				return data[:n], nil
			}
		}
	}

	length := roundUp(n, unix.Getpagesize())
	if length <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, op, "size overflows page rounding").WithContext("size", n)
	}
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
	if err != nil {
		return nil, api.NewError(api.ErrCodeOutOfMemory, op, "mmap failed").
			WithContext("size", n).
			Wrap(err)
	}
	return data[:n], nil
}

// Deallocate unmaps the region. b must keep the capacity Allocate returned.
func (Pages) Deallocate(b []byte) {
	if cap(b) == 0 {
		return
	}
	_ = unix.Munmap(b[:cap(b)])
}

// roundUp returns n rounded up to a multiple of align, or a non-positive
// value on overflow.
func roundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

//go:build !linux
// +build !linux

// File: pool/pages_other.go
// Author: momentics <momentics@gmail.com>

package pool

import "github.com/momentics/hioload-ring/api"

// Pages falls back to the Go heap on this platform.
type Pages struct {
	Huge bool
}

var _ api.Allocator = Pages{}

func (Pages) Allocate(n int) ([]byte, error) { return Heap.Allocate(n) }

func (Pages) Deallocate(b []byte) {}

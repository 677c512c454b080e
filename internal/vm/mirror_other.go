//go:build !linux
// +build !linux

// File: internal/vm/mirror_other.go
// Author: momentics <momentics@gmail.com>
//
// Platforms without mremap aliasing cannot host a mirrored mapping.

package vm

import (
	"os"
	"unsafe"

	"github.com/momentics/hioload-ring/api"
)

var pageSize = uint64(os.Getpagesize())

// Map always fails with ErrCodeNotSupported on this platform.
func Map(size uint64) (*Mirror, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "vm.Map", "mirrored mapping requires linux").
		WithContext("size", size)
}

func unmap(unsafe.Pointer, uintptr) error { return nil }

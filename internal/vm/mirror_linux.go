//go:build linux
// +build linux

// File: internal/vm/mirror_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux mirrored mapping via mmap + mremap. A shared anonymous region of
// twice the size is mapped, and mremap with old_size 0 then duplicates the
// lower half's pages onto the upper half. MREMAP_FIXED only ever replaces
// the upper half of our own mapping, so no foreign mapping can be clobbered
// and the placement does not depend on where the kernel finds free space.

package vm

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/internal/assert"
)

const opMap = "vm.Map"

var pageSize = uint64(unix.Getpagesize())

// verified is set once the aliasing self-check passed in this process.
var verified atomic.Bool

type region struct {
	addr   unsafe.Pointer
	length uintptr
}

// Map creates a mirrored mapping whose halves are size bytes each.
// size must be a non-zero multiple of PageSize.
func Map(size uint64) (*Mirror, error) {
	if size == 0 || size%pageSize != 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, opMap, "size must be a non-zero multiple of the page size").
			WithContext("size", size)
	}
	if size > maxMirror {
		return nil, api.NewError(api.ErrCodeInvalidArgument, opMap, "doubled size overflows").
			WithContext("size", size)
	}
	length := uintptr(size)

	addr, err := unix.MmapPtr(-1, 0, nil, 2*length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, syscallError("mmap", size, err)
	}

	want := unsafe.Add(addr, length)
	alias, err := unix.MremapPtr(addr, 0, want, length, unix.MREMAP_MAYMOVE|unix.MREMAP_FIXED)
	if err != nil {
		return nil, release(syscallError("mremap alias", size, err), region{addr, 2 * length})
	}
	if alias != want {
		e := api.NewError(api.ErrCodeTryAgain, opMap, "mirror half placed at a foreign address").
			WithContext("size", size)
		return nil, release(e, region{addr, 2 * length}, region{alias, length})
	}

	m := &Mirror{base: addr, size: length}
	if assert.Enabled || !verified.Load() {
		buf := m.Bytes()
		if !aliased(buf[:length], buf[length:]) {
			e := api.NewError(api.ErrCodeNotSupported, opMap, "mirror halves do not alias").
				WithContext("size", size)
			return nil, release(e, region{addr, 2 * length})
		}
		verified.Store(true)
	}
	return m, nil
}

// aliased writes through each half and observes the value through the other.
func aliased(lo, hi []byte) bool {
	lo[0] = 'x'
	if hi[0] != 'x' {
		return false
	}
	hi[0] = 'y'
	ok := lo[0] == 'y'
	lo[0] = 0
	return ok
}

func unmap(addr unsafe.Pointer, length uintptr) error {
	if err := unix.MunmapPtr(addr, length); err != nil {
		return fmt.Errorf("munmap %#x+%d: %w", uintptr(addr), length, err)
	}
	return nil
}

// release unmaps every region and attaches unmap failures to cause.
func release(cause *api.Error, regions ...region) *api.Error {
	var merr *multierror.Error
	for _, r := range regions {
		if err := unmap(r.addr, r.length); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if merr != nil {
		cause.Err = multierror.Append(cause.Err, merr.Errors...)
	}
	return cause
}

// syscallError classifies an errno from the mapping calls. Sizes are
// validated before any call, so every failure except a missing syscall is
// resource exhaustion.
func syscallError(call string, size uint64, err error) *api.Error {
	code := api.ErrCodeOutOfMemory
	if err == unix.ENOSYS {
		code = api.ErrCodeNotSupported
	}
	return api.NewError(code, opMap, call+" failed").
		WithContext("size", size).
		Wrap(err)
}

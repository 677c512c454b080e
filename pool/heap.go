// File: pool/heap.go
// Author: momentics <momentics@gmail.com>
//
// Default allocation strategy backed by the Go heap.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-ring/api"
)

// Heap allocates from the Go heap. Deallocate leaves reclamation to the GC.
var Heap api.Allocator = heapAllocator{}

type heapAllocator struct{}

func (heapAllocator) Allocate(n int) (b []byte, err error) {
	if n < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "pool.Heap", "negative size").
			WithContext("size", n)
	}
	defer func() {
		// makeslice panics on lengths the runtime cannot address.
		if r := recover(); r != nil {
			b = nil
			err = api.NewError(api.ErrCodeOutOfMemory, "pool.Heap", "allocation failed").
				WithContext("size", n).
				Wrap(fmt.Errorf("%v", r))
		}
	}()
	return make([]byte, n), nil
}

func (heapAllocator) Deallocate([]byte) {}

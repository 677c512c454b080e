// File: staging/owner.go
// Author: momentics <momentics@gmail.com>
//
// Ownership policy of the current storage region.

package staging

import "github.com/momentics/hioload-ring/api"

// owner releases storage either through the allocator or, while the buffer
// still holds adopted memory, through the caller's deleter.
type owner struct {
	alloc   api.Allocator
	deleter api.Deleter
}

// adopted reports whether the current region belongs to the caller.
func (o *owner) adopted() bool { return o.deleter != nil }

// release gives b back. The deleter runs at most once; afterwards every
// region is allocator-owned.
func (o *owner) release(b []byte) {
	if d := o.deleter; d != nil {
		o.deleter = nil
		d(b)
		return
	}
	if b != nil {
		o.alloc.Deallocate(b)
	}
}

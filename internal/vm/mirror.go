// File: internal/vm/mirror.go
// Author: momentics <momentics@gmail.com>
//
// Owning handle of a mirrored mapping.

package vm

import "unsafe"

// Mirror owns 2*Len bytes of address space. Bytes [Len, 2*Len) map the same
// physical pages as [0, Len).
type Mirror struct {
	base unsafe.Pointer
	size uintptr
}

// Len returns the size of one half.
func (m *Mirror) Len() int {
	if m == nil {
		return 0
	}
	return int(m.size)
}

// Bytes returns the full 2*Len view. Nil after Close.
func (m *Mirror) Bytes() []byte {
	if m == nil || m.base == nil {
		return nil
	}
	return unsafe.Slice((*byte)(m.base), 2*m.size)
}

// Close unmaps both halves with a single call. Calling Close again is a no-op.
func (m *Mirror) Close() error {
	if m == nil || m.base == nil {
		return nil
	}
	err := unmap(m.base, 2*m.size)
	m.base, m.size = nil, 0
	return err
}

// File: internal/vm/page.go
// Author: momentics <momentics@gmail.com>

package vm

import "math"

// PageSize returns the system page size in bytes.
func PageSize() int { return int(pageSize) }

// RoundUp rounds n up to a multiple of page, which must be a power of two.
// ok is false when the result does not fit in uint64.
func RoundUp(n, page uint64) (r uint64, ok bool) {
	r = (n + page - 1) &^ (page - 1)
	return r, r >= n
}

// maxMirror is the largest half size whose doubled length still fits the
// address-size integer.
const maxMirror = uint64(math.MaxInt) / 2

// Package vm isolates the unsafe virtual-memory work behind the mirrored
// ring: page rounding and the double mapping whose upper half aliases the
// lower half. Nothing outside this package touches raw addresses; callers
// only ever see the bounded slice returned by Mirror.Bytes.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package vm

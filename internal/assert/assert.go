// Package assert holds precondition checks that are compiled in only for
// builds tagged hioloaddebug. In regular builds Enabled is a false constant
// and every check folds away.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package assert

import "fmt"

// True panics with the formatted message when cond is false and checks are
// enabled.
func True(cond bool, format string, args ...any) {
	if Enabled && !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

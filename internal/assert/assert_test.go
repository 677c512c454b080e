package assert

import (
	"testing"

	tassert "github.com/stretchr/testify/assert"
)

func TestTrue(t *testing.T) {
	tassert.NotPanics(t, func() { True(true, "never") })
	if Enabled {
		tassert.PanicsWithValue(t, "commit 9 > free 8", func() { True(false, "commit %d > free %d", 9, 8) })
	} else {
		tassert.NotPanics(t, func() { True(false, "ignored") })
	}
}

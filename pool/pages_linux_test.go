//go:build linux

package pool_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/pool"
)

func TestPagesAllocator(t *testing.T) {
	for _, huge := range []bool{false, true} {
		p := pool.Pages{Huge: huge}
		b, err := p.Allocate(10000)
		require.NoError(t, err)
		assert.Len(t, b, 10000)
		assert.GreaterOrEqual(t, cap(b), 10000)
		b[0], b[len(b)-1] = 1, 2
		p.Deallocate(b)
	}

	b, err := pool.Pages{}.Allocate(0)
	require.NoError(t, err)
	assert.Empty(t, b)
	pool.Pages{}.Deallocate(b)

	_, err = pool.Pages{}.Allocate(-3)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))
}

func TestRecyclerOverPages(t *testing.T) {
	// Page-rounded regions recycle within the page-size class.
	page := os.Getpagesize()
	r := pool.NewRecycler(pool.Pages{}, 1)
	b, err := r.Allocate(page)
	require.NoError(t, err)
	r.Deallocate(b)
	b, err = r.Allocate(page - 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.Stats().TotalReuse)
	r.Deallocate(b)
	r.Purge()
}

//go:build linux

package vm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-ring/api"
)

func TestRoundUp(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		page uint64
		want uint64
		ok   bool
	}{
		{"one byte", 1, 4096, 4096, true},
		{"just below", 4095, 4096, 4096, true},
		{"exact", 4096, 4096, 4096, true},
		{"just above", 4097, 4096, 8192, true},
		{"overflow", math.MaxUint64 - 10, 4096, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RoundUp(tt.n, tt.page)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMapAliasesHalves(t *testing.T) {
	size := uint64(PageSize())
	m, err := Map(size)
	require.NoError(t, err)
	defer m.Close()

	buf := m.Bytes()
	require.Len(t, buf, 2*int(size))
	assert.Equal(t, int(size), m.Len())

	for i := range buf[:size] {
		buf[i] = byte(i)
	}
	for i := range buf[size:] {
		require.Equal(t, byte(i), buf[int(size)+i], "offset %d", i)
	}

	// A write straddling the boundary lands at the start of the lower half.
	copy(buf[size-2:], "abcd")
	assert.Equal(t, "cd", string(buf[:2]))
	assert.Equal(t, "ab", string(buf[size-2:size]))
}

func TestMapRejectsBadSizes(t *testing.T) {
	for _, size := range []uint64{0, 1, uint64(PageSize()) + 1, maxMirror + uint64(PageSize())} {
		_, err := Map(size)
		require.Error(t, err, "size %d", size)
		assert.True(t, errors.Is(err, api.ErrInvalidArgument), "size %d: %v", size, err)
	}
}

func TestMirrorCloseOnce(t *testing.T) {
	m, err := Map(uint64(PageSize()))
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.Zero(t, m.Len())

	var nilMirror *Mirror
	assert.NoError(t, nilMirror.Close())
}

// The Go runtime leaves holes in the address space; the alias must still
// land on the upper half every time, with no retry.
func TestMapPlacesAliasWithoutRetry(t *testing.T) {
	page := uint64(PageSize())
	live := make([]*Mirror, 0, 200)
	defer func() {
		for _, m := range live {
			assert.NoError(t, m.Close())
		}
	}()

	for i := 0; i < 200; i++ {
		size := page * uint64(1+i%7)
		m, err := Map(size)
		require.NoError(t, err, "attempt %d, size %d", i, size)
		buf := m.Bytes()
		require.True(t, aliased(buf[:size], buf[size:]), "attempt %d", i)
		buf[size-1] = byte(i)
		require.Equal(t, byte(i), buf[2*size-1])

		// Keep every third mapping alive so later ones see a fragmented layout.
		if i%3 == 0 {
			live = append(live, m)
			continue
		}
		require.NoError(t, m.Close())
	}
}

func TestSyscallErrorClassification(t *testing.T) {
	tests := []struct {
		errno unix.Errno
		want  api.ErrorCode
	}{
		{unix.ENOMEM, api.ErrCodeOutOfMemory},
		{unix.EMFILE, api.ErrCodeOutOfMemory},
		{unix.EAGAIN, api.ErrCodeOutOfMemory},
		{unix.EINVAL, api.ErrCodeOutOfMemory},
		{unix.ENOSYS, api.ErrCodeNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.errno.Error(), func(t *testing.T) {
			err := syscallError("mmap", uint64(PageSize()), tt.errno)
			assert.Equal(t, tt.want, err.Code)
			assert.ErrorIs(t, err, tt.errno)
		})
	}
}

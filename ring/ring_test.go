//go:build linux

package ring

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/internal/vm"
)

func newTestRing(t *testing.T, minsize int) *Buffer {
	t.Helper()
	rb, err := New(minsize, WithRetry(8, 0))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, rb.Close()) })
	return rb
}

func TestCapacityRounding(t *testing.T) {
	page := vm.PageSize()
	for _, size := range []int{1, 100, page - 1, page, page + 1, 3*page + 17} {
		rb := newTestRing(t, size)
		assert.Zero(t, rb.Cap()%page, "size %d", size)
		assert.GreaterOrEqual(t, rb.Cap(), size)
		assert.Less(t, rb.Cap()-size, page)
		assert.Equal(t, rb.Cap(), rb.FreeSize())
		assert.True(t, rb.Empty())
	}
}

func TestZeroSizeRejected(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))

	var deferred Buffer
	err = deferred.Initialize(0)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))
	assert.Zero(t, deferred.Cap())

	_, err = NewLocal(-5)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))

	defer func() {
		r := recover()
		require.NotNil(t, r)
		perr, ok := r.(error)
		require.True(t, ok)
		assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(perr))
	}()
	MustNew(0)
}

func TestOverflowingSizeRejected(t *testing.T) {
	var rb Buffer
	err := rb.Initialize(math.MaxInt)
	require.Error(t, err)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))
}

func TestDeferredInitialization(t *testing.T) {
	var rb Buffer
	assert.Zero(t, rb.Cap())
	assert.Nil(t, rb.WriteHead())
	assert.Nil(t, rb.ReadHead())
	assert.Zero(t, rb.FreeSize())

	require.NoError(t, rb.Initialize(1, WithRetry(8, 0)))
	defer rb.Close()
	assert.Equal(t, vm.PageSize(), rb.Cap())

	err := rb.Initialize(1)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))
	assert.Equal(t, vm.PageSize(), rb.Cap())
}

func TestFullRoundTrip(t *testing.T) {
	rb := newTestRing(t, 1)
	n := rb.Cap()
	src := bytes.Repeat([]byte{'x'}, n)

	require.Len(t, rb.WriteHead(), n)
	copy(rb.WriteHead(), src)
	rb.Commit(n)
	assert.Equal(t, n, rb.Size())
	assert.Zero(t, rb.FreeSize())
	assert.Empty(t, rb.WriteHead())

	dst := make([]byte, n)
	copy(dst, rb.ReadHead())
	rb.Consume(n)

	assert.Equal(t, src, dst)
	assert.Zero(t, rb.Size())
	assert.True(t, rb.Empty())
}

func TestExampleScenario(t *testing.T) {
	if vm.PageSize() != 4096 {
		t.Skip("requires 4096-byte pages")
	}
	rb := newTestRing(t, 4095)
	require.Equal(t, 4096, rb.Cap())

	copy(rb.WriteHead(), bytes.Repeat([]byte{'x'}, 4096))
	rb.Commit(4096)
	require.Equal(t, 4096, rb.Size())

	got := append([]byte(nil), rb.ReadHead()...)
	rb.Consume(4096)
	assert.Equal(t, bytes.Repeat([]byte{'x'}, 4096), got)
	assert.Zero(t, rb.Size())
}

func TestWriteAcrossTheEdge(t *testing.T) {
	rb := newTestRing(t, 1)
	n := rb.Cap()

	rb.Commit(n / 2)
	rb.Consume(n / 2)

	m := n/2 + n/4
	head := rb.WriteHead()
	require.GreaterOrEqual(t, len(head), m)
	for i := range head[:m] {
		head[i] = 'y'
	}
	rb.Commit(m)
	require.Equal(t, m, rb.Size())

	span := rb.ReadHead()
	require.Len(t, span, m)
	assert.Equal(t, bytes.Repeat([]byte{'y'}, m), span)

	// The part past the physical end landed at the start of the storage.
	assert.Equal(t, bytes.Repeat([]byte{'y'}, m-n/2), rb.data[:m-n/2])

	rb.Consume(m)
	assert.True(t, rb.Empty())
}

func TestCountersSurviveWraparound(t *testing.T) {
	rb, err := NewLocal(1)
	require.NoError(t, err)
	defer rb.Close()
	n := uint64(rb.Cap())

	start := math.MaxUint64 - n/2 + 1
	rb.head.Store(start)
	rb.tail.Store(start)

	copy(rb.WriteHead(), strings.Repeat("z", int(n)))
	rb.Commit(int(n))
	assert.Less(t, rb.tail.Load(), rb.head.Load(), "tail counter must have wrapped")
	assert.Equal(t, int(n), rb.Size())
	assert.Zero(t, rb.FreeSize())
	assert.Equal(t, strings.Repeat("z", int(n)), string(rb.ReadHead()))

	rb.Consume(int(n))
	assert.True(t, rb.Empty())
	assert.Equal(t, int(n), rb.FreeSize())
}

func TestCounterInvariantRandomized(t *testing.T) {
	rb, err := NewLocal(1)
	require.NoError(t, err)
	defer rb.Close()
	capacity := rb.Cap()

	rnd := rand.New(rand.NewSource(1))
	var model bytes.Buffer
	var seq byte
	for i := 0; i < 20000; i++ {
		if rnd.Intn(2) == 0 {
			k := rnd.Intn(rb.FreeSize() + 1)
			head := rb.WriteHead()
			for j := 0; j < k; j++ {
				head[j] = seq
				model.WriteByte(seq)
				seq++
			}
			rb.Commit(k)
		} else {
			k := rnd.Intn(rb.Size() + 1)
			require.Equal(t, string(model.Next(k)), string(rb.ReadHead()[:k]))
			rb.Consume(k)
		}
		size := rb.tail.Load() - rb.head.Load()
		require.LessOrEqual(t, size, uint64(capacity))
		require.Equal(t, model.Len(), rb.Size())
		require.Equal(t, capacity-model.Len(), rb.FreeSize())
	}
}

func TestConstructionSucceedsWithoutRetry(t *testing.T) {
	page := vm.PageSize()
	for i := 0; i < 200; i++ {
		rb, err := New((1 + i%7) * page)
		require.NoError(t, err, "attempt %d", i)
		require.Equal(t, (1+i%7)*page, rb.Cap())
		require.NoError(t, rb.Close())
	}
}

func TestClear(t *testing.T) {
	rb := newTestRing(t, 1)

	rb.Clear()
	assert.True(t, rb.Empty())
	assert.Zero(t, rb.Size())

	_, err := rb.Write([]byte("pending"))
	require.NoError(t, err)
	rb.Consume(2)
	rb.Clear()
	assert.True(t, rb.Empty())
	assert.Equal(t, rb.Cap(), rb.FreeSize())
	assert.Equal(t, api.RingStats{Capacity: rb.Cap()}, rb.Stats())
}

func TestAllIteratesLogicalOrder(t *testing.T) {
	rb := newTestRing(t, 1)
	const msg = "Test 3...success\n"

	// Park the read position near the physical end so the message wraps.
	rb.Commit(rb.Cap() - 5)
	rb.Consume(rb.Cap() - 5)
	_, err := rb.Write([]byte(msg))
	require.NoError(t, err)

	var sb strings.Builder
	for b := range rb.All() {
		sb.WriteByte(b)
	}
	assert.Equal(t, msg, sb.String())

	// Restartable and non-consuming.
	count := 0
	for range rb.All() {
		count++
	}
	assert.Equal(t, len(msg), count)

	var first []byte
	for b := range rb.All() {
		first = append(first, b)
		if len(first) == 4 {
			break
		}
	}
	assert.Equal(t, "Test", string(first))
	assert.Equal(t, len(msg), rb.Size())
}

func TestReadWriteHelpers(t *testing.T) {
	rb := newTestRing(t, 1)
	capacity := rb.Cap()

	buf := make([]byte, 8)
	n, err := rb.Read(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)

	big := bytes.Repeat([]byte("0123456789"), capacity/10+1)
	n, err = rb.Write(big)
	assert.Equal(t, capacity, n)
	assert.ErrorIs(t, err, io.ErrShortWrite)

	n, err = rb.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "01234567", string(buf[:n]))

	var out bytes.Buffer
	n, err = rb.Drain(&out)
	require.NoError(t, err)
	assert.Equal(t, capacity-8, n)
	assert.Equal(t, big[8:capacity], out.Bytes())
	assert.True(t, rb.Empty())
}

func TestFillAndDrain(t *testing.T) {
	rb := newTestRing(t, 1)
	capacity := rb.Cap()
	src := bytes.NewReader(bytes.Repeat([]byte("ab"), capacity))

	n, err := rb.Fill(src)
	require.NoError(t, err)
	assert.Equal(t, capacity, n)

	n, err = rb.Fill(src)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	short := &limitedWriter{limit: 3}
	n, err = rb.Drain(short)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, capacity-3, rb.Size())

	n, err = rb.Fill(strings.NewReader("xyz"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, capacity, rb.Size())

	n, err = rb.Drain(io.Discard)
	require.NoError(t, err)
	assert.Equal(t, capacity, n)

	_, err = rb.Fill(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)
}

type limitedWriter struct{ limit int }

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		return w.limit, nil
	}
	return len(p), nil
}

func TestMoveAndSwap(t *testing.T) {
	rb, err := New(1, WithRetry(8, 0))
	require.NoError(t, err)
	_, err = rb.Write([]byte("moved"))
	require.NoError(t, err)
	capacity := rb.Cap()

	moved := rb.Move()
	defer moved.Close()
	assert.Zero(t, rb.Cap())
	assert.Zero(t, rb.Size())
	assert.Nil(t, rb.ReadHead())
	assert.NoError(t, rb.Close())

	assert.Equal(t, capacity, moved.Cap())
	assert.Equal(t, "moved", string(moved.ReadHead()))

	other := newTestRing(t, 3*vm.PageSize())
	_, err = other.Write([]byte("other"))
	require.NoError(t, err)

	moved.Swap(other)
	assert.Equal(t, "other", string(moved.ReadHead()))
	assert.Equal(t, 3*vm.PageSize(), moved.Cap())
	assert.Equal(t, "moved", string(other.ReadHead()))
	assert.Equal(t, capacity, other.Cap())

	moved.Swap(moved)
	assert.Equal(t, "other", string(moved.ReadHead()))
}

func TestCloseReleasesOnce(t *testing.T) {
	rb, err := New(1, WithRetry(8, 0))
	require.NoError(t, err)
	require.NoError(t, rb.Close())
	require.NoError(t, rb.Close())
	assert.Zero(t, rb.Cap())
	assert.Nil(t, rb.WriteHead())

	// A closed ring can be initialized again.
	require.NoError(t, rb.Initialize(1, WithRetry(8, 0)))
	assert.NoError(t, rb.Close())
}

func TestErrorClassificationIsShared(t *testing.T) {
	_, errNew := New(0)
	var rb Buffer
	errInit := rb.Initialize(0)

	var e1, e2 *api.Error
	require.True(t, errors.As(errNew, &e1))
	require.True(t, errors.As(errInit, &e2))
	assert.Equal(t, e1.Code, e2.Code)
}

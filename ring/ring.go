// File: ring/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mirrored byte ring. head and tail are free-running uint64 counters; the
// buffered size is their modular difference and physical offsets are taken
// modulo the capacity only when a slice is handed out.

package ring

import (
	"context"
	"io"
	"iter"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/internal/assert"
	"github.com/momentics/hioload-ring/internal/retry"
	"github.com/momentics/hioload-ring/internal/vm"
)

// Counter is the representation of the head and tail positions.
type Counter[C any] interface {
	*C
	Load() uint64
	Store(v uint64)
	Add(delta uint64) uint64
}

// LocalCounter is a non-atomic Counter for rings confined to one goroutine.
type LocalCounter struct{ v uint64 }

func (c *LocalCounter) Load() uint64 { return c.v }

func (c *LocalCounter) Store(v uint64) { c.v = v }

func (c *LocalCounter) Add(delta uint64) uint64 {
	c.v += delta
	return c.v
}

// Buffer is a mirrored ring safe for one writer and one reader goroutine.
type Buffer = Ring[atomic.Uint64, *atomic.Uint64]

// LocalBuffer is a mirrored ring for single-goroutine use.
type LocalBuffer = Ring[LocalCounter, *LocalCounter]

var (
	_ api.ByteRing        = (*Buffer)(nil)
	_ api.ByteRing        = (*LocalBuffer)(nil)
	_ api.RingStatsSource = (*Buffer)(nil)
	_ io.ReadWriter       = (*Buffer)(nil)
)

// Ring is the mirrored ring parametrized over its counter representation.
// The zero value is uninitialized and must go through Initialize first.
// A Ring must not be copied; use Move to transfer ownership.
type Ring[C any, P Counter[C]] struct {
	_        noCopy
	mirror   *vm.Mirror
	data     []byte // 2*capacity bytes, upper half aliases the lower
	capacity uint64
	log      *zap.Logger

	head C
	_    [64]byte // keeps reader and writer counters on separate cache lines
	tail C
	_    [64]byte
}

// New creates and initializes a Buffer of at least minsize bytes.
func New(minsize int, opts ...Option) (*Buffer, error) {
	return newRing[atomic.Uint64, *atomic.Uint64](minsize, opts)
}

// NewLocal creates and initializes a LocalBuffer of at least minsize bytes.
func NewLocal(minsize int, opts ...Option) (*LocalBuffer, error) {
	return newRing[LocalCounter, *LocalCounter](minsize, opts)
}

// MustNew is like New but panics with the *api.Error on failure.
func MustNew(minsize int, opts ...Option) *Buffer {
	rb, err := New(minsize, opts...)
	if err != nil {
		panic(err)
	}
	return rb
}

func newRing[C any, P Counter[C]](minsize int, opts []Option) (*Ring[C, P], error) {
	r := new(Ring[C, P])
	if err := r.Initialize(minsize, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// Initialize maps storage for at least minsize bytes, rounded up to the page
// size. On failure no mapping is left behind and the ring stays unusable.
func (r *Ring[C, P]) Initialize(minsize int, opts ...Option) error {
	const op = "ring.Initialize"
	if r.mirror != nil {
		return api.NewError(api.ErrCodeInvalidArgument, op, "ring already initialized").
			WithContext("capacity", r.capacity)
	}
	if minsize <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, op, "size must be positive").
			WithContext("minsize", minsize)
	}
	size, ok := vm.RoundUp(uint64(minsize), uint64(vm.PageSize()))
	if !ok {
		return api.NewError(api.ErrCodeInvalidArgument, op, "size overflows after page rounding").
			WithContext("minsize", minsize)
	}

	cfg := newConfig(opts)
	cfg.retry.OnRetry = func(attempt int, err error) {
		cfg.log.Warn("mirrored mapping raced, retrying",
			zap.Int("attempt", attempt), zap.Uint64("capacity", size), zap.Error(err))
	}

	var m *vm.Mirror
	err := retry.Do(context.Background(), cfg.retry, func() (err error) {
		m, err = vm.Map(size)
		return err
	})
	if err != nil {
		cfg.log.Debug("mirrored ring initialization failed",
			zap.Int("minsize", minsize), zap.Stringer("code", api.CodeOf(err)), zap.Error(err))
		return err
	}

	r.mirror = m
	r.data = m.Bytes()
	r.capacity = size
	r.log = cfg.log
	P(&r.head).Store(0)
	P(&r.tail).Store(0)
	r.log.Debug("mirrored ring initialized", zap.Int("minsize", minsize), zap.Uint64("capacity", size))
	return nil
}

// WriteHead returns the free region, FreeSize bytes long. The slice is
// contiguous even when it crosses the physical end of the storage.
func (r *Ring[C, P]) WriteHead() []byte {
	if r.capacity == 0 {
		return nil
	}
	tail := P(&r.tail).Load()
	free := r.capacity - (tail - P(&r.head).Load())
	off := tail % r.capacity
	return r.data[off : off+free : off+free]
}

// FreeSize returns the number of bytes writable at WriteHead.
func (r *Ring[C, P]) FreeSize() int {
	return int(r.capacity - r.size())
}

// Commit publishes n bytes written at WriteHead.
func (r *Ring[C, P]) Commit(n int) {
	if assert.Enabled {
		assert.True(n >= 0 && n <= r.FreeSize(), "ring: commit %d exceeds free size %d", n, r.FreeSize())
	}
	P(&r.tail).Add(uint64(n))
}

// ReadHead returns the unread region, Size bytes long.
func (r *Ring[C, P]) ReadHead() []byte {
	if r.capacity == 0 {
		return nil
	}
	head := P(&r.head).Load()
	size := P(&r.tail).Load() - head
	off := head % r.capacity
	return r.data[off : off+size : off+size]
}

// Size returns the number of unread bytes.
func (r *Ring[C, P]) Size() int {
	return int(r.size())
}

func (r *Ring[C, P]) size() uint64 {
	head := P(&r.head).Load()
	return P(&r.tail).Load() - head
}

// Consume releases n bytes from ReadHead.
func (r *Ring[C, P]) Consume(n int) {
	if assert.Enabled {
		assert.True(n >= 0 && n <= r.Size(), "ring: consume %d exceeds size %d", n, r.Size())
	}
	P(&r.head).Add(uint64(n))
}

// Clear drops all buffered bytes. Storage stays mapped.
// Not safe while another goroutine uses the ring.
func (r *Ring[C, P]) Clear() {
	P(&r.head).Store(0)
	P(&r.tail).Store(0)
}

// Empty reports whether there is nothing to read.
func (r *Ring[C, P]) Empty() bool {
	return r.size() == 0
}

// Cap returns the capacity, a multiple of the page size. Zero before
// Initialize and after Close.
func (r *Ring[C, P]) Cap() int {
	return int(r.capacity)
}

// All yields the buffered bytes in logical order. The sequence reads the
// ring at the time it is ranged over and does not consume anything.
func (r *Ring[C, P]) All() iter.Seq[byte] {
	return func(yield func(byte) bool) {
		for _, b := range r.ReadHead() {
			if !yield(b) {
				return
			}
		}
	}
}

// Write copies p into the ring. If p does not fit, the part that fits is
// committed and io.ErrShortWrite is returned.
func (r *Ring[C, P]) Write(p []byte) (int, error) {
	n := copy(r.WriteHead(), p)
	r.Commit(n)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Read copies buffered bytes into p and consumes them. It returns io.EOF
// when the ring is empty.
func (r *Ring[C, P]) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.Empty() {
		return 0, io.EOF
	}
	n := copy(p, r.ReadHead())
	r.Consume(n)
	return n, nil
}

// Fill performs one Read from src directly into WriteHead and commits what
// was read. A full ring returns io.ErrShortBuffer without calling src.
func (r *Ring[C, P]) Fill(src io.Reader) (int, error) {
	head := r.WriteHead()
	if len(head) == 0 {
		return 0, io.ErrShortBuffer
	}
	n, err := src.Read(head)
	n = clamp(n, len(head))
	r.Commit(n)
	return n, err
}

// Drain performs one Write of ReadHead to dst and consumes what was written.
func (r *Ring[C, P]) Drain(dst io.Writer) (int, error) {
	head := r.ReadHead()
	if len(head) == 0 {
		return 0, nil
	}
	n, err := dst.Write(head)
	n = clamp(n, len(head))
	r.Consume(n)
	if err == nil && n < len(head) {
		err = io.ErrShortWrite
	}
	return n, err
}

// Stats reports capacity, buffered size and the raw counters.
func (r *Ring[C, P]) Stats() api.RingStats {
	head := P(&r.head).Load()
	tail := P(&r.tail).Load()
	return api.RingStats{
		Capacity:  int(r.capacity),
		Size:      int(tail - head),
		Committed: tail,
		Consumed:  head,
	}
}

// Swap exchanges the storage and positions of two rings.
func (r *Ring[C, P]) Swap(other *Ring[C, P]) {
	if r == other {
		return
	}
	r.mirror, other.mirror = other.mirror, r.mirror
	r.data, other.data = other.data, r.data
	r.capacity, other.capacity = other.capacity, r.capacity
	r.log, other.log = other.log, r.log

	head, tail := P(&r.head).Load(), P(&r.tail).Load()
	P(&r.head).Store(P(&other.head).Load())
	P(&r.tail).Store(P(&other.tail).Load())
	P(&other.head).Store(head)
	P(&other.tail).Store(tail)
}

// Move returns a new ring owning r's storage and leaves r uninitialized.
func (r *Ring[C, P]) Move() *Ring[C, P] {
	dst := new(Ring[C, P])
	dst.Swap(r)
	return dst
}

// Close unmaps both halves of the storage. Slices obtained from WriteHead
// or ReadHead must not be used afterwards. Closing twice is a no-op.
func (r *Ring[C, P]) Close() error {
	if r.mirror == nil {
		return nil
	}
	err := r.mirror.Close()
	if err != nil && r.log != nil {
		r.log.Error("unmapping mirrored ring", zap.Uint64("capacity", r.capacity), zap.Error(err))
	}
	r.mirror = nil
	r.data = nil
	r.capacity = 0
	r.Clear()
	return err
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

// noCopy lets go vet flag accidental copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

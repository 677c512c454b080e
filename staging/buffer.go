// File: staging/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package staging

import (
	"errors"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/internal/assert"
)

// MinRead is the smallest span ReadFrom prepares for each read.
const MinRead = 512

var (
	_ api.ByteRing           = (*Buffer)(nil)
	_ api.StagingStatsSource = (*Buffer)(nil)
	_ io.ReadWriter          = (*Buffer)(nil)
	_ io.ReaderFrom          = (*Buffer)(nil)
	_ io.WriterTo            = (*Buffer)(nil)
)

// Buffer is a linear staging buffer. Unread bytes live in data[head:tail];
// data[tail:] is the trailing free space.
type Buffer struct {
	data []byte
	head int
	tail int
	own  owner
	log  *zap.Logger

	committed   uint64
	consumed    uint64
	grows       uint64
	compactions uint64
}

// New creates a buffer with capacity bytes from the configured allocator.
// A zero capacity defers allocation to the first Prepare.
func New(capacity int, opts ...Option) (*Buffer, error) {
	if capacity < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "staging.New", "negative capacity").
			WithContext("capacity", capacity)
	}
	cfg := newConfig(opts)
	b := &Buffer{own: owner{alloc: cfg.alloc}, log: cfg.log}
	if capacity > 0 {
		data, err := cfg.alloc.Allocate(capacity)
		if err != nil {
			return nil, allocError("staging.New", capacity, err)
		}
		b.data = data
	}
	return b, nil
}

// Adopt creates a buffer on top of caller-allocated mem. The buffer owns mem
// from now on: deleter is called exactly once, when the buffer is closed or
// when a grow replaces mem. Grows allocate from the configured allocator.
func Adopt(mem []byte, deleter api.Deleter, opts ...Option) (*Buffer, error) {
	if deleter == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "staging.Adopt", "nil deleter")
	}
	cfg := newConfig(opts)
	return &Buffer{
		data: mem,
		own:  owner{alloc: cfg.alloc, deleter: deleter},
		log:  cfg.log,
	}, nil
}

// Prepare returns a contiguous writable span of exactly n bytes at
// WriteHead. cap(slab.Data) covers the whole trailing free space. It may
// compact unread bytes to the front or grow the storage; slices obtained
// earlier from WriteHead or ReadHead are invalid afterwards.
func (b *Buffer) Prepare(n int) (api.Slab, error) {
	if n < 0 {
		return api.Slab{}, api.NewError(api.ErrCodeInvalidArgument, "staging.Prepare", "negative size").
			WithContext("size", n)
	}
	if len(b.data)-b.tail < n {
		if err := b.reserve(n); err != nil {
			return api.Slab{}, err
		}
	}
	return api.Slab{Data: b.data[b.tail : b.tail+n : len(b.data)]}, nil
}

// reserve makes at least n bytes of trailing free space.
func (b *Buffer) reserve(n int) error {
	size := b.tail - b.head
	if size == 0 {
		b.head, b.tail = 0, 0
		if len(b.data) >= n {
			return nil
		}
	} else if len(b.data)-size >= n {
		copy(b.data, b.data[b.head:b.tail])
		b.head, b.tail = 0, size
		b.compactions++
		b.log.Debug("staging buffer compacted", zap.Int("size", size), zap.Int("capacity", len(b.data)))
		return nil
	}
	return b.grow(size, n)
}

// grow moves the unread bytes into a new region of at least twice the
// current capacity, or size+n when that is larger.
func (b *Buffer) grow(size, n int) error {
	const op = "staging.Prepare"
	if n > math.MaxInt-size {
		return api.NewError(api.ErrCodeInvalidArgument, op, "size overflows").
			WithContext("size", n).
			WithContext("buffered", size)
	}
	newCap := size + n
	if len(b.data) <= math.MaxInt/2 && 2*len(b.data) > newCap {
		newCap = 2 * len(b.data)
	}

	data, err := b.own.alloc.Allocate(newCap)
	if err != nil {
		return allocError(op, newCap, err)
	}
	copy(data, b.data[b.head:b.tail])
	wasAdopted := b.own.adopted()
	b.own.release(b.data)

	b.log.Debug("staging buffer grown",
		zap.Int("from", len(b.data)), zap.Int("to", newCap), zap.Bool("released_adopted", wasAdopted))
	b.data = data
	b.head, b.tail = 0, size
	b.grows++
	return nil
}

// WriteHead returns the trailing free space. Use Prepare when more room is
// needed than FreeSize reports.
func (b *Buffer) WriteHead() []byte {
	return b.data[b.tail:len(b.data):len(b.data)]
}

// FreeSize returns the length of the trailing free space.
func (b *Buffer) FreeSize() int {
	return len(b.data) - b.tail
}

// Commit publishes n bytes written at WriteHead.
func (b *Buffer) Commit(n int) {
	if assert.Enabled {
		assert.True(n >= 0 && n <= b.FreeSize(), "staging: commit %d exceeds free size %d", n, b.FreeSize())
	}
	b.tail += n
	b.committed += uint64(n)
}

// ReadHead returns the unread bytes.
func (b *Buffer) ReadHead() []byte {
	return b.data[b.head:b.tail:b.tail]
}

// Size returns the number of unread bytes.
func (b *Buffer) Size() int {
	return b.tail - b.head
}

// Consume releases n bytes from ReadHead. Draining the buffer rewinds both
// offsets to the start of the storage.
func (b *Buffer) Consume(n int) {
	if assert.Enabled {
		assert.True(n >= 0 && n <= b.Size(), "staging: consume %d exceeds size %d", n, b.Size())
	}
	b.head += n
	b.consumed += uint64(n)
	if b.head == b.tail {
		b.head, b.tail = 0, 0
	}
}

// Clear drops all unread bytes. Storage is kept.
func (b *Buffer) Clear() {
	b.head, b.tail = 0, 0
}

// Empty reports whether there is nothing to read.
func (b *Buffer) Empty() bool {
	return b.head == b.tail
}

// Cap returns the size of the current storage.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Write appends p, growing the storage as needed.
func (b *Buffer) Write(p []byte) (int, error) {
	slab, err := b.Prepare(len(p))
	if err != nil {
		return 0, err
	}
	n := copy(slab.Data, p)
	b.Commit(n)
	return n, nil
}

// Read copies unread bytes into p and consumes them. It returns io.EOF when
// the buffer is empty.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.Empty() {
		return 0, io.EOF
	}
	n := copy(p, b.ReadHead())
	b.Consume(n)
	return n, nil
}

// ReadFrom reads from r into the trailing free space until io.EOF,
// preparing at least MinRead bytes before every read.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if _, err := b.Prepare(MinRead); err != nil {
			return total, err
		}
		head := b.WriteHead()
		n, err := r.Read(head)
		if n < 0 || n > len(head) {
			return total, errors.New("staging: reader returned invalid count")
		}
		b.Commit(n)
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// WriteTo writes all unread bytes to w and consumes what was written.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	size := b.Size()
	if size == 0 {
		return 0, nil
	}
	n, err := w.Write(b.ReadHead())
	if n < 0 || n > size {
		return 0, errors.New("staging: writer returned invalid count")
	}
	b.Consume(n)
	if err == nil && n < size {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// Stats reports capacity, buffered size and activity counters.
func (b *Buffer) Stats() api.StagingStats {
	return api.StagingStats{
		Capacity:    len(b.data),
		Size:        b.Size(),
		Committed:   b.committed,
		Consumed:    b.consumed,
		Grows:       b.grows,
		Compactions: b.compactions,
	}
}

// Move returns a new buffer owning b's storage, ownership policy and unread
// bytes. b is left empty, without storage, on the same allocator.
func (b *Buffer) Move() *Buffer {
	moved := new(Buffer)
	*moved = *b
	*b = Buffer{own: owner{alloc: b.own.alloc}, log: b.log}
	return moved
}

// Close releases the storage through the ownership policy. Closing again is
// a no-op; a later Prepare allocates fresh storage from the allocator.
func (b *Buffer) Close() error {
	if b.data != nil || b.own.adopted() {
		b.own.release(b.data)
	}
	b.data = nil
	b.head, b.tail = 0, 0
	return nil
}

func allocError(op string, size int, err error) error {
	var e *api.Error
	if errors.As(err, &e) {
		return err
	}
	return api.NewError(api.ErrCodeOutOfMemory, op, "allocation failed").
		WithContext("size", size).
		Wrap(err)
}

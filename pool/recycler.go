// File: pool/recycler.go
// Package pool: size-class recycling allocator.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Recycler keeps released regions on per-class FIFO free lists and hands
// them out again before asking the upstream allocator. Classes are powers
// of two between MinClass and MaxClass; larger requests bypass the lists.

package pool

import (
	"math/bits"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-ring/api"
)

const (
	MinClass = 64
	MaxClass = 64 << 20

	defaultPerClass = 64
)

// Recycler is safe for concurrent use.
type Recycler struct {
	upstream api.Allocator
	perClass int

	mu      sync.Mutex
	classes map[int]*queue.Queue
	stats   api.PoolStats
}

var (
	_ api.Allocator       = (*Recycler)(nil)
	_ api.PoolStatsSource = (*Recycler)(nil)
)

// NewRecycler wraps upstream, retaining up to perClass free regions per
// size class. A nil upstream means Heap; perClass <= 0 selects the default.
func NewRecycler(upstream api.Allocator, perClass int) *Recycler {
	if upstream == nil {
		upstream = Heap
	}
	if perClass <= 0 {
		perClass = defaultPerClass
	}
	return &Recycler{
		upstream: upstream,
		perClass: perClass,
		classes:  make(map[int]*queue.Queue),
	}
}

// sizeClass returns the smallest class holding n bytes, or 0 when n is
// above MaxClass.
func sizeClass(n int) int {
	if n <= MinClass {
		return MinClass
	}
	if n > MaxClass {
		return 0
	}
	return 1 << bits.Len(uint(n-1))
}

// classOf returns the largest class not exceeding c, or 0.
func classOf(c int) int {
	if c < MinClass || c > MaxClass {
		return 0
	}
	return 1 << (bits.Len(uint(c)) - 1)
}

// Allocate returns a zeroed region of n bytes, reusing a released region of
// the same class when one is available.
func (r *Recycler) Allocate(n int) ([]byte, error) {
	if n < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "pool.Recycler", "negative size").
			WithContext("size", n)
	}
	class := sizeClass(n)
	if class == 0 {
		return r.allocateUpstream(n)
	}

	r.mu.Lock()
	if q := r.classes[class]; q != nil && q.Length() > 0 {
		b := q.Remove().([]byte)
		r.stats.TotalReuse++
		r.stats.InUse++
		r.stats.Retained--
		r.mu.Unlock()
		b = b[:n]
		clear(b)
		return b, nil
	}
	r.mu.Unlock()

	b, err := r.allocateUpstream(class)
	if err != nil {
		return nil, err
	}
	return b[:n], nil
}

func (r *Recycler) allocateUpstream(n int) ([]byte, error) {
	b, err := r.upstream.Allocate(n)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.stats.TotalAlloc++
	r.stats.InUse++
	r.mu.Unlock()
	return b, nil
}

// Deallocate puts b on its class free list, or hands it to the upstream
// allocator when the list is full or b fits no class.
func (r *Recycler) Deallocate(b []byte) {
	full := b[:cap(b)]
	class := classOf(cap(b))

	r.mu.Lock()
	r.stats.InUse--
	if class != 0 {
		q := r.classes[class]
		if q == nil {
			q = queue.New()
			r.classes[class] = q
		}
		if q.Length() < r.perClass {
			q.Add(full)
			r.stats.Retained++
			r.mu.Unlock()
			return
		}
	}
	r.stats.TotalFree++
	r.mu.Unlock()
	r.upstream.Deallocate(full)
}

// Purge returns every retained region to the upstream allocator.
func (r *Recycler) Purge() {
	r.mu.Lock()
	var drained [][]byte
	for class, q := range r.classes {
		for q.Length() > 0 {
			drained = append(drained, q.Remove().([]byte))
		}
		delete(r.classes, class)
	}
	r.stats.TotalFree += int64(len(drained))
	r.stats.Retained = 0
	r.mu.Unlock()

	for _, b := range drained {
		r.upstream.Deallocate(b)
	}
}

// Stats returns allocation counters.
func (r *Recycler) Stats() api.PoolStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

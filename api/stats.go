// Package api
// Author: momentics <momentics@gmail.com>
//
// Accounting records exposed by buffers and allocators for observability.

package api

// RingStats is a point-in-time view of a mirrored ring.
// Committed and Consumed are the raw tail and head counters; they wrap
// modulo 2^64 and restart from zero on Clear.
type RingStats struct {
	Capacity  int
	Size      int
	Committed uint64
	Consumed  uint64
}

// StagingStats is a point-in-time view of a staging buffer.
type StagingStats struct {
	Capacity    int
	Size        int
	Committed   uint64
	Consumed    uint64
	Grows       uint64
	Compactions uint64
}

// PoolStats aggregates allocation and reuse counters of an allocator.
type PoolStats struct {
	TotalAlloc int64
	TotalReuse int64
	TotalFree  int64
	InUse      int64
	Retained   int64
}

// RingStatsSource is implemented by mirrored rings.
type RingStatsSource interface {
	Stats() RingStats
}

// StagingStatsSource is implemented by staging buffers.
type StagingStatsSource interface {
	Stats() StagingStats
}

// PoolStatsSource is implemented by accounting allocators.
type PoolStatsSource interface {
	Stats() PoolStats
}

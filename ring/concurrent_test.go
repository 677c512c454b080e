//go:build linux

package ring

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSingleProducerSingleConsumer streams a counting pattern through the
// ring with one writer and one reader goroutine and no locks.
func TestSingleProducerSingleConsumer(t *testing.T) {
	rb := newTestRing(t, 1)
	const total = 4 << 20

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var next byte
		for sent := 0; sent < total; {
			head := rb.WriteHead()
			if len(head) == 0 {
				runtime.Gosched()
				continue
			}
			n := min(len(head), total-sent, 1021)
			for i := range head[:n] {
				head[i] = next
				next++
			}
			rb.Commit(n)
			sent += n
		}
	}()

	var want byte
	mismatches := 0
	for received := 0; received < total; {
		span := rb.ReadHead()
		if len(span) == 0 {
			runtime.Gosched()
			continue
		}
		for _, b := range span {
			if b != want {
				mismatches++
			}
			want++
		}
		rb.Consume(len(span))
		received += len(span)
	}
	wg.Wait()

	require.Zero(t, mismatches)
	assert.True(t, rb.Empty())
	stats := rb.Stats()
	assert.Equal(t, uint64(total), stats.Committed)
	assert.Equal(t, uint64(total), stats.Consumed)
}

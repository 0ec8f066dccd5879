package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockFreeQueueBounded(t *testing.T) {
	q := NewLockFreeQueue[int](3)
	require.Equal(t, 4, q.Cap())

	for i := 0; i < 4; i++ {
		require.True(t, q.Enqueue(i))
	}
	assert.False(t, q.Enqueue(99), "full queue must reject")
	assert.Equal(t, 4, q.Len())

	for i := 0; i < 4; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())

	// Slots are reusable after wrap-around.
	require.True(t, q.Enqueue(5))
	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestLockFreeQueueMPSCPreservesPerProducerOrder(t *testing.T) {
	q := NewLockFreeQueue[[2]int](64)
	const producers = 8
	const perProducer = 5000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.Enqueue([2]int{pid, i}) {
					runtime.Gosched()
				}
			}
		}(p)
	}

	next := make([]int, producers)
	var received int64
	deadline := time.Now().Add(10 * time.Second)
	for received < producers*perProducer {
		item, ok := q.Dequeue()
		if !ok {
			require.True(t, time.Now().Before(deadline), "timed out after %d items", received)
			runtime.Gosched()
			continue
		}
		require.Equal(t, next[item[0]], item[1], "producer %d out of order", item[0])
		next[item[0]]++
		atomic.AddInt64(&received, 1)
	}
	wg.Wait()
}

func TestLockFreeQueue_MPMC(t *testing.T) {
	q := NewLockFreeQueue[int](1024)
	producers := 10
	consumers := 10
	itemsPerProducer := 10000

	var wg sync.WaitGroup
	var sentSum, receivedSum, receivedCount int64
	totalItems := int64(producers * itemsPerProducer)

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				val := pid*itemsPerProducer + i + 1
				for !q.Enqueue(val) {
					runtime.Gosched()
				}
				atomic.AddInt64(&sentSum, int64(val))
			}
		}(p)
	}

	var consumerWg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			for atomic.LoadInt64(&receivedCount) < totalItems {
				if val, ok := q.Dequeue(); ok {
					atomic.AddInt64(&receivedSum, int64(val))
					atomic.AddInt64(&receivedCount, 1)
				} else {
					runtime.Gosched()
				}
			}
		}()
	}

	wg.Wait()
	done := make(chan struct{})
	go func() {
		consumerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		assert.Equal(t, sentSum, receivedSum)
	case <-time.After(10 * time.Second):
		t.Fatalf("timeout waiting for consumers, received %d/%d", atomic.LoadInt64(&receivedCount), totalItems)
	}
}

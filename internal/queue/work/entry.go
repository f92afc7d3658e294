// Lock-free ring queue feeding blocks from the reader to the worker pool
package work

import (
	"context"
	"fmt"
	"gzzip/internal/global"
	"runtime"
	"time"
)

// Creates a new queue. Capacity must be a power of two.
func New[T any](namespace []string, capacity uint64, idleBackoff time.Duration) (new *Queue[T], err error) {
	if capacity < 2 {
		err = fmt.Errorf("capacity must be greater than or equal to 2")
		return
	}
	if (capacity & (capacity - 1)) != 0 {
		err = fmt.Errorf("capacity must be a power of two")
		return
	}
	if idleBackoff <= 0 {
		idleBackoff = global.DefaultIdleBackoff
	}

	buf := make([]cell[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		buf[i].seq.Store(i)
	}

	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)

	new = &Queue[T]{
		Namespace:   append(ns, global.NSQueue),
		Size:        int(capacity),
		mask:        capacity - 1,
		buf:         buf,
		notEmpty:    make(chan struct{}, 1),
		drained:     make(chan struct{}, 1),
		idleBackoff: idleBackoff,
		Metrics:     &MetricStorage{},
	}
	return
}

// Smallest ring able to hold ceiling+1 items (producer checks depth before pushing)
func CapacityFor(ceiling int) (capacity uint64) {
	capacity = uint64(nextPowerOfTwo(ceiling + 2))
	if capacity < 2 {
		capacity = 2
	}
	return
}

// Current number of queued items
func (queue *Queue[T]) Depth() (depth int) {
	depth = int(queue.Metrics.Depth.Load())
	if depth < 0 {
		depth = 0
	}
	return
}

// Signalled after items leave the queue
func (queue *Queue[T]) Drained() (signal <-chan struct{}) {
	signal = queue.drained
	return
}

// Attempts to write an element (non success = queue full)
func (queue *Queue[T]) Push(value T) (success bool) {
	var pos, seq uint64
	var slot *cell[T]

	for {
		pos = queue.tail.Load()
		slot = &queue.buf[pos&queue.mask]
		seq = slot.seq.Load()

		if seq == pos {
			if queue.tail.CompareAndSwap(pos, pos+1) {
				break
			}
		} else if seq < pos {
			queue.Metrics.PushFull.Add(1)
			return
		} else {
			runtime.Gosched()
		}
	}

	slot.data = value
	slot.seq.Store(pos + 1)
	queue.Metrics.Depth.Add(1)
	queue.Metrics.PushSuccess.Add(1)

	notify(queue.notEmpty)
	success = true
	return
}

// Blocks until the value is accepted or ctx ends
func (queue *Queue[T]) PushBlocking(ctx context.Context, value T) (success bool) {
	for {
		if queue.Push(value) {
			success = true
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-queue.drained:
		case <-time.After(queue.idleBackoff):
		}
	}
}

// Attempts a single read without waiting. Returns false if empty.
func (queue *Queue[T]) TryPop() (out T, success bool) {
	for {
		pos := queue.head.Load()
		slot := &queue.buf[pos&queue.mask]
		seq := slot.seq.Load()
		readySeq := pos + 1

		if seq == readySeq {
			if queue.head.CompareAndSwap(pos, pos+1) {
				out = slot.data
				var zero T
				slot.data = zero
				slot.seq.Store(pos + queue.mask + 1)

				queue.Metrics.Depth.Add(-1)
				queue.Metrics.PopSuccess.Add(1)

				notify(queue.drained)
				if queue.Depth() > 0 {
					// Pass the wakeup on for other waiting consumers
					notify(queue.notEmpty)
				}
				success = true
				return
			}
			queue.Metrics.PopCASRetries.Add(1)
			continue
		}

		if seq < readySeq {
			queue.Metrics.PopEmpty.Add(1)
			return
		}

		// Another consumer is ahead on this slot
		runtime.Gosched()
	}
}

// Waits for an element. Returns false once ctx is done or stop is closed,
// even with elements still queued.
func (queue *Queue[T]) Pop(ctx context.Context, stop <-chan struct{}) (out T, success bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-stop:
			return
		default:
		}

		out, success = queue.TryPop()
		if success {
			return
		}

		timer := time.NewTimer(queue.idleBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-queue.notEmpty:
			queue.Metrics.PopWaitSignals.Add(1)
		case <-timer.C:
		}
		timer.Stop()
	}
}

// Non-blocking single-slot signal
func notify(signal chan struct{}) {
	select {
	case signal <- struct{}{}:
	default:
	}
}

func nextPowerOfTwo(start int) (next int) {
	if start <= 1 {
		next = 1
		return
	}
	start--
	start |= start >> 1
	start |= start >> 2
	start |= start >> 4
	start |= start >> 8
	start |= start >> 16
	start |= start >> 32
	next = start + 1
	return
}

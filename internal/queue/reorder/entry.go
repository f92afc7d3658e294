// Out-of-order completion buffer drained in sequence order
package reorder

import (
	"context"
	"errors"
	"fmt"
	"gzzip/internal/global"
	"gzzip/internal/metrics"
	"time"
)

var ErrDuplicate = errors.New("sequence already held")

// Create new reorder buffer
func New[T any](namespace []string) (new *Buffer[T]) {
	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)

	new = &Buffer[T]{
		Namespace: append(ns, global.NSReorder),
		Blocks:    make(map[uint64]T),
		arrived:   make(chan struct{}, 1),
		Metrics:   &MetricStorage{},
	}
	return
}

// Deposit a finished block. A sequence may only be held once.
func (buffer *Buffer[T]) Insert(seq uint64, value T) (err error) {
	buffer.Mu.Lock()
	if _, exists := buffer.Blocks[seq]; exists {
		buffer.Mu.Unlock()
		buffer.Metrics.Duplicates.Add(1)
		err = fmt.Errorf("block %d: %w", seq, ErrDuplicate)
		return
	}
	buffer.Blocks[seq] = value
	held := uint64(len(buffer.Blocks))
	buffer.Mu.Unlock()

	buffer.Metrics.Inserted.Add(1)
	for {
		peak := buffer.Metrics.PeakHeld.Load()
		if held <= peak || buffer.Metrics.PeakHeld.CompareAndSwap(peak, held) {
			break
		}
	}

	select {
	case buffer.arrived <- struct{}{}:
	default:
	}
	return
}

// Removes the block for seq if present
func (buffer *Buffer[T]) TryTake(seq uint64) (value T, ok bool) {
	buffer.Mu.Lock()
	defer buffer.Mu.Unlock()

	value, ok = buffer.Blocks[seq]
	if ok {
		delete(buffer.Blocks, seq)
		buffer.Metrics.Taken.Add(1)
	}
	return
}

// Waits until the block for seq is present and removes it. Returns false once ctx is done.
func (buffer *Buffer[T]) Take(ctx context.Context, seq uint64) (value T, ok bool) {
	for {
		value, ok = buffer.TryTake(seq)
		if ok {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-buffer.arrived:
			buffer.Metrics.WaitWakes.Add(1)
		}
	}
}

// Blocks currently held
func (buffer *Buffer[T]) Len() (count int) {
	buffer.Mu.Lock()
	defer buffer.Mu.Unlock()
	count = len(buffer.Blocks)
	return
}

// Snapshot of buffer counters for the run registry
func (buffer *Buffer[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	now := time.Now()
	for _, entry := range []struct {
		name, desc string
		mType      metrics.MetricType
		raw        uint64
	}{
		{"held", "blocks waiting for the writer", metrics.Gauge, uint64(buffer.Len())},
		{"peak_held", "most blocks held at once", metrics.Gauge, buffer.Metrics.PeakHeld.Load()},
		{"inserted", "blocks deposited by workers", metrics.Counter, buffer.Metrics.Inserted.Load()},
		{"duplicates", "rejected duplicate sequences", metrics.Counter, buffer.Metrics.Duplicates.Load()},
		{"taken", "blocks removed by the writer", metrics.Counter, buffer.Metrics.Taken.Load()},
		{"wait_wakes", "writer wakeups while waiting", metrics.Counter, buffer.Metrics.WaitWakes.Load()},
	} {
		collection = append(collection, metrics.Metric{
			Name:        entry.name,
			Description: entry.desc,
			Namespace:   buffer.Namespace,
			Type:        entry.mType,
			Timestamp:   now,
			Value: metrics.MetricValue{
				Raw:      entry.raw,
				Unit:     "blocks",
				Interval: interval,
			},
		})
	}
	return
}

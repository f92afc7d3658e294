package work

import (
	"gzzip/internal/metrics"
	"time"
)

// Snapshot of queue counters for the run registry
func (queue *Queue[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	now := time.Now()

	add := func(name, desc string, mType metrics.MetricType, raw any) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: desc,
			Namespace:   queue.Namespace,
			Type:        mType,
			Timestamp:   now,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     "blocks",
				Interval: interval,
			},
		})
	}

	add("depth", "blocks waiting for a worker", metrics.Gauge, uint64(queue.Depth()))
	add("push_success", "blocks accepted from the reader", metrics.Counter, queue.Metrics.PushSuccess.Load())
	add("push_full", "pushes rejected on a full ring", metrics.Counter, queue.Metrics.PushFull.Load())
	add("pop_success", "blocks handed to workers", metrics.Counter, queue.Metrics.PopSuccess.Load())
	add("pop_cas_retries", "lost dequeue races", metrics.Counter, queue.Metrics.PopCASRetries.Load())
	add("pop_empty", "dequeue attempts on an empty queue", metrics.Counter, queue.Metrics.PopEmpty.Load())
	add("pop_wait_signals", "empty waits woken by a push", metrics.Counter, queue.Metrics.PopWaitSignals.Load())
	return
}

package reorder

import (
	"sync"
	"sync/atomic"
)

// Holds finished blocks until the writer reaches their sequence
type Buffer[T any] struct {
	Namespace []string
	Mu        sync.Mutex
	Blocks    map[uint64]T  // keyed by sequence number
	arrived   chan struct{} // wakes the waiting writer after an insert
	Metrics   *MetricStorage
}

type MetricStorage struct {
	Inserted   atomic.Uint64 // blocks deposited by workers
	Duplicates atomic.Uint64 // rejected inserts for a held sequence
	Taken      atomic.Uint64 // blocks removed by the writer
	PeakHeld   atomic.Uint64 // most blocks held at once
	WaitWakes  atomic.Uint64 // writer wakeups while waiting for a gap
}

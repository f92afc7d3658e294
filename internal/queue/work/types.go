package work

import (
	"sync/atomic"
	"time"
)

type cell[T any] struct {
	seq  atomic.Uint64
	data T
}

// Bounded multi-producer multi-consumer ring of pending blocks
type Queue[T any] struct {
	Namespace   []string
	Size        int
	mask        uint64
	buf         []cell[T]
	head        atomic.Uint64
	tail        atomic.Uint64
	notEmpty    chan struct{} // wakes one waiting consumer after a push
	drained     chan struct{} // wakes a waiting producer after a pop
	idleBackoff time.Duration // upper bound on a single empty wait
	Metrics     *MetricStorage
}

type MetricStorage struct {
	Depth atomic.Int64 // Current items in queue

	PushSuccess atomic.Uint64 // items accepted
	PushFull    atomic.Uint64 // push attempts rejected on a full ring

	PopSuccess     atomic.Uint64 // items handed to a consumer
	PopCASRetries  atomic.Uint64 // lost races for the same slot
	PopEmpty       atomic.Uint64 // pop attempts that found nothing
	PopWaitSignals atomic.Uint64 // empty waits ended by a push signal
}

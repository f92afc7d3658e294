package worker

import (
	"gzzip/internal/codec"
	"gzzip/internal/pipeline/shared"
	"sync"
	"sync/atomic"
)

// Explicit worker handle. Stop is advisory and only honoured between blocks.
type Instance struct {
	ID        int
	Namespace []string
	state     *shared.State
	codec     codec.Codec

	stopRequested atomic.Bool
	stopCh        chan struct{}
	stopOnce      sync.Once
	finished      atomic.Bool
	done          chan struct{}

	Metrics MetricStorage
}

type MetricStorage struct {
	Blocks   atomic.Uint64 // blocks transformed
	BytesIn  atomic.Uint64
	BytesOut atomic.Uint64
	SumNs    atomic.Uint64 // sum of transform durations
	MaxNs    atomic.Uint64 // longest single transform
}

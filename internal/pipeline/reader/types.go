package reader

import (
	"gzzip/internal/monitor"
	"gzzip/internal/pipeline/shared"
	"io"
	"sync/atomic"
	"time"
)

type Instance struct {
	Namespace     []string
	source        io.Reader
	state         *shared.State
	monitor       monitor.Monitor
	chunkSize     int
	memoryFloorMB uint64
	queueCeiling  int
	backoff       time.Duration
	running       atomic.Bool
	Metrics       MetricStorage
}

type MetricStorage struct {
	Blocks      atomic.Uint64 // blocks pushed
	Bytes       atomic.Uint64 // payload bytes pushed
	MemoryWaits atomic.Uint64 // gate checks blocked on free memory
	DepthWaits  atomic.Uint64 // gate checks blocked on queue depth
	BlockedNs   atomic.Uint64 // time spent in backpressure
}

// Reader tunables
type Config struct {
	ChunkSize     int
	MemoryFloorMB uint64
	QueueCeiling  int
	Backoff       time.Duration
}

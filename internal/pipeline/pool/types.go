package pool

import (
	"gzzip/internal/codec"
	"gzzip/internal/metrics"
	"gzzip/internal/monitor"
	"gzzip/internal/pipeline/shared"
	"gzzip/internal/pipeline/worker"
	"sync"
	"sync/atomic"
	"time"
)

type InstanceManager struct {
	Namespace    []string
	Mu           sync.Mutex               // For scaling operations
	nextID       int                      // Next free worker ID
	Instances    map[int]*worker.Instance // Live workers
	retiring     map[int]*worker.Instance // Asked to stop, may still hold a block
	MinInstCount int
	MaxInstCount int

	blocksPerWorker int
	cpuCeiling      float64
	period          time.Duration

	state    *shared.State
	codec    codec.Codec
	monitor  monitor.Monitor
	registry *metrics.Registry

	Metrics MetricStorage
}

type MetricStorage struct {
	Spawned  atomic.Uint64 // workers started
	Retired  atomic.Uint64 // workers asked to stop by scale-down
	PeakLive atomic.Uint64
	Ticks    atomic.Uint64 // scaling evaluations

	// Folded in from workers once they exit
	Blocks      atomic.Uint64
	BytesIn     atomic.Uint64
	BytesOut    atomic.Uint64
	TransformNs atomic.Uint64
	MaxNs       atomic.Uint64
}

// Pool tunables
type Config struct {
	MaxWorkers      int
	BlocksPerWorker int
	CPUCeilingPct   float64
	ScalePeriod     time.Duration
}

// Inputs to a single scaling evaluation
type Snapshot struct {
	Live            int
	MaxLive         int
	Depth           int
	BlocksPerWorker int
	CPULoad         float64
	CPUCeiling      float64
	Remaining       uint64 // blocks not yet dequeued
	Cancelled       bool
}

type Decision int

const (
	Hold Decision = iota
	ScaleUp
	ScaleDown
)

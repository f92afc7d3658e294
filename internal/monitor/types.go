package monitor

import (
	"sync"
	"sync/atomic"
	"time"
)

// Host resource view consumed by the reader and pool manager
type Monitor interface {
	CPULoadPercent() float64
	AvailableMemoryMB() uint64
}

// Samples live host state in the background
type System struct {
	Namespace []string
	interval  time.Duration
	cpuBits   atomic.Uint64 // float64 bits of last CPU sample
	freeMB    atomic.Uint64
	wg        sync.WaitGroup
	running   atomic.Bool

	// Overridable sources
	cpuSource func(interval time.Duration) (float64, error)
	memSource func() uint64
}

// Fixed readings
type Static struct {
	CPU    atomic.Uint64 // float64 bits
	FreeMB atomic.Uint64
}

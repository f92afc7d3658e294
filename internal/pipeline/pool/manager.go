// Maintains the worker pool and resizes it from queue depth and host load
package pool

import (
	"gzzip/internal/codec"
	"gzzip/internal/global"
	"gzzip/internal/metrics"
	"gzzip/internal/monitor"
	"gzzip/internal/pipeline/shared"
	"gzzip/internal/pipeline/worker"
	"runtime"
)

// Creates new instance manager
func NewInstanceManager(namespace []string, state *shared.State, blockCodec codec.Codec, mon monitor.Monitor, registry *metrics.Registry, conf Config) (new *InstanceManager) {
	maxInsts := runtime.NumCPU()
	if conf.MaxWorkers > 0 && conf.MaxWorkers < maxInsts {
		maxInsts = conf.MaxWorkers
	}
	if maxInsts < 1 {
		maxInsts = 1
	}
	if conf.BlocksPerWorker <= 0 {
		conf.BlocksPerWorker = global.DefaultBlocksPerWorker
	}
	if conf.CPUCeilingPct <= 0 {
		conf.CPUCeilingPct = global.DefaultCPUCeilingPct
	}
	if conf.ScalePeriod <= 0 {
		conf.ScalePeriod = global.DefaultScalePeriod
	}
	if registry == nil {
		registry = metrics.New()
	}

	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)

	new = &InstanceManager{
		Namespace:       append(ns, global.NSPool),
		Instances:       make(map[int]*worker.Instance),
		retiring:        make(map[int]*worker.Instance),
		MinInstCount:    1,
		MaxInstCount:    maxInsts,
		blocksPerWorker: conf.BlocksPerWorker,
		cpuCeiling:      conf.CPUCeilingPct,
		period:          conf.ScalePeriod,
		state:           state,
		codec:           blockCodec,
		monitor:         mon,
		registry:        registry,
	}
	return
}

// Live worker count
func (manager *InstanceManager) Live() (count int) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()
	count = len(manager.Instances)
	return
}

package pool

import (
	"context"
	"fmt"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"gzzip/internal/metrics"
	"gzzip/internal/pipeline/worker"
	"runtime/debug"
	"sort"
	"time"
)

// Runs the pool until every block has been dequeued and all workers finished,
// or until the run is cancelled.
func (manager *InstanceManager) Run(ctx context.Context) (err error) {
	ctx = logctx.OverwriteCtxTag(ctx, manager.Namespace)

	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in pool manager: %v\n%s", fatalError, stack)
			err = global.NewStageError(global.NSPool, global.ErrUnknown, fmt.Errorf("panic: %v", fatalError))
			manager.state.Fail(err)
		}
	}()

	if manager.state.Progress.Total == 0 {
		return
	}

	manager.AddInstance()

	ticker := time.NewTicker(manager.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "run cancelled, stopping workers\n")
			manager.StopAll()
			return
		case <-manager.state.Progress.AllDequeued():
			// No more spawning, wait out in-flight blocks
			manager.StopAll()
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "all blocks dequeued, workers joined\n")
			return
		case <-ticker.C:
			manager.evaluate(ctx)
		}
	}
}

// One scaling period: record load, reap finished retirees, apply decision
func (manager *InstanceManager) evaluate(ctx context.Context) {
	manager.Metrics.Ticks.Add(1)
	manager.reap()

	progress := manager.state.Progress
	dequeued := progress.Transformed.Load()
	var remaining uint64
	if dequeued < progress.Total {
		remaining = progress.Total - dequeued
	}

	snap := Snapshot{
		Live:            manager.Live(),
		MaxLive:         manager.MaxInstCount,
		Depth:           manager.state.Queue.Depth(),
		BlocksPerWorker: manager.blocksPerWorker,
		CPULoad:         manager.monitor.CPULoadPercent(),
		CPUCeiling:      manager.cpuCeiling,
		Remaining:       remaining,
		Cancelled:       manager.state.Cancelled(),
	}
	manager.record(snap)

	decision := Decide(snap)
	switch decision {
	case ScaleUp:
		id := manager.AddInstance()
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"scaled up to %d workers (added %d, depth %d, cpu %.1f%%)\n", snap.Live+1, id, snap.Depth, snap.CPULoad)
	case ScaleDown:
		id, ok := manager.RemoveNewest()
		if ok {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"scaled down to %d workers (retired %d, depth %d)\n", snap.Live-1, id, snap.Depth)
		}
	}
}

// Per-period load samples for the run summary
func (manager *InstanceManager) record(snap Snapshot) {
	now := time.Now()
	slice := manager.registry.NewTimeSlice(now, manager.period)
	gauge := func(name, desc, unit string, raw any) (metric metrics.Metric) {
		metric = metrics.Metric{
			Name:        name,
			Description: desc,
			Namespace:   manager.Namespace,
			Type:        metrics.Gauge,
			Timestamp:   now,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: manager.period,
			},
		}
		return
	}
	manager.registry.Add(slice, []metrics.Metric{
		gauge("queue_depth", "blocks waiting for a worker", "blocks", uint64(snap.Depth)),
		gauge("live_workers", "workers in the pool", "workers", uint64(snap.Live)),
		gauge("cpu_load", "host cpu busy percentage", "percent", snap.CPULoad),
	})
}

// Create additional worker
func (manager *InstanceManager) AddInstance() (id int) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	id = manager.nextID
	manager.nextID++

	instance := worker.New(manager.Namespace, id, manager.state, manager.codec)
	manager.Instances[id] = instance

	live := uint64(len(manager.Instances))
	manager.Metrics.Spawned.Add(1)
	if live > manager.Metrics.PeakLive.Load() {
		manager.Metrics.PeakLive.Store(live)
	}

	// Workers follow run cancellation, not the manager's own lifetime
	go instance.Run(manager.state.Context())
	return
}

// Ask the newest worker to stop. A single remaining worker is never removed.
func (manager *InstanceManager) RemoveNewest() (id int, removed bool) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	if len(manager.Instances) <= manager.MinInstCount {
		return
	}

	id = -1
	for candidate := range manager.Instances {
		if candidate > id {
			id = candidate
		}
	}

	instance := manager.Instances[id]
	delete(manager.Instances, id)
	manager.retiring[id] = instance
	instance.RequestStop()

	manager.Metrics.Retired.Add(1)
	removed = true
	return
}

// Drop retirees whose loop has exited
func (manager *InstanceManager) reap() {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	for id, instance := range manager.retiring {
		if instance.Finished() {
			manager.fold(instance)
			delete(manager.retiring, id)
		}
	}
}

// Adds an exited worker's counters to the pool totals
func (manager *InstanceManager) fold(instance *worker.Instance) {
	manager.Metrics.Blocks.Add(instance.Metrics.Blocks.Load())
	manager.Metrics.BytesIn.Add(instance.Metrics.BytesIn.Load())
	manager.Metrics.BytesOut.Add(instance.Metrics.BytesOut.Load())
	manager.Metrics.TransformNs.Add(instance.Metrics.SumNs.Load())

	workerMax := instance.Metrics.MaxNs.Load()
	if workerMax > manager.Metrics.MaxNs.Load() {
		manager.Metrics.MaxNs.Store(workerMax)
	}
}

// Stop every worker, including retirees, and wait for all of them
func (manager *InstanceManager) StopAll() {
	manager.Mu.Lock()
	all := make([]*worker.Instance, 0, len(manager.Instances)+len(manager.retiring))
	for id, instance := range manager.Instances {
		all = append(all, instance)
		delete(manager.Instances, id)
	}
	for id, instance := range manager.retiring {
		all = append(all, instance)
		delete(manager.retiring, id)
	}
	manager.Mu.Unlock()

	for _, instance := range all {
		instance.RequestStop()
	}
	for _, instance := range all {
		<-instance.Done()
		manager.fold(instance)
	}
}

// Worker IDs currently live, ascending
func (manager *InstanceManager) LiveIDs() (ids []int) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()
	for id := range manager.Instances {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return
}

// Snapshot of pool and worker counters
func (manager *InstanceManager) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()
	for _, entry := range []struct {
		name, desc, unit string
		raw              uint64
	}{
		{"spawned_workers", "workers started during the run", "workers", manager.Metrics.Spawned.Load()},
		{"retired_workers", "workers removed by scale-down", "workers", manager.Metrics.Retired.Load()},
		{"peak_workers", "most workers live at once", "workers", manager.Metrics.PeakLive.Load()},
		{"scale_ticks", "scaling evaluations", "ticks", manager.Metrics.Ticks.Load()},
		{"transformed_blocks", "blocks transformed by all workers", "blocks", manager.Metrics.Blocks.Load()},
		{"transform_bytes_in", "payload bytes handed to the codec", "bytes", manager.Metrics.BytesIn.Load()},
		{"transform_bytes_out", "payload bytes returned by the codec", "bytes", manager.Metrics.BytesOut.Load()},
		{"transform_ns", "total codec time across workers", "nanoseconds", manager.Metrics.TransformNs.Load()},
		{"transform_max_ns", "longest single block transform", "nanoseconds", manager.Metrics.MaxNs.Load()},
	} {
		collection = append(collection, metrics.Metric{
			Name:        entry.name,
			Description: entry.desc,
			Namespace:   manager.Namespace,
			Value: metrics.MetricValue{
				Raw:      entry.raw,
				Unit:     entry.unit,
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		})
	}
	return
}

// Host CPU and memory sampling
package monitor

import (
	"context"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"math"
	"time"

	"github.com/pbnjay/memory"
	"github.com/shirou/gopsutil/v4/cpu"
)

// Creates new system monitor. Sampling begins with Start.
func NewSystem(namespace []string, interval time.Duration) (new *System) {
	if interval <= 0 {
		interval = global.DefaultMonitorInterval
	}
	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)

	new = &System{
		Namespace: append(ns, global.NSMonitor),
		interval:  interval,
		cpuSource: sampleCPU,
		memSource: sampleMemory,
	}
	new.freeMB.Store(new.memSource())
	return
}

// Aggregate CPU busy percentage over interval
func sampleCPU(interval time.Duration) (load float64, err error) {
	percents, err := cpu.Percent(interval, false)
	if err != nil {
		return
	}
	if len(percents) > 0 {
		load = percents[0]
	}
	return
}

func sampleMemory() (freeMB uint64) {
	freeMB = memory.FreeMemory() / (1024 * 1024)
	return
}

// Starts background sampler, stops when ctx is done
func (mon *System) Start(ctx context.Context) {
	if !mon.running.CompareAndSwap(false, true) {
		return
	}
	ctx = logctx.OverwriteCtxTag(ctx, mon.Namespace)

	mon.wg.Add(1)
	go func() {
		defer mon.wg.Done()
		defer mon.running.Store(false)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			// CPU sampler blocks for the full interval
			load, err := mon.cpuSource(mon.interval)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityDebug, global.WarnLog,
					"cpu sample failed: %v\n", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(mon.interval):
				}
			} else {
				mon.cpuBits.Store(math.Float64bits(load))
			}
			mon.freeMB.Store(mon.memSource())
		}
	}()
}

// Waits for sampler exit
func (mon *System) Wait() {
	mon.wg.Wait()
}

func (mon *System) CPULoadPercent() (load float64) {
	load = math.Float64frombits(mon.cpuBits.Load())
	return
}

// Memory is re-read on each call so gate checks see current state
func (mon *System) AvailableMemoryMB() (freeMB uint64) {
	freeMB = mon.memSource()
	mon.freeMB.Store(freeMB)
	return
}

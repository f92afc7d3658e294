// Writes transformed blocks to the destination in sequence order
package writer

import (
	"context"
	"fmt"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"gzzip/internal/metrics"
	"gzzip/internal/pipeline/shared"
	"gzzip/pkg/archive"
	"io"
	"runtime/debug"
	"time"
)

// Creates new writer. Compress destinations must already hold the archive header.
func New(namespace []string, destination io.Writer, state *shared.State) (new *Instance) {
	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)

	new = &Instance{
		Namespace:   append(ns, global.NSWriter),
		destination: destination,
		state:       state,
	}
	return
}

// Drains blocks 0..total-1 strictly in order. A second concurrent call returns immediately.
func (instance *Instance) Run(ctx context.Context) (err error) {
	if !instance.running.CompareAndSwap(false, true) {
		logctx.LogEvent(ctx, global.VerbosityDebug, global.WarnLog, "writer already running, ignoring second start\n")
		return
	}
	defer instance.running.Store(false)

	ctx = logctx.OverwriteCtxTag(ctx, instance.Namespace)

	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in writer: %v\n%s", fatalError, stack)
			err = global.NewStageError(global.NSWriter, global.ErrUnknown, fmt.Errorf("panic: %v", fatalError))
		}
		if err != nil {
			instance.state.Fail(err)
		}
	}()

	total := instance.state.Progress.Total
	for next := instance.state.Progress.Written.Load(); next < total; next++ {
		waitStart := time.Now()
		block, ok := instance.state.Reorder.Take(ctx, next)
		instance.Metrics.WaitNs.Add(uint64(time.Since(waitStart)))
		if !ok {
			return
		}

		// No side effects once cancelled
		if ctx.Err() != nil {
			return
		}

		err = instance.write(block)
		if err != nil {
			return
		}
		instance.state.Progress.Written.Add(1)

		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"wrote block %d (%d bytes)\n", block.Sequence, len(block.Payload))
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "writer finished, %d blocks\n", total)
	return
}

// Writes one block, length prefixed in compress mode
func (instance *Instance) write(block shared.Block) (err error) {
	var out []byte
	if instance.state.Mode == global.ModeCompress {
		var prefix []byte
		prefix, err = archive.ConstructBlockLength(len(block.Payload))
		if err != nil {
			err = global.NewStageError(global.NSWriter, global.ErrFormat, fmt.Errorf("block %d: %w", block.Sequence, err))
			return
		}
		out = make([]byte, 0, len(prefix)+len(block.Payload))
		out = append(out, prefix...)
		out = append(out, block.Payload...)
	} else {
		out = block.Payload
	}

	n, err := instance.destination.Write(out)
	instance.Metrics.Bytes.Add(uint64(n))
	if err != nil {
		err = global.NewStageError(global.NSWriter, global.ErrIO, fmt.Errorf("block %d: %w", block.Sequence, err))
		return
	}
	if n != len(out) {
		err = global.NewStageError(global.NSWriter, global.ErrIO,
			fmt.Errorf("block %d: short write (%d of %d bytes)", block.Sequence, n, len(out)))
		return
	}
	instance.Metrics.Blocks.Add(1)
	return
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()
	for _, entry := range []struct {
		name, desc, unit string
		raw              uint64
	}{
		{"blocks", "blocks written", "blocks", instance.Metrics.Blocks.Load()},
		{"bytes", "bytes written", "bytes", instance.Metrics.Bytes.Load()},
		{"wait_ns", "time waiting for the next block in sequence", "ns", instance.Metrics.WaitNs.Load()},
	} {
		collection = append(collection, metrics.Metric{
			Name:        entry.name,
			Description: entry.desc,
			Namespace:   instance.Namespace,
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

// Sequentially cuts the source into blocks and feeds the work queue
package reader

import (
	"context"
	"errors"
	"fmt"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"gzzip/internal/metrics"
	"gzzip/internal/monitor"
	"gzzip/internal/pipeline/shared"
	"gzzip/pkg/archive"
	"io"
	"runtime/debug"
	"time"
)

// Creates new reader. Decompress sources must be positioned after the archive header.
func New(namespace []string, source io.Reader, state *shared.State, mon monitor.Monitor, conf Config) (new *Instance) {
	if conf.ChunkSize <= 0 {
		conf.ChunkSize = global.DefaultChunkSize
	}
	if conf.QueueCeiling <= 0 {
		conf.QueueCeiling = global.DefaultQueueCeiling
	}
	if conf.Backoff <= 0 {
		conf.Backoff = global.DefaultIdleBackoff
	}

	ns := make([]string, 0, len(namespace)+1)
	ns = append(ns, namespace...)

	new = &Instance{
		Namespace:     append(ns, global.NSReader),
		source:        source,
		state:         state,
		monitor:       mon,
		chunkSize:     conf.ChunkSize,
		memoryFloorMB: conf.MemoryFloorMB,
		queueCeiling:  conf.QueueCeiling,
		backoff:       conf.Backoff,
	}
	return
}

// Reads every block of the run. A second concurrent call returns immediately.
// Faults cancel the run and are also returned.
func (instance *Instance) Run(ctx context.Context) (err error) {
	if !instance.running.CompareAndSwap(false, true) {
		logctx.LogEvent(ctx, global.VerbosityDebug, global.WarnLog, "reader already running, ignoring second start\n")
		return
	}
	defer instance.running.Store(false)

	ctx = logctx.OverwriteCtxTag(ctx, instance.Namespace)

	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in reader: %v\n%s", fatalError, stack)
			err = global.NewStageError(global.NSReader, global.ErrUnknown, fmt.Errorf("panic: %v", fatalError))
		}
		if err != nil {
			instance.state.Fail(err)
		}
	}()

	total := instance.state.Progress.Total
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"reading %d blocks (%s)\n", total, instance.state.Mode)

	for seq := uint64(0); seq < total; seq++ {
		if !instance.waitForCapacity(ctx) {
			return
		}

		var payload []byte
		payload, err = instance.next(seq, total)
		if err != nil {
			return
		}

		block := shared.Block{Sequence: seq, Payload: payload}
		if !instance.state.Queue.PushBlocking(ctx, block) {
			return
		}
		instance.state.Progress.Read.Add(1)
		instance.Metrics.Blocks.Add(1)
		instance.Metrics.Bytes.Add(uint64(len(payload)))

		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"queued block %d (%d bytes)\n", seq, len(payload))
	}

	if instance.state.Mode == global.ModeDecompress {
		err = instance.checkTrailing()
		if err != nil {
			return
		}
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "reader finished\n")
	return
}

// Cuts the next block from the source
func (instance *Instance) next(seq, total uint64) (payload []byte, err error) {
	if instance.state.Mode == global.ModeDecompress {
		payload, err = archive.ReadBlock(instance.source)
		if err == io.EOF {
			err = fmt.Errorf("%w: archive ended after %d of %d blocks", global.ErrCorruptData, seq, total)
		}
		if err != nil {
			err = global.NewStageError(global.NSReader, global.KindOf(err), err)
		}
		return
	}

	buf := make([]byte, instance.chunkSize)
	n, err := io.ReadFull(instance.source, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF) && seq == total-1:
		// Last chunk is truncated
		err = nil
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		err = global.NewStageError(global.NSReader, global.ErrIO,
			fmt.Errorf("source ended early at block %d of %d", seq, total))
		return
	default:
		err = global.NewStageError(global.NSReader, global.ErrIO, fmt.Errorf("failed reading block %d: %w", seq, err))
		return
	}
	payload = buf[:n]
	return
}

// Archives must end exactly after the last block
func (instance *Instance) checkTrailing() (err error) {
	probe := make([]byte, 1)
	n, readErr := io.ReadFull(instance.source, probe)
	if n > 0 {
		err = global.NewStageError(global.NSReader, global.ErrCorruptData,
			fmt.Errorf("unexpected data after final block"))
		return
	}
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		err = global.NewStageError(global.NSReader, global.ErrIO, fmt.Errorf("failed reading archive end: %w", readErr))
	}
	return
}

// Blocks while free memory is below the floor or the queue is over its ceiling.
// Returns false if the run was cancelled while waiting.
func (instance *Instance) waitForCapacity(ctx context.Context) (proceed bool) {
	var waitStart time.Time
	defer func() {
		if !waitStart.IsZero() {
			instance.Metrics.BlockedNs.Add(uint64(time.Since(waitStart)))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		freeMB := instance.monitor.AvailableMemoryMB()
		depth := instance.state.Queue.Depth()

		lowMemory := freeMB < instance.memoryFloorMB
		deepQueue := depth > instance.queueCeiling
		if !lowMemory && !deepQueue {
			proceed = true
			return
		}

		if waitStart.IsZero() {
			waitStart = time.Now()
		}
		if lowMemory {
			instance.Metrics.MemoryWaits.Add(1)
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"waiting for memory: %d MB free, floor %d MB\n", freeMB, instance.memoryFloorMB)
		} else {
			instance.Metrics.DepthWaits.Add(1)
		}

		select {
		case <-ctx.Done():
			return
		case <-instance.state.Queue.Drained():
		case <-time.After(instance.backoff):
		}
	}
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()
	for _, entry := range []struct {
		name, desc, unit string
		raw              uint64
	}{
		{"blocks", "blocks queued", "blocks", instance.Metrics.Blocks.Load()},
		{"bytes", "payload bytes queued", "bytes", instance.Metrics.Bytes.Load()},
		{"memory_waits", "backpressure checks blocked on free memory", "count", instance.Metrics.MemoryWaits.Load()},
		{"depth_waits", "backpressure checks blocked on queue depth", "count", instance.Metrics.DepthWaits.Load()},
		{"blocked_ns", "time spent in backpressure", "ns", instance.Metrics.BlockedNs.Load()},
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

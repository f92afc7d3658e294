// Transforms queued blocks and deposits results for the writer
package worker

import (
	"context"
	"fmt"
	"gzzip/internal/codec"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"gzzip/internal/pipeline/shared"
	"runtime/debug"
	"strconv"
	"time"
)

// Creates new worker. Direction is fixed by the state mode.
func New(namespace []string, id int, state *shared.State, blockCodec codec.Codec) (new *Instance) {
	ns := make([]string, 0, len(namespace)+2)
	ns = append(ns, namespace...)

	new = &Instance{
		ID:        id,
		Namespace: append(ns, global.NSWorker, strconv.Itoa(id)),
		state:     state,
		codec:     blockCodec,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	return
}

// Ask the worker to exit after its current block
func (instance *Instance) RequestStop() {
	instance.stopOnce.Do(func() {
		instance.stopRequested.Store(true)
		close(instance.stopCh)
	})
}

// Closed after the loop has exited
func (instance *Instance) Done() (done <-chan struct{}) {
	done = instance.done
	return
}

// True only after the loop has exited
func (instance *Instance) Finished() (finished bool) {
	finished = instance.finished.Load()
	return
}

func (instance *Instance) Run(ctx context.Context) (err error) {
	ctx = logctx.OverwriteCtxTag(ctx, instance.Namespace)
	defer func() {
		instance.finished.Store(true)
		close(instance.done)
	}()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "worker started\n")
	defer logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "worker stopped\n")

	for {
		if instance.stopRequested.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		block, ok := instance.state.Queue.Pop(ctx, instance.stopCh)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			// Run already failed, block is dropped
			return
		}
		instance.state.Progress.MarkTransformed()

		err = instance.process(ctx, block)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"block %d failed: %v\n", block.Sequence, err)
			instance.state.Fail(err)
			return
		}
	}
}

// Transforms one block, converting panics to stage errors
func (instance *Instance) process(ctx context.Context, block shared.Block) (err error) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in worker thread: %v\n%s", fatalError, stack)
			err = global.NewStageError(global.NSWorker, global.ErrUnknown,
				fmt.Errorf("block %d: panic: %v", block.Sequence, fatalError))
		}
	}()

	startTime := time.Now()

	var out []byte
	if instance.state.Mode == global.ModeCompress {
		out, err = instance.codec.Compress(block.Payload)
	} else {
		out, err = instance.codec.Decompress(block.Payload)
	}
	if err != nil {
		err = global.NewStageError(global.NSWorker, global.KindOf(err),
			fmt.Errorf("block %d (%s): %w", block.Sequence, instance.codec.Name(), err))
		return
	}

	durNs := uint64(time.Since(startTime).Nanoseconds())
	instance.Metrics.SumNs.Add(durNs)
	for {
		oldMax := instance.Metrics.MaxNs.Load()
		if durNs <= oldMax || instance.Metrics.MaxNs.CompareAndSwap(oldMax, durNs) {
			break
		}
	}

	err = instance.state.Reorder.Insert(block.Sequence, shared.Block{Sequence: block.Sequence, Payload: out})
	if err != nil {
		err = global.NewStageError(global.NSWorker, global.ErrUnknown, err)
		return
	}

	instance.Metrics.Blocks.Add(1)
	instance.Metrics.BytesIn.Add(uint64(len(block.Payload)))
	instance.Metrics.BytesOut.Add(uint64(len(out)))

	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
		"block %d: %d -> %d bytes in %s\n", block.Sequence, len(block.Payload), len(out), time.Duration(durNs))
	return
}

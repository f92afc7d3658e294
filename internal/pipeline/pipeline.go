// Wires reader, worker pool and writer around shared run state
package pipeline

import (
	"context"
	"fmt"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"gzzip/internal/metrics"
	"gzzip/internal/pipeline/pool"
	"gzzip/internal/pipeline/reader"
	"gzzip/internal/pipeline/shared"
	"gzzip/internal/pipeline/writer"
	"time"

	"golang.org/x/sync/errgroup"
)

// Creates new pipeline bound to ctx. Cancelling ctx cancels the run.
func New(ctx context.Context, conf Config) (new *Pipeline, err error) {
	if conf.Source == nil || conf.Destination == nil {
		err = global.Invalid("pipeline needs both a source and a destination")
		return
	}
	if conf.Codec == nil {
		err = global.Invalid("pipeline needs a codec")
		return
	}
	if conf.Monitor == nil {
		err = global.Invalid("pipeline needs a resource monitor")
		return
	}
	if conf.Total > uint64(global.MaxBlockCount) {
		err = global.Invalid("block total %d exceeds %d", conf.Total, global.MaxBlockCount)
		return
	}
	if conf.Registry == nil {
		conf.Registry = metrics.New()
	}
	if conf.Reader.Backoff <= 0 {
		conf.Reader.Backoff = conf.IdleBackoff
	}

	ctx = logctx.AppendCtxTag(ctx, global.NSPipeline)
	namespace := logctx.GetTagList(ctx)

	state, err := shared.NewState(ctx, namespace, conf.Mode, conf.Total, conf.Reader.QueueCeiling, conf.IdleBackoff)
	if err != nil {
		return
	}

	new = &Pipeline{
		Namespace: namespace,
		State:     state,
		Reader:    reader.New(namespace, conf.Source, state, conf.Monitor, conf.Reader),
		Pool:      pool.NewInstanceManager(namespace, state, conf.Codec, conf.Monitor, conf.Registry, conf.Pool),
		Writer:    writer.New(namespace, conf.Destination, state),
		Registry:  conf.Registry,
	}
	return
}

// Runs all stages to completion. Returns the first stage failure, or a cancellation error.
func (pipe *Pipeline) Run() (err error) {
	ctx := pipe.State.Context()
	start := time.Now()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"starting %s of %d blocks\n", pipe.State.Mode, pipe.State.Progress.Total)

	var group errgroup.Group
	group.Go(func() error { return pipe.Reader.Run(ctx) })
	group.Go(func() error { return pipe.Pool.Run(ctx) })
	group.Go(func() error { return pipe.Writer.Run(ctx) })
	groupErr := group.Wait()

	err = pipe.State.Err()
	if err == nil && groupErr != nil {
		// Stage failed without cancelling
		err = groupErr
	}
	if err == nil && pipe.State.Progress.Written.Load() != pipe.State.Progress.Total {
		err = global.NewStageError(global.NSPipeline, global.ErrUnknown,
			fmt.Errorf("wrote %d of %d blocks", pipe.State.Progress.Written.Load(), pipe.State.Progress.Total))
	}

	pipe.collect(time.Since(start))
	pipe.State.Close()
	return
}

// Externally cancel the run
func (pipe *Pipeline) Cancel() {
	pipe.State.Cancel()
}

// Final stage counters into the registry
func (pipe *Pipeline) collect(elapsed time.Duration) {
	slice := pipe.Registry.NewTimeSlice(time.Now(), 0)
	pipe.Registry.Add(slice, pipe.State.Queue.CollectMetrics(elapsed))
	pipe.Registry.Add(slice, pipe.State.Reorder.CollectMetrics(elapsed))
	pipe.Registry.Add(slice, pipe.Reader.CollectMetrics(elapsed))
	pipe.Registry.Add(slice, pipe.Pool.CollectMetrics(elapsed))
	pipe.Registry.Add(slice, pipe.Writer.CollectMetrics(elapsed))
}

// Compress and decompress jobs between files. Validates, frames the archive header, and drives the pipeline.
package job

import (
	"context"
	"errors"
	"fmt"
	"gzzip/internal/calc"
	"gzzip/internal/codec"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"gzzip/internal/metrics"
	"gzzip/internal/monitor"
	"gzzip/internal/pipeline"
	"gzzip/internal/pipeline/pool"
	"gzzip/internal/pipeline/reader"
	"gzzip/internal/progress"
	"gzzip/pkg/archive"
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
)

// Creates new job with a fresh run ID
func New(mode global.Mode, source, destination string, conf Config) (new *Job) {
	conf.setDefaults()
	new = &Job{
		ID:              uuid.NewString(),
		Mode:            mode,
		SourcePath:      source,
		DestinationPath: destination,
		Config:          conf,
		Registry:        metrics.New(),
	}
	return
}

// Compresses source into a new archive at destination
func Compress(ctx context.Context, source, destination string, conf Config) (summary Summary, err error) {
	job := New(global.ModeCompress, source, destination, conf)
	err = job.Run(ctx)
	summary = job.Summary
	return
}

// Restores original bytes of archive source into destination
func Decompress(ctx context.Context, source, destination string, conf Config) (summary Summary, err error) {
	job := New(global.ModeDecompress, source, destination, conf)
	err = job.Run(ctx)
	summary = job.Summary
	return
}

// Runs the job to completion. A failed run leaves its partial destination in place.
func (job *Job) Run(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, job.ID)
	ctx = logctx.AppendCtxTag(ctx, global.NSJob)

	if global.Verbosity >= global.VerbosityDebug {
		logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
			"resolved configuration:\n%s", spew.Sdump(job.Config))
	}

	plan, err := job.validate()
	if err != nil {
		return
	}
	selected, err := job.selectCodec()
	if err != nil {
		return
	}
	if closer, ok := selected.(io.Closer); ok {
		defer closer.Close()
	}

	source, err := os.Open(job.SourcePath)
	if err != nil {
		err = fmt.Errorf("failed to open source file: %w: %w", global.ErrIO, err)
		return
	}
	defer source.Close()

	destination, err := os.OpenFile(job.DestinationPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		err = fmt.Errorf("failed to create destination file: %w: %w", global.ErrIO, err)
		return
	}
	defer func() {
		closeErr := destination.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close destination file: %w: %w", global.ErrIO, closeErr)
		}
	}()

	err = job.prepareStreams(source, destination, plan)
	if err != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	mon := job.Monitor
	if mon == nil {
		system := monitor.NewSystem(logctx.GetTagList(ctx), job.Config.MonitorInterval)
		system.Start(runCtx)
		defer func() {
			cancel()
			system.Wait()
		}()
		mon = system
	}

	pipe, err := pipeline.New(runCtx, pipeline.Config{
		Mode:        job.Mode,
		Total:       uint64(plan.Blocks),
		Source:      source,
		Destination: destination,
		Codec:       selected,
		Monitor:     mon,
		Registry:    job.Registry,
		Reader: reader.Config{
			ChunkSize:     job.Config.ChunkSize,
			MemoryFloorMB: job.Config.MemoryFloorMB,
			QueueCeiling:  job.Config.QueueCeiling,
		},
		Pool: pool.Config{
			MaxWorkers:      job.Config.MaxWorkers,
			BlocksPerWorker: job.Config.BlocksPerWorker,
			CPUCeilingPct:   job.Config.CPUCeilingPct,
			ScalePeriod:     job.Config.ScalePeriod,
		},
		IdleBackoff: job.Config.IdleBackoff,
	})
	if err != nil {
		return
	}

	var renderer *progress.Renderer
	if !job.Config.QuietProgress {
		renderer = progress.New(logctx.GetTagList(ctx), pipe.State.Progress, os.Stdout, job.Config.ProgressPeriod)
		renderer.Start(runCtx)
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"%s of '%s' (%d bytes, %d blocks, codec %s) successfully started\n",
		job.Mode, job.SourcePath, plan.SourceSize, plan.Blocks, selected.Name())

	start := time.Now()
	err = pipe.Run()
	elapsed := time.Since(start)

	if renderer != nil {
		renderer.Stop()
	}

	if err != nil {
		if errors.Is(err, global.ErrCancelled) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"%s cancelled, partial output left at '%s'\n", job.Mode, job.DestinationPath)
		} else {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"%s failed, partial output left at '%s'\n", job.Mode, job.DestinationPath)
		}
		return
	}

	err = destination.Sync()
	if err != nil {
		err = fmt.Errorf("failed to flush destination file: %w: %w", global.ErrIO, err)
		return
	}

	job.Summary, err = summarize(pipe, uint64(plan.Blocks), elapsed)
	if err != nil {
		return
	}
	job.logSummary(ctx)

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Done!\n")
	return
}

// Block codec for this run. Decompress sniffs each block, so it ignores the configured codec.
func (job *Job) selectCodec() (selected codec.Codec, err error) {
	if job.Mode == global.ModeDecompress {
		selected, err = codec.ByName(codec.NameAuto, 0)
		return
	}
	selected, err = codec.ByName(job.Config.Codec, job.Config.Level)
	return
}

// Frames the archive header.
// Compress writes the header; decompress consumes it so the pipeline sees only blocks.
func (job *Job) prepareStreams(source io.Reader, destination io.Writer, plan plan) (err error) {
	switch job.Mode {
	case global.ModeCompress:
		var header []byte
		header, err = archive.ConstructHeader(plan.Blocks)
		if err != nil {
			return
		}
		_, err = destination.Write(header)
		if err != nil {
			err = fmt.Errorf("failed to write archive header: %w: %w", global.ErrIO, err)
			return
		}
	case global.ModeDecompress:
		var count int
		count, err = archive.ReadHeader(source)
		if err != nil {
			return
		}
		if count != plan.Blocks {
			err = fmt.Errorf("archive header changed during validation: %w", global.ErrCorruptData)
			return
		}
	}
	return
}

// Load and volume figures for a finished run
func summarize(pipe *pipeline.Pipeline, blocks uint64, elapsed time.Duration) (summary Summary, err error) {
	summary.Blocks = blocks
	summary.Elapsed = elapsed

	depths, err := pipe.Registry.Series("queue_depth", pipe.Pool.Namespace)
	if err != nil {
		return
	}
	workers, err := pipe.Registry.Series("live_workers", pipe.Pool.Namespace)
	if err != nil {
		return
	}
	summary.MeanDepth = calc.TrimmedMean(depths, 0.1)
	summary.MeanWorkers = calc.TrimmedMean(workers, 0.1)
	summary.PeakWorkers = calc.Peak(workers)

	read, err := pipe.Registry.Series("bytes", pipe.Reader.Namespace)
	if err != nil {
		return
	}
	if len(read) > 0 {
		summary.BytesRead = uint64(read[len(read)-1])
	}
	written, err := pipe.Registry.Series("bytes", pipe.Writer.Namespace)
	if err != nil {
		return
	}
	if len(written) > 0 {
		summary.BytesWritten = uint64(written[len(written)-1])
	}
	return
}

func (job *Job) logSummary(ctx context.Context) {
	summary := job.Summary

	// Archive size relative to original, capped at 100
	ratio := calc.Percent(summary.BytesWritten, summary.BytesRead)
	if job.Mode == global.ModeDecompress {
		ratio = calc.Percent(summary.BytesRead, summary.BytesWritten)
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"%d blocks in %s: %d bytes in, %d bytes out (archive at %.1f%% of original)\n",
		summary.Blocks, summary.Elapsed.Round(time.Millisecond), summary.BytesRead, summary.BytesWritten, ratio)
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"mean queue depth %.1f, mean workers %.1f, peak workers %.0f\n",
		summary.MeanDepth, summary.MeanWorkers, summary.PeakWorkers)
}

// Queues, counters and cancellation shared by all pipeline stages
package shared

import (
	"context"
	"errors"
	"fmt"
	"gzzip/internal/global"
	"gzzip/internal/queue/reorder"
	"gzzip/internal/queue/work"
	"time"
)

// Creates run state for a fixed block total. The returned state is cancelled when parent is.
func NewState(parent context.Context, namespace []string, mode global.Mode, total uint64, queueCeiling int, idleBackoff time.Duration) (new *State, err error) {
	queue, err := work.New[Block](namespace, work.CapacityFor(queueCeiling), idleBackoff)
	if err != nil {
		err = fmt.Errorf("failed to create work queue: %w", err)
		return
	}

	ctx, cancel := context.WithCancelCause(parent)

	new = &State{
		Mode:     mode,
		Queue:    queue,
		Reorder:  reorder.New[Block](namespace),
		Progress: newProgress(total),
		ctx:      ctx,
		cancel:   cancel,
	}
	return
}

func newProgress(total uint64) (progress *Progress) {
	progress = &Progress{
		Total:       total,
		allDequeued: make(chan struct{}),
	}
	if total == 0 {
		progress.once.Do(func() { close(progress.allDequeued) })
	}
	return
}

// Context observed by all stages
func (state *State) Context() (ctx context.Context) {
	ctx = state.ctx
	return
}

// Records a stage fault and cancels the run. Only the first cause is kept.
func (state *State) Fail(cause error) {
	if cause == nil {
		cause = global.NewStageError(global.NSPipeline, global.ErrUnknown, nil)
	}
	state.cancel(cause)
}

// External cancellation (e.g. interrupt)
func (state *State) Cancel() {
	state.cancel(global.NewStageError(global.NSPipeline, global.ErrCancelled, nil))
}

// Whether cancellation has been set
func (state *State) Cancelled() (cancelled bool) {
	cancelled = state.ctx.Err() != nil
	return
}

// First failure of the run, nil while not cancelled
func (state *State) Err() (err error) {
	if state.ctx.Err() == nil {
		return
	}
	err = context.Cause(state.ctx)

	var stageErr *global.StageError
	if !errors.As(err, &stageErr) {
		// Parent context ended without a stage attributing it
		err = global.NewStageError(global.NSPipeline, global.ErrCancelled, err)
	}
	return
}

// Releases context resources once the run is over
func (state *State) Close() {
	state.cancel(nil)
}

// Counts a dequeued block. Reports true for the dequeue that reaches the total.
func (progress *Progress) MarkTransformed() (last bool) {
	if progress.Transformed.Add(1) >= progress.Total {
		last = true
		progress.once.Do(func() { close(progress.allDequeued) })
	}
	return
}

// Closed once every block has been dequeued
func (progress *Progress) AllDequeued() (signal <-chan struct{}) {
	signal = progress.allDequeued
	return
}

// Mean completion of the three counters, 0..100
func (progress *Progress) Percent() (read, transformed, written, total float64) {
	if progress.Total == 0 {
		read, transformed, written, total = 100, 100, 100, 100
		return
	}
	whole := float64(progress.Total)
	read = float64(min(progress.Read.Load(), progress.Total)) / whole * 100
	transformed = float64(min(progress.Transformed.Load(), progress.Total)) / whole * 100
	written = float64(min(progress.Written.Load(), progress.Total)) / whole * 100
	total = (read + transformed + written) / 3
	return
}

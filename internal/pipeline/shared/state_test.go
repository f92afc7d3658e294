package shared

import (
	"context"
	"errors"
	"gzzip/internal/global"
	"testing"
	"time"
)

func newTestState(t *testing.T, parent context.Context, total uint64) *State {
	t.Helper()
	state, err := NewState(parent, []string{global.NSTest}, global.ModeCompress, total, 10, time.Millisecond)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	t.Cleanup(state.Close)
	return state
}

func TestState_FirstFailureWins(t *testing.T) {
	state := newTestState(t, context.Background(), 4)

	if state.Err() != nil || state.Cancelled() {
		t.Fatalf("fresh state should not be cancelled")
	}

	first := global.NewStageError(global.NSWorker, global.ErrCorruptData, errors.New("bad block"))
	state.Fail(first)
	state.Fail(global.NewStageError(global.NSWriter, global.ErrIO, errors.New("disk full")))
	state.Cancel()

	err := state.Err()
	if !errors.Is(err, global.ErrCorruptData) {
		t.Fatalf("expected first failure to be kept, got %v", err)
	}
	if errors.Is(err, global.ErrIO) {
		t.Fatalf("later failure overwrote the first: %v", err)
	}
	select {
	case <-state.Context().Done():
	default:
		t.Fatalf("context not cancelled after failure")
	}
}

func TestState_ExternalCancel(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(parentCancel context.CancelFunc, state *State)
	}{
		{"explicit cancel", func(_ context.CancelFunc, state *State) { state.Cancel() }},
		{"parent cancelled", func(parentCancel context.CancelFunc, _ *State) { parentCancel() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, parentCancel := context.WithCancel(context.Background())
			defer parentCancel()
			state := newTestState(t, parent, 1)

			tt.cancel(parentCancel, state)

			err := state.Err()
			if !errors.Is(err, global.ErrCancelled) {
				t.Fatalf("expected cancelled kind, got %v", err)
			}
			if global.KindOf(err) != global.ErrCancelled {
				t.Fatalf("KindOf reported %v", global.KindOf(err))
			}
		})
	}
}

func TestProgress_AllDequeued(t *testing.T) {
	t.Run("zero total closes immediately", func(t *testing.T) {
		state := newTestState(t, context.Background(), 0)
		select {
		case <-state.Progress.AllDequeued():
		default:
			t.Fatalf("expected closed signal for empty run")
		}
	})

	t.Run("closes on last dequeue", func(t *testing.T) {
		state := newTestState(t, context.Background(), 3)
		for i := 0; i < 2; i++ {
			if state.Progress.MarkTransformed() {
				t.Fatalf("dequeue %d reported last", i)
			}
		}
		select {
		case <-state.Progress.AllDequeued():
			t.Fatalf("closed early")
		default:
		}
		if !state.Progress.MarkTransformed() {
			t.Fatalf("third dequeue should be last")
		}
		<-state.Progress.AllDequeued()
	})
}

func TestProgress_Percent(t *testing.T) {
	state := newTestState(t, context.Background(), 4)
	state.Progress.Read.Store(4)
	state.Progress.Transformed.Store(2)
	state.Progress.Written.Store(0)

	read, transformed, written, total := state.Progress.Percent()
	if read != 100 || transformed != 50 || written != 0 || total != 50 {
		t.Fatalf("unexpected percentages %f %f %f %f", read, transformed, written, total)
	}

	empty := newTestState(t, context.Background(), 0)
	if _, _, _, total := empty.Progress.Percent(); total != 100 {
		t.Fatalf("empty run should report complete, got %f", total)
	}
}

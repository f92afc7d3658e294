package worker

import (
	"bytes"
	"context"
	"errors"
	"gzzip/internal/global"
	"gzzip/internal/pipeline/shared"
	"sync/atomic"
	"testing"
	"time"
)

// Upper-cases compress direction, fails or panics on marked payloads
type markerCodec struct{}

func (markerCodec) Name() string { return "marker" }
func (markerCodec) Compress(src []byte) ([]byte, error) {
	switch {
	case bytes.Equal(src, []byte("fail")):
		return nil, errors.New("marker: " + global.ErrCorruptData.Error())
	case bytes.Equal(src, []byte("corrupt")):
		return nil, global.ErrCorruptData
	case bytes.Equal(src, []byte("panic")):
		panic("marker payload")
	}
	return bytes.ToUpper(src), nil
}
func (c markerCodec) Decompress(src []byte) ([]byte, error) { return bytes.ToLower(src), nil }

// Counts every transform call
type countingCodec struct {
	calls atomic.Int64
}

func (c *countingCodec) Name() string { return "counting" }
func (c *countingCodec) Compress(src []byte) ([]byte, error) {
	c.calls.Add(1)
	return src, nil
}
func (c *countingCodec) Decompress(src []byte) ([]byte, error) {
	c.calls.Add(1)
	return src, nil
}

func newTestState(t *testing.T, mode global.Mode, payloads ...string) *shared.State {
	t.Helper()
	state, err := shared.NewState(context.Background(), []string{global.NSTest}, mode, uint64(len(payloads)), 10, time.Millisecond)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	t.Cleanup(state.Close)
	for seq, payload := range payloads {
		if !state.Queue.Push(shared.Block{Sequence: uint64(seq), Payload: []byte(payload)}) {
			t.Fatalf("queue full at block %d", seq)
		}
	}
	return state
}

func waitDone(t *testing.T, instance *Instance) {
	t.Helper()
	select {
	case <-instance.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit")
	}
}

func TestInstance_Transforms(t *testing.T) {
	tests := []struct {
		name     string
		mode     global.Mode
		payloads []string
		expected []string
	}{
		{name: "Compress", mode: global.ModeCompress, payloads: []string{"ab", "cd", "ef"}, expected: []string{"AB", "CD", "EF"}},
		{name: "Decompress", mode: global.ModeDecompress, payloads: []string{"XY", "Z"}, expected: []string{"xy", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestState(t, tt.mode, tt.payloads...)
			instance := New([]string{global.NSTest}, 1, state, markerCodec{})

			go instance.Run(state.Context())
			<-state.Progress.AllDequeued()

			for seq, want := range tt.expected {
				block, ok := state.Reorder.Take(state.Context(), uint64(seq))
				if !ok {
					t.Fatalf("block %d never arrived", seq)
				}
				if string(block.Payload) != want {
					t.Errorf("block %d: expected %q, got %q", seq, want, block.Payload)
				}
			}

			instance.RequestStop()
			waitDone(t, instance)

			if !instance.Finished() {
				t.Error("expected finished after done closed")
			}
			if instance.Metrics.Blocks.Load() != uint64(len(tt.payloads)) {
				t.Errorf("expected %d blocks counted, got %d", len(tt.payloads), instance.Metrics.Blocks.Load())
			}
			if state.Err() != nil {
				t.Errorf("unexpected run error: %v", state.Err())
			}
		})
	}
}

func TestInstance_Failures(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected error
	}{
		{name: "Codec error kind kept", payload: "corrupt", expected: global.ErrCorruptData},
		{name: "Plain codec error", payload: "fail", expected: global.ErrUnknown},
		{name: "Panic recovered", payload: "panic", expected: global.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestState(t, global.ModeCompress, tt.payload)
			instance := New([]string{global.NSTest}, 1, state, markerCodec{})

			err := instance.Run(state.Context())
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			if !state.Cancelled() {
				t.Error("failure should cancel the run")
			}
			if !errors.Is(state.Err(), tt.expected) {
				t.Errorf("run error %v does not carry %v", state.Err(), tt.expected)
			}

			var stageErr *global.StageError
			if !errors.As(err, &stageErr) || stageErr.Stage != global.NSWorker {
				t.Errorf("expected worker stage error, got %#v", err)
			}
		})
	}
}

func TestInstance_StopBeforeWork(t *testing.T) {
	state := newTestState(t, global.ModeCompress, "ab")
	instance := New([]string{global.NSTest}, 7, state, markerCodec{})

	instance.RequestStop()
	instance.RequestStop()

	err := instance.Run(state.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, instance)
	if state.Queue.Depth() != 1 {
		t.Errorf("stopped worker should not dequeue, depth %d", state.Queue.Depth())
	}
	if instance.Namespace[len(instance.Namespace)-1] != "7" {
		t.Errorf("expected worker ID in namespace, got %v", instance.Namespace)
	}
}

func TestInstance_CancelledRunSkipsQueuedBlocks(t *testing.T) {
	state := newTestState(t, global.ModeCompress, "ab", "cd", "ef")
	state.Fail(global.NewStageError(global.NSReader, global.ErrIO, errors.New("source vanished")))

	counter := &countingCodec{}
	instance := New([]string{global.NSTest}, 1, state, counter)

	err := instance.Run(state.Context())
	if err != nil {
		t.Fatalf("worker should leave reporting to the failed stage, got %v", err)
	}
	waitDone(t, instance)

	if calls := counter.calls.Load(); calls != 0 {
		t.Errorf("expected no transforms after cancel, got %d", calls)
	}
	if transformed := state.Progress.Transformed.Load(); transformed != 0 {
		t.Errorf("expected no blocks marked transformed, got %d", transformed)
	}
	if !errors.Is(state.Err(), global.ErrIO) {
		t.Errorf("first failure should be kept, got %v", state.Err())
	}
}

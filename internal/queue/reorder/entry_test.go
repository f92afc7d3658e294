package reorder

import (
	"context"
	"errors"
	"gzzip/internal/global"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestInsert_Duplicate(t *testing.T) {
	buffer := New[string]([]string{global.NSTest})

	if err := buffer.Insert(3, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := buffer.Insert(3, "b")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	v, ok := buffer.TryTake(3)
	if !ok || v != "a" {
		t.Fatalf("expected first value to be kept, got %q ok=%v", v, ok)
	}
	if buffer.Len() != 0 {
		t.Fatalf("expected empty buffer, got %d", buffer.Len())
	}
	// Sequence may be reused once taken
	if err := buffer.Insert(3, "c"); err != nil {
		t.Fatalf("unexpected error reinserting after take: %v", err)
	}
}

func TestTake_WaitsForSequence(t *testing.T) {
	buffer := New[int]([]string{global.NSTest})

	result := make(chan int)
	go func() {
		v, ok := buffer.Take(context.Background(), 1)
		if !ok {
			t.Errorf("take failed")
		}
		result <- v
	}()

	buffer.Insert(0, 100) // wrong sequence, writer must keep waiting
	time.Sleep(20 * time.Millisecond)
	select {
	case v := <-result:
		t.Fatalf("take returned early with %d", v)
	default:
	}

	buffer.Insert(1, 101)
	select {
	case v := <-result:
		if v != 101 {
			t.Fatalf("expected 101, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("take not woken by insert")
	}
}

func TestTake_Cancelled(t *testing.T) {
	buffer := New[int]([]string{global.NSTest})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := buffer.Take(ctx, 0); ok {
		t.Fatalf("expected cancelled take to fail")
	}
}

// Output order is independent of completion order
func TestTake_RandomizedInjection(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		injectors int
	}{
		{"single injector", 200, 1},
		{"many injectors", 2000, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := New[int]([]string{global.NSTest})

			order := rand.Perm(tt.total)
			var wg sync.WaitGroup
			per := (tt.total + tt.injectors - 1) / tt.injectors
			for i := 0; i < tt.injectors; i++ {
				start := i * per
				end := min(start+per, tt.total)
				wg.Add(1)
				go func(part []int) {
					defer wg.Done()
					for _, seq := range part {
						if rand.Intn(4) == 0 {
							time.Sleep(time.Duration(rand.Intn(50)) * time.Microsecond)
						}
						if err := buffer.Insert(uint64(seq), seq*10); err != nil {
							t.Errorf("insert %d: %v", seq, err)
						}
					}
				}(order[start:end])
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			for next := 0; next < tt.total; next++ {
				v, ok := buffer.Take(ctx, uint64(next))
				if !ok {
					t.Fatalf("timed out waiting for block %d", next)
				}
				if v != next*10 {
					t.Fatalf("block %d carried %d", next, v)
				}
			}
			wg.Wait()

			if buffer.Len() != 0 {
				t.Fatalf("expected empty buffer, got %d", buffer.Len())
			}
			if buffer.Metrics.Taken.Load() != uint64(tt.total) {
				t.Fatalf("expected %d taken, got %d", tt.total, buffer.Metrics.Taken.Load())
			}
		})
	}
}

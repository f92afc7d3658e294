package lifecycle

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalHandler(t *testing.T) {
	tests := []struct {
		name         string
		send         bool
		release      bool
		expectCancel bool
	}{
		{name: "Signal cancels", send: true, expectCancel: true},
		{name: "No signal", send: false, expectCancel: false},
		{name: "Released before signal", send: false, release: true, expectCancel: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			release := SignalHandler(context.Background(), cancel, syscall.SIGUSR1)
			defer release()
			if tt.release {
				release()
			}

			if tt.send {
				err := syscall.Kill(os.Getpid(), syscall.SIGUSR1)
				if err != nil {
					t.Fatal(err)
				}
			}

			select {
			case <-ctx.Done():
				if !tt.expectCancel {
					t.Fatal("context cancelled without a signal")
				}
			case <-time.After(200 * time.Millisecond):
				if tt.expectCancel {
					t.Fatal("signal did not cancel the context")
				}
			}
		})
	}
}

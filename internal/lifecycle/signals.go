// Process signal handling for running jobs
package lifecycle

import (
	"context"
	"gzzip/internal/global"
	"gzzip/internal/logctx"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Cancels the running job on the first received signal (interrupt, quit, terminate when none given).
// Returned release stops signal delivery and is safe to call more than once.
func SignalHandler(ctx context.Context, cancel context.CancelFunc, signals ...os.Signal) (release func()) {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM}
	}

	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, signals...)

	done := make(chan struct{})
	go func() {
		cancelled := false
		for {
			select {
			case <-done:
				return
			case sig := <-sigChan:
				if cancelled {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
						"Received signal: %v (already stopping, waiting for in-flight blocks)\n", sig)
					continue
				}
				logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)
				cancelled = true
				cancel()
			}
		}
	}()

	var once sync.Once
	release = func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
		})
	}
	return
}

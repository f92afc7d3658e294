package logctx

import (
	"fmt"
	"gzzip/internal/global"
	"io"
	"strings"
	"time"
)

// Hold main thread exit until logger is finished its work
func (logger *Logger) Wait() {
	logger.wg.Wait()
}

// Wake signals/broadcasts to any goroutines waiting on the condition variable
func (logger *Logger) Wake() {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()
	logger.cond.Broadcast()
}

// Starts a go routine that reads events and writes formatted output to io.Writer.
// Stops when logger.Done is closed and the buffer is empty.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		const dedupWindow = 5 * time.Second
		const minRepeats = 10
		const suppressCooldown = 1 * time.Minute

		for {
			logger.mutex.Lock()

			// Wait for events
			for len(logger.queue) == 0 {
				select {
				case <-logger.Done:
					logger.mutex.Unlock()
					return
				default:
					logger.cond.Wait()
				}
			}

			// Pop one event from the front of the queue
			event := logger.queue[0]
			logger.queue = logger.queue[1:]
			colorize := logger.Colorize
			logger.mutex.Unlock()

			now := time.Now()

			// Purely meant for highly repetitive message suppression (e.g. backpressure waits)
			if event.Message != "" &&
				event.Message == dedup.lastMsg &&
				now.Sub(event.Timestamp) <= dedupWindow {

				dedup.repeatCount++
				if dedup.repeatCount >= minRepeats && now.Sub(dedup.lastSuppressTime) >= suppressCooldown {
					fmt.Fprintf(output,
						"[%s] [%s] [%s] Suppressed %d repeated messages: %s",
						padTimestamp(event.Timestamp),
						strings.Join(event.Tags, "/"),
						global.InfoLog,
						dedup.repeatCount,
						dedup.lastMsg)

					dedup.lastSuppressTime = now
					dedup.repeatCount = 0
				}
				continue
			}

			dedup.lastMsg = event.Message
			dedup.repeatCount = 1

			fmt.Fprintf(output, "%s", event.format(colorize))
		}
	}()
}

package logctx

import (
	"gzzip/internal/global"
	"time"
)

// Logs event
func (logger *Logger) log(eventLevel int, eventSeverity string, tags []string, fullMessage string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	// Errors are always recorded regardless of level
	if eventLevel > logger.PrintLevel && eventSeverity != global.ErrorLog {
		return
	}

	logger.queue = append(logger.queue, Event{
		Timestamp: time.Now(),
		Tags:      tags,
		Severity:  eventSeverity,
		Message:   fullMessage,
	})
	logger.cond.Signal() // Notify watcher that new event is available
}

package progress

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Anything reporting stage completion percentages
type Source interface {
	Percent() (read, transformed, written, total float64)
}

// Periodic single-line progress output
type Renderer struct {
	Namespace   []string
	source      Source
	out         io.Writer
	interactive bool // redraw in place with carriage returns
	period      time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

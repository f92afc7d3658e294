package writer

import (
	"gzzip/internal/pipeline/shared"
	"io"
	"sync/atomic"
)

// Sole owner of the destination stream position
type Instance struct {
	Namespace   []string
	destination io.Writer
	state       *shared.State
	running     atomic.Bool
	Metrics     MetricStorage
}

type MetricStorage struct {
	Blocks atomic.Uint64 // blocks written
	Bytes  atomic.Uint64 // bytes written including length prefixes
	WaitNs atomic.Uint64 // time spent waiting for the next sequence
}

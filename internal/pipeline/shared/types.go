package shared

import (
	"context"
	"gzzip/internal/global"
	"gzzip/internal/queue/reorder"
	"gzzip/internal/queue/work"
	"sync"
	"sync/atomic"
)

// Unit of work, immutable once created
type Block struct {
	Sequence uint64
	Payload  []byte
}

// Stage counters. Each counter is owned by exactly one stage.
type Progress struct {
	Total       uint64
	Read        atomic.Uint64 // reader
	Transformed atomic.Uint64 // workers (on dequeue)
	Written     atomic.Uint64 // writer

	allDequeued chan struct{}
	once        sync.Once
}

// Run state passed to every stage
type State struct {
	Mode     global.Mode
	Queue    *work.Queue[Block]
	Reorder  *reorder.Buffer[Block]
	Progress *Progress

	ctx    context.Context
	cancel context.CancelCauseFunc
}

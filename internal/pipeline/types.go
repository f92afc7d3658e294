package pipeline

import (
	"gzzip/internal/codec"
	"gzzip/internal/global"
	"gzzip/internal/metrics"
	"gzzip/internal/monitor"
	"gzzip/internal/pipeline/pool"
	"gzzip/internal/pipeline/reader"
	"gzzip/internal/pipeline/shared"
	"gzzip/internal/pipeline/writer"
	"io"
	"time"
)

// Everything a run needs besides the streams' framing (handled by the caller)
type Config struct {
	Mode        global.Mode
	Total       uint64    // blocks in this run, fixed up front
	Source      io.Reader // decompress: positioned after the header
	Destination io.Writer // compress: header already written
	Codec       codec.Codec
	Monitor     monitor.Monitor
	Registry    *metrics.Registry

	Reader reader.Config
	Pool   pool.Config

	IdleBackoff time.Duration
}

type Pipeline struct {
	Namespace []string
	State     *shared.State
	Reader    *reader.Instance
	Pool      *pool.InstanceManager
	Writer    *writer.Instance
	Registry  *metrics.Registry
}

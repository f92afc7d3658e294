package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"gzzip/internal/codec"
	"gzzip/internal/global"
	"gzzip/internal/monitor"
	"gzzip/internal/pipeline/pool"
	"gzzip/internal/pipeline/reader"
	"gzzip/pkg/archive"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// Passes payloads through, optionally failing or stalling on marked blocks
type stubCodec struct {
	failMarker byte
	fail       bool
	jitter     time.Duration

	mu    sync.Mutex
	calls int
}

func (c *stubCodec) Name() string { return "stub" }

func (c *stubCodec) transform(src []byte) (out []byte, err error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.jitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(c.jitter))))
	}
	if c.fail && len(src) > 0 && src[0] == c.failMarker {
		err = fmt.Errorf("%w: injected fault", global.ErrCorruptData)
		return
	}
	out = append([]byte(nil), src...)
	return
}

func (c *stubCodec) Compress(src []byte) ([]byte, error)   { return c.transform(src) }
func (c *stubCodec) Decompress(src []byte) ([]byte, error) { return c.transform(src) }

type runOptions struct {
	codec      codec.Codec
	chunk      int
	maxWorkers int
	monitor    monitor.Monitor
}

func (opts runOptions) config(mode global.Mode, total uint64, src *bytes.Reader, dst *bytes.Buffer) (conf Config) {
	mon := opts.monitor
	if mon == nil {
		mon = monitor.NewStatic(0, 1<<20)
	}
	conf = Config{
		Mode:        mode,
		Total:       total,
		Source:      src,
		Destination: dst,
		Codec:       opts.codec,
		Monitor:     mon,
		Reader: reader.Config{
			ChunkSize:     opts.chunk,
			MemoryFloorMB: 512,
			QueueCeiling:  8,
		},
		Pool: pool.Config{
			MaxWorkers:      opts.maxWorkers,
			BlocksPerWorker: 1,
			CPUCeilingPct:   60,
			ScalePeriod:     5 * time.Millisecond,
		},
		IdleBackoff: 5 * time.Millisecond,
	}
	return
}

// Compresses input into a complete archive
func compressBytes(t *testing.T, input []byte, opts runOptions) (out []byte, err error) {
	t.Helper()
	total, err := archive.BlockCount(int64(len(input)), opts.chunk)
	if err != nil {
		return
	}
	header, err := archive.ConstructHeader(total)
	if err != nil {
		return
	}

	var dst bytes.Buffer
	dst.Write(header)

	pipe, err := New(context.Background(), opts.config(global.ModeCompress, uint64(total), bytes.NewReader(input), &dst))
	if err != nil {
		return
	}
	err = pipe.Run()
	out = dst.Bytes()
	return
}

// Restores archive contents
func decompressBytes(t *testing.T, archiveBytes []byte, opts runOptions) (out []byte, err error) {
	t.Helper()
	src := bytes.NewReader(archiveBytes)
	total, err := archive.ReadHeader(src)
	if err != nil {
		return
	}

	var dst bytes.Buffer
	pipe, err := New(context.Background(), opts.config(global.ModeDecompress, uint64(total), src, &dst))
	if err != nil {
		return
	}
	err = pipe.Run()
	out = dst.Bytes()
	return
}

// Splits archive body into block payloads
func parseBlocks(t *testing.T, archiveBytes []byte) (count int, blocks [][]byte) {
	t.Helper()
	src := bytes.NewReader(archiveBytes)
	count, err := archive.ReadHeader(src)
	if err != nil {
		t.Fatalf("bad header: %v", err)
	}
	for {
		block, err := archive.ReadBlock(src)
		if err != nil {
			break
		}
		blocks = append(blocks, block)
	}
	return
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"gzzip/internal/codec"
	"gzzip/internal/global"
	"gzzip/internal/monitor"
	"gzzip/pkg/archive"
	"math/rand"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	const chunk = 4096

	random := make([]byte, 40*chunk+17)
	rand.New(rand.NewSource(1)).Read(random)

	inputs := map[string][]byte{
		"empty":          {},
		"one byte":       {0x42},
		"under one":      bytes.Repeat([]byte("a"), chunk-1),
		"exactly one":    bytes.Repeat([]byte("b"), chunk),
		"two and a half": bytes.Repeat([]byte("abcdefgh"), chunk*5/16),
		"random":         random,
	}

	for _, codecName := range []string{codec.NameGzip, codec.NameZstd, codec.NameLZ4} {
		blockCodec, err := codec.ByName(codecName, 0)
		if err != nil {
			t.Fatalf("codec %s: %v", codecName, err)
		}
		auto, err := codec.NewAuto()
		if err != nil {
			t.Fatalf("auto codec: %v", err)
		}

		for name, input := range inputs {
			t.Run(codecName+"/"+name, func(t *testing.T) {
				opts := runOptions{codec: blockCodec, chunk: chunk, maxWorkers: 4}
				compressed, err := compressBytes(t, input, opts)
				if err != nil {
					t.Fatalf("compress: %v", err)
				}

				opts.codec = auto
				restored, err := decompressBytes(t, compressed, opts)
				if err != nil {
					t.Fatalf("decompress: %v", err)
				}
				if !bytes.Equal(restored, input) {
					t.Fatalf("round trip mismatch: %d bytes in, %d bytes out", len(input), len(restored))
				}
			})
		}
	}
}

func TestEmptySource(t *testing.T) {
	opts := runOptions{codec: &stubCodec{}, chunk: 1024}

	compressed, err := compressBytes(t, nil, opts)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if !bytes.Equal(compressed, []byte{0, 0, 0, 0, 0, 0}) {
		t.Fatalf("expected header-only archive, got %x", compressed)
	}

	restored, err := decompressBytes(t, compressed, opts)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if len(restored) != 0 {
		t.Fatalf("expected empty output, got %d bytes", len(restored))
	}
}

func TestBlockCutting(t *testing.T) {
	const MiB = 1024 * 1024
	input := bytes.Repeat([]byte{7}, 2*MiB+MiB/2)

	compressed, err := compressBytes(t, input, runOptions{codec: &stubCodec{}, chunk: MiB, maxWorkers: 2})
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	count, blocks := parseBlocks(t, compressed)
	if count != 3 {
		t.Fatalf("header count %d, want 3", count)
	}
	wantSizes := []int{MiB, MiB, MiB / 2}
	if len(blocks) != len(wantSizes) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(blocks[i]) != want {
			t.Fatalf("block %d is %d bytes, want %d", i, len(blocks[i]), want)
		}
	}
}

// Output order must not depend on which worker finishes first
func TestOrderingUnderJitter(t *testing.T) {
	const chunk = 64
	const blocks = 300

	input := make([]byte, 0, chunk*blocks)
	for i := 0; i < blocks; i++ {
		input = append(input, bytes.Repeat([]byte{byte(i)}, chunk)...)
	}

	opts := runOptions{
		codec:      &stubCodec{jitter: 300 * time.Microsecond},
		chunk:      chunk,
		maxWorkers: 8,
	}
	compressed, err := compressBytes(t, input, opts)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	_, parsed := parseBlocks(t, compressed)
	if len(parsed) != blocks {
		t.Fatalf("got %d blocks, want %d", len(parsed), blocks)
	}
	for i, block := range parsed {
		if block[0] != byte(i) {
			t.Fatalf("block %d carried data of block %d", i, block[0])
		}
	}
}

func TestCodecFaultCancelsRun(t *testing.T) {
	const chunk = 128
	const total = 10
	const faulty = 5

	input := make([]byte, 0, chunk*total)
	for i := 0; i < total; i++ {
		fill := byte(i)
		if i == faulty {
			fill = 0xEE
		}
		input = append(input, bytes.Repeat([]byte{fill}, chunk)...)
	}

	stub := &stubCodec{fail: true, failMarker: 0xEE}
	compressed, err := compressBytes(t, input, runOptions{codec: stub, chunk: chunk, maxWorkers: 4})
	if err == nil {
		t.Fatalf("expected run to fail")
	}
	if !errors.Is(err, global.ErrCorruptData) {
		t.Fatalf("expected corrupt data kind, got %v", err)
	}
	var stageErr *global.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != global.NSWorker {
		t.Fatalf("expected worker stage error, got %v", err)
	}

	_, parsed := parseBlocks(t, compressed)
	if len(parsed) > faulty {
		t.Fatalf("wrote %d blocks, nothing past block %d may be written", len(parsed), faulty-1)
	}
	for i, block := range parsed {
		if block[0] != byte(i) {
			t.Fatalf("block %d out of order", i)
		}
	}
}

func TestDecompressMalformedArchive(t *testing.T) {
	opts := runOptions{codec: &stubCodec{}, chunk: 16, maxWorkers: 2}
	valid, err := compressBytes(t, bytes.Repeat([]byte("z"), 40), opts)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	tests := []struct {
		name    string
		archive []byte
		wantErr error
	}{
		{"truncated payload", valid[:len(valid)-3], global.ErrCorruptData},
		{"missing block", valid[:len(valid)-(3+8)], global.ErrCorruptData},
		{"trailing bytes", append(append([]byte{}, valid...), 0x01), global.ErrCorruptData},
		{"non-zero magic", append([]byte{9}, valid[1:]...), global.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decompressBytes(t, tt.archive, opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExternalCancel(t *testing.T) {
	input := bytes.Repeat([]byte("x"), 4096)
	total, _ := archive.BlockCount(int64(len(input)), 512)

	// Reader stays parked on the memory gate until cancelled
	opts := runOptions{codec: &stubCodec{}, chunk: 512, monitor: monitor.NewStatic(0, 1)}

	var dst bytes.Buffer
	pipe, err := New(context.Background(), opts.config(global.ModeCompress, uint64(total), bytes.NewReader(input), &dst))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := make(chan error, 1)
	go func() { result <- pipe.Run() }()

	time.Sleep(30 * time.Millisecond)
	pipe.Cancel()

	select {
	case err := <-result:
		if global.KindOf(err) != global.ErrCancelled {
			t.Fatalf("expected cancelled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
	if dst.Len() != 0 {
		t.Fatalf("no block may be written while stalled, got %d bytes", dst.Len())
	}
}

func TestParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := runOptions{codec: &stubCodec{}, chunk: 8, monitor: monitor.NewStatic(0, 1)}

	var dst bytes.Buffer
	pipe, err := New(ctx, opts.config(global.ModeCompress, 4, bytes.NewReader(make([]byte, 32)), &dst))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cancel()
	if err := pipe.Run(); !errors.Is(err, global.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
}

func TestRunMetricsCollected(t *testing.T) {
	opts := runOptions{codec: &stubCodec{jitter: 2 * time.Millisecond}, chunk: 32, maxWorkers: 2}
	input := bytes.Repeat([]byte("m"), 32*40)
	total, _ := archive.BlockCount(int64(len(input)), opts.chunk)

	var dst bytes.Buffer
	pipe, err := New(context.Background(), opts.config(global.ModeCompress, uint64(total), bytes.NewReader(input), &dst))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := pipe.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	written, err := pipe.Registry.Series("blocks", append(pipe.Namespace, global.NSWriter))
	if err != nil || len(written) != 1 || written[0] != float64(total) {
		t.Fatalf("writer block metric %v (err %v), want %d", written, err, total)
	}
	if live, _ := pipe.Registry.Series("live_workers", append(pipe.Namespace, global.NSPool)); len(live) == 0 {
		t.Fatalf("expected per-period pool samples")
	}
}

func TestNew_Validation(t *testing.T) {
	var dst bytes.Buffer
	base := runOptions{codec: &stubCodec{}, chunk: 8}.config(global.ModeCompress, 1, bytes.NewReader([]byte{1}), &dst)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no source", func(c *Config) { c.Source = nil }},
		{"no destination", func(c *Config) { c.Destination = nil }},
		{"no codec", func(c *Config) { c.Codec = nil }},
		{"no monitor", func(c *Config) { c.Monitor = nil }},
		{"too many blocks", func(c *Config) { c.Total = uint64(global.MaxBlockCount) + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := base
			tt.mutate(&conf)
			if _, err := New(context.Background(), conf); !errors.Is(err, global.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

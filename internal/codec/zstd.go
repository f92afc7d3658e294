package codec

import (
	"fmt"
	"gzzip/internal/global"

	"github.com/klauspost/compress/zstd"
)

// Encoder and decoder are shared by all workers (EncodeAll/DecodeAll are concurrency safe)
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstd(level int) (new *Zstd, err error) {
	encLevel := zstd.SpeedDefault
	if level != 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
	if err != nil {
		err = fmt.Errorf("failed to create zstd encoder: %w", err)
		return
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		err = fmt.Errorf("failed to create zstd decoder: %w", err)
		return
	}
	new = &Zstd{encoder: encoder, decoder: decoder}
	return
}

func (c *Zstd) Name() string { return NameZstd }

func (c *Zstd) Compress(src []byte) (out []byte, err error) {
	out = c.encoder.EncodeAll(src, make([]byte, 0, len(src)/2+64))
	return
}

func (c *Zstd) Decompress(src []byte) (out []byte, err error) {
	out, err = c.decoder.DecodeAll(src, nil)
	if err != nil {
		err = fmt.Errorf("%s: %w: %v", NameZstd, global.ErrCorruptData, err)
		out = nil
	}
	return
}

// Releases encoder and decoder goroutines. The codec is unusable afterwards.
func (c *Zstd) Close() (err error) {
	err = c.encoder.Close()
	c.decoder.Close()
	return
}

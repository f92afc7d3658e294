package codec

import (
	"io"

	"github.com/andybalholm/brotli"
)

type Brotli struct {
	level int
}

func NewBrotli(level int) (new *Brotli) {
	if level <= 0 || level > brotli.BestCompression {
		level = brotli.DefaultCompression
	}
	new = &Brotli{level: level}
	return
}

func (c *Brotli) Name() string { return NameBrotli }

func (c *Brotli) Compress(src []byte) (out []byte, err error) {
	out, err = compressStream(src, func(w io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriterLevel(w, c.level), nil
	})
	return
}

func (c *Brotli) Decompress(src []byte) (out []byte, err error) {
	out, err = decompressStream(NameBrotli, src, func(r io.Reader) (io.Reader, error) {
		return brotli.NewReader(r), nil
	})
	return
}

package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

type Gzip struct {
	level int
}

func NewGzip(level int) (new *Gzip, err error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	// Validate level once up front
	_, err = gzip.NewWriterLevel(io.Discard, level)
	if err != nil {
		return
	}
	new = &Gzip{level: level}
	return
}

func (c *Gzip) Name() string { return NameGzip }

func (c *Gzip) Compress(src []byte) (out []byte, err error) {
	out, err = compressStream(src, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, c.level)
	})
	return
}

func (c *Gzip) Decompress(src []byte) (out []byte, err error) {
	out, err = decompressStream(NameGzip, src, func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	})
	return
}

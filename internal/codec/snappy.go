package codec

import (
	"io"

	"github.com/golang/snappy"
)

// Framed snappy stream, carries the stream identifier used for detection
type Snappy struct{}

func NewSnappy() (new *Snappy) {
	new = &Snappy{}
	return
}

func (c *Snappy) Name() string { return NameSnappy }

func (c *Snappy) Compress(src []byte) (out []byte, err error) {
	out, err = compressStream(src, func(w io.Writer) (io.WriteCloser, error) {
		return snappy.NewBufferedWriter(w), nil
	})
	return
}

func (c *Snappy) Decompress(src []byte) (out []byte, err error) {
	out, err = decompressStream(NameSnappy, src, func(r io.Reader) (io.Reader, error) {
		return snappy.NewReader(r), nil
	})
	return
}

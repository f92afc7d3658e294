package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

type LZ4 struct{}

func NewLZ4() (new *LZ4) {
	new = &LZ4{}
	return
}

func (c *LZ4) Name() string { return NameLZ4 }

func (c *LZ4) Compress(src []byte) (out []byte, err error) {
	out, err = compressStream(src, func(w io.Writer) (io.WriteCloser, error) {
		return lz4.NewWriter(w), nil
	})
	return
}

func (c *LZ4) Decompress(src []byte) (out []byte, err error) {
	out, err = decompressStream(NameLZ4, src, func(r io.Reader) (io.Reader, error) {
		return lz4.NewReader(r), nil
	})
	return
}

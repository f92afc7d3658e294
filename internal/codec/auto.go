package codec

import (
	"errors"
	"fmt"
	"gzzip/internal/global"
	"io"
)

// Decompresses with whichever codec produced each payload. Compress uses gzip.
type Auto struct {
	codecs map[string]Codec
}

func NewAuto() (new *Auto, err error) {
	gz, err := NewGzip(0)
	if err != nil {
		return
	}
	zs, err := NewZstd(0)
	if err != nil {
		return
	}
	new = &Auto{
		codecs: map[string]Codec{
			NameGzip:   gz,
			NameZstd:   zs,
			NameLZ4:    NewLZ4(),
			NameSnappy: NewSnappy(),
			NameBrotli: NewBrotli(0),
		},
	}
	return
}

func (c *Auto) Name() string { return NameAuto }

func (c *Auto) Compress(src []byte) (out []byte, err error) {
	out, err = c.codecs[NameGzip].Compress(src)
	return
}

func (c *Auto) Decompress(src []byte) (out []byte, err error) {
	if len(src) == 0 {
		err = fmt.Errorf("empty payload: %w", global.ErrCorruptData)
		return
	}
	out, err = c.codecs[Detect(src)].Decompress(src)
	return
}

// Closes every held codec that owns resources
func (c *Auto) Close() (err error) {
	var errs []error
	for _, held := range c.codecs {
		if closer, ok := held.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	err = errors.Join(errs...)
	return
}

// Block codecs and payload format detection
package codec

import (
	"bytes"
	"fmt"
	"gzzip/internal/global"
	"io"
	"strings"
)

// Magic bytes for payload format detection
var magicBytes = []struct {
	name  string
	magic []byte
}{
	{NameGzip, []byte{0x1f, 0x8b}},
	{NameZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{NameLZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
	{NameSnappy, []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59}},
}

// Selectable codec names
func Names() (names []string) {
	names = []string{NameGzip, NameZstd, NameLZ4, NameSnappy, NameBrotli}
	return
}

// Creates codec by name. Level 0 selects the codec default.
func ByName(name string, level int) (selected Codec, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameGzip:
		selected, err = NewGzip(level)
	case NameZstd:
		selected, err = NewZstd(level)
	case NameLZ4:
		selected = NewLZ4()
	case NameSnappy:
		selected = NewSnappy()
	case NameBrotli:
		selected = NewBrotli(level)
	case NameAuto:
		selected, err = NewAuto()
	default:
		err = global.Invalid("unknown codec %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return
}

// Identifies payload format from leading bytes. Payloads without a known magic are brotli.
func Detect(payload []byte) (name string) {
	for _, entry := range magicBytes {
		if bytes.HasPrefix(payload, entry.magic) {
			name = entry.name
			return
		}
	}
	name = NameBrotli
	return
}

// Runs a stream compressor over src
func compressStream(src []byte, open func(io.Writer) (io.WriteCloser, error)) (out []byte, err error) {
	var buf bytes.Buffer
	buf.Grow(len(src)/2 + 64)

	writer, err := open(&buf)
	if err != nil {
		err = fmt.Errorf("failed to create compressor: %w", err)
		return
	}
	_, err = writer.Write(src)
	if err != nil {
		writer.Close()
		err = fmt.Errorf("failed to compress: %w", err)
		return
	}
	err = writer.Close()
	if err != nil {
		err = fmt.Errorf("failed to flush compressor: %w", err)
		return
	}
	out = buf.Bytes()
	return
}

// Runs a stream decompressor over src, any failure is corrupt input
func decompressStream(codecName string, src []byte, open func(io.Reader) (io.Reader, error)) (out []byte, err error) {
	reader, err := open(bytes.NewReader(src))
	if err != nil {
		err = fmt.Errorf("%s: %w: %v", codecName, global.ErrCorruptData, err)
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	var buf bytes.Buffer
	buf.Grow(len(src) * 2)
	_, err = io.Copy(&buf, reader)
	if err != nil {
		err = fmt.Errorf("%s: %w: %v", codecName, global.ErrCorruptData, err)
		return
	}
	out = buf.Bytes()
	return
}

// Wire layout of .gzz archives: a fixed header followed by length-prefixed blocks
package archive

import (
	"encoding/binary"
	"fmt"
	"gzzip/internal/global"
	"io"
)

// Number of blocks needed for a source of size bytes cut into chunk sized pieces
func BlockCount(size int64, chunk int) (count int, err error) {
	if size < 0 {
		err = global.Invalid("negative source size %d", size)
		return
	}
	if chunk <= 0 {
		err = global.Invalid("chunk size must be positive, got %d", chunk)
		return
	}
	if chunk > global.MaxPayloadSize {
		err = global.Invalid("chunk size %d exceeds maximum block payload %d", chunk, global.MaxPayloadSize)
		return
	}

	blocks := (size + int64(chunk) - 1) / int64(chunk)
	if blocks > int64(global.MaxBlockCount) {
		err = global.Invalid("source needs %d blocks, archive limit is %d (file too large for chunk size %d)",
			blocks, global.MaxBlockCount, chunk)
		return
	}
	count = int(blocks)
	return
}

// Create archive header for a block count
func ConstructHeader(count int) (header []byte, err error) {
	if count < 0 || count > global.MaxBlockCount {
		err = global.Invalid("block count %d outside 0..%d", count, global.MaxBlockCount)
		return
	}

	header = make([]byte, global.HeaderLen)
	binary.LittleEndian.PutUint32(header[:global.MagicKeyLen], global.MagicKey)
	binary.LittleEndian.PutUint16(header[global.MagicKeyLen:], uint16(count))
	return
}

// Validates archive header and extracts block count
func DeconstructHeader(header []byte) (count int, err error) {
	if len(header) < global.HeaderLen {
		err = global.Invalid("archive header too short: %d bytes, need %d", len(header), global.HeaderLen)
		return
	}

	magic := binary.LittleEndian.Uint32(header[:global.MagicKeyLen])
	if magic != global.MagicKey {
		err = global.Invalid("not a gzz archive: magic key 0x%08x", magic)
		return
	}

	count = int(binary.LittleEndian.Uint16(header[global.MagicKeyLen:global.HeaderLen]))
	return
}

// Reads and validates header from start of archive
func ReadHeader(r io.Reader) (count int, err error) {
	header := make([]byte, global.HeaderLen)
	n, err := io.ReadFull(r, header)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = global.Invalid("archive header too short: %d bytes, need %d", n, global.HeaderLen)
			return
		}
		err = fmt.Errorf("failed reading archive header: %w: %w", global.ErrIO, err)
		return
	}
	count, err = DeconstructHeader(header)
	return
}

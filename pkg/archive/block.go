package archive

import (
	"errors"
	"fmt"
	"gzzip/internal/global"
	"io"
)

// Encodes payload length as the 3-byte little endian block prefix
func ConstructBlockLength(payloadLen int) (prefix []byte, err error) {
	if payloadLen < 0 || payloadLen > global.MaxPayloadSize {
		err = fmt.Errorf("%w: block payload of %d bytes exceeds %d byte limit",
			global.ErrFormat, payloadLen, global.MaxPayloadSize)
		return
	}
	prefix = []byte{
		byte(payloadLen),
		byte(payloadLen >> 8),
		byte(payloadLen >> 16),
	}
	return
}

// Decodes 3-byte little endian block prefix
func DeconstructBlockLength(prefix []byte) (payloadLen int, err error) {
	if len(prefix) != global.BlockSizeLen {
		err = fmt.Errorf("%w: block length prefix is %d bytes, need %d",
			global.ErrFormat, len(prefix), global.BlockSizeLen)
		return
	}
	payloadLen = int(prefix[0]) | int(prefix[1])<<8 | int(prefix[2])<<16
	return
}

// Reads the next length-prefixed block.
// Returns io.EOF only when the stream ends exactly on a block boundary.
func ReadBlock(r io.Reader) (payload []byte, err error) {
	prefix := make([]byte, global.BlockSizeLen)
	n, err := io.ReadFull(r, prefix)
	if err != nil {
		if err == io.EOF {
			return
		}
		if err == io.ErrUnexpectedEOF {
			err = fmt.Errorf("%w: truncated block length prefix (%d of %d bytes)",
				global.ErrCorruptData, n, global.BlockSizeLen)
			return
		}
		err = fmt.Errorf("%w: failed reading block length: %w", global.ErrIO, err)
		return
	}

	payloadLen, err := DeconstructBlockLength(prefix)
	if err != nil {
		return
	}

	payload = make([]byte, payloadLen)
	n, err = io.ReadFull(r, payload)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: truncated block payload (%d of %d bytes)",
				global.ErrCorruptData, n, payloadLen)
		} else {
			err = fmt.Errorf("%w: failed reading block payload: %w", global.ErrIO, err)
		}
		payload = nil
		return
	}
	return
}

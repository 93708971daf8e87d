package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

// Blob tags written by LZ4Compressor.
const (
	tagRaw byte = 0
	tagLZ4 byte = 1
)

var ErrCorrupt = errors.New("corrupt compressed blob")

// NoCompressor stores data unchanged.
type NoCompressor struct{}

func (c *NoCompressor) Name() string {
	return "none"
}

func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

// LZ4Compressor writes a tag byte, the uncompressed length as a uvarint and
// the payload. Data that does not shrink is stored raw.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string {
	return "lz4"
}

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	n := 1 + binary.PutUvarint(header[1:], uint64(len(data)))

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	// CompressBlock returns 0 for incompressible input
	if size == 0 || size >= len(data) {
		header[0] = tagRaw
		return append(header[:n], data...), nil
	}

	header[0] = tagLZ4
	return append(header[:n], compressed[:size]...), nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrCorrupt
	}
	length, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return nil, ErrCorrupt
	}
	payload := data[1+n:]

	switch data[0] {
	case tagRaw:
		if uint64(len(payload)) != length {
			return nil, ErrCorrupt
		}
		return append([]byte(nil), payload...), nil
	case tagLZ4:
		out := make([]byte, length)
		got, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint64(got) != length {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrCorrupt, data[0])
	}
}

package chunk

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the block compression algorithm of a chunk file.
type CompressionType uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast, good for hot data).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD block compression (better ratio, good for cold data).
	CompressionZSTD CompressionType = 2
)

func (t CompressionType) String() string {
	switch t {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder(level int) *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	opt := zstd.WithEncoderLevel(zstd.SpeedDefault)
	if level > 0 {
		opt = zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level))
	}
	enc, _ := zstd.NewWriter(nil, opt)
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// If CompressedSize == 0, the block is stored uncompressed.
const blockHeaderSize = 8

// compressBlock compresses a block and prepends the block header. Blocks
// that do not shrink meaningfully (ratio > 0.9) are stored uncompressed.
func compressBlock(data []byte, compressionType CompressionType, level int) ([]byte, error) {
	var compressed []byte
	var err error

	switch compressionType {
	case CompressionLZ4:
		compressed, err = compressBlockLZ4(data, level)
	case CompressionZSTD:
		compressed, err = compressBlockZSTD(data, level)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0) // 0 = uncompressed
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func compressBlockLZ4(data []byte, level int) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	var (
		n   int
		err error
	)
	if level > 0 {
		c := lz4.CompressorHC{Level: lz4.CompressionLevel(1 << (8 + level))}
		n, err = c.CompressBlock(data, compressed)
	} else {
		var c lz4.Compressor
		n, err = c.CompressBlock(data, compressed)
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func compressBlockZSTD(data []byte, level int) ([]byte, error) {
	enc := getZstdEncoder(level)
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil), nil
}

// decompressBlock decompresses a single block, returning the payload and the
// number of input bytes consumed.
func decompressBlock(data []byte, compressionType CompressionType) (payload []byte, consumed int, err error) {
	if len(data) < blockHeaderSize {
		return nil, 0, errors.New("chunk: block too small for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		end := blockHeaderSize + int(uncompressedSize)
		if len(data) < end {
			return nil, 0, errors.New("chunk: block data too small")
		}
		return data[blockHeaderSize:end], end, nil
	}

	end := blockHeaderSize + int(compressedSize)
	if len(data) < end {
		return nil, 0, errors.New("chunk: compressed block data too small")
	}

	compressedData := data[blockHeaderSize:end]
	result := make([]byte, uncompressedSize)

	switch compressionType {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, 0, err
		}
		if uint32(n) != uncompressedSize {
			return nil, 0, errors.New("chunk: decompressed size mismatch")
		}
		return result, end, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressedData, result[:0])
		if err != nil {
			return nil, 0, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, 0, errors.New("chunk: decompressed size mismatch")
		}
		return decoded, end, nil

	default:
		return nil, 0, errors.New("chunk: compressed block with unknown compression type")
	}
}

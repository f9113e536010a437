// Package chunk implements immutable sorted (key, value) chunk files with
// optional block compression.
//
// A chunk holds a strictly increasing sequence of byte keys. It is the
// interchange format between the indexing sub-builders and the bulk-load
// primitive: the writer enforces the sort invariant that the store's
// append path depends on, and a reader hands out any number of independent
// cursors over the same underlying bytes.
package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrKeyOrder is returned when a key is inserted out of order.
	ErrKeyOrder = errors.New("chunk: keys must be inserted in strictly increasing order")
	// ErrInvalidFormat is returned when a byte stream is not a chunk.
	ErrInvalidFormat = errors.New("chunk: invalid format")
)

var magic = [4]byte{'W', 'P', 'C', '1'}

const headerSize = 5 // magic + compression type

// defaultBlockSize is the uncompressed size at which a block is cut.
const defaultBlockSize = 8 * 1024

// Writer builds a chunk. Keys must be inserted in strictly increasing
// byte-lexicographic order.
type Writer struct {
	out         bytes.Buffer
	block       bytes.Buffer
	compression CompressionType
	level       int
	blockSize   int
	lastKey     []byte
	count       int
}

// NewWriter creates a chunk writer using the given block compression type
// and level. A level of 0 selects the codec default.
func NewWriter(compression CompressionType, level int) *Writer {
	w := &Writer{
		compression: compression,
		level:       level,
		blockSize:   defaultBlockSize,
	}
	w.out.Write(magic[:])
	w.out.WriteByte(byte(compression))
	return w
}

// Insert appends an entry. The key must sort strictly after every key
// inserted before it.
func (w *Writer) Insert(key, value []byte) error {
	if w.lastKey != nil && bytes.Compare(key, w.lastKey) <= 0 {
		return fmt.Errorf("%w: %q after %q", ErrKeyOrder, key, w.lastKey)
	}
	w.lastKey = append(w.lastKey[:0], key...)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(key)))
	w.block.Write(lenBuf[:])
	w.block.Write(key)
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(value)))
	w.block.Write(lenBuf[:])
	w.block.Write(value)
	w.count++

	if w.block.Len() >= w.blockSize {
		return w.flushBlock()
	}
	return nil
}

// Len returns the number of entries inserted so far.
func (w *Writer) Len() int { return w.count }

func (w *Writer) flushBlock() error {
	if w.block.Len() == 0 {
		return nil
	}
	blk, err := compressBlock(w.block.Bytes(), w.compression, w.level)
	if err != nil {
		return err
	}
	w.out.Write(blk)
	w.block.Reset()
	return nil
}

// Finish flushes the last block and returns a reader over the finished
// chunk. The writer must not be used afterwards.
func (w *Writer) Finish() (*Reader, error) {
	if err := w.flushBlock(); err != nil {
		return nil, err
	}
	return NewReader(w.out.Bytes())
}

// Reader is an immutable view over a finished chunk. It is safe for
// concurrent use; iteration state lives in cursors.
type Reader struct {
	data        []byte // block stream, header stripped
	compression CompressionType
}

// NewReader parses a chunk byte stream.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic[:]) {
		return nil, ErrInvalidFormat
	}
	compression := CompressionType(data[4])
	switch compression {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return nil, fmt.Errorf("%w: compression type %d", ErrInvalidFormat, compression)
	}
	return &Reader{data: data[headerSize:], compression: compression}, nil
}

// Compression returns the block compression type of the chunk.
func (r *Reader) Compression() CompressionType { return r.compression }

// IsEmpty reports whether the chunk holds no entries.
func (r *Reader) IsEmpty() bool { return len(r.data) == 0 }

// Cursor returns a fresh cursor positioned before the first entry. Cursors
// are independent: the indexing passes that consume the same chunk twice
// each take their own.
func (r *Reader) Cursor() *Cursor {
	return &Cursor{reader: r}
}

// Cursor iterates over the entries of a chunk in key order.
type Cursor struct {
	reader *Reader
	off    int    // offset of the next block in reader.data
	block  []byte // current decoded block
	pos    int    // position in block
}

// Next returns the next entry, or (nil, nil, nil) once the cursor is
// exhausted. The returned slices are only valid until the next call.
func (c *Cursor) Next() (key, value []byte, err error) {
	for c.pos >= len(c.block) {
		if c.off >= len(c.reader.data) {
			return nil, nil, nil
		}
		block, consumed, err := decompressBlock(c.reader.data[c.off:], c.reader.compression)
		if err != nil {
			return nil, nil, err
		}
		c.off += consumed
		c.block = block
		c.pos = 0
	}

	key, n, err := readField(c.block[c.pos:])
	if err != nil {
		return nil, nil, err
	}
	c.pos += n
	value, n, err = readField(c.block[c.pos:])
	if err != nil {
		return nil, nil, err
	}
	c.pos += n
	return key, value, nil
}

// Reset rewinds the cursor before the first entry.
func (c *Cursor) Reset() {
	c.off = 0
	c.block = nil
	c.pos = 0
}

func readField(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, ErrInvalidFormat
	}
	n := binary.LittleEndian.Uint32(b)
	end := 4 + int(n)
	if len(b) < end {
		return nil, 0, ErrInvalidFormat
	}
	return b[4:end], end, nil
}

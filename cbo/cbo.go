// Package cbo implements the "condensed-bytes-or-roaring" codec used for all
// posting values.
//
// Small document-id sets are stored as a raw array of little-endian u32s,
// larger ones as a serialized roaring bitmap. The break-even point is
// Threshold ids: below it the raw array is both smaller and cheaper to
// decode than the roaring container headers.
package cbo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Threshold is the number of ids at or below which a bitmap is encoded as a
// raw little-endian u32 array.
const Threshold = 7

// ErrInvalidEncoding is returned when bytes cannot be decoded as either a
// raw u32 array or a serialized roaring bitmap.
var ErrInvalidEncoding = errors.New("cbo: invalid bitmap encoding")

// Encode serializes the bitmap.
func Encode(bm *roaring.Bitmap) ([]byte, error) {
	if n := bm.GetCardinality(); n <= Threshold {
		out := make([]byte, 0, n*4)
		it := bm.Iterator()
		for it.HasNext() {
			out = binary.LittleEndian.AppendUint32(out, it.Next())
		}
		return out, nil
	}
	return bm.ToBytes()
}

// Decode deserializes bytes produced by Encode.
func Decode(b []byte) (*roaring.Bitmap, error) {
	bm := roaring.New()
	if len(b) <= Threshold*4 {
		if len(b)%4 != 0 {
			return nil, ErrInvalidEncoding
		}
		for len(b) > 0 {
			bm.Add(binary.LittleEndian.Uint32(b))
			b = b[4:]
		}
		return bm, nil
	}
	if err := bm.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	return bm, nil
}

// Merge decodes every value, unions them and re-encodes the result. The
// union is independent of the order of the inputs.
func Merge(values ...[]byte) ([]byte, error) {
	merged := roaring.New()
	for _, v := range values {
		bm, err := Decode(v)
		if err != nil {
			return nil, err
		}
		merged.Or(bm)
	}
	return Encode(merged)
}

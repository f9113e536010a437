package chunk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriter_OrderPreserved(t *testing.T) {
	for _, compression := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(compression.String(), func(t *testing.T) {
			w := NewWriter(compression, 0)
			for i := 0; i < 1000; i++ {
				key := []byte(fmt.Sprintf("key-%04d", i))
				value := []byte(fmt.Sprintf("value-%d", i))
				require.NoError(t, w.Insert(key, value))
			}
			require.Equal(t, 1000, w.Len())

			r, err := w.Finish()
			require.NoError(t, err)
			require.Equal(t, compression, r.Compression())

			c := r.Cursor()
			for i := 0; i < 1000; i++ {
				key, value, err := c.Next()
				require.NoError(t, err)
				require.Equal(t, fmt.Sprintf("key-%04d", i), string(key))
				require.Equal(t, fmt.Sprintf("value-%d", i), string(value))
			}
			key, value, err := c.Next()
			require.NoError(t, err)
			require.Nil(t, key)
			require.Nil(t, value)
		})
	}
}

func TestWriter_RejectsUnsortedKeys(t *testing.T) {
	w := NewWriter(CompressionNone, 0)
	require.NoError(t, w.Insert([]byte("b"), []byte("1")))

	require.ErrorIs(t, w.Insert([]byte("a"), []byte("2")), ErrKeyOrder)
	require.ErrorIs(t, w.Insert([]byte("b"), []byte("3")), ErrKeyOrder)
}

func TestReader_IndependentCursors(t *testing.T) {
	w := NewWriter(CompressionLZ4, 0)
	require.NoError(t, w.Insert([]byte("a"), []byte("1")))
	require.NoError(t, w.Insert([]byte("b"), []byte("2")))
	r, err := w.Finish()
	require.NoError(t, err)

	c1 := r.Cursor()
	c2 := r.Cursor()

	k1, _, err := c1.Next()
	require.NoError(t, err)
	require.Equal(t, "a", string(k1))

	// The second cursor starts from the beginning regardless of c1.
	k2, _, err := c2.Next()
	require.NoError(t, err)
	require.Equal(t, "a", string(k2))

	c1.Reset()
	k1, _, err = c1.Next()
	require.NoError(t, err)
	require.Equal(t, "a", string(k1))
}

func TestReader_Empty(t *testing.T) {
	r, err := NewWriter(CompressionZSTD, 0).Finish()
	require.NoError(t, err)
	require.True(t, r.IsEmpty())

	key, value, err := r.Cursor().Next()
	require.NoError(t, err)
	require.Nil(t, key)
	require.Nil(t, value)
}

func TestNewReader_InvalidFormat(t *testing.T) {
	_, err := NewReader([]byte("not a chunk"))
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewReader([]byte{'W', 'P', 'C', '1', 99})
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSorter_MergesDuplicates(t *testing.T) {
	concat := func(_ []byte, values [][]byte) ([]byte, error) {
		var out []byte
		for _, v := range values {
			out = append(out, v...)
		}
		return out, nil
	}

	s := NewSorter(concat, CompressionNone, 0)
	s.Insert([]byte("b"), []byte("x"))
	s.Insert([]byte("a"), []byte("1"))
	s.Insert([]byte("b"), []byte("y"))
	require.Equal(t, 2, s.Len())

	r, err := s.Finish()
	require.NoError(t, err)

	c := r.Cursor()
	key, value, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, "a", string(key))
	require.Equal(t, "1", string(value))

	key, value, err = c.Next()
	require.NoError(t, err)
	require.Equal(t, "b", string(key))
	require.Equal(t, "xy", string(value))
}

func TestWriter_LargeValuesAcrossBlocks(t *testing.T) {
	w := NewWriter(CompressionZSTD, 3)
	large := make([]byte, defaultBlockSize*2)
	for i := range large {
		large[i] = byte(i % 251)
	}
	require.NoError(t, w.Insert([]byte("big"), large))
	require.NoError(t, w.Insert([]byte("small"), []byte("v")))

	r, err := w.Finish()
	require.NoError(t, err)

	c := r.Cursor()
	key, value, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, "big", string(key))
	require.Equal(t, large, value)

	key, value, err = c.Next()
	require.NoError(t, err)
	require.Equal(t, "small", string(key))
	require.Equal(t, "v", string(value))
}

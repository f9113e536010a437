package chunk

import (
	"sort"
)

// MergeFunc combines all values inserted under the same key into one.
type MergeFunc func(key []byte, values [][]byte) ([]byte, error)

// Sorter buffers unordered insertions, merges duplicate keys and produces a
// sorted chunk. It is the staging area the sub-builders use before handing
// postings to the write primitives.
type Sorter struct {
	entries     map[string][][]byte
	merge       MergeFunc
	compression CompressionType
	level       int
}

// NewSorter creates a sorter whose output chunk uses the given compression
// settings. merge is called once per key holding more than one value.
func NewSorter(merge MergeFunc, compression CompressionType, level int) *Sorter {
	return &Sorter{
		entries:     make(map[string][][]byte),
		merge:       merge,
		compression: compression,
		level:       level,
	}
}

// Insert buffers a value under the key. Keys may repeat and arrive in any
// order.
func (s *Sorter) Insert(key, value []byte) {
	k := string(key)
	v := make([]byte, len(value))
	copy(v, value)
	s.entries[k] = append(s.entries[k], v)
}

// Len returns the number of distinct keys buffered.
func (s *Sorter) Len() int { return len(s.entries) }

// Finish merges, sorts and writes the buffered entries into a chunk.
func (s *Sorter) Finish() (*Reader, error) {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := NewWriter(s.compression, s.level)
	for _, k := range keys {
		values := s.entries[k]
		value := values[0]
		if len(values) > 1 {
			merged, err := s.merge([]byte(k), values)
			if err != nil {
				return nil, err
			}
			value = merged
		}
		if err := w.Insert([]byte(k), value); err != nil {
			return nil, err
		}
	}
	return w.Finish()
}

package search

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Distinct is a deduplication policy. Given a candidate set and a set of
// already excluded documents, it yields one representative document id per
// distinct attribute value, mutating excluded as it goes so that later calls
// skip what has already been represented.
type Distinct interface {
	Distinct(candidates, excluded *roaring.Bitmap) iter.Seq2[uint32, error]
}

// AttributeLookup returns the distinct attribute value of a document.
type AttributeLookup func(docid uint32) (string, error)

// AttributeDistinct deduplicates candidates by the value returned from a
// lookup function, keeping the first document seen per value.
type AttributeDistinct struct {
	lookup AttributeLookup
}

var _ Distinct = (*AttributeDistinct)(nil)

// NewAttributeDistinct creates a Distinct over the lookup function.
func NewAttributeDistinct(lookup AttributeLookup) *AttributeDistinct {
	return &AttributeDistinct{lookup: lookup}
}

// Distinct yields one candidate per distinct attribute value. A lookup
// failure stops the sequence with the error.
func (d *AttributeDistinct) Distinct(candidates, excluded *roaring.Bitmap) iter.Seq2[uint32, error] {
	return func(yield func(uint32, error) bool) {
		seen := make(map[string]struct{})
		it := candidates.Iterator()
		for it.HasNext() {
			id := it.Next()
			if excluded.Contains(id) {
				continue
			}
			value, err := d.lookup(id)
			if err != nil {
				yield(0, err)
				return
			}
			excluded.Add(id)
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Package update contains the indexing-time write path: the merge-insert and
// bulk-load primitives over the posting buckets, and the builder deriving the
// word→prefix and prefix→word proximity databases from a batch of word-pair
// postings.
//
// Everything in this package runs inside a single exclusive write transaction
// supplied by the caller. The primitives do no locking of their own and must
// be called sequentially.
package update

import (
	"bytes"

	bolt "go.etcd.io/bbolt"

	"github.com/wordprox/wordprox"
	"github.com/wordprox/wordprox/cbo"
	"github.com/wordprox/wordprox/chunk"
)

// InsertInto writes value under key in the posting bucket, merging with the
// already stored bitmap if the key exists.
//
// The lookup goes through a cursor positioned at-or-after the key. On an
// exact match the merged bytes are written back under the caller-owned key:
// bbolt retains key and value slices until the transaction commits, so
// nothing borrowed from the cursor may be handed to Put.
func InsertInto(bkt *bolt.Bucket, key, value []byte) error {
	// Owned copy: the caller's key may itself borrow from a cursor or a
	// decoded chunk block.
	owned := make([]byte, len(key))
	copy(owned, key)

	c := bkt.Cursor()
	k, old := c.Seek(owned)
	if k != nil && bytes.Equal(k, owned) {
		merged, err := cbo.Merge(old, value)
		if err != nil {
			return wordprox.NewErrMergingKeys("get-put-merge", err)
		}
		return bkt.Put(owned, merged)
	}
	v := make([]byte, len(value))
	copy(v, value)
	return bkt.Put(owned, v)
}

// WriteWithoutMerging loads a sorted chunk into the posting bucket without
// merging values.
//
// If the bucket is empty the entries are appended in stream order, filling
// leaf pages completely since the chunk writer already guarantees sorted,
// non-overlapping keys. Otherwise each entry is written with a point put; the
// caller must guarantee that the incoming keys do not already exist in the
// bucket, because a collision silently overwrites the stored value.
//
// It returns the number of entries written and whether the fast append path
// was taken.
func WriteWithoutMerging(bkt *bolt.Bucket, reader *chunk.Reader) (int, bool, error) {
	first, _ := bkt.Cursor().First()
	appending := first == nil

	if appending {
		// Sequential fill: no page splits when keys arrive in order.
		bkt.FillPercent = 1.0
		defer func() { bkt.FillPercent = bolt.DefaultFillPercent }()
	}

	count := 0
	cursor := reader.Cursor()
	for {
		k, v, err := cursor.Next()
		if err != nil {
			return count, appending, err
		}
		if k == nil {
			return count, appending, nil
		}
		key := make([]byte, len(k))
		copy(key, k)
		value := make([]byte, len(v))
		copy(value, v)
		if err := bkt.Put(key, value); err != nil {
			return count, appending, err
		}
		count++
	}
}

package update

import (
	"bytes"

	bolt "go.etcd.io/bbolt"

	"github.com/wordprox/wordprox"
	"github.com/wordprox/wordprox/cbo"
	"github.com/wordprox/wordprox/chunk"
)

// postingStream yields sorted (key, value) posting entries. A nil key marks
// the end of the stream.
type postingStream func() (key, value []byte, err error)

func chunkStream(c *chunk.Cursor) postingStream {
	return c.Next
}

func bucketStream(bkt *bolt.Bucket) postingStream {
	c := bkt.Cursor()
	first := true
	return func() ([]byte, []byte, error) {
		if first {
			first = false
			k, v := c.First()
			return k, v, nil
		}
		k, v := c.Next()
		return k, v, nil
	}
}

// term selects which side of a posting pair the prefixes are matched
// against.
type term int

const (
	secondTerm term = iota // word→prefix: prefixes replace the second word
	firstTerm              // prefix→word: prefixes replace the first word
)

// derivePrefixPairs walks a posting stream and emits one derived entry per
// (pair, matching prefix) combination. Pairs above maxProximity and prefixes
// above maxPrefixLength are excluded.
func derivePrefixPairs(
	stream postingStream,
	prefixes []string,
	side term,
	maxProximity uint8,
	maxPrefixLength int,
	emit func(key, value []byte) error,
) error {
	for {
		k, v, err := stream()
		if err != nil {
			return err
		}
		if k == nil {
			return nil
		}

		first, second, proximity, err := wordprox.SplitPairKey(k)
		if err != nil {
			return err
		}
		if proximity > maxProximity {
			continue
		}

		matched := second
		if side == firstTerm {
			matched = first
		}
		for _, prefix := range prefixes {
			if len(prefix) > maxPrefixLength {
				continue
			}
			if !bytes.HasPrefix(matched, []byte(prefix)) {
				continue
			}
			var key []byte
			if side == secondTerm {
				key = wordprox.PairKey(first, []byte(prefix), proximity)
			} else {
				key = wordprox.PairKey([]byte(prefix), second, proximity)
			}
			if err := emit(key, v); err != nil {
				return err
			}
		}
	}
}

// purgeDeletedPrefixes removes derived entries whose prefix component is in
// the deleted set.
func purgeDeletedPrefixes(bkt *bolt.Bucket, side term, deleted map[string]struct{}) error {
	if len(deleted) == 0 {
		return nil
	}
	c := bkt.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		first, second, _, err := wordprox.SplitPairKey(k)
		if err != nil {
			return err
		}
		prefix := second
		if side == firstTerm {
			prefix = first
		}
		if _, ok := deleted[string(prefix)]; ok {
			if err := c.Delete(); err != nil {
				return err
			}
		}
	}
	return nil
}

func mergeCboValues(process string) chunk.MergeFunc {
	return func(_ []byte, values [][]byte) ([]byte, error) {
		merged, err := cbo.Merge(values...)
		if err != nil {
			return nil, wordprox.NewErrMergingKeys(process, err)
		}
		return merged, nil
	}
}

// indexDerivedDatabase runs one derivation direction into the destination
// bucket.
//
// Pairs carrying a common (already indexed) prefix come only from the new
// postings and are point-merged into the destination. Pairs carrying a new
// prefix are collected from the full base database plus the new postings
// into one sorted chunk and bulk-loaded: their keys cannot exist in the
// destination yet, which is exactly the disjointness the bulk-load slow path
// requires.
func indexDerivedDatabase(
	tx *bolt.Tx,
	destName []byte,
	side term,
	maxProximity uint8,
	maxPrefixLength int,
	newPostings *chunk.Reader,
	newPrefixes []string,
	commonPrefixes [][]string,
	deletedPrefixes map[string]struct{},
	compression chunk.CompressionType,
	compressionLevel int,
) (int, error) {
	dest := tx.Bucket(destName)
	base := tx.Bucket(wordprox.BucketWordPairProximityDocids)
	process := string(destName)

	if err := purgeDeletedPrefixes(dest, side, deletedPrefixes); err != nil {
		return 0, err
	}

	entries := 0

	// Already indexed prefixes: only the new postings can contribute new
	// documents, and the derived keys may already exist, so every entry goes
	// through the merge-insert primitive.
	for _, batch := range commonPrefixes {
		sorter := chunk.NewSorter(mergeCboValues(process), compression, compressionLevel)
		err := derivePrefixPairs(chunkStream(newPostings.Cursor()), batch, side,
			maxProximity, maxPrefixLength,
			func(key, value []byte) error {
				sorter.Insert(key, value)
				return nil
			})
		if err != nil {
			return entries, err
		}

		reader, err := sorter.Finish()
		if err != nil {
			return entries, err
		}
		c := reader.Cursor()
		for {
			k, v, err := c.Next()
			if err != nil {
				return entries, err
			}
			if k == nil {
				break
			}
			if err := InsertInto(dest, k, v); err != nil {
				return entries, err
			}
			entries++
		}
	}

	// Newly introduced prefixes: every pair in the base database and in the
	// new postings can contribute, and none of the derived keys can exist in
	// the destination yet.
	if len(newPrefixes) > 0 {
		sorter := chunk.NewSorter(mergeCboValues(process), compression, compressionLevel)
		collect := func(key, value []byte) error {
			sorter.Insert(key, value)
			return nil
		}
		err := derivePrefixPairs(bucketStream(base), newPrefixes, side,
			maxProximity, maxPrefixLength, collect)
		if err != nil {
			return entries, err
		}
		err = derivePrefixPairs(chunkStream(newPostings.Cursor()), newPrefixes, side,
			maxProximity, maxPrefixLength, collect)
		if err != nil {
			return entries, err
		}

		reader, err := sorter.Finish()
		if err != nil {
			return entries, err
		}
		n, _, err := WriteWithoutMerging(dest, reader)
		entries += n
		if err != nil {
			return entries, err
		}
	}

	return entries, nil
}

// indexWordPrefixDatabase derives (word, prefix, proximity) entries into the
// word-prefix-pair bucket.
func indexWordPrefixDatabase(
	tx *bolt.Tx,
	maxProximity uint8,
	maxPrefixLength int,
	newPostings *chunk.Reader,
	newPrefixes []string,
	commonPrefixes [][]string,
	deletedPrefixes map[string]struct{},
	compression chunk.CompressionType,
	compressionLevel int,
) (int, error) {
	return indexDerivedDatabase(tx, wordprox.BucketWordPrefixPairProximityDocids,
		secondTerm, maxProximity, maxPrefixLength,
		newPostings, newPrefixes, commonPrefixes, deletedPrefixes,
		compression, compressionLevel)
}

// indexPrefixWordDatabase derives (prefix, word, proximity) entries into the
// prefix-word-pair bucket.
func indexPrefixWordDatabase(
	tx *bolt.Tx,
	maxProximity uint8,
	maxPrefixLength int,
	newPostings *chunk.Reader,
	newPrefixes []string,
	commonPrefixes [][]string,
	deletedPrefixes map[string]struct{},
	compression chunk.CompressionType,
	compressionLevel int,
) (int, error) {
	return indexDerivedDatabase(tx, wordprox.BucketPrefixWordPairProximityDocids,
		firstTerm, maxProximity, maxPrefixLength,
		newPostings, newPrefixes, commonPrefixes, deletedPrefixes,
		compression, compressionLevel)
}

package update

import (
	bolt "go.etcd.io/bbolt"

	"github.com/wordprox/wordprox"
	"github.com/wordprox/wordprox/chunk"
)

// PrefixWordPairs derives the word→prefix and prefix→word proximity
// databases from a batch of word-pair proximity postings.
//
// Both derivations run inside the write transaction the builder was created
// with. They write disjoint buckets, so their relative order is not
// observable, but neither is committed until the caller commits the
// transaction.
type PrefixWordPairs struct {
	tx    *bolt.Tx
	index *wordprox.Index

	maxProximity     uint8
	maxPrefixLength  int
	compression      chunk.CompressionType
	compressionLevel int
}

// NewPrefixWordPairs creates a builder over the given write transaction.
// The compression settings apply to the intermediate sorted chunks produced
// by the derivation passes.
func NewPrefixWordPairs(tx *bolt.Tx, index *wordprox.Index, compression chunk.CompressionType, compressionLevel int) *PrefixWordPairs {
	return &PrefixWordPairs{
		tx:               tx,
		index:            index,
		maxProximity:     4,
		maxPrefixLength:  2,
		compression:      compression,
		compressionLevel: compressionLevel,
	}
}

// MaxProximity sets the maximum proximity required to make a pair part of
// the prefix databases. If two words are further apart than the threshold,
// the associated documents will not be part of the prefix databases.
//
// Default value is 4. The value must be lower or equal than 7 and is capped
// to that bound otherwise.
func (b *PrefixWordPairs) MaxProximity(value uint8) *PrefixWordPairs {
	b.maxProximity = min(value, 7)
	return b
}

// MaxPrefixLength sets the maximum length a prefix of a word pair is allowed
// to have to be part of the prefix databases. Documents associated with a
// longer prefix are excluded.
//
// Default value is 2.
func (b *PrefixWordPairs) MaxPrefixLength(value int) *PrefixWordPairs {
	b.maxPrefixLength = value
	return b
}

// Execute runs the word→prefix and then the prefix→word derivation.
//
// newPostings is the sorted chunk of word-pair proximity postings introduced
// by this update batch; each derivation consumes it through its own cursor.
// newPrefixes are the prefixes introduced by this batch, commonPrefixes the
// batches of prefixes that were already indexed, and deletedPrefixes the
// prefixes whose derived entries must be dropped.
func (b *PrefixWordPairs) Execute(
	newPostings *chunk.Reader,
	newPrefixes []string,
	commonPrefixes [][]string,
	deletedPrefixes map[string]struct{},
) error {
	logger := b.index.Logger()

	entries, err := indexWordPrefixDatabase(b.tx, b.maxProximity, b.maxPrefixLength,
		newPostings, newPrefixes, commonPrefixes, deletedPrefixes,
		b.compression, b.compressionLevel)
	logger.LogDerivation("word-prefix", entries, err)
	if err != nil {
		return err
	}

	entries, err = indexPrefixWordDatabase(b.tx, b.maxProximity, b.maxPrefixLength,
		newPostings, newPrefixes, commonPrefixes, deletedPrefixes,
		b.compression, b.compressionLevel)
	logger.LogDerivation("prefix-word", entries, err)
	if err != nil {
		return err
	}

	return nil
}

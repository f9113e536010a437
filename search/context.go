package search

import (
	"github.com/RoaringBitmap/roaring/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/wordprox/wordprox"
	"github.com/wordprox/wordprox/cbo"
	"github.com/wordprox/wordprox/internal/cache"
)

// Context is the read-only view over the indexed data a query expression is
// resolved against. Implementations borrow a read snapshot; a Context and
// everything resolved through it must not outlive that snapshot.
//
// Returned bitmaps may be shared (cached) and must not be mutated by
// callers.
type Context interface {
	// Documents returns the bitmap of all live document ids.
	Documents() (*roaring.Bitmap, error)
	// WordDocids returns the documents containing the word.
	WordDocids(word string) (*roaring.Bitmap, error)
	// WordPrefixDocids returns the documents containing a word starting
	// with the prefix.
	WordPrefixDocids(prefix string) (*roaring.Bitmap, error)
	// WordPairProximityDocids returns the documents containing the two
	// words at the given proximity.
	WordPairProximityDocids(left, right string, proximity uint8) (*roaring.Bitmap, error)
	// WordPrefixPairProximityDocids is WordPairProximityDocids with the
	// right side generalized to a prefix.
	WordPrefixPairProximityDocids(word, prefix string, proximity uint8) (*roaring.Bitmap, error)
	// PrefixWordPairProximityDocids is WordPairProximityDocids with the
	// left side generalized to a prefix.
	PrefixWordPairProximityDocids(prefix, word string, proximity uint8) (*roaring.Bitmap, error)
}

// txContextCacheSize bounds the decoded bitmaps kept per snapshot.
const txContextCacheSize = 512

// TxContext implements Context over a bbolt read transaction.
//
// Decoded bitmaps are kept in a small LRU so that repeated lookups of the
// same posting (common across pipeline stages sharing one snapshot) do not
// decode twice.
type TxContext struct {
	tx    *bolt.Tx
	cache *cache.LRU[*roaring.Bitmap]
}

var _ Context = (*TxContext)(nil)

// NewTxContext creates a Context borrowing the given read transaction.
func NewTxContext(tx *bolt.Tx) *TxContext {
	return &TxContext{
		tx:    tx,
		cache: cache.NewLRU[*roaring.Bitmap](txContextCacheSize),
	}
}

func (c *TxContext) lookup(bucket, key []byte) (*roaring.Bitmap, error) {
	cacheKey := string(bucket) + "\x00" + string(key)
	if bm, ok := c.cache.Get(cacheKey); ok {
		return bm, nil
	}

	bkt := c.tx.Bucket(bucket)
	if bkt == nil {
		return roaring.New(), nil
	}
	v := bkt.Get(key)
	if v == nil {
		bm := roaring.New()
		c.cache.Set(cacheKey, bm)
		return bm, nil
	}
	bm, err := cbo.Decode(v)
	if err != nil {
		return nil, err
	}
	c.cache.Set(cacheKey, bm)
	return bm, nil
}

// Documents returns the bitmap of all live document ids.
func (c *TxContext) Documents() (*roaring.Bitmap, error) {
	return c.lookup(wordprox.BucketDocuments, wordprox.DocumentsKey)
}

// WordDocids returns the documents containing the word.
func (c *TxContext) WordDocids(word string) (*roaring.Bitmap, error) {
	return c.lookup(wordprox.BucketWordDocids, []byte(word))
}

// WordPrefixDocids returns the documents containing a word starting with
// the prefix.
func (c *TxContext) WordPrefixDocids(prefix string) (*roaring.Bitmap, error) {
	return c.lookup(wordprox.BucketWordPrefixDocids, []byte(prefix))
}

// WordPairProximityDocids returns the documents containing the two words at
// the given proximity.
func (c *TxContext) WordPairProximityDocids(left, right string, proximity uint8) (*roaring.Bitmap, error) {
	key := wordprox.PairKey([]byte(left), []byte(right), proximity)
	return c.lookup(wordprox.BucketWordPairProximityDocids, key)
}

// WordPrefixPairProximityDocids returns the documents containing the word
// followed by any word starting with the prefix at the given proximity.
func (c *TxContext) WordPrefixPairProximityDocids(word, prefix string, proximity uint8) (*roaring.Bitmap, error) {
	key := wordprox.PairKey([]byte(word), []byte(prefix), proximity)
	return c.lookup(wordprox.BucketWordPrefixPairProximityDocids, key)
}

// PrefixWordPairProximityDocids returns the documents containing any word
// starting with the prefix followed by the word at the given proximity.
func (c *TxContext) PrefixWordPairProximityDocids(prefix, word string, proximity uint8) (*roaring.Bitmap, error) {
	key := wordprox.PairKey([]byte(prefix), []byte(word), proximity)
	return c.lookup(wordprox.BucketPrefixWordPairProximityDocids, key)
}

package wordprox

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/wordprox/wordprox/blobstore"
)

// Bucket names of the posting databases owned by an Index.
//
// Every bucket maps a byte-lexicographically ordered posting key to a
// CBO-encoded bitmap of document ids.
var (
	// BucketWordDocids maps a word to the documents containing it.
	BucketWordDocids = []byte("word-docids")
	// BucketWordPrefixDocids maps a word prefix to the documents containing
	// a word starting with it.
	BucketWordPrefixDocids = []byte("word-prefix-docids")
	// BucketWordPairProximityDocids is the base database: (w1, w2, proximity)
	// pairs to documents.
	BucketWordPairProximityDocids = []byte("word-pair-proximity-docids")
	// BucketWordPrefixPairProximityDocids is derived: (word, prefix, proximity).
	BucketWordPrefixPairProximityDocids = []byte("word-prefix-pair-proximity-docids")
	// BucketPrefixWordPairProximityDocids is derived: (prefix, word, proximity).
	BucketPrefixWordPairProximityDocids = []byte("prefix-word-pair-proximity-docids")
	// BucketDocuments holds the bitmap of all live document ids under DocumentsKey.
	BucketDocuments = []byte("documents")
)

// DocumentsKey is the single key of BucketDocuments.
var DocumentsKey = []byte("all")

var buckets = [][]byte{
	BucketWordDocids,
	BucketWordPrefixDocids,
	BucketWordPairProximityDocids,
	BucketWordPrefixPairProximityDocids,
	BucketPrefixWordPairProximityDocids,
	BucketDocuments,
}

// Index owns the bbolt database holding the posting buckets.
//
// bbolt gives us the ordered key space, MVCC read snapshots and the single
// exclusive write transaction that the update primitives rely on. An Index is
// safe for concurrent use; writers serialize on the underlying store.
type Index struct {
	db     *bolt.DB
	path   string
	logger *Logger
}

// Open opens (or creates) an index at the given path and ensures all posting
// buckets exist.
func Open(path string, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	db, err := bolt.Open(path, 0o600, o.boltOptions)
	if err != nil {
		return nil, fmt.Errorf("open index %q: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	o.logger.Debug("index opened", "path", path)

	return &Index{db: db, path: path, logger: o.logger}, nil
}

// Path returns the filesystem path of the index database.
func (i *Index) Path() string { return i.path }

// Logger returns the logger the index was opened with.
func (i *Index) Logger() *Logger { return i.logger }

// Update runs fn inside the exclusive write transaction. Mutations are
// atomic: if fn returns an error the whole transaction rolls back.
func (i *Index) Update(fn func(tx *bolt.Tx) error) error {
	return i.db.Update(fn)
}

// View runs fn against a read snapshot. Values read inside fn must not
// escape the transaction without being copied.
func (i *Index) View(fn func(tx *bolt.Tx) error) error {
	return i.db.View(fn)
}

// Backup writes a consistent copy of the index into the blob store under the
// given name. The copy is taken through a read transaction, so concurrent
// writers are not blocked.
func (i *Index) Backup(ctx context.Context, store blobstore.Store, name string) error {
	start := time.Now()

	err := i.db.View(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		w, err := store.Create(ctx, name)
		if err != nil {
			return fmt.Errorf("create backup blob %q: %w", name, err)
		}
		if _, err := tx.WriteTo(w); err != nil {
			_ = w.Close()
			return fmt.Errorf("write backup: %w", err)
		}
		return w.Close()
	})

	i.logger.LogBackup(ctx, name, time.Since(start), err)

	return err
}

// Close closes the underlying database. The Index must not be used afterwards.
func (i *Index) Close() error {
	return i.db.Close()
}

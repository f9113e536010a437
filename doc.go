// Package wordprox provides an embedded word-pair proximity index for Go.
//
// Wordprox is the indexing and query substrate of a document search engine.
// It maintains a set of ordered on-disk posting databases that map word and
// prefix pairs, together with their in-document proximity, to compressed
// bitmaps of document ids, and it provides the entry stage of the ranking
// pipeline that turns a query expression into an initial candidate set.
//
// # Quick Start
//
//	idx, err := wordprox.Open("./index.db")
//	if err != nil {
//	    panic(err)
//	}
//	defer idx.Close()
//
// Derive the prefix databases from a batch of word-pair postings:
//
//	err = idx.Update(func(tx *bbolt.Tx) error {
//	    b := update.NewPrefixWordPairs(tx, idx, chunk.CompressionZSTD, 3)
//	    b.MaxProximity(4)
//	    b.MaxPrefixLength(2)
//	    return b.Execute(postings, newPrefixes, commonPrefixes, deletedPrefixes)
//	})
//
// Run the first ranking stage against a read snapshot:
//
//	err = idx.View(func(tx *bbolt.Tx) error {
//	    sctx := search.NewTxContext(tx)
//	    initial := search.NewInitial(sctx, queryTree, nil, true, nil)
//	    result, err := initial.Next(&search.CriterionParameters{
//	        WordDistanceCache: search.NewWordDistanceCache(),
//	    })
//	    ...
//	})
//
// # Storage Model
//
// Postings live in bbolt buckets keyed by the byte-lexicographic layout
// word || 0x00 || second-term || proximity. Values are CBO-encoded roaring
// bitmaps: small document-id sets are stored as raw little-endian u32 arrays,
// larger ones as serialized roaring bitmaps. Values are never overwritten,
// only merged, until a deletion pass rewrites them.
//
// # Key Features
//
//   - Merge-or-insert and sorted bulk-append write primitives
//   - Word→prefix and prefix→word proximity database derivation
//   - Compressed sorted chunk files (LZ4/ZSTD) for intermediate postings
//   - Single-fire Initial criterion with exhaustive hit counting
//   - Distinct-attribute deduplication for exact total-hit reporting
//   - Consistent snapshot backup to local, S3 or MinIO blob stores
package wordprox

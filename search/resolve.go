package search

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// WordDistanceCache memoizes word-pair proximity lookups for one pipeline
// invocation. It is threaded by reference through every stage and through
// the resolver, so an exhaustive resolution and the later lazy stages never
// fetch the same pair twice.
//
// The cache borrows the same read snapshot as the Context that fills it and
// must not outlive it.
type WordDistanceCache struct {
	pairs map[wordDistanceKey]*roaring.Bitmap
}

type wordDistanceKey struct {
	left      string
	right     string
	proximity uint8
}

// NewWordDistanceCache creates an empty cache.
func NewWordDistanceCache() *WordDistanceCache {
	return &WordDistanceCache{
		pairs: make(map[wordDistanceKey]*roaring.Bitmap),
	}
}

func (c *WordDistanceCache) pairDocids(ctx Context, left, right string, proximity uint8) (*roaring.Bitmap, error) {
	key := wordDistanceKey{left: left, right: right, proximity: proximity}
	if bm, ok := c.pairs[key]; ok {
		return bm, nil
	}
	bm, err := ctx.WordPairProximityDocids(left, right, proximity)
	if err != nil {
		return nil, err
	}
	c.pairs[key] = bm
	return bm, nil
}

// ResolveQueryTree evaluates the expression against the Context and returns
// the bitmap of matching documents. The resolution is full (non-lazy): every
// leaf is fetched and combined.
func ResolveQueryTree(ctx Context, op Operation, wdcache *WordDistanceCache) (*roaring.Bitmap, error) {
	switch op := op.(type) {
	case And:
		return resolveAnd(ctx, op.Children, wdcache)
	case Or:
		return resolveOr(ctx, op.Children, wdcache)
	case Phrase:
		return resolvePhrase(ctx, op.Words, wdcache)
	case Query:
		return resolveQuery(ctx, op)
	default:
		return nil, fmt.Errorf("resolve query tree: unknown operation %T", op)
	}
}

func resolveAnd(ctx Context, children []Operation, wdcache *WordDistanceCache) (*roaring.Bitmap, error) {
	// The neutral element of intersection is the full document set.
	if len(children) == 0 {
		docs, err := ctx.Documents()
		if err != nil {
			return nil, err
		}
		return docs.Clone(), nil
	}

	candidates, err := ResolveQueryTree(ctx, children[0], wdcache)
	if err != nil {
		return nil, err
	}
	candidates = candidates.Clone()
	for _, child := range children[1:] {
		if candidates.IsEmpty() {
			return candidates, nil
		}
		bm, err := ResolveQueryTree(ctx, child, wdcache)
		if err != nil {
			return nil, err
		}
		candidates.And(bm)
	}
	return candidates, nil
}

func resolveOr(ctx Context, children []Operation, wdcache *WordDistanceCache) (*roaring.Bitmap, error) {
	candidates := roaring.New()
	for _, child := range children {
		bm, err := ResolveQueryTree(ctx, child, wdcache)
		if err != nil {
			return nil, err
		}
		candidates.Or(bm)
	}
	return candidates, nil
}

func resolvePhrase(ctx Context, words []string, wdcache *WordDistanceCache) (*roaring.Bitmap, error) {
	switch len(words) {
	case 0:
		return roaring.New(), nil
	case 1:
		return resolveQuery(ctx, Query{Word: words[0]})
	}

	// A document matches when every consecutive word pair appears at
	// proximity one.
	var candidates *roaring.Bitmap
	for i := 0; i < len(words)-1; i++ {
		bm, err := wdcache.pairDocids(ctx, words[i], words[i+1], 1)
		if err != nil {
			return nil, err
		}
		if candidates == nil {
			candidates = bm.Clone()
		} else {
			candidates.And(bm)
		}
		if candidates.IsEmpty() {
			return candidates, nil
		}
	}
	return candidates, nil
}

func resolveQuery(ctx Context, q Query) (*roaring.Bitmap, error) {
	if q.Prefix {
		bm, err := ctx.WordPrefixDocids(q.Word)
		if err != nil {
			return nil, err
		}
		return bm.Clone(), nil
	}
	bm, err := ctx.WordDocids(q.Word)
	if err != nil {
		return nil, err
	}
	return bm.Clone(), nil
}

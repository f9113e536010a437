package search

import (
	"errors"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/require"
)

func testContext() *stubContext {
	ctx := newStubContext()
	ctx.docs = roaring.BitmapOf(1, 2, 3, 4)
	ctx.words["ant"] = roaring.BitmapOf(1, 3)
	ctx.words["anthem"] = roaring.BitmapOf(1, 2)
	ctx.words["hill"] = roaring.BitmapOf(3)
	ctx.prefixes["an"] = roaring.BitmapOf(1, 2, 3)
	ctx.pairs[pairID("ant", "hill", 1)] = roaring.BitmapOf(3)
	ctx.pairs[pairID("hill", "top", 1)] = roaring.BitmapOf(3, 4)
	return ctx
}

func TestResolveQueryTree_Query(t *testing.T) {
	ctx := testContext()

	bm, err := ResolveQueryTree(ctx, Query{Word: "ant"}, NewWordDistanceCache())
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 3}, bm.ToArray())

	bm, err = ResolveQueryTree(ctx, Query{Word: "missing"}, NewWordDistanceCache())
	require.NoError(t, err)
	require.True(t, bm.IsEmpty())
}

func TestResolveQueryTree_QueryPrefix(t *testing.T) {
	ctx := testContext()

	bm, err := ResolveQueryTree(ctx, Query{Word: "an", Prefix: true}, NewWordDistanceCache())
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3}, bm.ToArray())
}

func TestResolveQueryTree_AndOr(t *testing.T) {
	ctx := testContext()
	wdcache := NewWordDistanceCache()

	bm, err := ResolveQueryTree(ctx, And{Children: []Operation{
		Query{Word: "ant"},
		Query{Word: "anthem"},
	}}, wdcache)
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, bm.ToArray())

	bm, err = ResolveQueryTree(ctx, Or{Children: []Operation{
		Query{Word: "ant"},
		Query{Word: "anthem"},
	}}, wdcache)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3}, bm.ToArray())
}

func TestResolveQueryTree_EmptyAndMatchesAllDocuments(t *testing.T) {
	ctx := testContext()

	bm, err := ResolveQueryTree(ctx, And{}, NewWordDistanceCache())
	require.NoError(t, err)
	require.Equal(t, ctx.docs.ToArray(), bm.ToArray())

	// The resolved set is a copy, not the context's own bitmap.
	bm.Add(99)
	require.False(t, ctx.docs.Contains(99))
}

func TestResolveQueryTree_EmptyOrMatchesNothing(t *testing.T) {
	bm, err := ResolveQueryTree(testContext(), Or{}, NewWordDistanceCache())
	require.NoError(t, err)
	require.True(t, bm.IsEmpty())
}

func TestResolveQueryTree_Phrase(t *testing.T) {
	ctx := testContext()

	bm, err := ResolveQueryTree(ctx, Phrase{Words: []string{"ant", "hill", "top"}}, NewWordDistanceCache())
	require.NoError(t, err)
	require.Equal(t, []uint32{3}, bm.ToArray())

	bm, err = ResolveQueryTree(ctx, Phrase{Words: []string{"ant", "missing"}}, NewWordDistanceCache())
	require.NoError(t, err)
	require.True(t, bm.IsEmpty())
}

func TestWordDistanceCache_AvoidsDuplicateLookups(t *testing.T) {
	ctx := testContext()
	wdcache := NewWordDistanceCache()
	phrase := Phrase{Words: []string{"ant", "hill"}}

	_, err := ResolveQueryTree(ctx, phrase, wdcache)
	require.NoError(t, err)
	require.Equal(t, 1, ctx.pairCalls)

	// Resolving again with the same cache hits no pair lookup.
	_, err = ResolveQueryTree(ctx, phrase, wdcache)
	require.NoError(t, err)
	require.Equal(t, 1, ctx.pairCalls)
}

func TestResolveQueryTree_PropagatesError(t *testing.T) {
	ctx := testContext()
	ctx.err = errors.New("snapshot gone")

	_, err := ResolveQueryTree(ctx, Query{Word: "ant"}, NewWordDistanceCache())
	require.ErrorContains(t, err, "snapshot gone")
}

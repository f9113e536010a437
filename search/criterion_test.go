package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/require"
)

func newParams() *CriterionParameters {
	return &CriterionParameters{
		WordDistanceCache:  NewWordDistanceCache(),
		ExcludedCandidates: roaring.New(),
	}
}

func TestInitial_SingleFire(t *testing.T) {
	for _, exhaustive := range []bool{false, true} {
		t.Run(fmt.Sprintf("exhaustive=%v", exhaustive), func(t *testing.T) {
			initial := NewInitial(testContext(), Query{Word: "ant"}, nil, exhaustive, nil)
			params := newParams()

			result, err := initial.Next(params)
			require.NoError(t, err)
			require.NotNil(t, result)

			// Every subsequent call yields nothing.
			for i := 0; i < 3; i++ {
				result, err = initial.Next(params)
				require.NoError(t, err)
				require.Nil(t, result)
			}
		})
	}
}

func TestInitial_LazyLeavesAnswerUntouched(t *testing.T) {
	filtered := roaring.BitmapOf(1, 2)
	initial := NewInitial(testContext(), Query{Word: "ant"}, filtered, false, nil)

	result, err := initial.Next(newParams())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, Query{Word: "ant"}, result.QueryTree)
	require.Equal(t, filtered, result.FilteredCandidates)
	require.Nil(t, result.Candidates)
	require.Nil(t, result.BucketCandidates)
}

func TestInitial_NoQueryTreeSkipsResolution(t *testing.T) {
	initial := NewInitial(testContext(), nil, roaring.BitmapOf(7), true, nil)

	result, err := initial.Next(newParams())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Nil(t, result.QueryTree)
	require.Nil(t, result.Candidates)
	require.Nil(t, result.BucketCandidates)
}

func TestInitial_ExhaustiveResolvesAndFilters(t *testing.T) {
	tree := Or{Children: []Operation{Query{Word: "ant"}, Query{Word: "anthem"}}}
	filtered := roaring.BitmapOf(1, 2)
	initial := NewInitial(testContext(), tree, filtered, true, nil)

	result, err := initial.Next(newParams())
	require.NoError(t, err)
	require.NotNil(t, result)

	// ant|anthem resolves to {1,2,3}; the filter keeps {1,2}.
	require.Equal(t, []uint32{1, 2}, result.Candidates.ToArray())
	// Without a distinct capability the bucket candidates are identical.
	require.Equal(t, result.Candidates.ToArray(), result.BucketCandidates.ToArray())
	// But they are independent bitmaps: later stages own each separately.
	result.BucketCandidates.Add(42)
	require.False(t, result.Candidates.Contains(42))
}

func TestInitial_ExhaustiveWithDistinct(t *testing.T) {
	tree := Or{Children: []Operation{Query{Word: "ant"}, Query{Word: "anthem"}}}
	colors := map[uint32]string{1: "red", 2: "red", 3: "blue"}
	distinct := NewAttributeDistinct(func(id uint32) (string, error) {
		return colors[id], nil
	})
	initial := NewInitial(testContext(), tree, nil, true, distinct)

	result, err := initial.Next(newParams())
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Equal(t, []uint32{1, 2, 3}, result.Candidates.ToArray())
	// One representative per color, every color represented.
	require.Equal(t, []uint32{1, 3}, result.BucketCandidates.ToArray())

	// Bucket candidates stay a subset of candidates.
	require.True(t, roaring.And(result.Candidates, result.BucketCandidates).Equals(result.BucketCandidates))
}

func TestInitial_ResolutionErrorAborts(t *testing.T) {
	ctx := testContext()
	ctx.err = errors.New("read failed")
	initial := NewInitial(ctx, Query{Word: "ant"}, nil, true, nil)
	params := newParams()

	result, err := initial.Next(params)
	require.ErrorContains(t, err, "read failed")
	require.Nil(t, result)

	// No partial answer afterwards either.
	result, err = initial.Next(params)
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestInitial_DistinctErrorAborts(t *testing.T) {
	distinct := NewAttributeDistinct(func(id uint32) (string, error) {
		return "", errors.New("attribute store down")
	})
	initial := NewInitial(testContext(), Query{Word: "ant"}, nil, true, distinct)

	result, err := initial.Next(newParams())
	require.ErrorContains(t, err, "attribute store down")
	require.Nil(t, result)
}

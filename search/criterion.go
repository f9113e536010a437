package search

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// CriterionResult is the sole data handed from one pipeline stage to the
// next. It is constructed once by the Initial stage and then owned and
// mutated by each subsequent stage in turn.
type CriterionResult struct {
	// QueryTree is the unresolved (or partially resolved) expression
	// passed on to later stages. Nil when the query has no textual part.
	QueryTree Operation
	// Candidates is populated only when a full, non-lazy resolution
	// occurred.
	Candidates *roaring.Bitmap
	// FilteredCandidates is an externally supplied restriction (attribute
	// filters) applied uniformly to every stage. Nil when unrestricted.
	FilteredCandidates *roaring.Bitmap
	// BucketCandidates is the exhaustive, deduplicated set used for total
	// hit reporting.
	BucketCandidates *roaring.Bitmap
}

// CriterionParameters is the shared state threaded through every stage of
// one pipeline invocation.
type CriterionParameters struct {
	// WordDistanceCache is shared across stages to avoid recomputing word
	// pair lookups.
	WordDistanceCache *WordDistanceCache
	// ExcludedCandidates are documents no stage may return again.
	ExcludedCandidates *roaring.Bitmap
}

// Criterion is one stage of the ranking pipeline. Next returns the stage's
// next bucket of candidates, or nil once the stage is exhausted.
type Criterion interface {
	Next(params *CriterionParameters) (*CriterionResult, error)
}

type initialState uint8

const (
	statePending initialState = iota
	stateExhausted
)

// Initial is a mandatory criterion, it is always the first and is meant to
// initialize the CriterionResult used by the other criteria. It fires
// exactly once: the first call to Next returns the seed result, every later
// call returns nil.
type Initial struct {
	ctx                  Context
	state                initialState
	answer               CriterionResult
	exhaustiveNumberHits bool
	distinct             Distinct
}

var _ Criterion = (*Initial)(nil)

// NewInitial creates the Initial stage.
//
// queryTree may be nil (pure filter queries). filteredCandidates restricts
// every candidate set produced downstream; nil means unrestricted. When
// exhaustiveNumberHits is set and a query tree is present, the first Next
// call resolves the whole tree so that an exact total hit count is
// available; distinct (optional) deduplicates that count by attribute value.
func NewInitial(
	ctx Context,
	queryTree Operation,
	filteredCandidates *roaring.Bitmap,
	exhaustiveNumberHits bool,
	distinct Distinct,
) *Initial {
	return &Initial{
		ctx:   ctx,
		state: statePending,
		answer: CriterionResult{
			QueryTree:          queryTree,
			FilteredCandidates: filteredCandidates,
		},
		exhaustiveNumberHits: exhaustiveNumberHits,
		distinct:             distinct,
	}
}

// Next returns the seed CriterionResult on the first call and nil on every
// later one. On error no partial answer is returned and the stage stays
// exhausted.
func (c *Initial) Next(params *CriterionParameters) (*CriterionResult, error) {
	if c.state == stateExhausted {
		return nil, nil
	}
	c.state = stateExhausted
	answer := c.answer

	if c.exhaustiveNumberHits && answer.QueryTree != nil {
		// Resolve the whole query tree to retrieve an exhaustive list of
		// documents matching the query.
		candidates, err := ResolveQueryTree(c.ctx, answer.QueryTree, params.WordDistanceCache)
		if err != nil {
			return nil, err
		}

		// Apply the filters on the documents retrieved with the query tree.
		if answer.FilteredCandidates != nil {
			candidates.And(answer.FilteredCandidates)
		}

		// The bucket candidates are an exhaustive count of the matching
		// documents, so the distinct attributes are precomputed here.
		var bucketCandidates *roaring.Bitmap
		if c.distinct != nil {
			bucketCandidates = roaring.New()
			for id, err := range c.distinct.Distinct(candidates.Clone(), roaring.New()) {
				if err != nil {
					return nil, err
				}
				bucketCandidates.Add(id)
			}
		} else {
			bucketCandidates = candidates.Clone()
		}

		answer.Candidates = candidates
		answer.BucketCandidates = bucketCandidates
	}

	return &answer, nil
}

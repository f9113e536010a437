package search

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// stubContext is a map-backed Context for unit tests.
type stubContext struct {
	docs     *roaring.Bitmap
	words    map[string]*roaring.Bitmap
	prefixes map[string]*roaring.Bitmap
	pairs    map[string]*roaring.Bitmap

	pairCalls int
	err       error
}

func newStubContext() *stubContext {
	return &stubContext{
		docs:     roaring.New(),
		words:    make(map[string]*roaring.Bitmap),
		prefixes: make(map[string]*roaring.Bitmap),
		pairs:    make(map[string]*roaring.Bitmap),
	}
}

func pairID(left, right string, proximity uint8) string {
	return fmt.Sprintf("%s|%s|%d", left, right, proximity)
}

func (c *stubContext) get(m map[string]*roaring.Bitmap, key string) (*roaring.Bitmap, error) {
	if c.err != nil {
		return nil, c.err
	}
	if bm, ok := m[key]; ok {
		return bm, nil
	}
	return roaring.New(), nil
}

func (c *stubContext) Documents() (*roaring.Bitmap, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.docs, nil
}

func (c *stubContext) WordDocids(word string) (*roaring.Bitmap, error) {
	return c.get(c.words, word)
}

func (c *stubContext) WordPrefixDocids(prefix string) (*roaring.Bitmap, error) {
	return c.get(c.prefixes, prefix)
}

func (c *stubContext) WordPairProximityDocids(left, right string, proximity uint8) (*roaring.Bitmap, error) {
	c.pairCalls++
	return c.get(c.pairs, pairID(left, right, proximity))
}

func (c *stubContext) WordPrefixPairProximityDocids(word, prefix string, proximity uint8) (*roaring.Bitmap, error) {
	return c.get(c.pairs, pairID(word, prefix, proximity))
}

func (c *stubContext) PrefixWordPairProximityDocids(prefix, word string, proximity uint8) (*roaring.Bitmap, error) {
	return c.get(c.pairs, pairID(prefix, word, proximity))
}

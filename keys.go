package wordprox

// Posting keys are the concatenation
//
//	first-term || 0x00 || second-term || proximity
//
// where the terms are UTF-8 words or prefixes (which never contain a NUL
// byte) and proximity is a single byte. The layout sorts
// byte-lexicographically by first term, then second term, then proximity,
// which the bulk-append write path depends on.

const keySeparator = 0x00

// PairKey encodes a posting key for a term pair at the given proximity.
func PairKey(first, second []byte, proximity uint8) []byte {
	key := make([]byte, 0, len(first)+len(second)+2)
	key = append(key, first...)
	key = append(key, keySeparator)
	key = append(key, second...)
	key = append(key, proximity)
	return key
}

// SplitPairKey decodes a posting key produced by PairKey. The returned slices
// alias the input.
func SplitPairKey(key []byte) (first, second []byte, proximity uint8, err error) {
	sep := -1
	for i, b := range key {
		if b == keySeparator {
			sep = i
			break
		}
	}
	if sep < 0 || len(key) < sep+2 {
		return nil, nil, 0, ErrInvalidPairKey
	}
	return key[:sep], key[sep+1 : len(key)-1], key[len(key)-1], nil
}

package wordprox

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPairKey is returned when a posting key cannot be decoded.
	ErrInvalidPairKey = errors.New("invalid posting pair key")
)

// ErrMergingKeys indicates that two stored posting values for the same key
// could not be merged, usually because one of them is not a valid CBO
// encoded bitmap. It is an internal indexing error: the surrounding write
// transaction is expected to roll back.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrMergingKeys struct {
	Process string
	cause   error
}

// NewErrMergingKeys wraps cause as a merge failure of the named process.
func NewErrMergingKeys(process string, cause error) *ErrMergingKeys {
	return &ErrMergingKeys{Process: process, cause: cause}
}

func (e *ErrMergingKeys) Error() string {
	return fmt.Sprintf("internal: merging keys for %s", e.Process)
}

func (e *ErrMergingKeys) Unwrap() error { return e.cause }

package wordprox

import (
	bolt "go.etcd.io/bbolt"
)

type options struct {
	boltOptions *bolt.Options
	logger      *Logger
}

func defaultOptions() *options {
	return &options{
		boltOptions: bolt.DefaultOptions,
		logger:      NoopLogger(),
	}
}

// Option configures Index open behavior.
type Option func(*options)

// WithLogger configures the logger used by the index and by the update
// primitives running against it.
//
// If nil is passed, logging stays disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithBoltOptions overrides the options the underlying bbolt database is
// opened with (timeouts, read-only mode, fsync behavior).
func WithBoltOptions(bo *bolt.Options) Option {
	return func(o *options) {
		if bo == nil {
			bo = bolt.DefaultOptions
		}
		o.boltOptions = bo
	}
}

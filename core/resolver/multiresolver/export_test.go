package multiresolver

import (
	"time"

	"github.com/evername/w3dns/core/logging"
	"github.com/evername/w3dns/core/resolver"
)

func GetLogger(mr *MultiResolver) logging.Logger {
	return mr.logger
}

// WithEverClient will set the naming-system backend implementation.
func WithEverClient(r resolver.Interface) Option {
	return func(o *Options) {
		o.ever = r
	}
}

// WithRegistrarClient will set the registrar backend implementation.
func WithRegistrarClient(r Registrar) Option {
	return func(o *Options) {
		o.registrar = r
	}
}

// SetNow overrides the clock used for cache entry expiry.
func (mr *MultiResolver) SetNow(fn func() time.Time) {
	mr.now = fn
}

package mock

import (
	"fmt"

	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver"
)

// Assure mock Resolver implements the Resolver interface.
var _ resolver.Interface = (*Resolver)(nil)

// Resolver is the mock Resolver implementation.
type Resolver struct {
	resolveFunc func(string) (record.Data, record.Tag, error)
	tldsFunc    func() []string
	refreshFunc func() error
}

// Option function sets the option on the mock Resolver.
type Option func(*Resolver)

// NewResolver will create a new mock Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}

	// Apply all options.
	for _, o := range opts {
		o(r)
	}

	return r
}

// WithResolveFunc will override the Resolve function implementation.
func WithResolveFunc(f func(string) (record.Data, record.Tag, error)) Option {
	return func(r *Resolver) {
		r.resolveFunc = f
	}
}

// WithTLDsFunc will override the TLDs function implementation.
func WithTLDsFunc(f func() []string) Option {
	return func(r *Resolver) {
		r.tldsFunc = f
	}
}

// WithRefreshTLDsFunc will override the RefreshTLDs function implementation.
func WithRefreshTLDsFunc(f func() error) Option {
	return func(r *Resolver) {
		r.refreshFunc = f
	}
}

// Resolve implements the Resolver interface.
func (r *Resolver) Resolve(name string) (record.Data, record.Tag, error) {
	if r.resolveFunc != nil {
		return r.resolveFunc(name)
	}
	return record.Data{}, 0, fmt.Errorf("not implemented")
}

// TLDs returns the configured registrar suffixes.
func (r *Resolver) TLDs() []string {
	if r.tldsFunc != nil {
		return r.tldsFunc()
	}
	return nil
}

// RefreshTLDs re-fetches the registrar suffixes.
func (r *Resolver) RefreshTLDs() error {
	if r.refreshFunc != nil {
		return r.refreshFunc()
	}
	return nil
}

// Close implements the Resolver interface.
func (r *Resolver) Close() error {
	return nil
}

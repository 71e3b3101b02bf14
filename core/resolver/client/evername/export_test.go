package evername

import (
	"github.com/evername/w3dns/core/resolver/client/evername/evercall"
)

var ErrNotConnected = errNotConnected

const DefaultContentType = defaultContentType

// WithDialFunc will set the dial function implementation.
func WithDialFunc(fn func(endpoint string) (evercall.Caller, evercall.Codec, error)) Option {
	return func(c *Client) {
		c.dialFn = fn
	}
}

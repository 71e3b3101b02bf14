package client

import (
	"github.com/evername/w3dns/core/resolver"
)

// Interface is a resolver client that can connect/disconnect to an external
// naming service via an endpoint.
type Interface interface {
	resolver.Interface
	Connect(endpoint string) error
	IsConnected() bool
}

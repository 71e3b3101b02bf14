// Package api exposes the domain resolution service over HTTP.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evername/w3dns/core/logging"
	m "github.com/evername/w3dns/core/metrics"
	"github.com/evername/w3dns/core/record"
)

// Resolver is the domain resolution service consumed by the API.
type Resolver interface {
	Resolve(name string) (record.Data, record.Tag, error)
	TLDs() []string
	RefreshTLDs() error
}

// Service is the API service interface.
type Service interface {
	http.Handler
	m.Collector
}

// Options holds the dependencies of the API service.
type Options struct {
	Resolver           Resolver
	CORSAllowedOrigins []string
	Logger             logging.Logger
	MetricsRegistry    *prometheus.Registry
}

type server struct {
	Options
	http.Handler
	metrics metrics
}

// New will create and initialize a new API service.
func New(o Options) Service {
	s := &server{
		Options: o,
		metrics: newMetrics(),
	}

	s.setupRouting()

	return s
}

package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	m "github.com/evername/w3dns/core/metrics"
)

type metrics struct {
	PageviewCount prometheus.Counter
	ResolveCount  prometheus.Counter
}

func newMetrics() metrics {
	subsystem := "api"

	return metrics{
		PageviewCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "page_views",
			Help:      "Total no. of requests served.",
		}),
		ResolveCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "resolve_count",
			Help:      "Total no. of successful resolve requests.",
		}),
	}
}

func (s *server) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(s.metrics)
}

func (s *server) pageviewMetricsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.PageviewCount.Inc()
		h.ServeHTTP(w, r)
	})
}
